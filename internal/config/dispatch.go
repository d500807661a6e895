package config

import (
	"os"
	"strconv"
	"time"
)

const (
	sendTimeoutSecondsEnv  = "SEND_TIMEOUT_SECONDS"
	maxSendAttemptsEnv     = "MAX_SEND_ATTEMPTS"
	retryAfterMinutesEnv   = "RETRY_AFTER_MINUTES"
	staleRetryBatchSizeEnv = "STALE_RETRY_BATCH_SIZE"

	defaultSendTimeoutSeconds  = 15
	defaultMaxSendAttempts     = 3
	defaultRetryAfterMinutes   = 10
	defaultStaleRetryBatchSize = 100
)

type DispatchConfig struct {
	// SendTimeout bounds one channel provider call. Expiry is an ambiguous
	// outcome: the entry stays Reserved.
	SendTimeout time.Duration
	// MaxSendAttempts caps attempts per occurrence across ticks; the entry
	// is marked Failed once exhausted.
	MaxSendAttempts int
	// RetryAfter is how long a Reserved entry must sit before the stale
	// retry path may resend it.
	RetryAfter time.Duration
	// StaleRetryBatchSize bounds how many stale entries one tick resolves.
	StaleRetryBatchSize int
}

func LoadDispatchConfig() *DispatchConfig {
	return &DispatchConfig{
		SendTimeout:         time.Duration(intEnv(sendTimeoutSecondsEnv, defaultSendTimeoutSeconds)) * time.Second,
		MaxSendAttempts:     intEnv(maxSendAttemptsEnv, defaultMaxSendAttempts),
		RetryAfter:          time.Duration(intEnv(retryAfterMinutesEnv, defaultRetryAfterMinutes)) * time.Minute,
		StaleRetryBatchSize: intEnv(staleRetryBatchSizeEnv, defaultStaleRetryBatchSize),
	}
}

func intEnv(key string, defaultValue int) int {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			return parsed
		}
	}
	return defaultValue
}
