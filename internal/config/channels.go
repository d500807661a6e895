package config

import (
	"os"
	"strconv"
)

const (
	sendgridAPIKeyEnv    = "SENDGRID_API_KEY"
	sendgridFromEmailEnv = "SENDGRID_FROM_EMAIL"
	sendgridFromNameEnv  = "SENDGRID_FROM_NAME"

	smsGatewayURLEnv   = "SMS_GATEWAY_URL"
	smsGatewayTokenEnv = "SMS_GATEWAY_TOKEN"
	smsFromNumberEnv   = "SMS_FROM_NUMBER"

	emailRatePerSecondEnv = "EMAIL_RATE_PER_SECOND"
	smsRatePerSecondEnv   = "SMS_RATE_PER_SECOND"

	defaultFromName = "Petfolio Reminders"
	defaultRate     = 10.0
)

type ChannelsConfig struct {
	SendGridAPIKey    string
	SendGridFromEmail string
	SendGridFromName  string

	SMSGatewayURL   string
	SMSGatewayToken string
	SMSFromNumber   string

	EmailRatePerSecond float64
	SMSRatePerSecond   float64
}

func LoadChannelsConfig() *ChannelsConfig {
	return &ChannelsConfig{
		SendGridAPIKey:    os.Getenv(sendgridAPIKeyEnv),
		SendGridFromEmail: os.Getenv(sendgridFromEmailEnv),
		SendGridFromName:  getEnvOrDefault(sendgridFromNameEnv, defaultFromName),

		SMSGatewayURL:   os.Getenv(smsGatewayURLEnv),
		SMSGatewayToken: os.Getenv(smsGatewayTokenEnv),
		SMSFromNumber:   os.Getenv(smsFromNumberEnv),

		EmailRatePerSecond: floatEnv(emailRatePerSecondEnv, defaultRate),
		SMSRatePerSecond:   floatEnv(smsRatePerSecondEnv, defaultRate),
	}
}

func (c *ChannelsConfig) Validate() error {
	if c.SendGridAPIKey == "" {
		return ErrSendGridKeyMissing
	}
	if c.SMSGatewayURL == "" {
		return ErrSMSGatewayURLMissing
	}
	return nil
}

func floatEnv(key string, defaultValue float64) float64 {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil && parsed > 0 {
			return parsed
		}
	}
	return defaultValue
}
