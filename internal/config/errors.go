package config

import "errors"

var (
	ErrInvalidLogBackend    = errors.New("invalid DISPATCH_LOG_BACKEND, expected postgres or redis")
	ErrInvalidRedisDB       = errors.New("invalid REDIS_DB, expected integer")
	ErrRedisAddrMissing     = errors.New("redis address is required")
	ErrPostgresDSNMissing   = errors.New("DATABASE_URL is required")
	ErrSendGridKeyMissing   = errors.New("SENDGRID_API_KEY is required when the email channel is enabled")
	ErrSMSGatewayURLMissing = errors.New("SMS_GATEWAY_URL is required when the sms channel is enabled")
)
