package logging

import (
	"context"
	"log/slog"
	"os"
	"regexp"

	"github.com/google/uuid"
)

type contextKey struct{}

var requestIDKey = contextKey{}

var requestIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,128}$`)

// NewLogger builds the service's JSON slog logger.
func NewLogger(level slog.Level, serviceName, version string) *slog.Logger {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	return slog.New(handler).With(
		slog.String("service", serviceName),
		slog.String("version", version),
	)
}

// WithRequestID stores a request ID in the context for downstream log
// correlation and outbound header propagation.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// RequestIDFromContext returns the stored request ID, or empty.
func RequestIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(requestIDKey).(string); ok {
		return v
	}
	return ""
}

// ValidateAndExtractRequestID returns the ID when it is safe to propagate,
// otherwise a fresh one. Inbound values are untrusted header content.
func ValidateAndExtractRequestID(requestID string) string {
	if requestIDPattern.MatchString(requestID) {
		return requestID
	}
	return uuid.NewString()
}
