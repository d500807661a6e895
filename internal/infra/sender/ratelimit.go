package sender

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"

	"github.com/petfolio/reminder-dispatch/internal/domain"
)

// RateLimitedSender wraps a ChannelSender with a token bucket so a large
// tick cannot burst past the provider's throughput allowance. Waiting
// respects the caller's context, so a send deadline still bounds the whole
// operation.
type RateLimitedSender struct {
	inner   domain.ChannelSender
	limiter *rate.Limiter
}

func NewRateLimitedSender(inner domain.ChannelSender, perSecond float64) *RateLimitedSender {
	burst := int(perSecond)
	if burst < 1 {
		burst = 1
	}
	return &RateLimitedSender{
		inner:   inner,
		limiter: rate.NewLimiter(rate.Limit(perSecond), burst),
	}
}

func (s *RateLimitedSender) Channel() domain.Channel {
	return s.inner.Channel()
}

func (s *RateLimitedSender) Send(ctx context.Context, msg domain.OutboundMessage) (string, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limit wait: %w", err)
	}
	return s.inner.Send(ctx, msg)
}
