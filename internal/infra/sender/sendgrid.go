package sender

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/petfolio/reminder-dispatch/internal/domain"
)

type SendGridSender struct {
	client    *sendgrid.Client
	fromEmail string
	fromName  string
}

func NewSendGridSender(apiKey, fromEmail, fromName string) *SendGridSender {
	return &SendGridSender{
		client:    sendgrid.NewSendClient(apiKey),
		fromEmail: fromEmail,
		fromName:  fromName,
	}
}

func (s *SendGridSender) Channel() domain.Channel {
	return domain.ChannelEmail
}

func (s *SendGridSender) Send(ctx context.Context, msg domain.OutboundMessage) (string, error) {
	from := mail.NewEmail(s.fromName, s.fromEmail)
	to := mail.NewEmail("", msg.Address)
	email := mail.NewSingleEmail(from, msg.Subject, to, msg.Body, msg.HTMLBody)

	resp, err := s.client.SendWithContext(ctx, email)
	if err != nil {
		slog.ErrorContext(ctx, "sendgrid request failed",
			slog.String("error", err.Error()),
		)
		return "", fmt.Errorf("sendgrid send: %w", err)
	}

	switch {
	case resp.StatusCode >= http.StatusInternalServerError:
		return "", fmt.Errorf("sendgrid status %d: %w", resp.StatusCode, ErrTransient)
	case resp.StatusCode >= http.StatusBadRequest:
		return "", fmt.Errorf("sendgrid status %d: %w", resp.StatusCode, ErrPermanent)
	}

	messageID := ""
	if ids := resp.Headers["X-Message-Id"]; len(ids) > 0 {
		messageID = ids[0]
	}

	slog.DebugContext(ctx, "email accepted by sendgrid",
		slog.Int("status_code", resp.StatusCode),
		slog.String("message_id", messageID),
	)

	return messageID, nil
}
