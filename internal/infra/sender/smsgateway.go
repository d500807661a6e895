package sender

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/petfolio/reminder-dispatch/internal/domain"
	"github.com/petfolio/reminder-dispatch/internal/observability/logging"
)

// SMSGatewaySender posts messages to the SMS provider's REST API. The
// request carries an idempotency key so an ambiguous timeout can be retried
// without risking a duplicate text.
type SMSGatewaySender struct {
	baseURL    string
	token      string
	fromNumber string
	httpClient *http.Client
}

func NewSMSGatewaySender(baseURL, token, fromNumber string) *SMSGatewaySender {
	return &SMSGatewaySender{
		baseURL:    baseURL,
		token:      token,
		fromNumber: fromNumber,
		// No client-level timeout: the dispatcher bounds each send with a
		// context deadline so timeouts classify as ambiguous.
		httpClient: &http.Client{},
	}
}

func (s *SMSGatewaySender) Channel() domain.Channel {
	return domain.ChannelSMS
}

type smsRequest struct {
	To   string `json:"to"`
	From string `json:"from"`
	Body string `json:"body"`
}

type smsResponse struct {
	MessageID string `json:"message_id"`
}

func (s *SMSGatewaySender) Send(ctx context.Context, msg domain.OutboundMessage) (string, error) {
	u, err := url.Parse(s.baseURL)
	if err != nil {
		return "", fmt.Errorf("parse gateway URL: %w", err)
	}
	u.Path = "/v1/messages"

	body, err := json.Marshal(smsRequest{
		To:   msg.Address,
		From: s.fromNumber,
		Body: msg.Body,
	})
	if err != nil {
		return "", fmt.Errorf("marshal sms request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create sms request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.token)
	if msg.IdempotencyKey != "" {
		req.Header.Set("X-Idempotency-Key", msg.IdempotencyKey)
	}
	if requestID := logging.RequestIDFromContext(ctx); requestID != "" {
		req.Header.Set("x-request-id", requestID)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		slog.ErrorContext(ctx, "sms gateway request failed",
			slog.String("url", u.String()),
			slog.String("error", err.Error()),
		)
		return "", fmt.Errorf("sms gateway send: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= http.StatusInternalServerError:
		return "", fmt.Errorf("sms gateway status %d: %w", resp.StatusCode, ErrTransient)
	case resp.StatusCode >= http.StatusBadRequest:
		return "", fmt.Errorf("sms gateway status %d: %w", resp.StatusCode, ErrPermanent)
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read sms gateway response: %w", err)
	}

	var parsed smsResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", fmt.Errorf("decode sms gateway response: %w", err)
	}

	slog.DebugContext(ctx, "sms accepted by gateway",
		slog.String("message_id", parsed.MessageID),
	)

	return parsed.MessageID, nil
}
