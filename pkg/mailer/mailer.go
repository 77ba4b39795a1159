package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Mailer delivers transactional email (consent requests, password resets).
type Mailer interface {
	Send(ctx context.Context, to, subject, text string) error
}

// HTTPMailer posts messages to a Resend-compatible email API.
type HTTPMailer struct {
	apiKey  string
	from    string
	baseURL string
	client  *http.Client
}

// NewHTTPMailer builds a mailer for the given API key and sender address.
func NewHTTPMailer(apiKey, from, baseURL string) (*HTTPMailer, error) {
	if apiKey == "" {
		return nil, errors.New("mail api key not set")
	}
	if baseURL == "" {
		baseURL = "https://api.resend.com"
	}
	return &HTTPMailer{
		apiKey:  apiKey,
		from:    from,
		baseURL: baseURL,
		client:  &http.Client{Timeout: 5 * time.Second},
	}, nil
}

type sendRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	Text    string   `json:"text"`
}

// Send delivers a plain-text message.
func (m *HTTPMailer) Send(ctx context.Context, to, subject, text string) error {
	payload, err := json.Marshal(sendRequest{
		From:    m.from,
		To:      []string{to},
		Subject: subject,
		Text:    text,
	})
	if err != nil {
		return fmt.Errorf("marshal mail payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.baseURL+"/emails", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build mail request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+m.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.client.Do(req)
	if err != nil {
		return fmt.Errorf("send mail: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("mail provider returned status %d", resp.StatusCode)
	}
	return nil
}

// LogMailer writes messages to the log instead of delivering them.
// Development default, mirroring a console email backend.
type LogMailer struct {
	logger *zap.Logger
}

// NewLogMailer builds a log-only mailer.
func NewLogMailer(logger *zap.Logger) *LogMailer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogMailer{logger: logger}
}

// Send logs the message.
func (m *LogMailer) Send(ctx context.Context, to, subject, text string) error {
	m.logger.Info("outbound email",
		zap.String("to", to),
		zap.String("subject", subject),
		zap.String("body", text),
	)
	return nil
}
