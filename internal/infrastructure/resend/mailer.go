// Package resend sends transactional email through a Resend-compatible
// HTTP API.
package resend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/storefront-api/internal/config"
)

// Mailer sends emails.
type Mailer interface {
	SendEmail(ctx context.Context, to, subject, body string) error
}

type mailer struct {
	apiURL string
	apiKey string
	from   string
	client *http.Client
}

func NewMailer(cfg *config.Config) Mailer {
	return &mailer{
		apiURL: cfg.EmailAPIURL,
		apiKey: cfg.EmailAPIKey,
		from:   cfg.EmailFrom,
		client: &http.Client{Timeout: 15 * time.Second},
	}
}

type sendRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	Text    string   `json:"text"`
}

// SendEmail posts one message to the provider. A failed send is never
// retried and never faked as success: the provider's message is passed
// through to the caller.
func (m *mailer) SendEmail(ctx context.Context, to, subject, body string) error {
	if m.apiKey == "" || m.from == "" {
		return fmt.Errorf("email API credentials not configured")
	}

	payload, err := json.Marshal(sendRequest{
		From:    m.from,
		To:      []string{to},
		Subject: subject,
		Text:    body,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.apiURL+"/emails", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+m.apiKey)
	req.Header.Set("Content-Type", "application/json")

	res, err := m.client.Do(req)
	if err != nil {
		return fmt.Errorf("email send: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
		return fmt.Errorf("email provider returned %d: %s", res.StatusCode, string(msg))
	}
	return nil
}
