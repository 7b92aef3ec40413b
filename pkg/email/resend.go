package email

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultResendEndpoint is the Resend API send endpoint.
const DefaultResendEndpoint = "https://api.resend.com/emails"

// ResendSender delivers email through the Resend HTTP API.
type ResendSender struct {
	apiKey   string
	endpoint string
	client   *http.Client
}

// ResendOption configures a ResendSender.
type ResendOption func(*ResendSender)

// WithEndpoint overrides the API endpoint (tests, regional endpoints).
func WithEndpoint(url string) ResendOption {
	return func(s *ResendSender) { s.endpoint = url }
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(c *http.Client) ResendOption {
	return func(s *ResendSender) { s.client = c }
}

// NewResendSender creates a Sender backed by the Resend API.
func NewResendSender(apiKey string, opts ...ResendOption) *ResendSender {
	s := &ResendSender{
		apiKey:   apiKey,
		endpoint: DefaultResendEndpoint,
		client:   &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type resendRequest struct {
	From    string            `json:"from"`
	To      []string          `json:"to"`
	Subject string            `json:"subject"`
	HTML    string            `json:"html,omitempty"`
	Text    string            `json:"text,omitempty"`
	Headers map[string]string `json:"headers,omitempty"`
}

type resendResponse struct {
	ID string `json:"id"`
}

// Send posts the message to the Resend API.
func (s *ResendSender) Send(ctx context.Context, e *Email) (*SendResult, error) {
	body, err := json.Marshal(resendRequest{
		From:    e.From,
		To:      e.To,
		Subject: e.Subject,
		HTML:    e.HTMLBody,
		Text:    e.TextBody,
		Headers: e.Headers,
	})
	if err != nil {
		return nil, fmt.Errorf("encode send request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build send request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send email: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("email provider returned %d: %s", resp.StatusCode, msg)
	}

	var out resendResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode send response: %w", err)
	}
	return &SendResult{MessageID: out.ID}, nil
}

// Ensure ResendSender implements Sender.
var _ Sender = (*ResendSender)(nil)
