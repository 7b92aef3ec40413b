// Package email renders and sends transactional email. Templates are stored
// rows rendered through pkg/template; delivery goes through the Sender
// interface so providers (Resend, SMTP relays, test fakes) are swappable.
package email

import "context"

// Email is a message to be sent.
type Email struct {
	To       []string          `json:"to"`
	From     string            `json:"from"`
	Subject  string            `json:"subject"`
	HTMLBody string            `json:"html,omitempty"`
	TextBody string            `json:"text,omitempty"`
	Headers  map[string]string `json:"headers,omitempty"`
}

// SendResult is the provider's acknowledgement of a sent message.
type SendResult struct {
	MessageID string `json:"messageId"`
}

// Sender delivers email through a provider.
type Sender interface {
	// Send delivers one message and returns the provider's message ID.
	Send(ctx context.Context, e *Email) (*SendResult, error)
}
