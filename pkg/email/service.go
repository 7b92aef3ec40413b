package email

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/getpressed/pressed/internal/storage"
	"github.com/getpressed/pressed/pkg/logging"
	"github.com/getpressed/pressed/pkg/template"
)

// Service renders stored templates and delivers them through a Sender.
type Service struct {
	store  storage.TemplateStore
	sender Sender
	from   string
	log    *slog.Logger
}

// NewService creates an email service. from is the sender address used for
// all outgoing mail.
func NewService(store storage.TemplateStore, sender Sender, from string) *Service {
	return &Service{
		store:  store,
		sender: sender,
		from:   from,
		log:    logging.Nop(),
	}
}

// SetLogger sets the logger for the service.
func (s *Service) SetLogger(log *slog.Logger) {
	if log != nil {
		s.log = log
	}
}

// Render loads a template by name and expands its subject and body against
// data. Rendering itself never fails; the only error case is an unknown
// template name.
func (s *Service) Render(ctx context.Context, templateName string, data map[string]any) (*Email, error) {
	tmpl, err := s.store.GetTemplateByName(ctx, templateName)
	if err != nil {
		return nil, fmt.Errorf("load template %q: %w", templateName, err)
	}
	return &Email{
		From:     s.from,
		Subject:  template.Substitute(tmpl.Subject, data),
		HTMLBody: template.Substitute(tmpl.HTMLBody, data),
	}, nil
}

// SendTemplate renders a stored template and sends it to the given
// recipient.
func (s *Service) SendTemplate(ctx context.Context, templateName, to string, data map[string]any) (*SendResult, error) {
	e, err := s.Render(ctx, templateName, data)
	if err != nil {
		return nil, err
	}
	e.To = []string{to}

	result, err := s.sender.Send(ctx, e)
	if err != nil {
		return nil, fmt.Errorf("send %q to %s: %w", templateName, to, err)
	}
	s.log.Info("email sent", "template", templateName, "to", to, "messageId", result.MessageID)
	return result, nil
}
