package email

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"gopkg.in/gomail.v2"

	"github.com/jwalitptl/patient-registry/internal/config"
)

type Service interface {
	SendWelcome(ctx context.Context, to string, name string) error
	SendCustom(ctx context.Context, to string, subject string, content string) error
}

// Sender delivers a composed message. *gomail.Dialer satisfies it.
type Sender interface {
	DialAndSend(m ...*gomail.Message) error
}

type smtpService struct {
	sender Sender
	from   string
	log    zerolog.Logger
}

// NewService returns an SMTP-backed Service, or a no-op one when email is
// disabled in cfg.
func NewService(cfg config.EmailConfig, log zerolog.Logger) Service {
	if !cfg.Enabled {
		return noopService{}
	}
	return NewSMTPService(gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password), cfg.From, log)
}

func NewSMTPService(sender Sender, from string, log zerolog.Logger) Service {
	return &smtpService{
		sender: sender,
		from:   from,
		log:    log.With().Str("component", "email").Logger(),
	}
}

func (s *smtpService) SendWelcome(ctx context.Context, to string, name string) error {
	subject := "Welcome to the clinic"
	content := fmt.Sprintf("<p>Hello %s,</p><p>your registration is complete.</p>", name)
	return s.SendCustom(ctx, to, subject, content)
}

func (s *smtpService) SendCustom(ctx context.Context, to string, subject string, content string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", content)

	if err := s.sender.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	s.log.Debug().Str("subject", subject).Msg("email sent")
	return nil
}

type noopService struct{}

func (noopService) SendWelcome(context.Context, string, string) error { return nil }

func (noopService) SendCustom(context.Context, string, string, string) error { return nil }
