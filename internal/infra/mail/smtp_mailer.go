// Package mail contains the SMTP implementation of the domain Mailer.
package mail

import (
	"context"

	"pulse/config"
	"pulse/internal/domain/service"

	"github.com/pkg/errors"
	"gopkg.in/gomail.v2"
)

// smtpMailer implements the service.Mailer interface using gomail.
type smtpMailer struct {
	dialer *gomail.Dialer
	from   string
}

// NewSMTPMailer is the constructor for smtpMailer.
func NewSMTPMailer(cfg *config.Config) service.Mailer {
	return &smtpMailer{
		dialer: gomail.NewDialer(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.Username, cfg.SMTP.Password),
		from:   cfg.SMTP.From,
	}
}

// Send delivers one rendered message. The context bounds the dial and send;
// gomail itself has no context support, so the send runs in a goroutine and
// the caller's deadline wins.
func (m *smtpMailer) Send(ctx context.Context, mail *service.Mail) error {
	message := gomail.NewMessage()
	message.SetHeader("From", m.from)
	message.SetHeader("To", mail.To)
	message.SetHeader("Subject", mail.Subject)
	message.SetBody("text/plain", mail.Body)

	done := make(chan error, 1)
	go func() {
		done <- m.dialer.DialAndSend(message)
	}()

	select {
	case <-ctx.Done():
		return errors.Wrap(ctx.Err(), "email send canceled")
	case err := <-done:
		if err != nil {
			return errors.Wrap(err, "failed to send email")
		}

		return nil
	}
}
