package notify

import (
	"context"
	"fmt"
	"io"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"

	"carport-configurator/internal/config"
	"carport-configurator/pkg/mailapi"
)

// Message is one outbound email.
type Message struct {
	To          string
	Subject     string
	HTML        string
	Attachments []Attachment
}

type Attachment struct {
	Filename string
	Data     []byte
}

// Mailer is the outbound transport contract. Two implementations exist:
// direct SMTP login and a transactional HTTP email API, selected by
// configuration.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// NewMailer builds the transport selected by MAIL_TRANSPORT.
func NewMailer(cfg *config.Config, logger *zap.Logger) Mailer {
	if cfg.MailTransport == "api" {
		return &apiMailer{
			client: mailapi.NewClient(cfg.MailAPIBaseURL, cfg.MailAPIKey, logger),
			from:   cfg.MailFrom,
		}
	}

	return &smtpMailer{
		dialer: gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword),
		from:   cfg.MailFrom,
	}
}

type smtpMailer struct {
	dialer *gomail.Dialer
	from   string
}

// Send delivers via SMTP. gomail carries no context; cancellation is bounded
// by the dialer's own network timeouts.
func (m *smtpMailer) Send(_ context.Context, msg Message) error {
	mail := gomail.NewMessage()
	mail.SetHeader("From", m.from)
	mail.SetHeader("To", msg.To)
	mail.SetHeader("Subject", msg.Subject)
	mail.SetBody("text/html", msg.HTML)

	for _, att := range msg.Attachments {
		data := att.Data
		mail.Attach(att.Filename, gomail.SetCopyFunc(func(w io.Writer) error {
			_, err := w.Write(data)
			return err
		}))
	}

	if err := m.dialer.DialAndSend(mail); err != nil {
		return fmt.Errorf("smtp send to %s: %w", msg.To, err)
	}

	return nil
}

type apiMailer struct {
	client *mailapi.Client
	from   string
}

func (m *apiMailer) Send(ctx context.Context, msg Message) error {
	req := mailapi.SendRequest{
		From:    m.from,
		To:      msg.To,
		Subject: msg.Subject,
		HTML:    msg.HTML,
	}
	for _, att := range msg.Attachments {
		req.Attachments = append(req.Attachments, mailapi.EncodeAttachment(att.Filename, att.Data))
	}

	if _, err := m.client.Send(ctx, req); err != nil {
		return fmt.Errorf("api send to %s: %w", msg.To, err)
	}

	return nil
}
