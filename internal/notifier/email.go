package notifier

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/garnizeh/jobboard/pkg/models"
)

type EmailConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	Subject  string
}

type EmailMessage struct {
	From    string
	To      []string
	Subject string
	Body    string
}

// EmailSender abstracts delivery so tests can swap it.
type EmailSender interface {
	Send(ctx context.Context, msg EmailMessage) error
}

type SMTPClient struct {
	addr string
	auth smtp.Auth
}

func NewSMTPClient(cfg EmailConfig) *SMTPClient {
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	var auth smtp.Auth
	if cfg.Username != "" && cfg.Password != "" {
		auth = smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)
	}
	return &SMTPClient{addr: addr, auth: auth}
}

func (c *SMTPClient) Send(ctx context.Context, msg EmailMessage) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return smtp.SendMail(c.addr, c.auth, msg.From, msg.To, []byte(buildEmailData(msg)))
}

// EmailNotifier mails the digest to users who opted into email updates.
type EmailNotifier struct {
	cfg    EmailConfig
	sender EmailSender
}

func NewEmailNotifier(cfg EmailConfig, sender EmailSender) *EmailNotifier {
	if sender == nil {
		sender = NewSMTPClient(cfg)
	}
	if cfg.Subject == "" {
		cfg.Subject = "Application deadlines approaching"
	}
	return &EmailNotifier{cfg: cfg, sender: sender}
}

func (n *EmailNotifier) Notify(ctx context.Context, to models.UserProfile, alerts []models.DeadlineAlert) error {
	if len(alerts) == 0 || !to.Preferences.EmailUpdates || to.Email == "" {
		return nil
	}
	msg := EmailMessage{
		From:    n.cfg.From,
		To:      []string{to.Email},
		Subject: n.cfg.Subject,
		Body:    buildBody(to, alerts),
	}
	if err := n.sender.Send(ctx, msg); err != nil {
		return fmt.Errorf("send deadline email to %s: %w", to.Email, err)
	}
	return nil
}

func buildEmailData(msg EmailMessage) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("From: %s\r\n", msg.From))
	b.WriteString(fmt.Sprintf("To: %s\r\n", strings.Join(msg.To, ",")))
	b.WriteString(fmt.Sprintf("Subject: %s\r\n", msg.Subject))
	b.WriteString("MIME-Version: 1.0\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n")
	b.WriteString(msg.Body)
	return b.String()
}
