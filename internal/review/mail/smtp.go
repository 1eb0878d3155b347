package mail

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"net/smtp"
)

//go:embed templates/*.html
var templates embed.FS

// SMTPConfig configures the SMTP mailer.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// Enabled reports whether enough configuration exists to attempt delivery.
func (c SMTPConfig) Enabled() bool {
	return c.Host != "" && c.From != ""
}

// SMTPMailer delivers mail over plain SMTP with an HTML body rendered from
// an embedded template.
type SMTPMailer struct {
	cfg  SMTPConfig
	tmpl *template.Template
}

func NewSMTP(cfg SMTPConfig) (*SMTPMailer, error) {
	tmpl, err := template.ParseFS(templates, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("mail: parse templates: %w", err)
	}
	return &SMTPMailer{cfg: cfg, tmpl: tmpl}, nil
}

func (m *SMTPMailer) SendInvitation(ctx context.Context, inv Invitation) error {
	var body bytes.Buffer
	if err := m.tmpl.ExecuteTemplate(&body, "invitation.html", inv); err != nil {
		return fmt.Errorf("mail: render invitation: %w", err)
	}

	subject := fmt.Sprintf("%s invited you to review a site", inv.InvitedByName)
	return m.send(ctx, inv.ToEmail, subject, body.String())
}

func (m *SMTPMailer) send(ctx context.Context, to, subject, htmlBody string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var auth smtp.Auth
	if m.cfg.Username != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	}
	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)

	msg := []byte(fmt.Sprintf(
		"To: %s\r\nFrom: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/html; charset=\"UTF-8\"\r\n\r\n%s",
		to, m.cfg.From, subject, htmlBody,
	))

	if err := smtp.SendMail(addr, auth, m.cfg.From, []string{to}, msg); err != nil {
		return fmt.Errorf("mail: smtp send: %w", err)
	}
	return nil
}
