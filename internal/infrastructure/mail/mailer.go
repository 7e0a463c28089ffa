// Package mail sends transactional email over SMTP.
package mail

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net"
	"net/smtp"
	"strconv"
	"strings"

	"github.com/Sooraj-Rao/college-resume-project/pkg/config"
)

var otpTemplate = template.Must(template.New("otp").Parse(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">
  <h1 style="color: #1f2937;">Welcome to ResumeHub!</h1>
  <p>Hi {{.Name}},</p>
  <p>Please verify your email address by entering the following code:</p>
  <p style="font-size: 32px; font-weight: bold; color: #3b82f6; letter-spacing: 8px;">{{.Code}}</p>
  <p style="color: #6b7280; font-size: 14px;">This code expires in {{.Minutes}} minutes.</p>
  <p>If you didn't create an account with ResumeHub, please ignore this email.</p>
</div>`))

type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// Mailer delivers OTP codes. net/smtp has no context support, so ctx is
// only checked before dialing.
type Mailer struct {
	cfg        config.MailConfig
	ttlMinutes int
	send       sendFunc
}

func NewMailer(cfg config.MailConfig, ttlMinutes int) *Mailer {
	return &Mailer{cfg: cfg, ttlMinutes: ttlMinutes, send: smtp.SendMail}
}

func (m *Mailer) SendCode(ctx context.Context, to, name, code string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var body bytes.Buffer
	err := otpTemplate.Execute(&body, struct {
		Name    string
		Code    string
		Minutes int
	}{Name: name, Code: code, Minutes: m.ttlMinutes})
	if err != nil {
		return fmt.Errorf("failed to render email: %w", err)
	}

	return m.sendHTML(to, "Verify Your Email - ResumeHub", body.String())
}

func (m *Mailer) sendHTML(to, subject, html string) error {
	if strings.ContainsAny(to, "\r\n") || strings.ContainsAny(subject, "\r\n") {
		return fmt.Errorf("invalid header value")
	}

	addr := net.JoinHostPort(m.cfg.Host, strconv.Itoa(m.cfg.Port))
	var auth smtp.Auth
	if m.cfg.Username != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	}

	msg := []byte("From: ResumeHub <" + m.cfg.From + ">\r\n" +
		"To: " + to + "\r\n" +
		"Subject: " + subject + "\r\n" +
		"MIME-Version: 1.0\r\n" +
		"Content-Type: text/html; charset=\"UTF-8\"\r\n\r\n" +
		html + "\r\n")

	if err := m.send(addr, auth, m.cfg.From, []string{to}, msg); err != nil {
		return fmt.Errorf("failed to send email via %s: %w", addr, err)
	}
	return nil
}
