package email

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"ems/internal/domain/notifications"
	"ems/internal/platform/config"
)

const dialTimeout = 10 * time.Second

var ErrStartTLSUnsupported = errors.New("smtp server does not offer STARTTLS")

// Message is one plain-text notification mail.
type Message struct {
	From    string
	To      string
	Subject string
	Body    string
	Date    time.Time
	ID      string
}

// Bytes renders the message with CRLF line endings. Header values are kept
// on one line and the subject is Q-encoded when it is not plain ASCII.
func (m Message) Bytes() []byte {
	var b strings.Builder
	header := func(name, value string) {
		b.WriteString(name)
		b.WriteString(": ")
		b.WriteString(value)
		b.WriteString("\r\n")
	}
	header("From", headerValue(m.From))
	header("To", headerValue(m.To))
	header("Subject", mime.QEncoding.Encode("utf-8", headerValue(m.Subject)))
	header("Date", m.Date.Format(time.RFC1123Z))
	if m.ID != "" {
		header("Message-ID", "<"+headerValue(m.ID)+">")
	}
	header("MIME-Version", "1.0")
	header("Content-Type", `text/plain; charset="UTF-8"`)
	header("Content-Transfer-Encoding", "8bit")
	b.WriteString("\r\n")
	b.WriteString(crlf(m.Body))
	return []byte(b.String())
}

func headerValue(v string) string {
	return strings.Join(strings.Fields(v), " ")
}

func crlf(body string) string {
	body = strings.ReplaceAll(body, "\r\n", "\n")
	return strings.ReplaceAll(body, "\n", "\r\n")
}

type noopMailer struct{}

func (noopMailer) Send(ctx context.Context, from, to, subject, body string) error {
	slog.Debug("email delivery disabled", "to", to, "subject", subject)
	return nil
}

type smtpMailer struct {
	addr        string
	host        string
	user        string
	password    string
	requireTLS  bool
	defaultFrom string
	now         func() time.Time
}

// New returns an SMTP mailer when email is enabled and a host is set, and a
// mailer that drops everything otherwise.
func New(cfg config.Config) notifications.Mailer {
	if !cfg.EmailEnabled || cfg.SMTPHost == "" {
		return noopMailer{}
	}
	return &smtpMailer{
		addr:        net.JoinHostPort(cfg.SMTPHost, strconv.Itoa(cfg.SMTPPort)),
		host:        cfg.SMTPHost,
		user:        cfg.SMTPUser,
		password:    cfg.SMTPPassword,
		requireTLS:  cfg.SMTPUseTLS,
		defaultFrom: cfg.EmailFrom,
		now:         time.Now,
	}
}

func (s *smtpMailer) Send(ctx context.Context, from, to, subject, body string) error {
	to = strings.TrimSpace(to)
	if to == "" {
		return nil
	}
	if strings.TrimSpace(from) == "" {
		from = s.defaultFrom
	}
	msg := Message{From: from, To: to, Subject: subject, Body: body, Date: s.now(), ID: uuid.NewString() + "@" + s.host}
	if err := s.deliver(ctx, from, to, msg.Bytes()); err != nil {
		return fmt.Errorf("email: send to %s: %w", to, err)
	}
	return nil
}

func (s *smtpMailer) deliver(ctx context.Context, from, to string, msg []byte) error {
	dialer := net.Dialer{Timeout: dialTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", s.addr)
	if err != nil {
		return err
	}
	defer conn.Close()
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	client, err := smtp.NewClient(conn, s.host)
	if err != nil {
		return err
	}
	defer client.Close()

	if s.requireTLS {
		if ok, _ := client.Extension("STARTTLS"); !ok {
			return ErrStartTLSUnsupported
		}
		if err := client.StartTLS(&tls.Config{ServerName: s.host}); err != nil {
			return err
		}
	}
	if s.user != "" {
		if err := client.Auth(smtp.PlainAuth("", s.user, s.password, s.host)); err != nil {
			return err
		}
	}

	if err := client.Mail(from); err != nil {
		return err
	}
	if err := client.Rcpt(to); err != nil {
		return err
	}
	w, err := client.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(msg); err != nil {
		_ = w.Close()
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return client.Quit()
}
