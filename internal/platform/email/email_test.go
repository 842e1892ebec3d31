package email

import (
	"bufio"
	"context"
	"net"
	"net/textproto"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ems/internal/platform/config"
)

func TestNewSelectsMailer(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.Config
		smtp bool
	}{
		{name: "disabled", cfg: config.Config{SMTPHost: "mail.example.com"}},
		{name: "no host", cfg: config.Config{EmailEnabled: true}},
		{name: "enabled", cfg: config.Config{EmailEnabled: true, SMTPHost: "mail.example.com", SMTPPort: 587}, smtp: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mailer := New(tt.cfg)
			_, isSMTP := mailer.(*smtpMailer)
			assert.Equal(t, tt.smtp, isSMTP)
			if !tt.smtp {
				assert.NoError(t, mailer.Send(context.Background(), "a@example.com", "b@example.com", "s", "b"))
			}
		})
	}

	m := New(config.Config{EmailEnabled: true, SMTPHost: "mail.example.com", SMTPPort: 2525}).(*smtpMailer)
	assert.Equal(t, "mail.example.com:2525", m.addr)
}

func TestMessageBytes(t *testing.T) {
	msg := Message{
		From:    "hr@example.com",
		To:      "alice@example.com",
		Subject: "Profile changes rejected\r\nBcc: evil@example.com",
		Body:    "Your profile changes were rejected: phone\nis wrong",
		Date:    time.Date(2026, 4, 2, 10, 0, 0, 0, time.UTC),
		ID:      "123@mail.example.com",
	}
	raw := string(msg.Bytes())

	head, body, ok := strings.Cut(raw, "\r\n\r\n")
	require.True(t, ok)
	assert.Contains(t, head, "From: hr@example.com\r\n")
	assert.Contains(t, head, "To: alice@example.com\r\n")
	assert.Contains(t, head, "Subject: Profile changes rejected Bcc: evil@example.com\r\n")
	assert.NotContains(t, head, "\r\nBcc:")
	assert.Contains(t, head, "Date: Thu, 02 Apr 2026 10:00:00 +0000\r\n")
	assert.Contains(t, head, "Message-ID: <123@mail.example.com>\r\n")
	assert.Equal(t, "Your profile changes were rejected: phone\r\nis wrong", body)
}

func TestMessageBytesEncodesNonASCIISubject(t *testing.T) {
	raw := string(Message{Subject: "Änderungen genehmigt", Date: time.Now()}.Bytes())
	assert.Contains(t, raw, "Subject: =?utf-8?q?")
}

func TestSMTPMailerDelivers(t *testing.T) {
	addr, received := fakeSMTPServer(t)
	host, port, err := net.SplitHostPort(addr)
	require.NoError(t, err)
	portNum, err := strconv.Atoi(port)
	require.NoError(t, err)

	mailer := New(config.Config{EmailEnabled: true, SMTPHost: host, SMTPPort: portNum, EmailFrom: "no-reply@example.com"})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	require.NoError(t, mailer.Send(ctx, "", "alice@example.com", "Profile changes approved", "Your profile changes were approved."))

	select {
	case got := <-received:
		assert.Equal(t, "<no-reply@example.com>", got.from)
		assert.Equal(t, "<alice@example.com>", got.to)
		assert.Contains(t, got.data, "Subject: Profile changes approved")
		assert.Contains(t, got.data, "Your profile changes were approved.")
	case <-ctx.Done():
		t.Fatal("no message received")
	}
}

func TestSMTPMailerRequiresStartTLS(t *testing.T) {
	addr, _ := fakeSMTPServer(t)
	host, port, err := net.SplitHostPort(addr)
	require.NoError(t, err)
	portNum, err := strconv.Atoi(port)
	require.NoError(t, err)

	mailer := New(config.Config{EmailEnabled: true, SMTPHost: host, SMTPPort: portNum, SMTPUseTLS: true})
	err = mailer.Send(context.Background(), "hr@example.com", "alice@example.com", "s", "b")
	assert.ErrorIs(t, err, ErrStartTLSUnsupported)
}

type smtpDelivery struct {
	from string
	to   string
	data string
}

// fakeSMTPServer accepts one connection and speaks just enough SMTP for a
// plain delivery.
func fakeSMTPServer(t *testing.T) (string, <-chan smtpDelivery) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = ln.Close() })

	received := make(chan smtpDelivery, 1)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()

		r := textproto.NewReader(bufio.NewReader(conn))
		reply := func(line string) bool {
			_, err := conn.Write([]byte(line + "\r\n"))
			return err == nil
		}
		if !reply("220 localhost ESMTP") {
			return
		}

		var d smtpDelivery
		for {
			line, err := r.ReadLine()
			if err != nil {
				return
			}
			verb := strings.ToUpper(strings.SplitN(line, " ", 2)[0])
			switch {
			case verb == "EHLO" || verb == "HELO":
				reply("250-localhost")
				reply("250 HELP")
			case strings.HasPrefix(strings.ToUpper(line), "MAIL FROM:"):
				d.from = strings.Fields(line[len("MAIL FROM:"):])[0]
				reply("250 OK")
			case strings.HasPrefix(strings.ToUpper(line), "RCPT TO:"):
				d.to = strings.Fields(line[len("RCPT TO:"):])[0]
				reply("250 OK")
			case verb == "DATA":
				reply("354 go ahead")
				lines, err := r.ReadDotLines()
				if err != nil {
					return
				}
				d.data = strings.Join(lines, "\n")
				received <- d
				reply("250 OK")
			case verb == "QUIT":
				reply("221 bye")
				return
			default:
				reply("502 not implemented")
			}
		}
	}()
	return ln.Addr().String(), received
}
