package mailer

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"mime"
	"net"
	"net/mail"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"github.com/angelmondragon/accounts-backend/pkg/config"
)

// Message is a single HTML email.
type Message struct {
	To      string
	Subject string
	HTML    string
}

// SMTP sends mail through an authenticated SMTP relay. UseSSL selects
// implicit TLS; otherwise STARTTLS is used when the server offers it.
type SMTP struct {
	host     string
	port     int
	username string
	password string
	from     mail.Address
	useSSL   bool
	now      func() time.Time
}

func NewSMTP(cfg config.SMTPConfig) (*SMTP, error) {
	if strings.TrimSpace(cfg.Host) == "" {
		return nil, errors.New("smtp host is required")
	}
	if strings.TrimSpace(cfg.From) == "" {
		return nil, errors.New("smtp from address is required")
	}
	port := cfg.Port
	if port <= 0 {
		port = 587
	}
	return &SMTP{
		host:     cfg.Host,
		port:     port,
		username: cfg.Username,
		password: cfg.Password,
		from:     mail.Address{Name: cfg.SenderName, Address: cfg.From},
		useSSL:   cfg.UseSSL,
		now:      time.Now,
	}, nil
}

// Send delivers msg, honoring ctx for the dial and the overall deadline.
func (s *SMTP) Send(ctx context.Context, msg Message) error {
	if strings.TrimSpace(msg.To) == "" {
		return errors.New("recipient is required")
	}

	addr := net.JoinHostPort(s.host, strconv.Itoa(s.port))
	conn, err := s.dial(ctx, addr)
	if err != nil {
		return fmt.Errorf("dial smtp %s: %w", addr, err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	client, err := smtp.NewClient(conn, s.host)
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("smtp handshake: %w", err)
	}
	defer client.Close()

	if !s.useSSL {
		if ok, _ := client.Extension("STARTTLS"); ok {
			if err := client.StartTLS(&tls.Config{ServerName: s.host}); err != nil {
				return fmt.Errorf("smtp starttls: %w", err)
			}
		}
	}

	if s.username != "" {
		if err := client.Auth(smtp.PlainAuth("", s.username, s.password, s.host)); err != nil {
			return fmt.Errorf("smtp auth: %w", err)
		}
	}

	if err := client.Mail(s.from.Address); err != nil {
		return fmt.Errorf("smtp mail from: %w", err)
	}
	if err := client.Rcpt(msg.To); err != nil {
		return fmt.Errorf("smtp rcpt to: %w", err)
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("smtp data: %w", err)
	}
	if _, err := w.Write(s.build(msg)); err != nil {
		return fmt.Errorf("smtp write: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("smtp close data: %w", err)
	}
	return client.Quit()
}

func (s *SMTP) dial(ctx context.Context, addr string) (net.Conn, error) {
	if s.useSSL {
		d := &tls.Dialer{Config: &tls.Config{ServerName: s.host}}
		return d.DialContext(ctx, "tcp", addr)
	}
	var d net.Dialer
	return d.DialContext(ctx, "tcp", addr)
}

func (s *SMTP) build(msg Message) []byte {
	var b strings.Builder
	b.WriteString("From: " + s.from.String() + "\r\n")
	b.WriteString("To: " + msg.To + "\r\n")
	b.WriteString("Subject: " + mime.QEncoding.Encode("utf-8", msg.Subject) + "\r\n")
	b.WriteString("Date: " + s.now().UTC().Format(time.RFC1123Z) + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=\"utf-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(msg.HTML)
	return []byte(b.String())
}
