package mailer

import (
	"bufio"
	"context"
	"net"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/angelmondragon/accounts-backend/pkg/config"
)

func TestNewSMTP_RequiresHostAndFrom(t *testing.T) {
	if _, err := NewSMTP(config.SMTPConfig{From: "noreply@example.com"}); err == nil {
		t.Fatal("expected error without host")
	}
	if _, err := NewSMTP(config.SMTPConfig{Host: "smtp.example.com"}); err == nil {
		t.Fatal("expected error without from")
	}
}

func TestBuildMessage(t *testing.T) {
	s, err := NewSMTP(config.SMTPConfig{Host: "smtp.example.com", From: "noreply@example.com", SenderName: "The Team"})
	if err != nil {
		t.Fatalf("NewSMTP: %v", err)
	}
	s.now = func() time.Time { return time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC) }

	raw := string(s.build(Message{To: "jane@example.com", Subject: "Welcome to Our Platform!", HTML: "<p>hi</p>"}))

	for _, want := range []string{
		"From: \"The Team\" <noreply@example.com>\r\n",
		"To: jane@example.com\r\n",
		"Subject: Welcome to Our Platform!\r\n",
		"Date: Tue, 02 Jan 2024 03:04:05 +0000\r\n",
		"Content-Type: text/html; charset=\"utf-8\"\r\n\r\n<p>hi</p>",
	} {
		if !strings.Contains(raw, want) {
			t.Fatalf("message missing %q:\n%s", want, raw)
		}
	}
}

func TestSend_PlainServer(t *testing.T) {
	srv := newFakeSMTPServer(t)

	s, err := NewSMTP(config.SMTPConfig{Host: "127.0.0.1", Port: srv.port, From: "noreply@example.com"})
	if err != nil {
		t.Fatalf("NewSMTP: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.Send(ctx, Message{To: "jane@example.com", Subject: "hello", HTML: "<b>body</b>"}); err != nil {
		t.Fatalf("Send: %v", err)
	}

	srv.wait()
	if srv.rcpt != "jane@example.com" {
		t.Fatalf("unexpected recipient %q", srv.rcpt)
	}
	if !strings.Contains(srv.data, "<b>body</b>") {
		t.Fatalf("unexpected data %q", srv.data)
	}
}

func TestSend_RequiresRecipient(t *testing.T) {
	s, _ := NewSMTP(config.SMTPConfig{Host: "127.0.0.1", From: "noreply@example.com"})
	if err := s.Send(context.Background(), Message{}); err == nil {
		t.Fatal("expected error without recipient")
	}
}

type fakeSMTPServer struct {
	port int
	wg   sync.WaitGroup
	rcpt string
	data string
}

func newFakeSMTPServer(t *testing.T) *fakeSMTPServer {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	t.Cleanup(func() { _ = ln.Close() })

	_, portStr, _ := net.SplitHostPort(ln.Addr().String())
	port, _ := strconv.Atoi(portStr)
	srv := &fakeSMTPServer{port: port}
	srv.wg.Add(1)

	go func() {
		defer srv.wg.Done()
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		r := bufio.NewReader(conn)
		write := func(s string) { _, _ = conn.Write([]byte(s + "\r\n")) }

		write("220 fake ESMTP")
		for {
			line, err := r.ReadString('\n')
			if err != nil {
				return
			}
			cmd := strings.TrimSpace(line)
			upper := strings.ToUpper(cmd)
			switch {
			case strings.HasPrefix(upper, "EHLO"), strings.HasPrefix(upper, "HELO"):
				write("250 fake")
			case strings.HasPrefix(upper, "MAIL FROM"):
				write("250 ok")
			case strings.HasPrefix(upper, "RCPT TO"):
				srv.rcpt = strings.Trim(strings.TrimPrefix(cmd[len("RCPT TO:"):], " "), "<>")
				write("250 ok")
			case upper == "DATA":
				write("354 go ahead")
				var b strings.Builder
				for {
					l, err := r.ReadString('\n')
					if err != nil {
						return
					}
					if l == ".\r\n" {
						break
					}
					b.WriteString(l)
				}
				srv.data = b.String()
				write("250 queued")
			case upper == "QUIT":
				write("221 bye")
				return
			default:
				write("502 unsupported")
			}
		}
	}()
	return srv
}

func (s *fakeSMTPServer) wait() {
	s.wg.Wait()
}
