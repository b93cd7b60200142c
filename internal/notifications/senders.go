package notifications

import (
	"bytes"
	"context"
	"fmt"
	"html/template"

	"github.com/angelmondragon/accounts-backend/pkg/logger"
	"github.com/angelmondragon/accounts-backend/pkg/mailer"
	"github.com/angelmondragon/accounts-backend/pkg/pubsub"
)

const (
	WelcomeSubject   = "Welcome to Our Platform!"
	WelcomeEventType = "user.welcome"
)

var welcomeTemplate = template.Must(template.New("welcome").Parse(`<h1>Welcome, {{.DisplayName}}!</h1>
<p>Thank you for registering with us. We are excited to have you on board!</p>
<p>If you have any questions, feel free to reply to this email.</p>
<br/>
<p>Best regards,<br/>The Team</p>`))

func renderWelcome(displayName string) (string, error) {
	var buf bytes.Buffer
	if err := welcomeTemplate.Execute(&buf, struct{ DisplayName string }{displayName}); err != nil {
		return "", fmt.Errorf("render welcome email: %w", err)
	}
	return buf.String(), nil
}

type mailSender interface {
	Send(ctx context.Context, msg mailer.Message) error
}

// EmailSender mails the HTML welcome message.
type EmailSender struct {
	mail mailSender
}

func NewEmailSender(mail mailSender) *EmailSender {
	return &EmailSender{mail: mail}
}

func (s *EmailSender) SendWelcome(ctx context.Context, email, displayName string) error {
	body, err := renderWelcome(displayName)
	if err != nil {
		return err
	}
	return s.mail.Send(ctx, mailer.Message{To: email, Subject: WelcomeSubject, HTML: body})
}

type welcomeMessage struct {
	Type        string `json:"type"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
}

// PubSubSender hands the welcome off to a downstream mail worker.
type PubSubSender struct {
	pub pubsub.JSONPublisher
}

func NewPubSubSender(pub pubsub.JSONPublisher) *PubSubSender {
	return &PubSubSender{pub: pub}
}

func (s *PubSubSender) SendWelcome(ctx context.Context, email, displayName string) error {
	msg := welcomeMessage{Type: WelcomeEventType, Email: email, DisplayName: displayName}
	if _, err := s.pub.PublishJSON(ctx, msg, map[string]string{"type": WelcomeEventType}); err != nil {
		return fmt.Errorf("publish welcome: %w", err)
	}
	return nil
}

// LogSender only logs what would have been sent.
type LogSender struct {
	logg *logger.Logger
}

func NewLogSender(logg *logger.Logger) *LogSender {
	if logg == nil {
		logg = logger.Nop()
	}
	return &LogSender{logg: logg}
}

func (s *LogSender) SendWelcome(ctx context.Context, email, displayName string) error {
	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"to":           email,
		"display_name": displayName,
		"subject":      WelcomeSubject,
	}), "notification.welcome.logged")
	return nil
}
