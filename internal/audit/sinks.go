package audit

import (
	"context"
	"time"

	"github.com/angelmondragon/accounts-backend/internal/users"
	"github.com/angelmondragon/accounts-backend/pkg/logger"
	"github.com/angelmondragon/accounts-backend/pkg/pubsub"
	"go.uber.org/multierr"
)

const eventType = "user.audit"

// LogSink writes one structured log entry per event.
type LogSink struct {
	logg *logger.Logger
}

func NewLogSink(logg *logger.Logger) *LogSink {
	if logg == nil {
		logg = logger.Nop()
	}
	return &LogSink{logg: logg}
}

func (s *LogSink) Record(ctx context.Context, events ...users.AuditEvent) error {
	for _, e := range events {
		s.logg.Info(s.logg.WithFields(ctx, map[string]any{
			"actor_id":    e.ActorID,
			"target_id":   e.TargetID,
			"field":       e.Field,
			"from":        e.From,
			"to":          e.To,
			"occurred_at": e.OccurredAt.Format(time.RFC3339Nano),
		}), eventType)
	}
	return nil
}

// PubSubSink publishes each event as a JSON message.
type PubSubSink struct {
	pub pubsub.JSONPublisher
}

func NewPubSubSink(pub pubsub.JSONPublisher) *PubSubSink {
	return &PubSubSink{pub: pub}
}

type message struct {
	Type string `json:"type"`
	users.AuditEvent
}

func (s *PubSubSink) Record(ctx context.Context, events ...users.AuditEvent) error {
	var errs error
	for _, e := range events {
		attrs := map[string]string{"type": eventType, "field": e.Field, "target_id": e.TargetID}
		if _, err := s.pub.PublishJSON(ctx, message{Type: eventType, AuditEvent: e}, attrs); err != nil {
			errs = multierr.Append(errs, err)
		}
	}
	return errs
}

// Multi fans events out to every sink and combines their errors.
type Multi []users.AuditSink

func (m Multi) Record(ctx context.Context, events ...users.AuditEvent) error {
	var errs error
	for _, sink := range m {
		if sink == nil {
			continue
		}
		errs = multierr.Append(errs, sink.Record(ctx, events...))
	}
	return errs
}
