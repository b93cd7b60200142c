package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/angelmondragon/accounts-backend/internal/users"
	"github.com/angelmondragon/accounts-backend/pkg/logger"
	"go.uber.org/multierr"
)

func sampleEvents() []users.AuditEvent {
	at := time.Date(2024, time.June, 15, 10, 0, 0, 0, time.UTC)
	return []users.AuditEvent{
		{ActorID: "boss", TargetID: "u1", Field: users.AuditFieldRole, From: "user", To: "admin", OccurredAt: at},
		{ActorID: "boss", TargetID: "u1", Field: users.AuditFieldStatus, From: "active", To: "suspended", OccurredAt: at},
	}
}

func TestLogSinkWritesOneEntryPerEvent(t *testing.T) {
	var buf bytes.Buffer
	sink := NewLogSink(logger.New(logger.Options{ServiceName: "test", Output: &buf}))

	if err := sink.Record(context.Background(), sampleEvents()...); err != nil {
		t.Fatalf("record: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 log lines, got %d: %s", len(lines), buf.String())
	}
	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("decode log line: %v", err)
	}
	if entry["message"] != "user.audit" || entry["field"] != "role" || entry["actor_id"] != "boss" || entry["to"] != "admin" {
		t.Fatalf("unexpected entry %v", entry)
	}
}

func TestPubSubSinkPublishesJSON(t *testing.T) {
	pub := &fakePublisher{}
	sink := NewPubSubSink(pub)

	if err := sink.Record(context.Background(), sampleEvents()...); err != nil {
		t.Fatalf("record: %v", err)
	}
	if len(pub.payloads) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(pub.payloads))
	}

	raw, _ := json.Marshal(pub.payloads[1])
	var body map[string]any
	if err := json.Unmarshal(raw, &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["type"] != "user.audit" || body["field"] != "status" || body["from"] != "active" || body["targetId"] != "u1" {
		t.Fatalf("unexpected payload %s", raw)
	}
	if pub.attrs[1]["field"] != "status" {
		t.Fatalf("unexpected attributes %v", pub.attrs[1])
	}
}

func TestPubSubSinkCombinesErrors(t *testing.T) {
	sink := NewPubSubSink(&fakePublisher{err: errors.New("unavailable")})
	err := sink.Record(context.Background(), sampleEvents()...)
	if got := len(multierr.Errors(err)); got != 2 {
		t.Fatalf("expected 2 combined errors, got %d (%v)", got, err)
	}
}

func TestMultiFansOut(t *testing.T) {
	a, b := &countingSink{}, &countingSink{err: errors.New("b failed")}
	m := Multi{a, nil, b}

	err := m.Record(context.Background(), sampleEvents()...)
	if err == nil || !strings.Contains(err.Error(), "b failed") {
		t.Fatalf("expected b's error, got %v", err)
	}
	if a.n != 2 || b.n != 2 {
		t.Fatalf("expected both sinks to receive 2 events, got %d and %d", a.n, b.n)
	}
}

type fakePublisher struct {
	payloads []any
	attrs    []map[string]string
	err      error
}

func (f *fakePublisher) PublishJSON(_ context.Context, payload any, attrs map[string]string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.payloads = append(f.payloads, payload)
	f.attrs = append(f.attrs, attrs)
	return "id", nil
}

type countingSink struct {
	n   int
	err error
}

func (c *countingSink) Record(_ context.Context, events ...users.AuditEvent) error {
	c.n += len(events)
	return c.err
}
