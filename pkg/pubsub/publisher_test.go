package pubsub

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	pubsub "cloud.google.com/go/pubsub/v2"
)

func TestTopicPublisher_PublishJSON(t *testing.T) {
	fake := &fakePublisher{result: fakePublishResult{id: "msg-1"}}
	p := NewTopicPublisher("audit", fake)

	id, err := p.PublishJSON(context.Background(), map[string]string{"field": "role"}, map[string]string{"type": "user.audit"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != "msg-1" {
		t.Fatalf("expected msg-1, got %q", id)
	}
	if len(fake.messages) != 1 {
		t.Fatalf("expected one message, got %d", len(fake.messages))
	}

	var body map[string]string
	if err := json.Unmarshal(fake.messages[0].Data, &body); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if body["field"] != "role" || fake.messages[0].Attributes["type"] != "user.audit" {
		t.Fatalf("unexpected message %+v", fake.messages[0])
	}
}

func TestTopicPublisher_Errors(t *testing.T) {
	p := NewTopicPublisher("audit", &fakePublisher{result: fakePublishResult{err: errors.New("unavailable")}})
	if _, err := p.PublishJSON(context.Background(), struct{}{}, nil); err == nil {
		t.Fatal("expected publish error")
	}

	if _, err := NewTopicPublisher("audit", nil).PublishJSON(context.Background(), struct{}{}, nil); err == nil {
		t.Fatal("expected error for missing publisher")
	}

	if _, err := NewTopicPublisher("audit", &fakePublisher{}).PublishJSON(context.Background(), func() {}, nil); err == nil {
		t.Fatal("expected marshal error")
	}
}

func TestTopicResourceName(t *testing.T) {
	c := &Client{projectID: "acme"}
	if got := c.topicResourceName("welcome"); got != "projects/acme/topics/welcome" {
		t.Fatalf("unexpected name %q", got)
	}
	if got := c.topicResourceName("projects/other/topics/x"); got != "projects/other/topics/x" {
		t.Fatalf("full resource names should pass through, got %q", got)
	}
	if got := c.topicResourceName("  "); got != "" {
		t.Fatalf("expected empty for blank, got %q", got)
	}
}

type fakePublisher struct {
	messages []*pubsub.Message
	result   fakePublishResult
}

func (f *fakePublisher) Publish(_ context.Context, msg *pubsub.Message) publishResult {
	f.messages = append(f.messages, msg)
	return f.result
}

type fakePublishResult struct {
	id  string
	err error
}

func (f fakePublishResult) Get(context.Context) (string, error) {
	return f.id, f.err
}
