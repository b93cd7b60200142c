package pubsub

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	pubsub "cloud.google.com/go/pubsub/v2"
)

const defaultPublishTimeout = 15 * time.Second

// JSONPublisher is the publish surface consumed by notification and audit code.
type JSONPublisher interface {
	PublishJSON(ctx context.Context, payload any, attrs map[string]string) (string, error)
}

type publisher interface {
	Publish(context.Context, *pubsub.Message) publishResult
}

type publishResult interface {
	Get(context.Context) (string, error)
}

// TopicPublisher marshals payloads to JSON and waits for the server ack.
type TopicPublisher struct {
	topic   string
	pub     publisher
	timeout time.Duration
}

func NewTopicPublisher(topic string, pub publisher) *TopicPublisher {
	return &TopicPublisher{topic: topic, pub: pub, timeout: defaultPublishTimeout}
}

// PublishJSON publishes payload and returns the server-assigned message id.
func (p *TopicPublisher) PublishJSON(ctx context.Context, payload any, attrs map[string]string) (string, error) {
	if p == nil || p.pub == nil {
		return "", errors.New("pubsub publisher not configured")
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal %s payload: %w", p.topic, err)
	}

	publishCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	id, err := p.pub.Publish(publishCtx, &pubsub.Message{Data: data, Attributes: attrs}).Get(publishCtx)
	if err != nil {
		return "", fmt.Errorf("publish to %s: %w", p.topic, err)
	}
	return id, nil
}

func wrapPublisher(p *pubsub.Publisher) publisher {
	if p == nil {
		return nil
	}
	return &gcpPublisher{Publisher: p}
}

type gcpPublisher struct {
	*pubsub.Publisher
}

func (p *gcpPublisher) Publish(ctx context.Context, msg *pubsub.Message) publishResult {
	return p.Publisher.Publish(ctx, msg)
}
