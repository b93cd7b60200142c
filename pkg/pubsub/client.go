package pubsub

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	pubsub "cloud.google.com/go/pubsub/v2"
	"cloud.google.com/go/pubsub/v2/apiv1/pubsubpb"
	"github.com/angelmondragon/accounts-backend/pkg/config"
	"github.com/angelmondragon/accounts-backend/pkg/logger"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var errProjectIDRequired = errors.New("gcp project id is required")

// Client owns the Pub/Sub v2 connection and the publishers opened on it.
type Client struct {
	client    *pubsub.Client
	projectID string
	topics    []string

	mu         sync.Mutex
	publishers map[string]*pubsub.Publisher
}

// NewClient creates a Pub/Sub v2 client and verifies that every configured
// topic exists.
func NewClient(ctx context.Context, gcp config.GCPConfig, cfg config.PubSubConfig, logg *logger.Logger) (*Client, error) {
	if strings.TrimSpace(gcp.ProjectID) == "" {
		return nil, errProjectIDRequired
	}

	psClient, err := pubsub.NewClient(ctx, gcp.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("creating pubsub client: %w", err)
	}

	c := &Client{
		client:     psClient,
		projectID:  gcp.ProjectID,
		topics:     topicNames(cfg),
		publishers: map[string]*pubsub.Publisher{},
	}

	if err := c.ensureTopicsExist(ctx); err != nil {
		_ = psClient.Close()
		return nil, err
	}

	if logg != nil {
		logg.Info(logg.WithField(ctx, "topics", c.topics), "pubsub client initialized")
	}

	return c, nil
}

func topicNames(cfg config.PubSubConfig) []string {
	names := []string{}
	for _, name := range []string{cfg.NotificationTopic, cfg.AuditTopic} {
		if trimmed := strings.TrimSpace(name); trimmed != "" {
			names = append(names, trimmed)
		}
	}
	return names
}

func (c *Client) ensureTopicsExist(ctx context.Context) error {
	for _, name := range c.topics {
		_, err := c.client.TopicAdminClient.GetTopic(ctx, &pubsubpb.GetTopicRequest{
			Topic: c.topicResourceName(name),
		})
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return fmt.Errorf("topic %q does not exist", name)
			}
			return fmt.Errorf("checking topic %q: %w", name, err)
		}
	}
	return nil
}

// Publisher returns a cached publisher handle for the given topic ID or
// resource name.
func (c *Client) Publisher(name string) *pubsub.Publisher {
	if c == nil || c.client == nil {
		return nil
	}
	fullName := c.topicResourceName(name)
	if fullName == "" {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if p, ok := c.publishers[fullName]; ok {
		return p
	}
	p := c.client.Publisher(fullName)
	c.publishers[fullName] = p
	return p
}

// Topic returns a JSON publisher bound to the named topic.
func (c *Client) Topic(name string) *TopicPublisher {
	return NewTopicPublisher(name, wrapPublisher(c.Publisher(name)))
}

// Ping verifies Pub/Sub connectivity by checking configured topics exist.
func (c *Client) Ping(ctx context.Context) error {
	if c == nil || c.client == nil {
		return errors.New("pubsub client not initialized")
	}
	return c.ensureTopicsExist(ctx)
}

// Close flushes pending messages and releases client resources.
func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	c.mu.Lock()
	for _, p := range c.publishers {
		p.Stop()
	}
	c.publishers = map[string]*pubsub.Publisher{}
	c.mu.Unlock()
	return c.client.Close()
}

func (c *Client) topicResourceName(name string) string {
	if c == nil {
		return ""
	}
	n := strings.TrimSpace(name)
	if n == "" {
		return ""
	}
	if strings.HasPrefix(n, "projects/") && strings.Contains(n, "/topics/") {
		return n
	}
	p := strings.TrimSpace(c.projectID)
	if p == "" {
		return ""
	}
	return fmt.Sprintf("projects/%s/topics/%s", p, n)
}
