package pubsub

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	gcppubsub "cloud.google.com/go/pubsub/v2"
	"cloud.google.com/go/pubsub/v2/apiv1/pubsubpb"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/angelmondragon/storefront-backend/pkg/config"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
)

var errNotInitialized = errors.New("pubsub client not initialized")

// Message is one publish request. A non-empty OrderingKey keeps messages
// with the same key in publish order.
type Message struct {
	Data        []byte
	Attributes  map[string]string
	OrderingKey string
}

// Result resolves to the server-assigned message id.
type Result interface {
	Get(ctx context.Context) (string, error)
}

// Client publishes storefront events. One publisher per topic is kept so
// batching and ordering state survive across calls.
type Client struct {
	client    *gcppubsub.Client
	projectID string
	topic     string

	mu         sync.Mutex
	publishers map[string]*gcppubsub.Publisher
}

// NewClient connects to Pub/Sub (or the emulator named by
// PUBSUB_EMULATOR_HOST) and fails when the orders topic is missing.
func NewClient(ctx context.Context, gcp config.GCPConfig, cfg config.PubSubConfig, logg *logger.Logger) (*Client, error) {
	projectID := strings.TrimSpace(gcp.ProjectID)
	if projectID == "" {
		return nil, errors.New("gcp project id is required")
	}
	topic := strings.TrimSpace(cfg.OrdersTopic)
	if topic == "" {
		return nil, errors.New("pubsub orders topic is required")
	}

	raw, err := gcppubsub.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("create pubsub client: %w", err)
	}
	c := &Client{
		client:     raw,
		projectID:  projectID,
		topic:      topic,
		publishers: map[string]*gcppubsub.Publisher{},
	}
	if err := c.topicExists(ctx, topic); err != nil {
		_ = raw.Close()
		return nil, err
	}
	if logg != nil {
		logg.Info(logg.WithFields(ctx, map[string]any{"project": projectID, "topic": topic}), "pubsub client ready")
	}
	return c, nil
}

func (c *Client) topicExists(ctx context.Context, topic string) error {
	name := TopicResourceName(c.projectID, topic)
	if name == "" {
		return fmt.Errorf("topic %q not configured", topic)
	}
	_, err := c.client.TopicAdminClient.GetTopic(ctx, &pubsubpb.GetTopicRequest{Topic: name})
	switch {
	case status.Code(err) == codes.NotFound:
		return fmt.Errorf("topic %s does not exist", name)
	case err != nil:
		return fmt.Errorf("get topic %s: %w", name, err)
	}
	return nil
}

func (c *Client) publisher(topic string) (*gcppubsub.Publisher, error) {
	name := TopicResourceName(c.projectID, topic)
	if name == "" {
		return nil, fmt.Errorf("topic %q not configured", topic)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if p, ok := c.publishers[name]; ok {
		return p, nil
	}
	p := c.client.Publisher(name)
	p.EnableMessageOrdering = true
	c.publishers[name] = p
	return p, nil
}

// Publish queues msg on topic. The returned Result must be waited on; a
// failed ordered publish resumes its key so later messages are not stuck.
func (c *Client) Publish(ctx context.Context, topic string, msg Message) Result {
	if c == nil || c.client == nil {
		return failed{errNotInitialized}
	}
	p, err := c.publisher(topic)
	if err != nil {
		return failed{err}
	}
	res := p.Publish(ctx, &gcppubsub.Message{
		Data:        msg.Data,
		Attributes:  msg.Attributes,
		OrderingKey: msg.OrderingKey,
	})
	return &orderedResult{res: res, pub: p, key: msg.OrderingKey}
}

type orderedResult struct {
	res *gcppubsub.PublishResult
	pub *gcppubsub.Publisher
	key string
}

func (r *orderedResult) Get(ctx context.Context) (string, error) {
	id, err := r.res.Get(ctx)
	if err != nil && r.key != "" {
		r.pub.ResumePublish(r.key)
	}
	return id, err
}

type failed struct{ err error }

func (f failed) Get(context.Context) (string, error) { return "", f.err }

// Ping checks the orders topic is still reachable.
func (c *Client) Ping(ctx context.Context) error {
	if c == nil || c.client == nil {
		return errNotInitialized
	}
	return c.topicExists(ctx, c.topic)
}

// Stop flushes pending messages on every publisher opened so far.
func (c *Client) Stop() {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for name, p := range c.publishers {
		p.Stop()
		delete(c.publishers, name)
	}
}

func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	c.Stop()
	return c.client.Close()
}

// TopicResourceName expands a topic id into projects/<p>/topics/<id>; full
// resource names pass through unchanged.
func TopicResourceName(projectID, topic string) string {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return ""
	}
	if strings.HasPrefix(topic, "projects/") && strings.Contains(topic, "/topics/") {
		return topic
	}
	projectID = strings.TrimSpace(projectID)
	if projectID == "" {
		return ""
	}
	return "projects/" + projectID + "/topics/" + topic
}
