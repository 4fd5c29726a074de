package pubsub

import (
	"context"
	"errors"
	"testing"

	"github.com/angelmondragon/storefront-backend/pkg/config"
)

func TestTopicResourceName(t *testing.T) {
	cases := []struct {
		project, topic, want string
	}{
		{"shop", "orders", "projects/shop/topics/orders"},
		{"shop", "  orders ", "projects/shop/topics/orders"},
		{"shop", "projects/other/topics/orders", "projects/other/topics/orders"},
		{"", "orders", ""},
		{"shop", "", ""},
	}
	for _, tc := range cases {
		if got := TopicResourceName(tc.project, tc.topic); got != tc.want {
			t.Fatalf("TopicResourceName(%q, %q) = %q, want %q", tc.project, tc.topic, got, tc.want)
		}
	}
}

func TestNewClientValidatesConfig(t *testing.T) {
	ctx := context.Background()
	if _, err := NewClient(ctx, config.GCPConfig{}, config.PubSubConfig{OrdersTopic: "orders"}, nil); err == nil {
		t.Fatalf("expected project id error")
	}
	if _, err := NewClient(ctx, config.GCPConfig{ProjectID: "shop"}, config.PubSubConfig{OrdersTopic: " "}, nil); err == nil {
		t.Fatalf("expected topic error")
	}
}

func TestUninitializedClient(t *testing.T) {
	var c *Client
	ctx := context.Background()

	if _, err := c.Publish(ctx, "orders", Message{Data: []byte("{}")}).Get(ctx); !errors.Is(err, errNotInitialized) {
		t.Fatalf("expected errNotInitialized, got %v", err)
	}
	if err := c.Ping(ctx); !errors.Is(err, errNotInitialized) {
		t.Fatalf("expected errNotInitialized from ping, got %v", err)
	}
	c.Stop()
	if err := c.Close(); err != nil {
		t.Fatalf("close on nil client: %v", err)
	}
}
