package pubsub

import (
	"context"
	"time"

	"cloud.google.com/go/pubsub"
	"github.com/charmbracelet/log"
	"github.com/vmihailenco/msgpack/v5"
)

const publishTimeout = 15 * time.Second

// New creates a Pub/Sub client for the given project. An empty projectID
// returns a no-op client so local runs need no GCP credentials.
func New(projectID string) PubSubClient {
	if projectID == "" {
		log.Info("No GCP project configured, events will not be published")
		return NewNoop()
	}
	ctx := context.Background()
	pubSubC, err := pubsub.NewClient(ctx, projectID)
	if err != nil {
		log.Fatalf("Failed to create client: %v", err)
	}

	c := &client{
		client: pubSubC,
		topics: make(map[string]*pubsub.Topic),
	}
	c.teardown = func() {
		c.mu.Lock()
		for _, t := range c.topics {
			t.Stop()
		}
		c.mu.Unlock()
		pubSubC.Close()
	}
	return c
}

// topic returns a cached topic handle so repeated publishes to the same event
// stream reuse one batching goroutine.
func (c *client) topic(name string) *pubsub.Topic {
	c.mu.Lock()
	defer c.mu.Unlock()
	t, ok := c.topics[name]
	if !ok {
		t = c.client.Topic(name)
		c.topics[name] = t
	}
	return t
}

func (c *client) SendMessage(topic string, data any) error {
	payload, err := msgpack.Marshal(data)
	if err != nil {
		log.Error("MessagePack marshal error", "error", err, "topic", topic)
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()

	result := c.topic(topic).Publish(ctx, &pubsub.Message{Data: payload})
	serverID, err := result.Get(ctx)
	if err != nil {
		log.Error("Failed to publish message", "error", err, "topic", topic)
		return err
	}
	log.Info("Published event", "topic", topic, "serverID", serverID)
	return nil
}

func (c *client) Close() {
	c.teardown()
}

func (c *client) ProcessMessage(data []byte, returnValue any) error {
	if err := msgpack.Unmarshal(data, returnValue); err != nil {
		log.Error("MessagePack unmarshal error", "error", err)
		return err
	}
	return nil
}
