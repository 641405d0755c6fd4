package journal

import (
	"context"
	"encoding/json"
	"fmt"

	"cloud.google.com/go/pubsub/v2"
	"github.com/rs/zerolog"
)

// Publisher sends journal entries to the worker.
type Publisher interface {
	Publish(ctx context.Context, entry *Entry) error
}

// NopPublisher discards entries. It is used when journaling is disabled.
type NopPublisher struct{}

// Publish does nothing.
func (NopPublisher) Publish(context.Context, *Entry) error { return nil }

// PubSubPublisher publishes entries as JSON messages.
type PubSubPublisher struct {
	client    *pubsub.Client
	publisher *pubsub.Publisher
	topic     string
	logger    zerolog.Logger
}

// PubSubPublisherConfig holds configuration for the Pub/Sub publisher.
type PubSubPublisherConfig struct {
	ProjectID string
	Topic     string
	Logger    zerolog.Logger
}

// NewPubSubPublisher creates a Pub/Sub publisher for the journal topic.
func NewPubSubPublisher(ctx context.Context, cfg PubSubPublisherConfig) (*PubSubPublisher, error) {
	client, err := pubsub.NewClient(ctx, cfg.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("creating pubsub client: %w", err)
	}

	return &PubSubPublisher{
		client:    client,
		publisher: client.Publisher(cfg.Topic),
		topic:     cfg.Topic,
		logger:    cfg.Logger,
	}, nil
}

// Publish sends an entry and waits for the server to acknowledge it.
func (p *PubSubPublisher) Publish(ctx context.Context, entry *Entry) error {
	data, err := encode(entry)
	if err != nil {
		return err
	}

	result := p.publisher.Publish(ctx, &pubsub.Message{
		Data: data,
		Attributes: map[string]string{
			"entry_id":   entry.ID,
			"request_id": entry.RequestID,
		},
	})

	serverID, err := result.Get(ctx)
	if err != nil {
		return fmt.Errorf("publish journal entry to %s: %w", p.topic, err)
	}

	p.logger.Debug().
		Str("entry_id", entry.ID).
		Str("message_id", serverID).
		Msg("journal entry published")
	return nil
}

// Close flushes pending messages and closes the client.
func (p *PubSubPublisher) Close() error {
	p.publisher.Stop()
	return p.client.Close()
}

func encode(entry *Entry) ([]byte, error) {
	data, err := json.Marshal(entry)
	if err != nil {
		return nil, fmt.Errorf("encode journal entry: %w", err)
	}
	return data, nil
}

var (
	_ Publisher = NopPublisher{}
	_ Publisher = (*PubSubPublisher)(nil)
)
