package journal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/pubsub/v2"
	"github.com/rs/zerolog"
)

// Consumer receives journal messages and stores them.
type Consumer struct {
	client           *pubsub.Client
	subscriber       *pubsub.Subscriber
	subscriptionName string
	processor        *Processor
	logger           zerolog.Logger
}

// ConsumerConfig holds configuration for the Pub/Sub consumer.
type ConsumerConfig struct {
	ProjectID        string
	SubscriptionName string
	Repository       Repository
	Logger           zerolog.Logger

	// MaxOutstandingMessages bounds in-flight messages. Default: 10.
	MaxOutstandingMessages int
}

// NewConsumer creates a new Pub/Sub consumer.
func NewConsumer(ctx context.Context, cfg ConsumerConfig) (*Consumer, error) {
	client, err := pubsub.NewClient(ctx, cfg.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("creating pubsub client: %w", err)
	}

	if cfg.MaxOutstandingMessages <= 0 {
		cfg.MaxOutstandingMessages = 10
	}

	subscriber := client.Subscriber(cfg.SubscriptionName)
	subscriber.ReceiveSettings.MaxOutstandingMessages = cfg.MaxOutstandingMessages
	subscriber.ReceiveSettings.MaxExtension = 10 * time.Minute

	return &Consumer{
		client:           client,
		subscriber:       subscriber,
		subscriptionName: cfg.SubscriptionName,
		processor:        NewProcessor(cfg.Repository, cfg.Logger),
		logger:           cfg.Logger,
	}, nil
}

// Start receives messages until ctx is cancelled.
func (c *Consumer) Start(ctx context.Context) error {
	c.logger.Info().
		Str("subscription", c.subscriptionName).
		Msg("starting journal consumer")

	return c.subscriber.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		logger := c.logger.With().
			Str("message_id", msg.ID).
			Str("publish_time", msg.PublishTime.Format(time.RFC3339)).
			Logger()

		if c.processor.Process(logger.WithContext(ctx), msg.Data) == Retry {
			msg.Nack()
			return
		}
		msg.Ack()
	})
}

// Close closes the Pub/Sub client.
func (c *Consumer) Close() error {
	return c.client.Close()
}

// Outcome tells the transport what to do with a message.
type Outcome int

const (
	// Ack removes the message: it was stored, or can never be.
	Ack Outcome = iota
	// Retry asks for redelivery after a transient failure.
	Retry
)

// Processor decodes and stores journal messages independently of the transport.
type Processor struct {
	repo   Repository
	logger zerolog.Logger
}

// NewProcessor creates a processor writing to repo.
func NewProcessor(repo Repository, logger zerolog.Logger) *Processor {
	return &Processor{repo: repo, logger: logger}
}

// Process handles one message payload. Undecodable or invalid payloads are
// acknowledged and dropped; storage failures are retried.
func (p *Processor) Process(ctx context.Context, data []byte) Outcome {
	logger := p.logger
	if l := zerolog.Ctx(ctx); l.GetLevel() != zerolog.Disabled {
		logger = *l
	}

	start := time.Now()

	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		logger.Error().Err(err).Msg("failed to parse journal message")
		return Ack
	}
	if err := entry.Validate(); err != nil {
		logger.Warn().Err(err).Str("entry_id", entry.ID).Msg("dropping journal message")
		return Ack
	}

	if err := p.repo.Save(ctx, &entry); err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Debug().Err(err).Msg("journal save interrupted")
		} else {
			logger.Error().Err(err).Str("entry_id", entry.ID).Msg("failed to store journal entry")
		}
		return Retry
	}

	logger.Info().
		Str("entry_id", entry.ID).
		Int64("boarding_stop_id", entry.BoardingStopID).
		Int64("alighting_stop_id", entry.AlightingStopID).
		Dur("duration", time.Since(start)).
		Msg("journal entry stored")
	return Ack
}
