package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/SultanAlanazie/stock-market-dashboard/internal/models"
	"github.com/SultanAlanazie/stock-market-dashboard/internal/slogx"
)

// Rebuilder re-runs the metrics pipeline
type Rebuilder interface {
	Rebuild(ctx context.Context) (models.RunResult, error)
}

// messageReader is the subset of *kafka.Reader the consumer needs
type messageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

// Consumer rebuilds the metrics tables whenever new prices are announced
type Consumer struct {
	reader    messageReader
	rebuilder Rebuilder
	topic     string
	log       *slog.Logger
}

// NewConsumer creates a new Kafka consumer for pipeline events
func NewConsumer(brokers []string, topic, groupID string, rebuilder Rebuilder, log *slog.Logger) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		Topic:          topic,
		GroupID:        groupID,
		MinBytes:       1,
		MaxBytes:       10e6, // 10MB
		MaxWait:        1 * time.Second,
		StartOffset:    kafka.LastOffset,
		CommitInterval: time.Second,
	})

	return &Consumer{
		reader:    reader,
		rebuilder: rebuilder,
		topic:     topic,
		log:       slogx.OrDefault(log),
	}
}

// Start begins consuming messages until ctx is cancelled
func (c *Consumer) Start(ctx context.Context) error {
	c.log.Info("starting kafka consumer", "topic", c.topic)

	for {
		select {
		case <-ctx.Done():
			c.log.Info("kafka consumer shutting down")
			return c.reader.Close()
		default:
			msg, err := c.reader.ReadMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return c.reader.Close()
				}
				c.log.Error("error reading message", "error", err)
				continue
			}

			if err := c.processMessage(ctx, msg); err != nil {
				c.log.Error("error processing message", "error", err, "offset", msg.Offset)
			}
		}
	}
}

// processMessage handles a single Kafka message. Unknown event types are
// ignored; undecodable payloads are reported and skipped by the caller.
func (c *Consumer) processMessage(ctx context.Context, msg kafka.Message) error {
	c.log.Debug("received message", "partition", msg.Partition, "offset", msg.Offset, "key", string(msg.Key))

	var event models.PipelineEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		return fmt.Errorf("failed to unmarshal pipeline event: %w", err)
	}

	if event.EventType != models.EventPricesFetched {
		c.log.Debug("ignoring event", "type", event.EventType)
		return nil
	}

	res, err := c.rebuilder.Rebuild(ctx)
	if err != nil {
		return fmt.Errorf("failed to rebuild metrics: %w", err)
	}

	c.log.Info("metrics rebuilt",
		"trigger_source", event.Source, "rows", res.Rows, "tickers", len(res.Tickers), "current_year", res.CurrentYear)
	return nil
}

// Close closes the Kafka consumer
func (c *Consumer) Close() error {
	return c.reader.Close()
}
