package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/SultanAlanazie/stock-market-dashboard/internal/models"
	"github.com/SultanAlanazie/stock-market-dashboard/internal/table"
)

// messageWriter is the subset of *kafka.Writer the producer needs
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer handles publishing pipeline events to Kafka
type Producer struct {
	writer messageWriter
	topic  string
	source string
}

// NewProducer creates a new Kafka producer
func NewProducer(brokers []string, topic string) *Producer {
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.LeastBytes{},
		BatchTimeout:           10 * time.Millisecond,
		AllowAutoTopicCreation: true,
	}

	return &Producer{
		writer: writer,
		topic:  topic,
		source: "stockdash",
	}
}

// PublishPricesFetched announces a completed acquisition run
func (p *Producer) PublishPricesFetched(ctx context.Context, provider string, tickers, failed []string, rows int) error {
	event := models.PipelineEvent{
		EventType: models.EventPricesFetched,
		Source:    provider,
		Tickers:   tickers,
		Failed:    failed,
		Rows:      rows,
		Timestamp: time.Now().UTC(),
	}
	return p.publish(ctx, models.EventPricesFetched, event)
}

// PublishMetricsRebuilt announces that both output tables were replaced
func (p *Producer) PublishMetricsRebuilt(ctx context.Context, res models.RunResult) error {
	event := models.PipelineEvent{
		EventType:   models.EventMetricsRebuilt,
		Source:      p.source,
		Tickers:     res.Tickers,
		Rows:        res.Rows,
		CurrentYear: res.CurrentYear,
		Timestamp:   time.Now().UTC(),
	}
	if !res.LatestDate.IsZero() {
		event.LatestDate = res.LatestDate.Format(table.DateLayout)
	}
	return p.publish(ctx, models.EventMetricsRebuilt, event)
}

func (p *Producer) publish(ctx context.Context, key string, event models.PipelineEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(key),
		Value: data,
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to write message to kafka: %w", err)
	}

	return nil
}

// Close closes the Kafka producer
func (p *Producer) Close() error {
	return p.writer.Close()
}
