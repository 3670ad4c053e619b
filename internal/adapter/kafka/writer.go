package kafka

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/couchcryptid/snotel-shef-etl/internal/config"
	"github.com/couchcryptid/snotel-shef-etl/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
)

// Writer produces published deltas to a Kafka topic.
// It implements pipeline.DeltaPublisher.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured delta topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, logger: logger}
}

// Publish writes one delta as a single message keyed by its file name.
func (w *Writer) Publish(ctx context.Context, delta domain.PublishedDelta) error {
	msg := serializeToMessage(delta)
	if err := w.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish delta %s: %w", delta.Name, err)
	}
	w.logger.Info("delta published to kafka",
		"topic", w.writer.Topic,
		"name", delta.Name,
		"lines", len(delta.Lines),
	)
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage maps a delta to a Kafka message. The value is the file
// body without its trailing newline.
func serializeToMessage(delta domain.PublishedDelta) kafkago.Message {
	return kafkago.Message{
		Key:   []byte(delta.Name),
		Value: []byte(strings.Join(delta.Lines, "\n")),
		Headers: []kafkago.Header{
			{Key: "duration", Value: []byte(delta.Duration)},
			{Key: "format", Value: []byte(delta.Format)},
			{Key: "created_at", Value: []byte(delta.CreatedAt.UTC().Format(time.RFC3339))},
		},
	}
}
