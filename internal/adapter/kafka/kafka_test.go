package kafka

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/couchcryptid/snotel-shef-etl/internal/config"
	"github.com/couchcryptid/snotel-shef-etl/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSerializeToMessage(t *testing.T) {
	created := time.Date(2024, 11, 1, 15, 10, 0, 0, time.UTC)
	delta := domain.PublishedDelta{
		Name:     "snotel_scraped_HOURLY.20241101_151000.shef",
		Duration: domain.Hourly,
		Format:   domain.FormatSHEF,
		Lines: []string{
			"TTAA00 KPTR 011510",
			"snotelWeb",
			".AR CLJW1 20241101 Z DH1300/DUE /SWIRBZZ 12.3",
		},
		CreatedAt: created,
	}

	msg := serializeToMessage(delta)

	assert.Equal(t, []byte(delta.Name), msg.Key)
	assert.Equal(t, "TTAA00 KPTR 011510\nsnotelWeb\n.AR CLJW1 20241101 Z DH1300/DUE /SWIRBZZ 12.3", string(msg.Value))
	require.Len(t, msg.Headers, 3)
	assert.Equal(t, kafkago.Header{Key: "duration", Value: []byte("HOURLY")}, msg.Headers[0])
	assert.Equal(t, kafkago.Header{Key: "format", Value: []byte("shef")}, msg.Headers[1])
	assert.Equal(t, "created_at", msg.Headers[2].Key)
	assert.Equal(t, []byte(created.Format(time.RFC3339)), msg.Headers[2].Value)
}

func TestSerializeToMessage_CreatedAtInUTC(t *testing.T) {
	pst := time.FixedZone("PST", -8*3600)
	delta := domain.PublishedDelta{
		Name:      "d.csv",
		Format:    domain.FormatCSV,
		CreatedAt: time.Date(2024, 11, 1, 7, 0, 0, 0, pst),
	}

	msg := serializeToMessage(delta)
	assert.Equal(t, "2024-11-01T15:00:00Z", string(msg.Headers[2].Value))
}

func TestNewWriter_UsesConfiguredTopic(t *testing.T) {
	cfg := &config.Config{
		KafkaBrokers: []string{"localhost:9092"},
		KafkaTopic:   "snotel-shef",
	}

	w := NewWriter(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	t.Cleanup(func() { _ = w.Close() })

	assert.Equal(t, "snotel-shef", w.writer.Topic)
	assert.Equal(t, kafkago.RequireAll, w.writer.RequiredAcks)
}
