package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/couchcryptid/cityinfo-etl/internal/config"
	"github.com/couchcryptid/cityinfo-etl/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
)

// Writer publishes catalog entries to a Kafka topic, one message per district.
// It implements pipeline.CatalogLoader.
type Writer struct {
	writer *kafkago.Writer
	runID  string
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured catalog topic.
func NewWriter(cfg *config.Config, runID string, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, runID: runID, logger: logger}
}

// LoadCatalog serializes and publishes every district in a single
// WriteMessages call. Messages are keyed by weather code so repeated runs
// compact onto the same keys.
func (w *Writer) LoadCatalog(ctx context.Context, catalog domain.Catalog) error {
	if len(catalog) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(catalog))
	for i := range catalog {
		msg, err := serializeToMessage(catalog[i], w.runID)
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("publish catalog: %w", err)
	}
	w.logger.Info("catalog published", "topic", w.writer.Topic, "messages", len(msgs))
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals a District into a Kafka message.
func serializeToMessage(d domain.District, runID string) (kafkago.Message, error) {
	data, err := json.Marshal(d)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize district: %w", err)
	}
	headers := []kafkago.Header{
		{Key: "run_id", Value: []byte(runID)},
	}
	if d.Province != "" {
		headers = append(headers, kafkago.Header{Key: "province", Value: []byte(d.Province)})
	}
	return kafkago.Message{
		Key:     []byte(d.ID),
		Value:   data,
		Headers: headers,
	}, nil
}
