package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/genbank-curate/internal/config"
	"github.com/couchcryptid/genbank-curate/internal/domain"
	"github.com/couchcryptid/genbank-curate/internal/observability"
	"github.com/jonboulle/clockwork"
	kafkago "github.com/segmentio/kafka-go"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Writer publishes curated records to a Kafka topic in batches.
// It implements pipeline.Loader.
type Writer struct {
	writer    messageWriter
	batchSize int
	pending   []kafkago.Message
	clock     clockwork.Clock
	metrics   *observability.Metrics
	logger    *slog.Logger
}

// NewWriter creates a Kafka producer for the configured topic.
func NewWriter(cfg *config.Config, metrics *observability.Metrics, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
		BatchSize:    cfg.KafkaBatchSize,
	}
	return newWriter(w, cfg.KafkaBatchSize, clockwork.NewRealClock(), metrics, logger)
}

func newWriter(mw messageWriter, batchSize int, clock clockwork.Clock, metrics *observability.Metrics, logger *slog.Logger) *Writer {
	if batchSize < 1 {
		batchSize = 1
	}
	return &Writer{
		writer:    mw,
		batchSize: batchSize,
		pending:   make([]kafkago.Message, 0, batchSize),
		clock:     clock,
		metrics:   metrics,
		logger:    logger,
	}
}

// Load queues rec and publishes the queue once it reaches the batch size.
func (w *Writer) Load(ctx context.Context, rec domain.OutputRecord) error {
	msg, err := serializeToMessage(rec, w.clock.Now())
	if err != nil {
		return err
	}
	w.pending = append(w.pending, msg)
	if len(w.pending) < w.batchSize {
		return nil
	}
	return w.Flush(ctx)
}

// Flush publishes all queued records in a single WriteMessages call.
func (w *Writer) Flush(ctx context.Context) error {
	if len(w.pending) == 0 {
		return nil
	}
	if err := w.writer.WriteMessages(ctx, w.pending...); err != nil {
		return fmt.Errorf("publish %d records: %w", len(w.pending), err)
	}
	w.metrics.RecordsPublished.Add(float64(len(w.pending)))
	w.logger.Debug("published batch", "records", len(w.pending))
	w.pending = w.pending[:0]
	return nil
}

// Close publishes any queued records and closes the producer.
func (w *Writer) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return errors.Join(w.Flush(ctx), w.writer.Close())
}

// serializeToMessage marshals an OutputRecord into a Kafka message keyed by
// strain ID.
func serializeToMessage(rec domain.OutputRecord, curatedAt time.Time) (kafkago.Message, error) {
	data, err := json.Marshal(rec)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize record %s: %w", rec.Strain, err)
	}
	return kafkago.Message{
		Key:   []byte(rec.Strain),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "virus", Value: []byte(rec.Virus)},
			{Key: "curated_at", Value: []byte(curatedAt.UTC().Format(time.RFC3339))},
		},
	}, nil
}
