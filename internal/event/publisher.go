package event

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/VictoriaMetrics/metrics"
	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"nets-gateway/internal/config"
)

const (
	DefaultBatchSize    = 100
	DefaultBatchTimeout = 100
)

var (
	publishedCounter    = metrics.GetOrCreateCounter(`transaction_events_total{result="published"}`)
	publishErrorCounter = metrics.GetOrCreateCounter(`transaction_events_total{result="publish_failed"}`)
)

// TransactionEvent is emitted after every successful lifecycle action so
// downstream consumers (reconciliation, bookkeeping) can react.
type TransactionEvent struct {
	ID           uuid.UUID `json:"id"`
	PaymentID    uuid.UUID `json:"paymentId"`
	OrderNumber  string    `json:"orderNumber"`
	Action       string    `json:"action"`
	ResponseCode string    `json:"responseCode"`
	Amount       *int64    `json:"amount,omitempty"`
	Currency     string    `json:"currency"`
	OccurredAt   time.Time `json:"occurredAt"`
}

func NewWriter(cfg config.Kafka) *kafka.Writer {
	batchSize := cfg.Writer.BatchSize
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	batchTimeout := cfg.Writer.BatchTimeoutMs
	if batchTimeout <= 0 {
		batchTimeout = DefaultBatchTimeout
	}

	return &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Broker.URL),
		Topic:                  cfg.Topic.TransactionEvents,
		Balancer:               &kafka.ReferenceHash{},
		BatchSize:              batchSize,
		RequiredAcks:           kafka.RequireAll,
		BatchTimeout:           time.Duration(batchTimeout) * time.Millisecond,
		Async:                  false,
		AllowAutoTopicCreation: false,
	}
}

type Publisher struct {
	writer *kafka.Writer
	logger *slog.Logger
}

func NewPublisher(writer *kafka.Writer, logger *slog.Logger) *Publisher {
	return &Publisher{writer: writer, logger: logger}
}

// Publish sends the event keyed by payment id so events for one payment
// keep their order. A publish failure is logged and counted, never
// propagated: the lifecycle action already succeeded at the processor.
func (p *Publisher) Publish(ctx context.Context, event TransactionEvent) {
	value, err := json.Marshal(event)
	if err != nil {
		p.logger.ErrorContext(ctx, "Error marshalling transaction event", "error", err)
		publishErrorCounter.Inc()
		return
	}

	message := kafka.Message{
		Key:   []byte(event.PaymentID.String()),
		Value: value,
	}

	if err := p.writer.WriteMessages(ctx, message); err != nil {
		p.logger.ErrorContext(ctx, "Error publishing transaction event", "error", err, "paymentId", event.PaymentID)
		publishErrorCounter.Inc()
		return
	}

	publishedCounter.Inc()
}
