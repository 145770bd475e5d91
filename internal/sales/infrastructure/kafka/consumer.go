package kafka

import (
	"context"
	"log/slog"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/salesflow/sales-api/internal/sales/application"
	"github.com/salesflow/sales-api/pkg/idempotency"
	"github.com/salesflow/sales-api/pkg/tracing"
)

// Consumer feeds sales-confirmation messages to the reconciler. The reconciler
// absorbs every failure, so offsets are always committed: a malformed or
// unknown message is dropped, never retried.
type Consumer struct {
	log        *slog.Logger
	reader     *kafka.Reader
	reconciler *application.Reconciler
	idem       *idempotency.Store
	tracer     trace.Tracer
}

func NewConsumer(log *slog.Logger, brokers []string, topic, group string, reconciler *application.Reconciler, idem *idempotency.Store) *Consumer {
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers: brokers,
		Topic:   topic,
		GroupID: group,
	})
	return &Consumer{
		log:        log,
		reader:     r,
		reconciler: reconciler,
		idem:       idem,
		tracer:     otel.Tracer("sales-confirmation-consumer"),
	}
}

func (c *Consumer) Run(ctx context.Context) error {
	defer c.reader.Close()

	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			return err
		}

		key := c.idem.Key(msg.Topic, msg.Partition, msg.Offset)
		seen, err := c.idem.Seen(ctx, key)
		if err != nil {
			c.log.Error("idempotency check failed", "err", err)
			continue
		}
		if seen {
			c.log.Info("duplicate message skipped", "key", key)
			_ = c.reader.CommitMessages(ctx, msg)
			continue
		}

		msgCtx := tracing.ExtractKafkaHeaders(ctx, msg.Headers)
		msgCtx, span := c.tracer.Start(msgCtx, "ConsumeSalesConfirmation")
		c.reconciler.HandleMessage(msgCtx, msg.Value)
		span.End()

		_ = c.reader.CommitMessages(ctx, msg)
	}
}
