package kafka

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/salesflow/sales-api/internal/sales/domain"
	"github.com/salesflow/sales-api/pkg/tracing"
)

// Publisher writes stock-update events through a buffered inbox so callers
// never block on the broker. Write errors surface only in the log: by the time
// an event is enqueued the order is already committed.
type Publisher struct {
	log     *slog.Logger
	w       *kafka.Writer
	inbox   chan kafka.Message
	closeCh chan struct{}
}

func NewPublisher(log *slog.Logger, brokers []string, topic string, buf int) *Publisher {
	return &Publisher{
		log: log,
		w: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
		},
		inbox:   make(chan kafka.Message, buf),
		closeCh: make(chan struct{}),
	}
}

// Start runs the write loop. It exits after Close, once the remaining inbox
// has been flushed. Close must happen after the HTTP server stops accepting
// requests, otherwise an in-flight publish could hit a closed inbox.
func (p *Publisher) Start() {
	go func() {
		for m := range p.inbox {
			p.write(m)
		}
		_ = p.w.Close()
		close(p.closeCh)
	}()
}

func (p *Publisher) write(m kafka.Message) {
	if err := p.w.WriteMessages(context.Background(), m); err != nil {
		p.log.Error("stock update write failed", "key", string(m.Key), "err", err)
	}
}

func (p *Publisher) PublishStockUpdate(ctx context.Context, event domain.StockUpdateEvent) error {
	value, err := json.Marshal(event)
	if err != nil {
		return err
	}
	headers := tracing.InjectKafkaHeaders(ctx, []kafka.Header{
		{Key: "transactionid", Value: []byte(event.TransactionID)},
	})
	p.inbox <- kafka.Message{
		Key:     []byte(event.SalesID),
		Value:   value,
		Time:    time.Now(),
		Headers: headers,
	}
	return nil
}

// Close stops accepting events and lets the loop drain the inbox.
func (p *Publisher) Close() { close(p.inbox) }

// WaitClosed blocks until the write loop has exited.
func (p *Publisher) WaitClosed() { <-p.closeCh }
