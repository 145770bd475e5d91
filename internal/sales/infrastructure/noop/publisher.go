package noop

import (
	"context"

	"github.com/salesflow/sales-api/internal/sales/domain"
)

// Publisher is a no-op EventPublisher used when Kafka is not configured.
type Publisher struct{}

func (Publisher) PublishStockUpdate(_ context.Context, _ domain.StockUpdateEvent) error { return nil }
