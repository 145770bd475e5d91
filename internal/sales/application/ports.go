package application

import (
	"context"
	"errors"

	"github.com/salesflow/sales-api/internal/sales/domain"
)

// ErrOrderNotFound is the absent signal repositories return from lookups.
var ErrOrderNotFound = errors.New("order not found")

type OrderRepository interface {
	// Save persists the order and returns it with the store-assigned id.
	// Saving an order that already has an id updates the existing row.
	Save(ctx context.Context, o domain.Order) (domain.Order, error)
	FindByID(ctx context.Context, id string) (domain.Order, error)
	FindAll(ctx context.Context) ([]domain.Order, error)
	FindByProductID(ctx context.Context, productID string) ([]domain.Order, error)
}

// StockResult is the tri-state outcome of a stock check. The orchestrator
// blocks creation on both non-available states but logs them apart.
type StockResult int

const (
	StockAvailable StockResult = iota
	StockUnavailable
	StockUnreachable
)

type StockChecker interface {
	CheckStock(ctx context.Context, products []domain.Product, token, transactionID string) StockResult
}

type EventPublisher interface {
	// PublishStockUpdate is best-effort: the order is already committed when
	// it runs, so callers log a returned error and move on.
	PublishStockUpdate(ctx context.Context, event domain.StockUpdateEvent) error
}
