package application

import (
	"context"
	"errors"
	"log/slog"

	"github.com/salesflow/sales-api/internal/sales/domain"
)

const (
	msgProductsRequired  = "The products must be informed."
	msgStockOut          = "The stock is out for the products."
	msgOrderIDRequired   = "The order ID must be informed."
	msgOrderNotFound     = "The order was not found."
	msgNoOrdersFound     = "No orders were found."
	msgProductIDRequired = "The order's productId must be informed."
)

type CreateOrderInput struct {
	Products      []domain.Product
	User          domain.User
	Token         string
	TransactionID string
	ServiceID     string
}

// Service orchestrates the order lifecycle: stock check, durable write,
// best-effort stock-update publish, and the read operations.
type Service struct {
	log       *slog.Logger
	repo      OrderRepository
	stock     StockChecker
	publisher EventPublisher
}

func NewService(log *slog.Logger, repo OrderRepository, stock StockChecker, publisher EventPublisher) *Service {
	return &Service{log: log, repo: repo, stock: stock, publisher: publisher}
}

// CreateOrder validates the request, confirms stock synchronously, persists
// the order and then publishes the stock update. Nothing is persisted when
// validation or the stock check fails; publish failure is never surfaced
// because the order is already durable by then.
func (s *Service) CreateOrder(ctx context.Context, in CreateOrderInput) (domain.Order, error) {
	if len(in.Products) == 0 {
		return domain.Order{}, validationErr(msgProductsRequired)
	}

	order := domain.NewOrder(in.User, in.Products, in.TransactionID, in.ServiceID)

	switch s.stock.CheckStock(ctx, order.Products, in.Token, in.TransactionID) {
	case StockAvailable:
	case StockUnreachable:
		s.log.Error("stock service unreachable, refusing order", "transaction_id", in.TransactionID)
		return domain.Order{}, stockUnavailableErr(msgStockOut)
	default:
		s.log.Warn("stock unavailable for requested products", "transaction_id", in.TransactionID)
		return domain.Order{}, stockUnavailableErr(msgStockOut)
	}

	created, err := s.repo.Save(ctx, order)
	if err != nil {
		s.log.Error("order save failed", "transaction_id", in.TransactionID, "err", err)
		return domain.Order{}, persistenceErr("could not persist order", err)
	}

	event := domain.StockUpdateEvent{
		SalesID:       created.ID,
		Products:      created.Products,
		TransactionID: in.TransactionID,
	}
	if err := s.publisher.PublishStockUpdate(ctx, event); err != nil {
		s.log.Error("stock update publish failed", "order_id", created.ID, "transaction_id", in.TransactionID, "err", err)
	}

	s.log.Info("order created", "order_id", created.ID, "transaction_id", in.TransactionID, "service_id", in.ServiceID)
	return created, nil
}

func (s *Service) FindByID(ctx context.Context, id string) (domain.Order, error) {
	if id == "" {
		return domain.Order{}, validationErr(msgOrderIDRequired)
	}
	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrOrderNotFound) {
			return domain.Order{}, notFoundErr(msgOrderNotFound)
		}
		return domain.Order{}, persistenceErr("could not load order", err)
	}
	return order, nil
}

// FindAll treats an empty result set as an error. Questionable for a read
// API, but callers depend on it.
func (s *Service) FindAll(ctx context.Context) ([]domain.Order, error) {
	orders, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, persistenceErr("could not load orders", err)
	}
	if len(orders) == 0 {
		return nil, notFoundErr(msgNoOrdersFound)
	}
	return orders, nil
}

// FindByProductID returns only the ids of orders containing the product.
func (s *Service) FindByProductID(ctx context.Context, productID string) ([]string, error) {
	if productID == "" {
		return nil, validationErr(msgProductIDRequired)
	}
	orders, err := s.repo.FindByProductID(ctx, productID)
	if err != nil {
		return nil, persistenceErr("could not load orders", err)
	}
	if len(orders) == 0 {
		return nil, notFoundErr(msgNoOrdersFound)
	}
	salesIDs := make([]string, 0, len(orders))
	for _, o := range orders {
		salesIDs = append(salesIDs, o.ID)
	}
	return salesIDs, nil
}
