package application

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/salesflow/sales-api/internal/sales/domain"
)

type fakeRepo struct {
	orders    map[string]domain.Order
	saveCalls int
	saveErr   error
	findErr   error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{orders: map[string]domain.Order{}}
}

func (f *fakeRepo) Save(_ context.Context, o domain.Order) (domain.Order, error) {
	f.saveCalls++
	if f.saveErr != nil {
		return domain.Order{}, f.saveErr
	}
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	f.orders[o.ID] = o
	return o, nil
}

func (f *fakeRepo) FindByID(_ context.Context, id string) (domain.Order, error) {
	if f.findErr != nil {
		return domain.Order{}, f.findErr
	}
	o, ok := f.orders[id]
	if !ok {
		return domain.Order{}, ErrOrderNotFound
	}
	return o, nil
}

func (f *fakeRepo) FindAll(_ context.Context) ([]domain.Order, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	var out []domain.Order
	for _, o := range f.orders {
		out = append(out, o)
	}
	return out, nil
}

func (f *fakeRepo) FindByProductID(_ context.Context, productID string) ([]domain.Order, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	var out []domain.Order
	for _, o := range f.orders {
		for _, p := range o.Products {
			if p.ProductID == productID {
				out = append(out, o)
				break
			}
		}
	}
	return out, nil
}

type fakeStock struct {
	result StockResult
	calls  int
}

func (f *fakeStock) CheckStock(_ context.Context, _ []domain.Product, _, _ string) StockResult {
	f.calls++
	return f.result
}

type fakePublisher struct {
	events []domain.StockUpdateEvent
	err    error
}

func (f *fakePublisher) PublishStockUpdate(_ context.Context, e domain.StockUpdateEvent) error {
	f.events = append(f.events, e)
	return f.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func validInput() CreateOrderInput {
	return CreateOrderInput{
		Products:      []domain.Product{{ProductID: "P1", Quantity: 2}},
		User:          domain.User{ID: "u1", Name: "Jo", Email: "jo@example.com"},
		Token:         "Bearer tok",
		TransactionID: "tx-1",
		ServiceID:     "svc-1",
	}
}

func TestCreateOrder(t *testing.T) {
	repo := newFakeRepo()
	stock := &fakeStock{result: StockAvailable}
	pub := &fakePublisher{}
	svc := NewService(discardLogger(), repo, stock, pub)

	order, err := svc.CreateOrder(context.Background(), validInput())
	require.NoError(t, err)

	assert.NotEmpty(t, order.ID)
	assert.Equal(t, domain.StatusPending, order.Status)
	assert.Equal(t, 1, repo.saveCalls)
	assert.Equal(t, 1, stock.calls)

	require.Len(t, pub.events, 1)
	assert.Equal(t, order.ID, pub.events[0].SalesID)
	assert.Equal(t, order.Products, pub.events[0].Products)
	assert.Equal(t, "tx-1", pub.events[0].TransactionID)
}

func TestCreateOrderEmptyProducts(t *testing.T) {
	repo := newFakeRepo()
	stock := &fakeStock{result: StockAvailable}
	svc := NewService(discardLogger(), repo, stock, &fakePublisher{})

	in := validInput()
	in.Products = nil

	_, err := svc.CreateOrder(context.Background(), in)
	require.Error(t, err)
	assert.Equal(t, KindValidation, KindOf(err))
	assert.Equal(t, "The products must be informed.", MessageOf(err))
	assert.Zero(t, stock.calls, "stock service must not be called")
	assert.Zero(t, repo.saveCalls, "nothing may be persisted")
}

func TestCreateOrderStockUnavailable(t *testing.T) {
	for _, result := range []StockResult{StockUnavailable, StockUnreachable} {
		repo := newFakeRepo()
		svc := NewService(discardLogger(), repo, &fakeStock{result: result}, &fakePublisher{})

		_, err := svc.CreateOrder(context.Background(), validInput())
		require.Error(t, err)
		assert.Equal(t, KindStockUnavailable, KindOf(err))
		assert.Equal(t, "The stock is out for the products.", MessageOf(err))
		assert.Zero(t, repo.saveCalls, "order must never be persisted when stock check fails")
	}
}

func TestCreateOrderSaveFailure(t *testing.T) {
	repo := newFakeRepo()
	repo.saveErr = errors.New("connection reset")
	pub := &fakePublisher{}
	svc := NewService(discardLogger(), repo, &fakeStock{result: StockAvailable}, pub)

	_, err := svc.CreateOrder(context.Background(), validInput())
	require.Error(t, err)
	assert.Equal(t, KindPersistence, KindOf(err))
	assert.Empty(t, pub.events, "no publish without a durable write")
}

func TestCreateOrderPublishFailureStillSucceeds(t *testing.T) {
	repo := newFakeRepo()
	pub := &fakePublisher{err: errors.New("broker down")}
	svc := NewService(discardLogger(), repo, &fakeStock{result: StockAvailable}, pub)

	order, err := svc.CreateOrder(context.Background(), validInput())
	require.NoError(t, err, "publish is best-effort once the order is committed")
	assert.NotEmpty(t, order.ID)
	assert.Equal(t, 1, repo.saveCalls)
}

func TestFindByID(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(discardLogger(), repo, &fakeStock{result: StockAvailable}, &fakePublisher{})

	created, err := svc.CreateOrder(context.Background(), validInput())
	require.NoError(t, err)

	found, err := svc.FindByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)

	_, err = svc.FindByID(context.Background(), "")
	assert.Equal(t, KindValidation, KindOf(err))
	assert.Equal(t, "The order ID must be informed.", MessageOf(err))

	_, err = svc.FindByID(context.Background(), "missing")
	assert.Equal(t, KindNotFound, KindOf(err))
	assert.Equal(t, "The order was not found.", MessageOf(err))
}

func TestFindAllEmptyIsError(t *testing.T) {
	svc := NewService(discardLogger(), newFakeRepo(), &fakeStock{}, &fakePublisher{})

	_, err := svc.FindAll(context.Background())
	require.Error(t, err)
	assert.Equal(t, KindNotFound, KindOf(err))
	assert.Equal(t, "No orders were found.", MessageOf(err))
}

func TestFindByProductID(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(discardLogger(), repo, &fakeStock{result: StockAvailable}, &fakePublisher{})

	in := validInput()
	first, err := svc.CreateOrder(context.Background(), in)
	require.NoError(t, err)

	in.Products = []domain.Product{{ProductID: "P2", Quantity: 1}}
	_, err = svc.CreateOrder(context.Background(), in)
	require.NoError(t, err)

	ids, err := svc.FindByProductID(context.Background(), "P1")
	require.NoError(t, err)
	assert.Equal(t, []string{first.ID}, ids, "only orders containing the product")

	_, err = svc.FindByProductID(context.Background(), "")
	assert.Equal(t, KindValidation, KindOf(err))
	assert.Equal(t, "The order's productId must be informed.", MessageOf(err))

	_, err = svc.FindByProductID(context.Background(), "P3")
	assert.Equal(t, KindNotFound, KindOf(err))
	assert.Equal(t, "No orders were found.", MessageOf(err))
}
