package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/salesflow/sales-api/internal/sales/application"
	"github.com/salesflow/sales-api/internal/sales/domain"
)

type Repository struct {
	log  *slog.Logger
	pool *pgxpool.Pool
}

func NewRepository(log *slog.Logger, pool *pgxpool.Pool) *Repository {
	return &Repository{log: log, pool: pool}
}

// Save inserts the order, assigning an id when it has none, or updates the
// mutable columns of an existing row. Items are written once at creation and
// never change afterwards.
func (r *Repository) Save(ctx context.Context, o domain.Order) (domain.Order, error) {
	created := o.ID == ""
	if created {
		o.ID = uuid.NewString()
	}

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return domain.Order{}, fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	_, err = tx.Exec(ctx, `INSERT INTO orders (id, status, user_id, user_name, user_email, transaction_id, service_id, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		ON CONFLICT (id) DO UPDATE SET status=$2, updated_at=$9`,
		o.ID, o.Status, o.User.ID, o.User.Name, o.User.Email, o.TransactionID, o.ServiceID, o.CreatedAt, o.UpdatedAt)
	if err != nil {
		return domain.Order{}, fmt.Errorf("upsert order: %w", err)
	}

	if created {
		batch := &pgx.Batch{}
		for _, p := range o.Products {
			batch.Queue(`INSERT INTO order_items (order_id, product_id, quantity) VALUES ($1,$2,$3)`,
				o.ID, p.ProductID, p.Quantity)
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return domain.Order{}, fmt.Errorf("insert order items: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.Order{}, fmt.Errorf("commit tx: %w", err)
	}
	return o, nil
}

func (r *Repository) FindByID(ctx context.Context, id string) (domain.Order, error) {
	var o domain.Order
	err := r.pool.QueryRow(ctx, `SELECT id, status, user_id, user_name, user_email, transaction_id, service_id, created_at, updated_at
		FROM orders WHERE id=$1`, id).
		Scan(&o.ID, &o.Status, &o.User.ID, &o.User.Name, &o.User.Email, &o.TransactionID, &o.ServiceID, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Order{}, application.ErrOrderNotFound
		}
		return domain.Order{}, fmt.Errorf("select order %s: %w", id, err)
	}

	o.Products, err = r.itemsFor(ctx, o.ID)
	if err != nil {
		return domain.Order{}, err
	}
	return o, nil
}

func (r *Repository) FindAll(ctx context.Context) ([]domain.Order, error) {
	return r.queryOrders(ctx, `SELECT id, status, user_id, user_name, user_email, transaction_id, service_id, created_at, updated_at
		FROM orders ORDER BY created_at`)
}

func (r *Repository) FindByProductID(ctx context.Context, productID string) ([]domain.Order, error) {
	return r.queryOrders(ctx, `SELECT o.id, o.status, o.user_id, o.user_name, o.user_email, o.transaction_id, o.service_id, o.created_at, o.updated_at
		FROM orders o
		JOIN order_items i ON i.order_id = o.id
		WHERE i.product_id = $1
		GROUP BY o.id`, productID)
}

func (r *Repository) queryOrders(ctx context.Context, query string, args ...any) ([]domain.Order, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("select orders: %w", err)
	}
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		var o domain.Order
		if err := rows.Scan(&o.ID, &o.Status, &o.User.ID, &o.User.Name, &o.User.Email, &o.TransactionID, &o.ServiceID, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("order rows: %w", err)
	}

	for i := range orders {
		orders[i].Products, err = r.itemsFor(ctx, orders[i].ID)
		if err != nil {
			return nil, err
		}
	}
	return orders, nil
}

func (r *Repository) itemsFor(ctx context.Context, orderID string) ([]domain.Product, error) {
	rows, err := r.pool.Query(ctx, `SELECT product_id, quantity FROM order_items WHERE order_id=$1`, orderID)
	if err != nil {
		return nil, fmt.Errorf("select order items: %w", err)
	}
	defer rows.Close()

	var products []domain.Product
	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(&p.ProductID, &p.Quantity); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		products = append(products, p)
	}
	return products, rows.Err()
}
