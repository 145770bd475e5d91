package application

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/salesflow/sales-api/internal/sales/domain"
)

// Reconciler applies sales-confirmation messages to existing orders. It is a
// pure consumer: every failure mode is logged and the message dropped, nothing
// propagates back to the transport.
type Reconciler struct {
	log  *slog.Logger
	repo OrderRepository
}

func NewReconciler(log *slog.Logger, repo OrderRepository) *Reconciler {
	return &Reconciler{log: log, repo: repo}
}

// HandleMessage parses a raw payload and, when it names a known order with a
// differing status, applies the status and refreshes updatedAt. Equal status
// is an idempotent no-op; unknown orders and incomplete or malformed messages
// are dropped after a log line.
func (r *Reconciler) HandleMessage(ctx context.Context, payload []byte) {
	var msg domain.StatusUpdateMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		r.log.Error("could not parse order message from queue", "err", err)
		return
	}
	if msg.SalesID == "" || msg.Status == "" {
		r.log.Warn("order message was not complete", "transaction_id", msg.TransactionID)
		return
	}

	order, err := r.repo.FindByID(ctx, msg.SalesID)
	if err != nil {
		if errors.Is(err, ErrOrderNotFound) {
			r.log.Warn("order message refers to unknown order", "sales_id", msg.SalesID, "transaction_id", msg.TransactionID)
			return
		}
		r.log.Error("order lookup failed during reconciliation", "sales_id", msg.SalesID, "err", err)
		return
	}

	if !order.ApplyStatus(msg.Status) {
		return
	}

	if _, err := r.repo.Save(ctx, order); err != nil {
		r.log.Error("order status update failed", "sales_id", msg.SalesID, "status", msg.Status, "err", err)
		return
	}
	r.log.Info("order status updated", "sales_id", msg.SalesID, "status", msg.Status, "transaction_id", msg.TransactionID)
}
