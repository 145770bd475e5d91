package domain

import "time"

type OrderStatus string

// Canonical lifecycle statuses. The set is open: reconciliation messages from
// downstream systems may carry statuses outside this list and they are applied
// as-is (last applied wins).
const (
	StatusPending  OrderStatus = "PENDING"
	StatusApproved OrderStatus = "APPROVED"
	StatusRejected OrderStatus = "REJECTED"
)

type Order struct {
	ID            string      `json:"id"`
	Status        OrderStatus `json:"status"`
	User          User        `json:"user"`
	Products      []Product   `json:"products"`
	CreatedAt     time.Time   `json:"createdAt"`
	UpdatedAt     time.Time   `json:"updatedAt"`
	TransactionID string      `json:"transactionId"`
	ServiceID     string      `json:"serviceId"`
}

type Product struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// User is the authenticated requester, captured once at creation.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// NewOrder builds the initial order record. The id is left empty: the store
// assigns it on first save.
func NewOrder(user User, products []Product, transactionID, serviceID string) Order {
	now := time.Now().UTC()
	return Order{
		Status:        StatusPending,
		User:          user,
		Products:      products,
		CreatedAt:     now,
		UpdatedAt:     now,
		TransactionID: transactionID,
		ServiceID:     serviceID,
	}
}

// ApplyStatus sets a new status and refreshes UpdatedAt. It reports whether
// anything changed; applying the current status is a no-op.
func (o *Order) ApplyStatus(status OrderStatus) bool {
	if status == o.Status {
		return false
	}
	o.Status = status
	o.UpdatedAt = time.Now().UTC()
	return true
}
