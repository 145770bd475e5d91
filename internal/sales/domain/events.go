package domain

// StockUpdateEvent is published after an order is committed so the product
// service can decrement its stock. Field names are the wire contract.
type StockUpdateEvent struct {
	SalesID       string    `json:"salesId"`
	Products      []Product `json:"products"`
	TransactionID string    `json:"transactionId"`
}

// StatusUpdateMessage is the inbound sales-confirmation payload. SalesID and
// Status are both required for the message to be actionable.
type StatusUpdateMessage struct {
	SalesID       string      `json:"salesId"`
	Status        OrderStatus `json:"status"`
	TransactionID string      `json:"transactionId"`
}
