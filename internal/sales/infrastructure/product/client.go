// Package product holds the client for the product-api stock check.
package product

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/salesflow/sales-api/internal/sales/application"
	"github.com/salesflow/sales-api/internal/sales/domain"
)

type Client struct {
	log     *slog.Logger
	http    *http.Client
	baseURL string
}

func NewClient(log *slog.Logger, baseURL string, timeout time.Duration) *Client {
	return &Client{
		log:     log,
		http:    &http.Client{Timeout: timeout},
		baseURL: baseURL,
	}
}

type checkStockRequest struct {
	Products []domain.Product `json:"products"`
}

// CheckStock posts the product list to product-api. Only an explicit 2xx
// answer counts as available; a non-2xx answer means the stock is out and a
// transport failure means the service could not be reached. Both block order
// creation upstream.
func (c *Client) CheckStock(ctx context.Context, products []domain.Product, token, transactionID string) application.StockResult {
	body, err := json.Marshal(checkStockRequest{Products: products})
	if err != nil {
		c.log.Error("could not encode stock check request", "transaction_id", transactionID, "err", err)
		return application.StockUnreachable
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/check-stock", bytes.NewReader(body))
	if err != nil {
		c.log.Error("could not build stock check request", "transaction_id", transactionID, "err", err)
		return application.StockUnreachable
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", token)
	req.Header.Set("transactionid", transactionID)

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Error("error response from product-api", "transaction_id", transactionID, "err", err)
		return application.StockUnreachable
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.log.Warn("product-api rejected stock check", "transaction_id", transactionID, "status_code", resp.StatusCode)
		return application.StockUnavailable
	}
	c.log.Info("success response from product-api", "transaction_id", transactionID)
	return application.StockAvailable
}
