package product

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/salesflow/sales-api/internal/sales/application"
	"github.com/salesflow/sales-api/internal/sales/domain"
)

func testLogger() *slog.Logger { return slog.New(slog.DiscardHandler) }

var products = []domain.Product{{ProductID: "P1", Quantity: 2}}

func TestCheckStockAvailable(t *testing.T) {
	var gotAuth, gotTx string
	var gotBody struct {
		Products []domain.Product `json:"products"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotTx = r.Header.Get("transactionid")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		assert.Equal(t, "/check-stock", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewClient(testLogger(), srv.URL, time.Second)
	result := c.CheckStock(context.Background(), products, "Bearer tok", "tx-1")

	assert.Equal(t, application.StockAvailable, result)
	assert.Equal(t, "Bearer tok", gotAuth)
	assert.Equal(t, "tx-1", gotTx)
	assert.Equal(t, products, gotBody.Products)
}

func TestCheckStockRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	c := NewClient(testLogger(), srv.URL, time.Second)
	assert.Equal(t, application.StockUnavailable, c.CheckStock(context.Background(), products, "", "tx-1"))
}

func TestCheckStockUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close() // connection refused from here on

	c := NewClient(testLogger(), srv.URL, time.Second)
	assert.Equal(t, application.StockUnreachable, c.CheckStock(context.Background(), products, "", "tx-1"))
}

func TestCheckStockTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewClient(testLogger(), srv.URL, 20*time.Millisecond)
	assert.Equal(t, application.StockUnreachable, c.CheckStock(context.Background(), products, "", "tx-1"))
}
