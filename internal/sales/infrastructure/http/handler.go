package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/salesflow/sales-api/internal/sales/application"
	"github.com/salesflow/sales-api/internal/sales/domain"
)

// Handler is the REST boundary. It maps the service's error kinds onto the
// uniform {status, message} body callers of the original API expect: every
// client fault is a 400, everything else a 500.
type Handler struct {
	log        *slog.Logger
	service    *application.Service
	tracer     trace.Tracer
	reqTimeout time.Duration
}

func NewHandler(log *slog.Logger, service *application.Service) *Handler {
	return &Handler{
		log:        log,
		service:    service,
		tracer:     otel.Tracer("sales-http"),
		reqTimeout: 15 * time.Second,
	}
}

func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Recoverer)
	r.Use(middleware.Timeout(h.reqTimeout))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Post("/api/orders", h.createOrder)
	r.Get("/api/orders", h.findAll)
	r.Get("/api/orders/{id}", h.findByID)
	r.Get("/api/orders/product/{productId}", h.findByProductID)
	return r
}

type createOrderRequest struct {
	Products []domain.Product `json:"products"`
}

func (h *Handler) createOrder(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "CreateOrder")
	defer span.End()

	var req createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	transactionID, serviceID := correlation(r)
	in := application.CreateOrderInput{
		Products:      req.Products,
		User:          userFrom(r),
		Token:         r.Header.Get("Authorization"),
		TransactionID: transactionID,
		ServiceID:     serviceID,
	}
	h.log.Info("request to POST new order", "transaction_id", transactionID, "service_id", serviceID)

	order, err := h.service.CreateOrder(ctx, in)
	if err != nil {
		h.writeServiceError(w, err, transactionID)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": http.StatusOK, "createdOrder": order})
}

func (h *Handler) findByID(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "FindOrderByID")
	defer span.End()

	transactionID, serviceID := correlation(r)
	id := chi.URLParam(r, "id")
	h.log.Info("request to GET order by id", "order_id", id, "transaction_id", transactionID, "service_id", serviceID)

	order, err := h.service.FindByID(ctx, id)
	if err != nil {
		h.writeServiceError(w, err, transactionID)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": http.StatusOK, "existingOrder": order})
}

func (h *Handler) findAll(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "FindAllOrders")
	defer span.End()

	transactionID, serviceID := correlation(r)
	h.log.Info("request to GET all orders", "transaction_id", transactionID, "service_id", serviceID)

	orders, err := h.service.FindAll(ctx)
	if err != nil {
		h.writeServiceError(w, err, transactionID)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": http.StatusOK, "orders": orders})
}

func (h *Handler) findByProductID(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "FindOrdersByProductID")
	defer span.End()

	transactionID, serviceID := correlation(r)
	productID := chi.URLParam(r, "productId")
	h.log.Info("request to GET orders by productId", "product_id", productID, "transaction_id", transactionID, "service_id", serviceID)

	salesIDs, err := h.service.FindByProductID(ctx, productID)
	if err != nil {
		h.writeServiceError(w, err, transactionID)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": http.StatusOK, "salesIds": salesIDs})
}

func (h *Handler) writeServiceError(w http.ResponseWriter, err error, transactionID string) {
	switch application.KindOf(err) {
	case application.KindValidation, application.KindStockUnavailable, application.KindNotFound:
		writeError(w, http.StatusBadRequest, application.MessageOf(err))
	default:
		h.log.Error("request failed", "transaction_id", transactionID, "err", err)
		writeError(w, http.StatusInternalServerError, application.MessageOf(err))
	}
}

// correlation reads the tracing identifiers propagated by the gateway,
// minting a transaction id when the caller sent none.
func correlation(r *http.Request) (transactionID, serviceID string) {
	transactionID = r.Header.Get("transactionid")
	if transactionID == "" {
		transactionID = uuid.NewString()
	}
	return transactionID, r.Header.Get("serviceid")
}

// userFrom trusts the identity headers injected by the upstream gateway.
// Authentication itself happens before requests reach this service.
func userFrom(r *http.Request) domain.User {
	return domain.User{
		ID:    r.Header.Get("x-user-id"),
		Name:  r.Header.Get("x-user-name"),
		Email: r.Header.Get("x-user-email"),
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, message string) {
	writeJSON(w, code, map[string]any{"status": code, "message": message})
}
