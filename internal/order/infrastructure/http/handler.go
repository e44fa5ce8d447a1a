package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	invapp "github.com/orderflow-io/orderflow/internal/inventory/application"
	invdomain "github.com/orderflow-io/orderflow/internal/inventory/domain"
	"github.com/orderflow-io/orderflow/internal/order/application"
	"github.com/orderflow-io/orderflow/internal/order/domain"
	"github.com/orderflow-io/orderflow/pkg/tracing"
)

type Handler struct {
	log     *slog.Logger
	service *application.Service
	tracer  trace.Tracer
}

func NewHandler(log *slog.Logger, service *application.Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
		tracer:  otel.Tracer("order-http"),
	}
}

type createOrderReq struct {
	CustomerID    string                   `json:"customerId"`
	PaymentMethod string                   `json:"paymentMethod"`
	Amount        decimal.Decimal          `json:"amount"`
	Items         []invdomain.PurchaseLine `json:"items"`
}

type orderResp struct {
	ID            string          `json:"id"`
	Reference     string          `json:"reference"`
	Amount        decimal.Decimal `json:"amount"`
	PaymentMethod string          `json:"paymentMethod"`
	CustomerID    string          `json:"customerId"`
}

func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Post("/orders", h.createOrder)
	r.Get("/orders", h.listOrders)
	r.Get("/orders/{id}", h.getOrder)
	return r
}

func (h *Handler) createOrder(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "CreateOrder")
	defer span.End()

	var req createOrderReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	in, err := req.toInput()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	id, err := h.service.CreateOrder(ctx, in, r.Header.Get(tracing.TraceparentHeader))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(map[string]string{"orderId": id})
}

func (req createOrderReq) toInput() (application.CreateOrderInput, error) {
	if req.CustomerID == "" {
		return application.CreateOrderInput{}, fmt.Errorf("%w: customer id is required", domain.ErrValidation)
	}
	method, err := domain.ParsePaymentMethod(req.PaymentMethod)
	if err != nil {
		return application.CreateOrderInput{}, err
	}
	if req.Amount.Sign() <= 0 {
		return application.CreateOrderInput{}, fmt.Errorf("%w: amount must be positive", domain.ErrValidation)
	}
	if len(req.Items) == 0 {
		return application.CreateOrderInput{}, fmt.Errorf("%w: item list cannot be empty", domain.ErrValidation)
	}
	for _, item := range req.Items {
		if err := item.Validate(); err != nil {
			return application.CreateOrderInput{}, fmt.Errorf("%w: %v", domain.ErrValidation, err)
		}
	}
	return application.CreateOrderInput{
		CustomerID:    req.CustomerID,
		PaymentMethod: method,
		Amount:        req.Amount,
		Lines:         req.Items,
	}, nil
}

func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "ListOrders")
	defer span.End()

	orders, err := h.service.ListOrders(ctx)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	out := make([]orderResp, 0, len(orders))
	for _, o := range orders {
		out = append(out, toOrderResp(o))
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(out)
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "GetOrder")
	defer span.End()

	o, err := h.service.GetOrder(ctx, chi.URLParam(r, "id"))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(toOrderResp(o))
}

func toOrderResp(o domain.Order) orderResp {
	return orderResp{
		ID:            o.ID,
		Reference:     o.Reference,
		Amount:        o.TotalAmount,
		PaymentMethod: string(o.PaymentMethod),
		CustomerID:    o.CustomerID,
	}
}

// writeServiceError maps business errors to client-facing statuses with a
// message; everything else becomes an opaque 500.
func (h *Handler) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrValidation), errors.Is(err, invapp.ErrEmptyBatch):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrCustomerNotFound),
		errors.Is(err, invdomain.ErrProductNotFound),
		errors.Is(err, domain.ErrOrderNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, invdomain.ErrInsufficientStock):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrPaymentFailure):
		writeError(w, http.StatusPaymentRequired, err.Error())
	default:
		h.log.Error("request failed", "err", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
