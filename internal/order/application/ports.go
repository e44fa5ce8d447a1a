package application

import (
	"context"

	"github.com/shopspring/decimal"

	invdomain "github.com/orderflow-io/orderflow/internal/inventory/domain"
	"github.com/orderflow-io/orderflow/internal/order/domain"
)

// OrderRepository is the order ledger: write-once orders, read-only after.
type OrderRepository interface {
	// Save persists the order and all of its lines in one transaction.
	Save(ctx context.Context, o domain.Order) error
	List(ctx context.Context) ([]domain.Order, error)
	Get(ctx context.Context, id string) (domain.Order, error)
}

// CustomerDirectory resolves a customer id to a profile snapshot.
type CustomerDirectory interface {
	FindByID(ctx context.Context, id string) (domain.CustomerSnapshot, error)
}

// StockReserver validates and deducts stock for a whole purchase batch.
type StockReserver interface {
	Reserve(ctx context.Context, lines []invdomain.PurchaseLine) ([]invdomain.PurchaseResult, error)
}

type PaymentRequest struct {
	Amount         decimal.Decimal         `json:"amount"`
	PaymentMethod  domain.PaymentMethod    `json:"paymentMethod"`
	OrderID        string                  `json:"orderId"`
	OrderReference string                  `json:"orderReference"`
	Customer       domain.CustomerSnapshot `json:"customer"`
}

// PaymentClient charges the customer synchronously and returns the
// processor's payment id.
type PaymentClient interface {
	Charge(ctx context.Context, req PaymentRequest) (string, error)
}

// EventAppender hands a domain event to the durable outbox. Delivery to the
// messaging backbone happens asynchronously, at least once.
type EventAppender interface {
	Append(ctx context.Context, aggregateID, eventType string, payload []byte, traceparent string) error
}
