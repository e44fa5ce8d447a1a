package application

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	invdomain "github.com/orderflow-io/orderflow/internal/inventory/domain"
	"github.com/orderflow-io/orderflow/internal/order/domain"
)

const EventOrderConfirmation = "OrderConfirmation"

type CreateOrderInput struct {
	CustomerID    string
	PaymentMethod domain.PaymentMethod
	Amount        decimal.Decimal
	Lines         []invdomain.PurchaseLine
}

// Service drives the order-creation workflow:
//
//  1. resolve the customer
//  2. reserve stock for the whole batch
//  3. persist order + lines (the only step with real atomicity)
//  4. charge the payment processor
//  5. append the confirmation event to the outbox
//
// There is no compensation: once step 3 commits the order stands, even when
// the payment call in step 4 fails. The caller sees the payment error, but
// inventory and ledger stay committed. Step 5 failures are logged only.
type Service struct {
	log       *slog.Logger
	customers CustomerDirectory
	stock     StockReserver
	repo      OrderRepository
	payments  PaymentClient
	events    EventAppender
}

func NewService(
	log *slog.Logger,
	customers CustomerDirectory,
	stock StockReserver,
	repo OrderRepository,
	payments PaymentClient,
	events EventAppender,
) *Service {
	return &Service{
		log:       log,
		customers: customers,
		stock:     stock,
		repo:      repo,
		payments:  payments,
		events:    events,
	}
}

func (s *Service) CreateOrder(ctx context.Context, in CreateOrderInput, traceparent string) (string, error) {
	customer, err := s.customers.FindByID(ctx, in.CustomerID)
	if err != nil {
		return "", fmt.Errorf("resolve customer %s: %w", in.CustomerID, err)
	}

	purchases, err := s.stock.Reserve(ctx, in.Lines)
	if err != nil {
		return "", err
	}

	order := domain.NewOrder(in.CustomerID, in.PaymentMethod, in.Amount, in.Lines)
	if err := s.repo.Save(ctx, order); err != nil {
		return "", fmt.Errorf("persist order %s: %w", order.Reference, err)
	}
	s.log.Info("order persisted", "order_id", order.ID, "reference", order.Reference)

	paymentID, err := s.payments.Charge(ctx, PaymentRequest{
		Amount:         in.Amount,
		PaymentMethod:  in.PaymentMethod,
		OrderID:        order.ID,
		OrderReference: order.Reference,
		Customer:       customer,
	})
	if err != nil {
		// The order and the deducted stock are already committed. That gap
		// is accepted: the caller learns about the payment failure, not
		// about a rollback that never happens.
		s.log.Error("payment failed after order commit", "order_id", order.ID, "err", err)
		return "", fmt.Errorf("order %s: %w: %v", order.Reference, domain.ErrPaymentFailure, err)
	}
	s.log.Info("payment accepted", "order_id", order.ID, "payment_id", paymentID)

	confirmation := domain.OrderConfirmation{
		OrderReference: order.Reference,
		TotalAmount:    order.TotalAmount,
		PaymentMethod:  order.PaymentMethod,
		Customer:       customer,
		Products:       purchases,
	}
	payload, err := json.Marshal(confirmation)
	if err == nil {
		err = s.events.Append(ctx, order.Reference, EventOrderConfirmation, payload, traceparent)
	}
	if err != nil {
		// Best effort once the order is durable: log and move on.
		s.log.Error("confirmation event not enqueued", "order_id", order.ID, "err", err)
	}

	return order.ID, nil
}

func (s *Service) ListOrders(ctx context.Context) ([]domain.Order, error) {
	return s.repo.List(ctx)
}

func (s *Service) GetOrder(ctx context.Context, id string) (domain.Order, error) {
	return s.repo.Get(ctx, id)
}
