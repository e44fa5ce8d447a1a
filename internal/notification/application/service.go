package application

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/orderflow-io/orderflow/internal/notification/domain"
	orderdomain "github.com/orderflow-io/orderflow/internal/order/domain"
)

// Service records confirmations and triggers the customer email. Actual
// template rendering and SMTP live outside this service; the send here is a
// structured log line the mail relay tails.
type Service struct {
	log  *slog.Logger
	repo NotificationRepository
}

func NewService(log *slog.Logger, repo NotificationRepository) *Service {
	return &Service{log: log, repo: repo}
}

func (s *Service) HandleOrderConfirmation(ctx context.Context, payload []byte) error {
	var conf orderdomain.OrderConfirmation
	if err := json.Unmarshal(payload, &conf); err != nil {
		return fmt.Errorf("decode order confirmation: %w", err)
	}
	if conf.OrderReference == "" {
		return fmt.Errorf("order confirmation without reference")
	}

	n := domain.Notification{
		ID:             uuid.NewString(),
		Kind:           domain.KindOrderConfirmation,
		OrderReference: conf.OrderReference,
		CustomerEmail:  conf.Customer.Email,
		Payload:        payload,
		CreatedAt:      time.Now().UTC(),
	}
	if err := s.repo.Save(ctx, n); err != nil {
		return fmt.Errorf("persist notification: %w", err)
	}
	s.log.Info("order confirmation email queued",
		"reference", conf.OrderReference,
		"email", conf.Customer.Email,
		"amount", conf.TotalAmount.String(),
		"products", len(conf.Products))
	return nil
}

func (s *Service) HandlePaymentConfirmation(ctx context.Context, payload []byte) error {
	var conf orderdomain.PaymentConfirmation
	if err := json.Unmarshal(payload, &conf); err != nil {
		return fmt.Errorf("decode payment confirmation: %w", err)
	}
	if conf.OrderReference == "" {
		return fmt.Errorf("payment confirmation without reference")
	}

	n := domain.Notification{
		ID:             uuid.NewString(),
		Kind:           domain.KindPaymentConfirmation,
		OrderReference: conf.OrderReference,
		CustomerEmail:  conf.CustomerEmail,
		Payload:        payload,
		CreatedAt:      time.Now().UTC(),
	}
	if err := s.repo.Save(ctx, n); err != nil {
		return fmt.Errorf("persist notification: %w", err)
	}
	s.log.Info("payment confirmation email queued",
		"reference", conf.OrderReference,
		"email", conf.CustomerEmail,
		"amount", conf.Amount.String())
	return nil
}
