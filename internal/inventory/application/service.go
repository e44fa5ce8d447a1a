package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/orderflow-io/orderflow/internal/inventory/domain"
)

const maxReserveAttempts = 3

var ErrEmptyBatch = errors.New("reservation batch is empty")

// Service is the inventory reservation engine. A batch is checked and
// deducted as one unit: a missing product or a shortfall anywhere in the
// batch rolls back every line.
type Service struct {
	log   *slog.Logger
	store ProductStore
}

func NewService(log *slog.Logger, store ProductStore) *Service {
	return &Service{log: log, store: store}
}

// Reserve validates the batch, sorts it by product id and deducts stock.
// The ascending sort is a contract: every batch touches contested rows in
// the same order, which bounds deadlock risk between overlapping batches.
// Isolation itself comes from the store's version check, retried here on
// conflict.
func (s *Service) Reserve(ctx context.Context, lines []domain.PurchaseLine) ([]domain.PurchaseResult, error) {
	if len(lines) == 0 {
		return nil, ErrEmptyBatch
	}
	for _, l := range lines {
		if err := l.Validate(); err != nil {
			return nil, err
		}
	}

	sorted := make([]domain.PurchaseLine, len(lines))
	copy(sorted, lines)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ProductID < sorted[j].ProductID })

	var lastErr error
	for attempt := 1; attempt <= maxReserveAttempts; attempt++ {
		results, err := s.store.ReserveBatch(ctx, sorted)
		if err == nil {
			s.log.Info("stock reserved", "lines", len(results), "attempt", attempt)
			return results, nil
		}
		if !errors.Is(err, domain.ErrConflict) {
			return nil, err
		}
		lastErr = err
		s.log.Warn("reservation conflict, retrying", "attempt", attempt)
	}
	return nil, fmt.Errorf("reservation contended after %d attempts: %w", maxReserveAttempts, lastErr)
}
