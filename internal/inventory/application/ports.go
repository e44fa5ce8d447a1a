package application

import (
	"context"

	"github.com/orderflow-io/orderflow/internal/inventory/domain"
)

// ProductStore deducts stock for a whole batch in one atomic unit: either
// every line is deducted or none is. Implementations return
// domain.ErrConflict when a version check loses a race; the engine retries.
type ProductStore interface {
	ReserveBatch(ctx context.Context, lines []domain.PurchaseLine) ([]domain.PurchaseResult, error)
}
