package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	ErrProductNotFound   = errors.New("product not found")
	ErrInsufficientStock = errors.New("insufficient stock")

	// ErrConflict signals a lost version race inside the store. The
	// reservation engine retries it; it never reaches a client.
	ErrConflict = errors.New("concurrent stock update")
)

// Product is the shared inventory record. AvailableQuantity is only ever
// mutated through a reservation; the version column guards the
// read-decrement-write against concurrent batches.
type Product struct {
	ID                int
	Name              string
	Description       string
	Price             decimal.Decimal
	AvailableQuantity float64
	CategoryID        int
	Version           int64
}

// PurchaseLine is one requested line of a reservation batch.
type PurchaseLine struct {
	ProductID int     `json:"productId"`
	Quantity  float64 `json:"quantity"`
}

// PurchaseResult snapshots name and price as read at reservation time.
type PurchaseResult struct {
	ProductID int             `json:"productId"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  float64         `json:"quantity"`
}

func (l PurchaseLine) Validate() error {
	if l.ProductID <= 0 {
		return fmt.Errorf("product id must be positive, got %d", l.ProductID)
	}
	if l.Quantity <= 0 {
		return fmt.Errorf("quantity for product %d must be greater than zero", l.ProductID)
	}
	return nil
}
