package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/orderflow-io/orderflow/internal/inventory/domain"
)

// Store keeps products in a mutex-guarded map. The whole batch runs under
// the lock, giving the same all-or-nothing contract as the Postgres store.
type Store struct {
	mu       sync.Mutex
	products map[int]*domain.Product
}

func NewStore(products ...domain.Product) *Store {
	s := &Store{products: make(map[int]*domain.Product, len(products))}
	for _, p := range products {
		cp := p
		s.products[p.ID] = &cp
	}
	return s
}

func (s *Store) ReserveBatch(ctx context.Context, lines []domain.PurchaseLine) ([]domain.PurchaseResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Check the whole batch before touching anything. Quantities are
	// summed per product first, so a batch naming the same product twice
	// is checked against its combined demand.
	totals := make(map[int]float64, len(lines))
	for _, l := range lines {
		if _, ok := s.products[l.ProductID]; !ok {
			return nil, fmt.Errorf("product %d: %w", l.ProductID, domain.ErrProductNotFound)
		}
		totals[l.ProductID] += l.Quantity
	}
	for id, total := range totals {
		if s.products[id].AvailableQuantity < total {
			return nil, fmt.Errorf("product %d: %w", id, domain.ErrInsufficientStock)
		}
	}

	for id, total := range totals {
		p := s.products[id]
		p.AvailableQuantity -= total
		p.Version++
	}

	results := make([]domain.PurchaseResult, 0, len(lines))
	for _, l := range lines {
		p := s.products[l.ProductID]
		results = append(results, domain.PurchaseResult{
			ProductID: p.ID,
			Name:      p.Name,
			Price:     p.Price,
			Quantity:  l.Quantity,
		})
	}
	return results, nil
}

// Get returns a copy of the stored product, for assertions in tests.
func (s *Store) Get(id int) (domain.Product, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[id]
	if !ok {
		return domain.Product{}, false
	}
	return *p, true
}
