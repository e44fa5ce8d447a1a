package application

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/orderflow-io/orderflow/internal/inventory/domain"
	"github.com/orderflow-io/orderflow/internal/inventory/infrastructure/memory"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func product(id int, name string, price string, qty float64) domain.Product {
	return domain.Product{
		ID:                id,
		Name:              name,
		Price:             decimal.RequireFromString(price),
		AvailableQuantity: qty,
	}
}

func TestReserveDeductsAndSnapshotsPrice(t *testing.T) {
	store := memory.NewStore(product(1, "keyboard", "49.99", 10))
	svc := NewService(discardLogger(), store)

	results, err := svc.Reserve(context.Background(), []domain.PurchaseLine{{ProductID: 1, Quantity: 4}})
	if err != nil {
		t.Fatalf("Reserve: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("got %d results, want 1", len(results))
	}
	r := results[0]
	if r.Quantity != 4 || r.Name != "keyboard" || !r.Price.Equal(decimal.RequireFromString("49.99")) {
		t.Errorf("unexpected result %+v", r)
	}
	p, _ := store.Get(1)
	if p.AvailableQuantity != 6 {
		t.Errorf("available quantity = %v, want 6", p.AvailableQuantity)
	}
}

func TestReserveInsufficientStockLeavesQuantityUntouched(t *testing.T) {
	store := memory.NewStore(product(1, "mouse", "15.00", 2))
	svc := NewService(discardLogger(), store)

	_, err := svc.Reserve(context.Background(), []domain.PurchaseLine{{ProductID: 1, Quantity: 5}})
	if !errors.Is(err, domain.ErrInsufficientStock) {
		t.Fatalf("err = %v, want ErrInsufficientStock", err)
	}
	p, _ := store.Get(1)
	if p.AvailableQuantity != 2 {
		t.Errorf("available quantity = %v, want 2", p.AvailableQuantity)
	}
}

func TestReserveUnknownProductFailsWholeBatch(t *testing.T) {
	store := memory.NewStore(product(1, "mouse", "15.00", 10))
	svc := NewService(discardLogger(), store)

	_, err := svc.Reserve(context.Background(), []domain.PurchaseLine{
		{ProductID: 1, Quantity: 3},
		{ProductID: 42, Quantity: 1},
	})
	if !errors.Is(err, domain.ErrProductNotFound) {
		t.Fatalf("err = %v, want ErrProductNotFound", err)
	}
	// Batch is atomic: the valid first line must not stay deducted.
	p, _ := store.Get(1)
	if p.AvailableQuantity != 10 {
		t.Errorf("available quantity = %v, want 10 (no partial deduction)", p.AvailableQuantity)
	}
}

func TestReserveMidBatchShortfallRollsBackEarlierLines(t *testing.T) {
	store := memory.NewStore(
		product(1, "a", "1.00", 100),
		product(2, "b", "1.00", 1),
	)
	svc := NewService(discardLogger(), store)

	_, err := svc.Reserve(context.Background(), []domain.PurchaseLine{
		{ProductID: 2, Quantity: 5},
		{ProductID: 1, Quantity: 10},
	})
	if !errors.Is(err, domain.ErrInsufficientStock) {
		t.Fatalf("err = %v, want ErrInsufficientStock", err)
	}
	p1, _ := store.Get(1)
	p2, _ := store.Get(2)
	if p1.AvailableQuantity != 100 || p2.AvailableQuantity != 1 {
		t.Errorf("quantities = %v/%v, want 100/1", p1.AvailableQuantity, p2.AvailableQuantity)
	}
}

func TestReserveDuplicateProductLinesCheckedAgainstCombinedDemand(t *testing.T) {
	store := memory.NewStore(product(1, "gpu", "999.00", 10))
	svc := NewService(discardLogger(), store)

	// 6+6 of the same product exceeds the 10 on hand: the batch must fail
	// as a whole, never drive the counter negative.
	_, err := svc.Reserve(context.Background(), []domain.PurchaseLine{
		{ProductID: 1, Quantity: 6},
		{ProductID: 1, Quantity: 6},
	})
	if !errors.Is(err, domain.ErrInsufficientStock) {
		t.Fatalf("err = %v, want ErrInsufficientStock", err)
	}
	p, _ := store.Get(1)
	if p.AvailableQuantity != 10 {
		t.Errorf("available quantity = %v, want 10", p.AvailableQuantity)
	}

	// 4+4 fits and deducts cumulatively.
	results, err := svc.Reserve(context.Background(), []domain.PurchaseLine{
		{ProductID: 1, Quantity: 4},
		{ProductID: 1, Quantity: 4},
	})
	if err != nil {
		t.Fatalf("Reserve: %v", err)
	}
	if len(results) != 2 || results[0].Quantity != 4 || results[1].Quantity != 4 {
		t.Errorf("results = %+v", results)
	}
	p, _ = store.Get(1)
	if p.AvailableQuantity != 2 {
		t.Errorf("available quantity = %v, want 2", p.AvailableQuantity)
	}
}

func TestReserveValidation(t *testing.T) {
	svc := NewService(discardLogger(), memory.NewStore())

	if _, err := svc.Reserve(context.Background(), nil); !errors.Is(err, ErrEmptyBatch) {
		t.Errorf("empty batch err = %v, want ErrEmptyBatch", err)
	}
	if _, err := svc.Reserve(context.Background(), []domain.PurchaseLine{{ProductID: 1, Quantity: 0}}); err == nil {
		t.Error("zero quantity accepted")
	}
	if _, err := svc.Reserve(context.Background(), []domain.PurchaseLine{{ProductID: -1, Quantity: 1}}); err == nil {
		t.Error("negative product id accepted")
	}
}

// orderRecordingStore observes the line order the engine hands to the store.
type orderRecordingStore struct {
	seen []int
}

func (o *orderRecordingStore) ReserveBatch(ctx context.Context, lines []domain.PurchaseLine) ([]domain.PurchaseResult, error) {
	for _, l := range lines {
		o.seen = append(o.seen, l.ProductID)
	}
	return make([]domain.PurchaseResult, len(lines)), nil
}

func TestReserveSortsLinesByProductID(t *testing.T) {
	store := &orderRecordingStore{}
	svc := NewService(discardLogger(), store)

	_, err := svc.Reserve(context.Background(), []domain.PurchaseLine{
		{ProductID: 9, Quantity: 1},
		{ProductID: 3, Quantity: 1},
		{ProductID: 7, Quantity: 1},
	})
	if err != nil {
		t.Fatalf("Reserve: %v", err)
	}
	want := []int{3, 7, 9}
	for i, id := range want {
		if store.seen[i] != id {
			t.Fatalf("store saw order %v, want %v", store.seen, want)
		}
	}
}

func TestConcurrentReservesNeverOversell(t *testing.T) {
	// Two batches race for 6 of 10 units: exactly one must win.
	store := memory.NewStore(product(1, "gpu", "999.00", 10))
	svc := NewService(discardLogger(), store)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Reserve(context.Background(), []domain.PurchaseLine{{ProductID: 1, Quantity: 6}})
		}(i)
	}
	wg.Wait()

	var failures int
	for _, err := range errs {
		if err != nil {
			if !errors.Is(err, domain.ErrInsufficientStock) {
				t.Fatalf("unexpected error: %v", err)
			}
			failures++
		}
	}
	if failures != 1 {
		t.Fatalf("got %d failures, want exactly 1", failures)
	}
	p, _ := store.Get(1)
	if p.AvailableQuantity != 4 {
		t.Errorf("available quantity = %v, want 4", p.AvailableQuantity)
	}
}

func TestConcurrentReservesConserveStock(t *testing.T) {
	const (
		workers  = 20
		perBatch = 3
		initial  = 100
	)
	store := memory.NewStore(
		product(1, "a", "1.00", initial),
		product(2, "b", "1.00", initial),
	)
	svc := NewService(discardLogger(), store)

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		granted float64
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results, err := svc.Reserve(context.Background(), []domain.PurchaseLine{
				{ProductID: 1, Quantity: perBatch},
				{ProductID: 2, Quantity: perBatch},
			})
			if err != nil {
				return
			}
			mu.Lock()
			for _, r := range results {
				granted += r.Quantity
			}
			mu.Unlock()
		}()
	}
	wg.Wait()

	p1, _ := store.Get(1)
	p2, _ := store.Get(2)
	for _, p := range []domain.Product{p1, p2} {
		if p.AvailableQuantity < 0 {
			t.Fatalf("product %d went negative: %v", p.ID, p.AvailableQuantity)
		}
	}
	// Every granted unit is a deducted unit.
	deducted := (initial - p1.AvailableQuantity) + (initial - p2.AvailableQuantity)
	if deducted != granted {
		t.Errorf("deducted %v units but granted %v", deducted, granted)
	}
}
