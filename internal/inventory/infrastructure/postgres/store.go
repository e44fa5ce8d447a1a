package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/orderflow-io/orderflow/internal/inventory/domain"
)

type Store struct {
	log  *slog.Logger
	pool *pgxpool.Pool
}

func NewStore(log *slog.Logger, pool *pgxpool.Pool) *Store {
	return &Store{log: log, pool: pool}
}

// ReserveBatch deducts every line inside one transaction. Each decrement is
// guarded by the row's version and by available_quantity >= quantity, so a
// concurrent batch that raced us on any row turns into domain.ErrConflict
// and the caller retries with fresh reads. A missing product or a shortfall
// aborts the transaction; no line of the batch stays deducted.
func (s *Store) ReserveBatch(ctx context.Context, lines []domain.PurchaseLine) ([]domain.PurchaseResult, error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	results := make([]domain.PurchaseResult, 0, len(lines))
	for _, line := range lines {
		var p domain.Product
		err := tx.QueryRow(ctx,
			`SELECT id, name, price, available_quantity, version FROM products WHERE id=$1`,
			line.ProductID,
		).Scan(&p.ID, &p.Name, &p.Price, &p.AvailableQuantity, &p.Version)
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("product %d: %w", line.ProductID, domain.ErrProductNotFound)
		}
		if err != nil {
			return nil, err
		}
		if p.AvailableQuantity < line.Quantity {
			return nil, fmt.Errorf("product %d: %w", line.ProductID, domain.ErrInsufficientStock)
		}

		ct, err := tx.Exec(ctx,
			`UPDATE products
			 SET available_quantity = available_quantity - $2, version = version + 1
			 WHERE id = $1 AND version = $3 AND available_quantity >= $2`,
			line.ProductID, line.Quantity, p.Version,
		)
		if err != nil {
			return nil, err
		}
		if ct.RowsAffected() == 0 {
			// Row moved under us between the read and the write.
			return nil, fmt.Errorf("product %d: %w", line.ProductID, domain.ErrConflict)
		}

		results = append(results, domain.PurchaseResult{
			ProductID: p.ID,
			Name:      p.Name,
			Price:     p.Price,
			Quantity:  line.Quantity,
		})
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return results, nil
}

// Seed upserts products, used by integration setups.
func (s *Store) Seed(ctx context.Context, products []domain.Product) error {
	batch := &pgx.Batch{}
	for _, p := range products {
		batch.Queue(`INSERT INTO products (id, name, description, price, available_quantity, category_id, version)
			VALUES ($1,$2,$3,$4,$5,$6,0)
			ON CONFLICT (id) DO UPDATE SET name=$2, description=$3, price=$4, available_quantity=$5, category_id=$6`,
			p.ID, p.Name, p.Description, p.Price, p.AvailableQuantity, p.CategoryID)
	}
	return s.pool.SendBatch(ctx, batch).Close()
}
