package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/orderflow-io/orderflow/internal/order/domain"
)

type Repository struct {
	log  *slog.Logger
	pool *pgxpool.Pool
}

func NewRepository(log *slog.Logger, pool *pgxpool.Pool) *Repository {
	return &Repository{log: log, pool: pool}
}

// Save writes the order and all of its lines in one transaction. Orders are
// write-once; there is no update path.
func (r *Repository) Save(ctx context.Context, o domain.Order) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	_, err = tx.Exec(ctx, `INSERT INTO orders (id, reference, total_amount, payment_method, customer_id, created_at, last_modified_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		o.ID, o.Reference, o.TotalAmount, string(o.PaymentMethod), o.CustomerID, o.CreatedAt, o.LastModifiedAt)
	if err != nil {
		return err
	}

	batch := &pgx.Batch{}
	for _, line := range o.Lines {
		batch.Queue(`INSERT INTO order_lines (id, order_id, product_id, quantity) VALUES ($1,$2,$3,$4)`,
			line.ID, line.OrderID, line.ProductID, line.Quantity)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *Repository) Get(ctx context.Context, id string) (domain.Order, error) {
	var o domain.Order
	var method string
	err := r.pool.QueryRow(ctx,
		`SELECT id, reference, total_amount, payment_method, customer_id, created_at, last_modified_at
		 FROM orders WHERE id=$1`, id,
	).Scan(&o.ID, &o.Reference, &o.TotalAmount, &method, &o.CustomerID, &o.CreatedAt, &o.LastModifiedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Order{}, fmt.Errorf("order %s: %w", id, domain.ErrOrderNotFound)
	}
	if err != nil {
		return domain.Order{}, err
	}
	o.PaymentMethod = domain.PaymentMethod(method)

	rows, err := r.pool.Query(ctx,
		`SELECT id, order_id, product_id, quantity FROM order_lines WHERE order_id=$1`, id)
	if err != nil {
		return domain.Order{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var line domain.OrderLine
		if err := rows.Scan(&line.ID, &line.OrderID, &line.ProductID, &line.Quantity); err != nil {
			return domain.Order{}, err
		}
		o.Lines = append(o.Lines, line)
	}
	return o, rows.Err()
}

func (r *Repository) List(ctx context.Context) ([]domain.Order, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, reference, total_amount, payment_method, customer_id, created_at, last_modified_at
		 FROM orders ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		var o domain.Order
		var method string
		if err := rows.Scan(&o.ID, &o.Reference, &o.TotalAmount, &method, &o.CustomerID, &o.CreatedAt, &o.LastModifiedAt); err != nil {
			return nil, err
		}
		o.PaymentMethod = domain.PaymentMethod(method)
		orders = append(orders, o)
	}
	return orders, rows.Err()
}
