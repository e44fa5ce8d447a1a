package postgres

import (
	"context"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/orderflow-io/orderflow/internal/notification/domain"
)

type Repository struct {
	log  *slog.Logger
	pool *pgxpool.Pool
}

func NewRepository(log *slog.Logger, pool *pgxpool.Pool) *Repository {
	return &Repository{log: log, pool: pool}
}

func (r *Repository) Save(ctx context.Context, n domain.Notification) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO notifications (id, kind, order_reference, customer_email, payload, created_at)
		 VALUES ($1,$2,$3,$4,$5,$6)`,
		n.ID, string(n.Kind), n.OrderReference, n.CustomerEmail, n.Payload, n.CreatedAt)
	return err
}

// EnsureSchema creates the notification table if it is missing.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, `CREATE TABLE IF NOT EXISTS notifications (
		id TEXT PRIMARY KEY,
		kind TEXT NOT NULL,
		order_reference TEXT NOT NULL,
		customer_email TEXT NOT NULL,
		payload BYTEA NOT NULL,
		created_at TIMESTAMPTZ NOT NULL
	)`)
	return err
}
