package application

import (
	"context"

	"github.com/orderflow-io/orderflow/internal/notification/domain"
)

type NotificationRepository interface {
	Save(ctx context.Context, n domain.Notification) error
}
