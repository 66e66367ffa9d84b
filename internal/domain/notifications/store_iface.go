package notifications

import (
	"context"
	"time"
)

type StoreAPI interface {
	CreateNotification(ctx context.Context, n Notification) error
	ListNotifications(ctx context.Context, employeeID string, limit, offset int) ([]Notification, error)
	CountNotifications(ctx context.Context, employeeID string) (int, error)
	// MarkRead returns ErrNotificationNotFound when no row matches id.
	MarkRead(ctx context.Context, id string, at time.Time) error
}
