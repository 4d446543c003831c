package ports

import (
	"context"

	"github.com/civichub/society-api/internal/core/domain"
)

// NotificationService records and serves per-user notifications.
type NotificationService interface {
	Notify(ctx context.Context, recipientID string, category domain.NotificationCategory, title, message string) (*domain.Notification, error)
	MarkRead(ctx context.Context, recipientID, notificationID string) error
	MarkAllRead(ctx context.Context, recipientID string) (int64, error)
	ListFor(ctx context.Context, recipientID string) ([]*domain.Notification, error)
	UnreadCount(ctx context.Context, recipientID string) (int64, error)
}

// NotificationBroadcaster fans persisted notifications out to external
// subscribers. Enqueue must not block the caller.
type NotificationBroadcaster interface {
	Enqueue(n domain.Notification)
}
