package ports

import (
	"context"

	"github.com/civichub/society-api/internal/core/domain"
)

// NotificationRepository handles notification persistence.
type NotificationRepository interface {
	Create(ctx context.Context, n *domain.Notification) error
	FindByID(ctx context.Context, id string) (*domain.Notification, error)
	// ListByRecipient returns notifications newest first.
	ListByRecipient(ctx context.Context, recipientID string) ([]*domain.Notification, error)
	MarkRead(ctx context.Context, id string) error
	// MarkAllRead flags every unread notification of recipientID and returns how many changed.
	MarkAllRead(ctx context.Context, recipientID string) (int64, error)
	CountUnread(ctx context.Context, recipientID string) (int64, error)
}
