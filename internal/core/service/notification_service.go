package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/civichub/society-api/internal/core/domain"
	"github.com/civichub/society-api/internal/core/ports"
	"github.com/civichub/society-api/internal/metrics"
)

// NotificationService is the notification sink: it persists notifications and
// hands them to an optional broadcaster.
type NotificationService struct {
	repo        ports.NotificationRepository
	broadcaster ports.NotificationBroadcaster
	log         zerolog.Logger
}

// NewNotificationService returns a NotificationService. broadcaster may be nil.
func NewNotificationService(repo ports.NotificationRepository, broadcaster ports.NotificationBroadcaster, log zerolog.Logger) *NotificationService {
	return &NotificationService{repo: repo, broadcaster: broadcaster, log: log}
}

func (s *NotificationService) Notify(ctx context.Context, recipientID string, category domain.NotificationCategory, title, message string) (*domain.Notification, error) {
	if recipientID == "" {
		return nil, domain.ValidationError("recipient is required")
	}
	if strings.TrimSpace(title) == "" {
		return nil, domain.ValidationError("title is required")
	}

	n := &domain.Notification{
		ID:          newID(),
		RecipientID: recipientID,
		Title:       title,
		Message:     message,
		Category:    category,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, n); err != nil {
		return nil, fmt.Errorf("notify %s: %w", recipientID, err)
	}

	metrics.NotificationsCreatedTotal.WithLabelValues(string(category)).Inc()
	if s.broadcaster != nil {
		s.broadcaster.Enqueue(*n)
	}

	s.log.Debug().
		Str("notification_id", n.ID).
		Str("recipient_id", recipientID).
		Str("category", string(category)).
		Msg("notification created")

	return n, nil
}

// MarkRead flags a notification as read. Only its recipient may do so.
func (s *NotificationService) MarkRead(ctx context.Context, recipientID, notificationID string) error {
	n, err := s.repo.FindByID(ctx, notificationID)
	if err != nil {
		return fmt.Errorf("mark read: %w", err)
	}
	if n.RecipientID != recipientID {
		return fmt.Errorf("mark read: %w", domain.ErrForbidden)
	}
	if n.Read {
		return nil
	}
	if err := s.repo.MarkRead(ctx, notificationID); err != nil {
		return fmt.Errorf("mark read: %w", err)
	}
	return nil
}

func (s *NotificationService) MarkAllRead(ctx context.Context, recipientID string) (int64, error) {
	n, err := s.repo.MarkAllRead(ctx, recipientID)
	if err != nil {
		return 0, fmt.Errorf("mark all read: %w", err)
	}
	return n, nil
}

func (s *NotificationService) ListFor(ctx context.Context, recipientID string) ([]*domain.Notification, error) {
	list, err := s.repo.ListByRecipient(ctx, recipientID)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	if list == nil {
		list = []*domain.Notification{}
	}
	return list, nil
}

func (s *NotificationService) UnreadCount(ctx context.Context, recipientID string) (int64, error) {
	n, err := s.repo.CountUnread(ctx, recipientID)
	if err != nil {
		return 0, fmt.Errorf("count unread: %w", err)
	}
	return n, nil
}
