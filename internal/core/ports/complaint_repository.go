package ports

import (
	"context"
	"time"

	"github.com/civichub/society-api/internal/core/domain"
)

// ComplaintRepository defines persistence operations for complaints.
// List methods return complaints newest first, ties broken by ID descending.
type ComplaintRepository interface {
	Create(ctx context.Context, c *domain.Complaint) error
	FindByID(ctx context.Context, id string) (*domain.Complaint, error)
	ListByOwner(ctx context.Context, ownerID string) ([]*domain.Complaint, error)
	ListAll(ctx context.Context) ([]*domain.Complaint, error)

	// UpdateStatus sets the status of complaint id to `to` only if it is still `from`.
	// Returns domain.ErrComplaintNotFound when id does not exist and
	// domain.ErrInvalidTransition when the stored status no longer equals from.
	UpdateStatus(ctx context.Context, id string, from, to domain.ComplaintStatus, at time.Time) (*domain.Complaint, error)
}
