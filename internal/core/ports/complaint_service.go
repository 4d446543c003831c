package ports

import (
	"context"

	"github.com/civichub/society-api/internal/core/domain"
)

// SubmitComplaintInput is the DTO passed from the transport layer on submission.
type SubmitComplaintInput struct {
	Issue          string
	IdempotencyKey string // optional
}

// SubmitComplaintResult is returned by Submit.
type SubmitComplaintResult struct {
	Complaint *domain.Complaint
	// Replayed is true when the Idempotency-Key matched an earlier submission.
	Replayed bool
}

// ComplaintService owns the complaint lifecycle.
type ComplaintService interface {
	Submit(ctx context.Context, caller domain.Identity, input SubmitComplaintInput) (*SubmitComplaintResult, error)
	ListOwn(ctx context.Context, ownerID string) ([]*domain.Complaint, error)
	ListAll(ctx context.Context, caller domain.Identity) ([]domain.ComplaintView, error)
	UpdateStatus(ctx context.Context, caller domain.Identity, complaintID, status string) (*domain.Complaint, error)
}
