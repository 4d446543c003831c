package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/civichub/society-api/internal/core/domain"
	"github.com/civichub/society-api/internal/core/ports"
	"github.com/civichub/society-api/internal/metrics"
)

const (
	titleComplaintRaised  = "New Complaint Raised"
	titleComplaintUpdated = "Complaint Status Updated"
)

// ComplaintService is the complaint lifecycle engine.
type ComplaintService struct {
	complaints    ports.ComplaintRepository
	users         ports.UserRepository
	notifications ports.NotificationService
	idempotency   ports.IdempotencyStore
	log           zerolog.Logger
}

// NewComplaintService returns a ComplaintService. idempotency may be nil, in
// which case Idempotency-Key headers are ignored.
func NewComplaintService(
	complaints ports.ComplaintRepository,
	users ports.UserRepository,
	notifications ports.NotificationService,
	idempotency ports.IdempotencyStore,
	log zerolog.Logger,
) *ComplaintService {
	return &ComplaintService{
		complaints:    complaints,
		users:         users,
		notifications: notifications,
		idempotency:   idempotency,
		log:           log,
	}
}

// Submit creates a PENDING complaint owned by caller and notifies every admin.
// If the idempotency key was already used by the same caller, the earlier
// complaint is returned without side effects.
func (s *ComplaintService) Submit(ctx context.Context, caller domain.Identity, in ports.SubmitComplaintInput) (*ports.SubmitComplaintResult, error) {
	if err := requireRole(caller, domain.RoleResident); err != nil {
		return nil, fmt.Errorf("submit complaint: %w", err)
	}

	issue := strings.TrimSpace(in.Issue)
	if issue == "" {
		return nil, domain.ValidationError("issue is required")
	}
	if utf8.RuneCountInString(issue) > domain.MaxIssueLength {
		return nil, domain.ValidationError("issue must be at most %d characters", domain.MaxIssueLength)
	}

	if replay, err := s.replay(ctx, caller.SubjectID, in.IdempotencyKey); err != nil {
		return nil, fmt.Errorf("submit complaint: %w", err)
	} else if replay != nil {
		return &ports.SubmitComplaintResult{Complaint: replay, Replayed: true}, nil
	}

	owner, err := s.users.FindByID(ctx, caller.SubjectID)
	if err != nil {
		return nil, fmt.Errorf("submit complaint: %w", err)
	}

	now := time.Now().UTC()
	complaint := &domain.Complaint{
		ID:        newID(),
		OwnerID:   owner.ID,
		Issue:     issue,
		Status:    domain.StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.complaints.Create(ctx, complaint); err != nil {
		s.log.Error().Err(err).Str("user_id", owner.ID).Msg("failed to create complaint")
		return nil, fmt.Errorf("submit complaint: %w", err)
	}
	metrics.ComplaintsSubmittedTotal.Inc()

	s.log.Info().Str("complaint_id", complaint.ID).Str("user_id", owner.ID).Msg("complaint submitted")

	if err := s.notifyAdmins(ctx, owner, complaint); err != nil {
		return nil, fmt.Errorf("submit complaint %s: %w", complaint.ID, err)
	}

	// Bind the key only after every admin was notified.
	if in.IdempotencyKey != "" && s.idempotency != nil {
		if err := s.idempotency.Remember(ctx, owner.ID, in.IdempotencyKey, complaint.ID); err != nil {
			s.log.Warn().Err(err).Str("complaint_id", complaint.ID).Msg("failed to store idempotency key")
		}
	}

	return &ports.SubmitComplaintResult{Complaint: complaint}, nil
}

// replay returns the complaint previously created under key, or nil when the
// key is unused or idempotency is disabled. Lookup failures are logged and
// treated as a miss.
func (s *ComplaintService) replay(ctx context.Context, ownerID, key string) (*domain.Complaint, error) {
	if key == "" || s.idempotency == nil {
		return nil, nil
	}

	id, found, err := s.idempotency.Lookup(ctx, ownerID, key)
	if err != nil {
		s.log.Warn().Err(err).Str("user_id", ownerID).Msg("idempotency lookup failed, processing anyway")
		return nil, nil
	}
	if !found {
		return nil, nil
	}

	existing, err := s.complaints.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrComplaintNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if existing.OwnerID != ownerID {
		return nil, nil
	}

	s.log.Info().Str("idempotency_key", key).Str("complaint_id", existing.ID).Msg("idempotent replay")
	return existing, nil
}

func (s *ComplaintService) notifyAdmins(ctx context.Context, owner *domain.User, c *domain.Complaint) error {
	admins, err := s.users.ListByRole(ctx, domain.RoleAdmin)
	if err != nil {
		return fmt.Errorf("list admins: %w", err)
	}
	if len(admins) == 0 {
		s.log.Warn().Str("complaint_id", c.ID).Msg("no admin accounts to notify")
		return nil
	}

	message := raisedMessage(owner, c.Issue)
	for _, admin := range admins {
		if _, err := s.notifications.Notify(ctx, admin.ID, domain.CategoryComplaint, titleComplaintRaised, message); err != nil {
			return err
		}
	}
	return nil
}

func raisedMessage(owner *domain.User, issue string) string {
	if owner.UnitNumber == "" {
		return fmt.Sprintf("%s raised: %s", owner.Name, issue)
	}
	return fmt.Sprintf("%s (unit %s) raised: %s", owner.Name, owner.UnitNumber, issue)
}

// ListOwn returns only the complaints owned by ownerID, newest first.
func (s *ComplaintService) ListOwn(ctx context.Context, ownerID string) ([]*domain.Complaint, error) {
	list, err := s.complaints.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list own complaints: %w", err)
	}
	if list == nil {
		list = []*domain.Complaint{}
	}
	return list, nil
}

// ListAll returns every complaint, newest first, joined with its owner.
func (s *ComplaintService) ListAll(ctx context.Context, caller domain.Identity) ([]domain.ComplaintView, error) {
	if err := requireRole(caller, domain.RoleAdmin); err != nil {
		return nil, fmt.Errorf("list complaints: %w", err)
	}

	list, err := s.complaints.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list complaints: %w", err)
	}

	ids := make([]string, 0, len(list))
	seen := make(map[string]struct{}, len(list))
	for _, c := range list {
		if _, ok := seen[c.OwnerID]; !ok {
			seen[c.OwnerID] = struct{}{}
			ids = append(ids, c.OwnerID)
		}
	}

	owners, err := s.users.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("list complaints: load owners: %w", err)
	}

	views := make([]domain.ComplaintView, 0, len(list))
	for _, c := range list {
		view := domain.ComplaintView{Complaint: *c}
		if u, ok := owners[c.OwnerID]; ok {
			view.Owner = &domain.ComplaintOwner{ID: u.ID, Name: u.Name, Email: u.Email}
		}
		views = append(views, view)
	}
	return views, nil
}

// UpdateStatus moves a complaint along the state machine and notifies its owner.
func (s *ComplaintService) UpdateStatus(ctx context.Context, caller domain.Identity, complaintID, status string) (*domain.Complaint, error) {
	if err := requireRole(caller, domain.RoleAdmin); err != nil {
		return nil, fmt.Errorf("update complaint: %w", err)
	}

	next, ok := domain.ParseComplaintStatus(status)
	if !ok {
		return nil, domain.ValidationError("status must be one of %s, %s, %s, %s",
			domain.StatusPending, domain.StatusInProgress, domain.StatusResolved, domain.StatusRejected)
	}

	current, err := s.complaints.FindByID(ctx, complaintID)
	if err != nil {
		return nil, fmt.Errorf("update complaint: %w", err)
	}

	if !current.Status.CanTransitionTo(next) {
		metrics.ComplaintTransitionsRejectedTotal.WithLabelValues(string(current.Status), string(next)).Inc()
		if current.Status.IsTerminal() {
			return nil, fmt.Errorf("update complaint: %w (%s is terminal)", domain.ErrInvalidTransition, current.Status)
		}
		return nil, fmt.Errorf("update complaint: %w (from %s to %s)", domain.ErrInvalidTransition, current.Status, next)
	}

	updated, err := s.complaints.UpdateStatus(ctx, complaintID, current.Status, next, time.Now().UTC())
	if err != nil {
		return nil, fmt.Errorf("update complaint: %w", err)
	}
	metrics.ComplaintTransitionsTotal.WithLabelValues(string(current.Status), string(next)).Inc()

	s.log.Info().
		Str("complaint_id", complaintID).
		Str("from", string(current.Status)).
		Str("to", string(next)).
		Str("admin_id", caller.SubjectID).
		Msg("complaint status updated")

	// The status change is committed; a failed notification does not undo it.
	message := fmt.Sprintf("Your complaint \"%s\" is now %s.", updated.Issue, next)
	if _, err := s.notifications.Notify(ctx, updated.OwnerID, domain.CategoryComplaint, titleComplaintUpdated, message); err != nil {
		s.log.Error().Err(err).Str("complaint_id", complaintID).Str("user_id", updated.OwnerID).Msg("failed to notify complaint owner")
	}

	return updated, nil
}
