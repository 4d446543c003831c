package service

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/civichub/society-api/internal/core/domain"
)

var discardLogger = zerolog.Nop()

// ---------------------------------------------------------------------------
// Users
// ---------------------------------------------------------------------------

type stubUserRepo struct {
	byID      map[string]*domain.User
	createErr error
	listErr   error
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{byID: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

func (r *stubUserRepo) add(u *domain.User) *domain.User {
	r.byID[u.ID] = cloneUser(u)
	return u
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	if r.createErr != nil {
		return nil, r.createErr
	}
	for _, u := range r.byID {
		if u.Email == user.Email {
			return nil, domain.ErrEmailTaken
		}
	}
	r.byID[user.ID] = cloneUser(user)
	return cloneUser(user), nil
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, u := range r.byID {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	if u, ok := r.byID[id]; ok {
		return cloneUser(u), nil
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) FindByIDs(_ context.Context, ids []string) (map[string]*domain.User, error) {
	out := make(map[string]*domain.User, len(ids))
	for _, id := range ids {
		if u, ok := r.byID[id]; ok {
			out[id] = cloneUser(u)
		}
	}
	return out, nil
}

func (r *stubUserRepo) ListByRole(_ context.Context, role domain.Role) ([]*domain.User, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}
	var out []*domain.User
	for _, u := range r.byID {
		if u.Role == role {
			out = append(out, cloneUser(u))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// ---------------------------------------------------------------------------
// Complaints
// ---------------------------------------------------------------------------

type stubComplaintRepo struct {
	items     []*domain.Complaint
	createErr error
	updateErr error
	updates   int
	afterFind func()
}

func newStubComplaintRepo() *stubComplaintRepo {
	return &stubComplaintRepo{}
}

func (r *stubComplaintRepo) Create(_ context.Context, c *domain.Complaint) error {
	if r.createErr != nil {
		return r.createErr
	}
	clone := *c
	r.items = append(r.items, &clone)
	return nil
}

func (r *stubComplaintRepo) FindByID(_ context.Context, id string) (*domain.Complaint, error) {
	for _, c := range r.items {
		if c.ID == id {
			clone := *c
			if r.afterFind != nil {
				r.afterFind()
			}
			return &clone, nil
		}
	}
	return nil, domain.ErrComplaintNotFound
}

func (r *stubComplaintRepo) newestFirst(keep func(*domain.Complaint) bool) []*domain.Complaint {
	var out []*domain.Complaint
	for i := len(r.items) - 1; i >= 0; i-- {
		if keep(r.items[i]) {
			clone := *r.items[i]
			out = append(out, &clone)
		}
	}
	return out
}

func (r *stubComplaintRepo) ListByOwner(_ context.Context, ownerID string) ([]*domain.Complaint, error) {
	return r.newestFirst(func(c *domain.Complaint) bool { return c.OwnerID == ownerID }), nil
}

func (r *stubComplaintRepo) ListAll(_ context.Context) ([]*domain.Complaint, error) {
	return r.newestFirst(func(*domain.Complaint) bool { return true }), nil
}

func (r *stubComplaintRepo) UpdateStatus(_ context.Context, id string, from, to domain.ComplaintStatus, at time.Time) (*domain.Complaint, error) {
	if r.updateErr != nil {
		return nil, r.updateErr
	}
	for _, c := range r.items {
		if c.ID != id {
			continue
		}
		if c.Status != from {
			return nil, domain.ErrInvalidTransition
		}
		c.Status = to
		c.UpdatedAt = at
		r.updates++
		clone := *c
		return &clone, nil
	}
	return nil, domain.ErrComplaintNotFound
}

// ---------------------------------------------------------------------------
// Notifications
// ---------------------------------------------------------------------------

type stubNotificationRepo struct {
	items     []*domain.Notification
	createErr error
}

func (r *stubNotificationRepo) Create(_ context.Context, n *domain.Notification) error {
	if r.createErr != nil {
		return r.createErr
	}
	clone := *n
	r.items = append(r.items, &clone)
	return nil
}

func (r *stubNotificationRepo) FindByID(_ context.Context, id string) (*domain.Notification, error) {
	for _, n := range r.items {
		if n.ID == id {
			clone := *n
			return &clone, nil
		}
	}
	return nil, domain.ErrNotificationNotFound
}

func (r *stubNotificationRepo) ListByRecipient(_ context.Context, recipientID string) ([]*domain.Notification, error) {
	var out []*domain.Notification
	for i := len(r.items) - 1; i >= 0; i-- {
		if r.items[i].RecipientID == recipientID {
			clone := *r.items[i]
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (r *stubNotificationRepo) MarkRead(_ context.Context, id string) error {
	for _, n := range r.items {
		if n.ID == id {
			n.Read = true
			return nil
		}
	}
	return domain.ErrNotificationNotFound
}

func (r *stubNotificationRepo) MarkAllRead(_ context.Context, recipientID string) (int64, error) {
	var n int64
	for _, item := range r.items {
		if item.RecipientID == recipientID && !item.Read {
			item.Read = true
			n++
		}
	}
	return n, nil
}

func (r *stubNotificationRepo) CountUnread(_ context.Context, recipientID string) (int64, error) {
	var n int64
	for _, item := range r.items {
		if item.RecipientID == recipientID && !item.Read {
			n++
		}
	}
	return n, nil
}

func (r *stubNotificationRepo) addressedTo(recipientID string) []*domain.Notification {
	var out []*domain.Notification
	for _, n := range r.items {
		if n.RecipientID == recipientID {
			out = append(out, n)
		}
	}
	return out
}

type stubBroadcaster struct {
	sent []domain.Notification
}

func (b *stubBroadcaster) Enqueue(n domain.Notification) {
	b.sent = append(b.sent, n)
}

// ---------------------------------------------------------------------------
// Idempotency
// ---------------------------------------------------------------------------

type stubIdempotency struct {
	keys      map[string]string
	lookupErr error
}

func newStubIdempotency() *stubIdempotency {
	return &stubIdempotency{keys: make(map[string]string)}
}

func (s *stubIdempotency) Lookup(_ context.Context, ownerID, key string) (string, bool, error) {
	if s.lookupErr != nil {
		return "", false, s.lookupErr
	}
	id, ok := s.keys[ownerID+":"+key]
	return id, ok, nil
}

func (s *stubIdempotency) Remember(_ context.Context, ownerID, key, complaintID string) error {
	s.keys[ownerID+":"+key] = complaintID
	return nil
}

var errDBDown = errors.New("db unavailable")
