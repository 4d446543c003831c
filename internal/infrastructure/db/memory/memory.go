// Package memory provides process-local implementations of the repository
// ports. Used with STORE=memory for local development and in router tests.
// Data is lost on restart.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/civichub/society-api/internal/core/domain"
)

// sortNewestFirst orders by created_at descending, ties broken by id descending.
func sortNewestFirst[T any](items []T, createdAt func(T) time.Time, id func(T) string) {
	sort.SliceStable(items, func(i, j int) bool {
		ci, cj := createdAt(items[i]), createdAt(items[j])
		if !ci.Equal(cj) {
			return ci.After(cj)
		}
		return id(items[i]) > id(items[j])
	})
}

// ---------------------------------------------------------------------------
// Users
// ---------------------------------------------------------------------------

type UserRepository struct {
	mu      sync.RWMutex
	byID    map[string]domain.User
	byEmail map[string]string
}

func NewUserRepository() *UserRepository {
	return &UserRepository{
		byID:    make(map[string]domain.User),
		byEmail: make(map[string]string),
	}
}

func (r *UserRepository) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.byEmail[user.Email]; taken {
		return nil, domain.ErrEmailTaken
	}
	r.byID[user.ID] = *user
	r.byEmail[user.Email] = user.ID

	created := *user
	return &created, nil
}

func (r *UserRepository) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[email]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	u := r.byID[id]
	return &u, nil
}

func (r *UserRepository) FindByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return &u, nil
}

func (r *UserRepository) FindByIDs(_ context.Context, ids []string) (map[string]*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]*domain.User, len(ids))
	for _, id := range ids {
		if u, ok := r.byID[id]; ok {
			out[id] = &u
		}
	}
	return out, nil
}

func (r *UserRepository) ListByRole(_ context.Context, role domain.Role) ([]*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	users := []*domain.User{}
	for _, u := range r.byID {
		if u.Role == role {
			u := u
			users = append(users, &u)
		}
	}
	sortNewestFirst(users, func(u *domain.User) time.Time { return u.CreatedAt }, func(u *domain.User) string { return u.ID })
	return users, nil
}

// ---------------------------------------------------------------------------
// Complaints
// ---------------------------------------------------------------------------

type ComplaintRepository struct {
	mu    sync.RWMutex
	items map[string]domain.Complaint
}

func NewComplaintRepository() *ComplaintRepository {
	return &ComplaintRepository{items: make(map[string]domain.Complaint)}
}

func (r *ComplaintRepository) Create(_ context.Context, c *domain.Complaint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[c.ID] = *c
	return nil
}

func (r *ComplaintRepository) FindByID(_ context.Context, id string) (*domain.Complaint, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.items[id]
	if !ok {
		return nil, domain.ErrComplaintNotFound
	}
	return &c, nil
}

func (r *ComplaintRepository) ListByOwner(_ context.Context, ownerID string) ([]*domain.Complaint, error) {
	return r.list(func(c domain.Complaint) bool { return c.OwnerID == ownerID }), nil
}

func (r *ComplaintRepository) ListAll(_ context.Context) ([]*domain.Complaint, error) {
	return r.list(func(domain.Complaint) bool { return true }), nil
}

func (r *ComplaintRepository) list(keep func(domain.Complaint) bool) []*domain.Complaint {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []*domain.Complaint{}
	for _, c := range r.items {
		if keep(c) {
			c := c
			out = append(out, &c)
		}
	}
	sortNewestFirst(out, func(c *domain.Complaint) time.Time { return c.CreatedAt }, func(c *domain.Complaint) string { return c.ID })
	return out
}

func (r *ComplaintRepository) UpdateStatus(_ context.Context, id string, from, to domain.ComplaintStatus, at time.Time) (*domain.Complaint, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.items[id]
	if !ok {
		return nil, domain.ErrComplaintNotFound
	}
	if c.Status != from {
		return nil, domain.ErrInvalidTransition
	}
	c.Status = to
	c.UpdatedAt = at
	r.items[id] = c
	return &c, nil
}

// ---------------------------------------------------------------------------
// Notifications
// ---------------------------------------------------------------------------

type NotificationRepository struct {
	mu    sync.RWMutex
	items map[string]domain.Notification
}

func NewNotificationRepository() *NotificationRepository {
	return &NotificationRepository{items: make(map[string]domain.Notification)}
}

func (r *NotificationRepository) Create(_ context.Context, n *domain.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[n.ID] = *n
	return nil
}

func (r *NotificationRepository) FindByID(_ context.Context, id string) (*domain.Notification, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n, ok := r.items[id]
	if !ok {
		return nil, domain.ErrNotificationNotFound
	}
	return &n, nil
}

func (r *NotificationRepository) ListByRecipient(_ context.Context, recipientID string) ([]*domain.Notification, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []*domain.Notification{}
	for _, n := range r.items {
		if n.RecipientID == recipientID {
			n := n
			out = append(out, &n)
		}
	}
	sortNewestFirst(out, func(n *domain.Notification) time.Time { return n.CreatedAt }, func(n *domain.Notification) string { return n.ID })
	return out, nil
}

func (r *NotificationRepository) MarkRead(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	n, ok := r.items[id]
	if !ok {
		return domain.ErrNotificationNotFound
	}
	n.Read = true
	r.items[id] = n
	return nil
}

func (r *NotificationRepository) MarkAllRead(_ context.Context, recipientID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var updated int64
	for id, n := range r.items {
		if n.RecipientID == recipientID && !n.Read {
			n.Read = true
			r.items[id] = n
			updated++
		}
	}
	return updated, nil
}

func (r *NotificationRepository) CountUnread(_ context.Context, recipientID string) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var unread int64
	for _, n := range r.items {
		if n.RecipientID == recipientID && !n.Read {
			unread++
		}
	}
	return unread, nil
}

// ---------------------------------------------------------------------------
// Idempotency
// ---------------------------------------------------------------------------

type idempotencyEntry struct {
	complaintID string
	expiresAt   time.Time
}

// IdempotencyStore keeps idempotency keys in memory with a TTL. Expired
// entries are swept from Remember at most once per sweepEvery.
type IdempotencyStore struct {
	mu         sync.Mutex
	ttl        time.Duration
	sweepEvery time.Duration
	nextSweep  time.Time
	keys       map[string]idempotencyEntry
	now        func() time.Time
}

func NewIdempotencyStore(ttl time.Duration) *IdempotencyStore {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &IdempotencyStore{
		ttl:        ttl,
		sweepEvery: min(ttl, time.Minute),
		keys:       make(map[string]idempotencyEntry),
		now:        time.Now,
	}
}

func (s *IdempotencyStore) Lookup(_ context.Context, ownerID, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := ownerID + "\x00" + key
	e, ok := s.keys[k]
	if !ok {
		return "", false, nil
	}
	if s.now().After(e.expiresAt) {
		delete(s.keys, k)
		return "", false, nil
	}
	return e.complaintID, true, nil
}

func (s *IdempotencyStore) Remember(_ context.Context, ownerID, key, complaintID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if !now.Before(s.nextSweep) {
		s.sweepLocked(now)
		s.nextSweep = now.Add(s.sweepEvery)
	}

	k := ownerID + "\x00" + key
	if e, ok := s.keys[k]; ok && !now.After(e.expiresAt) {
		return nil
	}
	s.keys[k] = idempotencyEntry{complaintID: complaintID, expiresAt: now.Add(s.ttl)}
	return nil
}

// Len reports how many keys are held, expired or not.
func (s *IdempotencyStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.keys)
}

func (s *IdempotencyStore) sweepLocked(now time.Time) {
	for k, e := range s.keys {
		if now.After(e.expiresAt) {
			delete(s.keys, k)
		}
	}
}
