package ports

import (
	"context"

	"github.com/civichub/society-api/internal/core/domain"
)

// UserRepository defines the persistence operations for users.
// Emails are stored and queried in normalized form.
type UserRepository interface {
	// Create inserts a new user and returns it with its ID set.
	// Returns domain.ErrEmailTaken when the email is already registered.
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	// FindByIDs returns the users found for ids keyed by ID; missing IDs are skipped.
	FindByIDs(ctx context.Context, ids []string) (map[string]*domain.User, error)
	// ListByRole returns every user holding role.
	ListByRole(ctx context.Context, role domain.Role) ([]*domain.User, error)
}
