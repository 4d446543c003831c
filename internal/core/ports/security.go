package ports

import (
	"context"
	"time"

	"github.com/civichub/society-api/internal/core/domain"
)

// PasswordHasher hashes and verifies user credentials.
type PasswordHasher interface {
	Hash(ctx context.Context, plaintext string) (string, error)
	// Verify reports whether plaintext matches hash. It never errors on mismatch.
	Verify(ctx context.Context, plaintext, hash string) bool
}

// TokenIssuer signs identity tokens.
type TokenIssuer interface {
	Issue(subjectID string, role domain.Role) (token string, expiresAt time.Time, err error)
}

// TokenVerifier checks signature and expiry of an identity token.
// Failures are domain.ErrTokenMalformed or domain.ErrTokenExpired.
type TokenVerifier interface {
	Verify(token string) (domain.Identity, error)
}

// AccessGuard authenticates raw credentials and enforces role requirements.
type AccessGuard interface {
	Authenticate(raw string) (domain.Identity, error)
	RequireRole(identity domain.Identity, role domain.Role) error
}
