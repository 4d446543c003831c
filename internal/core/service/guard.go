package service

import (
	"fmt"
	"strings"

	"github.com/civichub/society-api/internal/core/domain"
	"github.com/civichub/society-api/internal/core/ports"
)

// Guard authenticates raw tokens and enforces exact role requirements.
type Guard struct {
	tokens ports.TokenVerifier
}

func NewGuard(tokens ports.TokenVerifier) *Guard {
	return &Guard{tokens: tokens}
}

// Authenticate accepts either "Bearer <token>" or the bare token.
func (g *Guard) Authenticate(raw string) (domain.Identity, error) {
	token := strings.TrimSpace(raw)
	if scheme, rest, ok := strings.Cut(token, " "); ok && strings.EqualFold(scheme, "bearer") {
		token = strings.TrimSpace(rest)
	}
	if token == "" {
		return domain.Identity{}, domain.ErrUnauthenticated
	}
	return g.tokens.Verify(token)
}

func (g *Guard) RequireRole(identity domain.Identity, role domain.Role) error {
	return requireRole(identity, role)
}

// requireRole is an exact match: roles are disjoint capability sets.
func requireRole(identity domain.Identity, role domain.Role) error {
	if identity.Role != role {
		return fmt.Errorf("%w: requires role %s", domain.ErrForbidden, role)
	}
	return nil
}
