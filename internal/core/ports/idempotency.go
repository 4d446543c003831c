package ports

import "context"

// IdempotencyStore remembers which complaint a client-supplied Idempotency-Key
// produced, scoped per owner.
type IdempotencyStore interface {
	Lookup(ctx context.Context, ownerID, key string) (complaintID string, found bool, err error)
	Remember(ctx context.Context, ownerID, key, complaintID string) error
}
