package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/civichub/society-api/internal/core/domain"
)

// DefaultIdempotencyTTL bounds how long a key replays its complaint.
const DefaultIdempotencyTTL = 24 * time.Hour

// IdempotencyStore implements ports.IdempotencyStore backed by Redis.
// Key format: idem:complaint:<owner_id>:<idempotency_key>
type IdempotencyStore struct {
	client redis.UniversalClient
	ttl    time.Duration
}

func NewIdempotencyStore(client redis.UniversalClient, ttl time.Duration) *IdempotencyStore {
	if ttl <= 0 {
		ttl = DefaultIdempotencyTTL
	}
	return &IdempotencyStore{client: client, ttl: ttl}
}

// Lookup returns the complaint id stored for key, if any.
func (s *IdempotencyStore) Lookup(ctx context.Context, ownerID, key string) (string, bool, error) {
	id, err := s.client.Get(ctx, s.key(ownerID, key)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, domain.StorageError("idempotency lookup", err)
	}
	return id, true, nil
}

// Remember records complaintID under key. An existing entry is kept so the
// first submission wins.
func (s *IdempotencyStore) Remember(ctx context.Context, ownerID, key, complaintID string) error {
	if err := s.client.SetNX(ctx, s.key(ownerID, key), complaintID, s.ttl).Err(); err != nil {
		return domain.StorageError("idempotency remember", err)
	}
	return nil
}

func (s *IdempotencyStore) key(ownerID, key string) string {
	return fmt.Sprintf("idem:complaint:%s:%s", ownerID, key)
}
