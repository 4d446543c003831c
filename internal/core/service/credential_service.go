package service

import (
	"context"
	"runtime"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/semaphore"
)

// CredentialService hashes and verifies passwords with bcrypt.
// At most maxConcurrent hash operations run at once; the rest wait on ctx.
type CredentialService struct {
	cost int
	sem  *semaphore.Weighted
}

func NewCredentialService(cost, maxConcurrent int) *CredentialService {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	if maxConcurrent <= 0 {
		maxConcurrent = runtime.NumCPU()
	}
	return &CredentialService{cost: cost, sem: semaphore.NewWeighted(int64(maxConcurrent))}
}

func (s *CredentialService) Hash(ctx context.Context, plaintext string) (string, error) {
	if err := s.sem.Acquire(ctx, 1); err != nil {
		return "", err
	}
	defer s.sem.Release(1)

	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), s.cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func (s *CredentialService) Verify(ctx context.Context, plaintext, hash string) bool {
	if err := s.sem.Acquire(ctx, 1); err != nil {
		return false
	}
	defer s.sem.Release(1)

	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
}
