package worker

import (
	"context"

	"golang.org/x/sync/semaphore"

	"github.com/coursehub/course-service/internal/auth"
)

// HashPool bounds concurrent bcrypt work so a burst of logins cannot pin
// every scheduler thread on hashing. Cancellation is honored while waiting
// for a slot; a hash already running is left to finish.
type HashPool struct {
	hasher *auth.Hasher
	sem    *semaphore.Weighted
}

// NewHashPool wraps the hasher with a concurrency limit.
func NewHashPool(hasher *auth.Hasher, workers int) *HashPool {
	if workers <= 0 {
		workers = 1
	}
	return &HashPool{hasher: hasher, sem: semaphore.NewWeighted(int64(workers))}
}

// Hash produces a salted digest inside the pool.
func (p *HashPool) Hash(ctx context.Context, password string) (string, error) {
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return "", err
	}
	defer p.sem.Release(1)
	return p.hasher.Hash(password)
}

// Verify checks a password against a digest inside the pool.
func (p *HashPool) Verify(ctx context.Context, password, digest string) (bool, error) {
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return false, err
	}
	defer p.sem.Release(1)
	return p.hasher.Verify(password, digest)
}
