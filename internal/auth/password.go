package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// ErrDigestMalformed reports a stored digest that bcrypt cannot parse at all.
// A parseable digest that simply does not match yields (false, nil) instead.
var ErrDigestMalformed = errors.New("malformed password digest")

// Hasher produces and checks salted bcrypt digests.
type Hasher struct {
	cost int
}

// NewHasher builds a hasher with the configured cost.
func NewHasher(cost int) *Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &Hasher{cost: cost}
}

// Hash returns a salted one-way digest. bcrypt salts internally, so hashing
// the same password twice yields two different digests.
func (h *Hasher) Hash(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hashed), nil
}

// Verify recomputes the digest using the salt embedded in it and compares.
func (h *Hasher) Verify(password, digest string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(digest), []byte(password))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return false, nil
	}
	return false, fmt.Errorf("%w: %v", ErrDigestMalformed, err)
}
