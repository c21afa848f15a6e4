// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// DefaultHashCost is the bcrypt work factor used when none is configured.
const DefaultHashCost = 10

// PasswordHasher produces and checks salted one-way password digests.
//
// # Concurrency
//
// PasswordHasher holds no mutable state and is safe for concurrent use.
// Hashing is CPU-bound and runs on the calling goroutine.
type PasswordHasher struct {
	cost int
}

// NewPasswordHasher creates a hasher with the given bcrypt cost.
// Costs outside bcrypt's accepted range fall back to [DefaultHashCost].
func NewPasswordHasher(cost int) *PasswordHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultHashCost
	}
	return &PasswordHasher{cost: cost}
}

// Hash returns a self-describing digest (algorithm, cost and salt embedded).
// Two calls with the same input produce different digests.
func (hasher *PasswordHasher) Hash(plainTextPassword string) (string, error) {
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(plainTextPassword), hasher.cost)
	if err != nil {
		return "", fmt.Errorf("sec: failed to hash password: %w", err)
	}
	return string(hashedBytes), nil
}

// Verify reports whether plainTextPassword matches digest. A malformed digest
// yields false rather than an error.
func (hasher *PasswordHasher) Verify(plainTextPassword, digest string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(digest), []byte(plainTextPassword))
	return err == nil
}

// Cost returns the configured work factor.
func (hasher *PasswordHasher) Cost() int {
	return hasher.cost
}
