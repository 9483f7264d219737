// Package password wraps bcrypt for credential hashing and verification.
package password

import (
	"errors"

	"golang.org/x/crypto/bcrypt"

	dErrors "clavis/pkg/domain-errors"
)

// Hasher hashes and verifies passwords with a tunable bcrypt cost factor.
// bcrypt embeds a random salt in every encoded hash, so hashing the same
// password twice yields two different strings that both verify.
type Hasher struct {
	cost int
}

// New constructs a Hasher. A cost of zero selects bcrypt.DefaultCost;
// out-of-range values are clamped to bcrypt's supported bounds.
func New(cost int) *Hasher {
	switch {
	case cost == 0:
		cost = bcrypt.DefaultCost
	case cost < bcrypt.MinCost:
		cost = bcrypt.MinCost
	case cost > bcrypt.MaxCost:
		cost = bcrypt.MaxCost
	}
	return &Hasher{cost: cost}
}

// Hash produces a salted bcrypt hash of the plaintext.
func (h *Hasher) Hash(plaintext string) (string, error) {
	if plaintext == "" {
		return "", dErrors.New(dErrors.CodeValidation, "password cannot be empty")
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", dErrors.New(dErrors.CodeValidation, "password is too long")
		}
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "could not hash password")
	}
	return string(hashed), nil
}

// Verify reports whether plaintext matches the stored hash. It fails closed:
// a malformed or truncated hash verifies as false rather than erroring, so a
// corrupted row can never authenticate.
func (h *Hasher) Verify(plaintext, storedHash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(storedHash), []byte(plaintext)) == nil
}

// DummyHash is a valid bcrypt hash of a random unknowable value. Login flows
// verify against it when the email is unknown so that the work done is the
// same whether or not the account exists.
const DummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"
