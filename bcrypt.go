package auth

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// Hasher encodes credentials with bcrypt at a configurable work factor.
type Hasher struct {
	cost int
}

// NewHasher returns a Hasher. A cost outside bcrypt's supported range
// falls back to the library default.
func NewHasher(cost int) *Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &Hasher{cost: cost}
}

// NewHasherFromConfig builds a Hasher using the configured work factor.
func NewHasherFromConfig(config Config) *Hasher {
	return NewHasher(config.GetPasswordHashCost())
}

// HashPassword will generate a password hash
func (h *Hasher) HashPassword(password string) (string, error) {
	if password == "" {
		return "", ErrNoEmptyPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	return string(hash), err
}

// ComparePasswordAndHash will validate the given cleartext password
// matches the hashed password
func (h *Hasher) ComparePasswordAndHash(password, hash string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return ErrInvalidCredentials
		}
		return err
	}
	return nil
}

var _ PasswordAuthenticator = (*Hasher)(nil)
