// Package security provides password hashing, RSA key loading, and session
// token issuance for the dashboard API.
package security

import "golang.org/x/crypto/bcrypt"

// Hasher wraps bcrypt for the password login path. Plaintext passwords must
// never be logged or persisted.
type Hasher struct {
	cost int
}

// NewHasher returns a Hasher with the given bcrypt cost, clamped into the
// range bcrypt accepts. Zero or negative picks the bcrypt default.
func NewHasher(cost int) *Hasher {
	switch {
	case cost <= 0:
		cost = bcrypt.DefaultCost
	case cost < bcrypt.MinCost:
		cost = bcrypt.MinCost
	case cost > bcrypt.MaxCost:
		cost = bcrypt.MaxCost
	}
	return &Hasher{cost: cost}
}

// Hash produces a bcrypt hash of password, suitable for storage.
func (h *Hasher) Hash(password []byte) (string, error) {
	b, err := bcrypt.GenerateFromPassword(password, h.cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Compare reports whether password matches the stored hash. A nil return
// means a match; bcrypt.ErrMismatchedHashAndPassword or a parse error
// otherwise.
func (h *Hasher) Compare(hash string, password []byte) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), password)
}
