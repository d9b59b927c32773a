package token

import (
	"time"

	"github.com/Zhima-Mochi/pizzeria/internal/pkg/apperr"
)

// IDLength is the length of token, cart and order identifiers.
const IDLength = 20

var (
	ErrNotFound = apperr.New(apperr.NotFound, "token not found")
	ErrExpired  = apperr.New(apperr.Auth, "token has already expired")
	ErrInvalid  = apperr.New(apperr.Auth, "missing required token in header, or token is invalid")
)

type Token struct {
	ID       string    `json:"id"`
	Username string    `json:"username"`
	Expires  time.Time `json:"expires"`
}

func New(id, username string, now time.Time, ttl time.Duration) *Token {
	return &Token{
		ID:       id,
		Username: username,
		Expires:  now.Add(ttl).UTC(),
	}
}

// ValidAt reports whether the token is still usable at now.
func (t *Token) ValidAt(now time.Time) bool {
	return now.Before(t.Expires)
}

// Extend moves the expiry to now+ttl. Expired tokens cannot be extended.
func (t *Token) Extend(now time.Time, ttl time.Duration) error {
	if !t.ValidAt(now) {
		return ErrExpired
	}
	t.Expires = now.Add(ttl).UTC()
	return nil
}

// WellFormedID checks the identifier shape before any lookup.
func WellFormedID(id string) bool {
	if len(id) != IDLength {
		return false
	}
	for _, r := range id {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return false
		}
	}
	return true
}
