package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/Zhima-Mochi/pizzeria/internal/pkg/apperr"
)

var ErrEmptyPassword = apperr.New(apperr.Validation, "password is required")

// Hasher derives password digests with HMAC-SHA256 keyed by a server secret.
type Hasher struct {
	secret []byte
}

func NewHasher(secret string) *Hasher {
	return &Hasher{secret: []byte(secret)}
}

// Normalize is applied to every password before hashing or matching, so the
// signup and login paths agree. Surrounding whitespace is not significant.
func Normalize(password string) string {
	return strings.TrimSpace(password)
}

// Hash returns the hex digest of the normalized password.
func (h *Hasher) Hash(password string) (string, error) {
	password = Normalize(password)
	if password == "" {
		return "", ErrEmptyPassword
	}
	return hex.EncodeToString(h.sum(password)), nil
}

// Matches reports whether password hashes to digest, in constant time.
func (h *Hasher) Matches(password, digest string) bool {
	password = Normalize(password)
	if password == "" || digest == "" {
		return false
	}
	want, err := hex.DecodeString(digest)
	if err != nil {
		return false
	}
	return hmac.Equal(h.sum(password), want)
}

func (h *Hasher) sum(password string) []byte {
	mac := hmac.New(sha256.New, h.secret)
	mac.Write([]byte(password))
	return mac.Sum(nil)
}
