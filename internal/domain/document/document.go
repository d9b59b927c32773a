package document

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Zhima-Mochi/pizzeria/internal/pkg/apperr"
)

const (
	Users  = "users"
	Tokens = "tokens"
	Menu   = "menu"
	Carts  = "cart"
	Orders = "orders"
)

// Collections lists every collection the application persists.
var Collections = []string{Users, Tokens, Menu, Carts, Orders}

var (
	ErrNotFound = apperr.New(apperr.NotFound, "document not found")
	ErrExists   = apperr.New(apperr.Conflict, "document already exists")
	ErrStorage  = apperr.New(apperr.Storage, "storage failure")
)

// EmptyRecord replaces documents that cannot be parsed during ReadAll.
var EmptyRecord = []byte("{}")

// Store keeps one JSON document per (collection, key). Operations are atomic for a
// single document only.
type Store interface {
	// Create fails with ErrExists when the key is already present.
	Create(ctx context.Context, collection, key string, doc []byte) error
	Read(ctx context.Context, collection, key string) ([]byte, error)
	// Update fails with ErrNotFound when the key is absent.
	Update(ctx context.Context, collection, key string, doc []byte) error
	Delete(ctx context.Context, collection, key string) error
	List(ctx context.Context, collection string) ([]string, error)
	// ReadAll returns every document of the collection, substituting EmptyRecord
	// for documents that are not valid JSON.
	ReadAll(ctx context.Context, collection string) ([][]byte, error)
}

// ValidateKey rejects names that could escape the collection directory.
func ValidateKey(name string) error {
	switch {
	case strings.TrimSpace(name) == "":
		return apperr.New(apperr.Validation, "key is required")
	case strings.ContainsAny(name, `/\`), strings.Contains(name, ".."), strings.HasPrefix(name, "."):
		return apperr.New(apperr.Validation, fmt.Sprintf("invalid key %q", name))
	case strings.ContainsRune(name, 0):
		return apperr.New(apperr.Validation, "invalid key")
	}
	return nil
}

// StorageError wraps an I/O failure so it classifies as ErrStorage.
func StorageError(op, collection, key string, err error) error {
	return fmt.Errorf("%s %s/%s: %w", op, collection, key, errors.Join(ErrStorage, err))
}
