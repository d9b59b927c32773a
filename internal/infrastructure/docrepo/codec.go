// Package docrepo implements the domain repositories on top of a document.Store.
// Each entity is encoded as one JSON document.
package docrepo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Zhima-Mochi/pizzeria/internal/domain/document"
	"github.com/Zhima-Mochi/pizzeria/internal/pkg/apperr"
)

// collection translates store sentinels into the entity's own errors.
type collection[T any] struct {
	store    document.Store
	name     string
	notFound error
	exists   error
}

func (c collection[T]) insert(ctx context.Context, key string, v *T) error {
	doc, err := json.Marshal(v)
	if err != nil {
		return apperr.Wrap(apperr.Storage, "could not encode "+c.name, err)
	}
	return c.mapErr(c.store.Create(ctx, c.name, key, doc))
}

func (c collection[T]) get(ctx context.Context, key string) (*T, error) {
	doc, err := c.store.Read(ctx, c.name, key)
	if err != nil {
		return nil, c.mapErr(err)
	}
	var v T
	if err := json.Unmarshal(doc, &v); err != nil {
		return nil, apperr.Wrap(apperr.Storage, fmt.Sprintf("corrupt %s document %q", c.name, key), err)
	}
	return &v, nil
}

func (c collection[T]) update(ctx context.Context, key string, v *T) error {
	doc, err := json.Marshal(v)
	if err != nil {
		return apperr.Wrap(apperr.Storage, "could not encode "+c.name, err)
	}
	return c.mapErr(c.store.Update(ctx, c.name, key, doc))
}

func (c collection[T]) delete(ctx context.Context, key string) error {
	return c.mapErr(c.store.Delete(ctx, c.name, key))
}

// all decodes every document, passing each one to keep. Documents that do not
// decode are skipped.
func (c collection[T]) all(ctx context.Context, keep func(*T) bool) ([]*T, error) {
	docs, err := c.store.ReadAll(ctx, c.name)
	if err != nil {
		return nil, c.mapErr(err)
	}
	out := make([]*T, 0, len(docs))
	for _, doc := range docs {
		var v T
		if err := json.Unmarshal(doc, &v); err != nil {
			continue
		}
		if keep(&v) {
			out = append(out, &v)
		}
	}
	return out, nil
}

func (c collection[T]) mapErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, document.ErrNotFound) && c.notFound != nil:
		return c.notFound
	case errors.Is(err, document.ErrExists) && c.exists != nil:
		return c.exists
	default:
		return err
	}
}
