package memory

import (
	"context"
	"encoding/json"
	"sort"
	"sync"

	"github.com/Zhima-Mochi/pizzeria/internal/domain/document"
)

// Documents is an in-process document.Store with the same semantics as the file
// store. Used by tests and by STORAGE_DRIVER=memory.
type Documents struct {
	mu   sync.RWMutex
	docs map[string]map[string][]byte
}

var _ document.Store = (*Documents)(nil)

func NewDocuments() *Documents {
	return &Documents{docs: make(map[string]map[string][]byte)}
}

func (d *Documents) Create(ctx context.Context, collection, key string, doc []byte) error {
	if err := check(ctx, collection, key); err != nil {
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	c := d.docs[collection]
	if c == nil {
		c = make(map[string][]byte)
		d.docs[collection] = c
	}
	if _, exists := c[key]; exists {
		return document.ErrExists
	}
	c[key] = clone(doc)
	return nil
}

func (d *Documents) Read(ctx context.Context, collection, key string) ([]byte, error) {
	if err := check(ctx, collection, key); err != nil {
		return nil, err
	}

	d.mu.RLock()
	defer d.mu.RUnlock()

	doc, ok := d.docs[collection][key]
	if !ok {
		return nil, document.ErrNotFound
	}
	return clone(doc), nil
}

func (d *Documents) Update(ctx context.Context, collection, key string, doc []byte) error {
	if err := check(ctx, collection, key); err != nil {
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.docs[collection][key]; !ok {
		return document.ErrNotFound
	}
	d.docs[collection][key] = clone(doc)
	return nil
}

func (d *Documents) Delete(ctx context.Context, collection, key string) error {
	if err := check(ctx, collection, key); err != nil {
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.docs[collection][key]; !ok {
		return document.ErrNotFound
	}
	delete(d.docs[collection], key)
	return nil
}

func (d *Documents) List(ctx context.Context, collection string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	d.mu.RLock()
	defer d.mu.RUnlock()

	return d.sortedKeys(collection), nil
}

func (d *Documents) ReadAll(ctx context.Context, collection string) ([][]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	d.mu.RLock()
	defer d.mu.RUnlock()

	keys := d.sortedKeys(collection)
	out := make([][]byte, 0, len(keys))
	for _, k := range keys {
		doc := d.docs[collection][k]
		if !json.Valid(doc) {
			doc = document.EmptyRecord
		}
		out = append(out, clone(doc))
	}
	return out, nil
}

func (d *Documents) sortedKeys(collection string) []string {
	keys := make([]string, 0, len(d.docs[collection]))
	for k := range d.docs[collection] {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func check(ctx context.Context, collection, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := document.ValidateKey(collection); err != nil {
		return err
	}
	return document.ValidateKey(key)
}

func clone(b []byte) []byte {
	if b == nil {
		return nil
	}
	return append([]byte(nil), b...)
}
