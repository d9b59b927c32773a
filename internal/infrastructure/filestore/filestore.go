// Package filestore implements document.Store with one JSON file per document
// at <baseDir>/<collection>/<key>.json.
package filestore

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Zhima-Mochi/pizzeria/internal/domain/document"
)

const ext = ".json"

type Store struct {
	baseDir string
}

var _ document.Store = (*Store)(nil)

// New prepares baseDir and a directory for every collection.
func New(baseDir string, collections ...string) (*Store, error) {
	if len(collections) == 0 {
		collections = document.Collections
	}
	for _, c := range collections {
		if err := document.ValidateKey(c); err != nil {
			return nil, err
		}
		if err := os.MkdirAll(filepath.Join(baseDir, c), 0o755); err != nil {
			return nil, document.StorageError("mkdir", c, "", err)
		}
	}
	return &Store{baseDir: baseDir}, nil
}

func (s *Store) path(collection, key string) (string, error) {
	if err := document.ValidateKey(collection); err != nil {
		return "", err
	}
	if err := document.ValidateKey(key); err != nil {
		return "", err
	}
	return filepath.Join(s.baseDir, collection, key+ext), nil
}

func (s *Store) Create(ctx context.Context, collection, key string, doc []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p, err := s.path(collection, key)
	if err != nil {
		return err
	}
	f, err := os.OpenFile(p, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return document.ErrExists
		}
		return document.StorageError("create", collection, key, err)
	}
	if _, err := f.Write(doc); err != nil {
		_ = f.Close()
		return document.StorageError("write", collection, key, err)
	}
	if err := f.Close(); err != nil {
		return document.StorageError("close", collection, key, err)
	}
	return nil
}

func (s *Store) Read(ctx context.Context, collection, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p, err := s.path(collection, key)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, document.ErrNotFound
		}
		return nil, document.StorageError("read", collection, key, err)
	}
	return data, nil
}

func (s *Store) Update(ctx context.Context, collection, key string, doc []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p, err := s.path(collection, key)
	if err != nil {
		return err
	}
	// No O_CREATE: updating an absent document must fail.
	f, err := os.OpenFile(p, os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return document.ErrNotFound
		}
		return document.StorageError("open", collection, key, err)
	}
	if _, err := f.Write(doc); err != nil {
		_ = f.Close()
		return document.StorageError("write", collection, key, err)
	}
	if err := f.Close(); err != nil {
		return document.StorageError("close", collection, key, err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, collection, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p, err := s.path(collection, key)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return document.ErrNotFound
		}
		return document.StorageError("delete", collection, key, err)
	}
	return nil
}

func (s *Store) List(ctx context.Context, collection string) ([]string, error) {
	entries, err := s.entries(ctx, collection)
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(entries))
	for _, name := range entries {
		keys = append(keys, strings.TrimSuffix(name, ext))
	}
	return keys, nil
}

func (s *Store) ReadAll(ctx context.Context, collection string) ([][]byte, error) {
	entries, err := s.entries(ctx, collection)
	if err != nil {
		return nil, err
	}
	dir := filepath.Join(s.baseDir, collection)
	docs := make([][]byte, 0, len(entries))
	for _, name := range entries {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				// deleted between listing and reading
				continue
			}
			return nil, document.StorageError("read", collection, name, err)
		}
		if !json.Valid(data) {
			data = document.EmptyRecord
		}
		docs = append(docs, data)
	}
	return docs, nil
}

// entries returns the sorted *.json file names of a collection.
func (s *Store) entries(ctx context.Context, collection string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := document.ValidateKey(collection); err != nil {
		return nil, err
	}
	dirEntries, err := os.ReadDir(filepath.Join(s.baseDir, collection))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, document.StorageError("list", collection, "", err)
	}
	names := make([]string, 0, len(dirEntries))
	for _, e := range dirEntries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ext) {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names, nil
}
