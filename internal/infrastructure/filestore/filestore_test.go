package filestore

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/Zhima-Mochi/pizzeria/internal/domain/document"
	"github.com/Zhima-Mochi/pizzeria/internal/domain/document/documenttest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreContract(t *testing.T) {
	documenttest.Run(t, func(t *testing.T) document.Store {
		s, err := New(t.TempDir())
		require.NoError(t, err)
		return s
	})
}

func TestStoreLayout(t *testing.T) {
	dir := t.TempDir()
	s, err := New(dir)
	require.NoError(t, err)

	for _, c := range document.Collections {
		info, err := os.Stat(filepath.Join(dir, c))
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}

	require.NoError(t, s.Create(context.Background(), document.Tokens, "abcdefghij0123456789", []byte(`{"id":"abcdefghij0123456789"}`)))
	data, err := os.ReadFile(filepath.Join(dir, "tokens", "abcdefghij0123456789.json"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"abcdefghij0123456789"}`, string(data))
}

func TestStoreListIgnoresForeignFiles(t *testing.T) {
	dir := t.TempDir()
	s, err := New(dir, document.Menu)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "menu", "notes.txt"), []byte("x"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "menu", "nested.json"), 0o755))
	require.NoError(t, s.Create(context.Background(), document.Menu, "Margherita", []byte(`{}`)))

	keys, err := s.List(context.Background(), document.Menu)
	require.NoError(t, err)
	assert.Equal(t, []string{"Margherita"}, keys)
}

func TestUpdateTruncates(t *testing.T) {
	ctx := context.Background()
	s, err := New(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, s.Create(ctx, document.Users, "alice", []byte(`{"street":"a very long street name"}`)))
	require.NoError(t, s.Update(ctx, document.Users, "alice", []byte(`{"street":"x"}`)))

	got, err := s.Read(ctx, document.Users, "alice")
	require.NoError(t, err)
	assert.Equal(t, `{"street":"x"}`, string(got))
}
