// Package documenttest holds the behaviour every document.Store must share.
package documenttest

import (
	"context"
	"errors"
	"testing"

	"github.com/Zhima-Mochi/pizzeria/internal/domain/document"
	"github.com/Zhima-Mochi/pizzeria/internal/pkg/apperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Run exercises a fresh store returned by newStore for every subtest.
func Run(t *testing.T, newStore func(t *testing.T) document.Store) {
	ctx := context.Background()

	t.Run("create is exclusive", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Create(ctx, document.Users, "alice", []byte(`{"username":"alice"}`)))

		err := s.Create(ctx, document.Users, "alice", []byte(`{"username":"other"}`))
		assert.True(t, errors.Is(err, document.ErrExists))
		assert.True(t, errors.Is(err, apperr.Conflict))

		got, err := s.Read(ctx, document.Users, "alice")
		require.NoError(t, err)
		assert.JSONEq(t, `{"username":"alice"}`, string(got))
	})

	t.Run("read missing", func(t *testing.T) {
		s := newStore(t)
		_, err := s.Read(ctx, document.Users, "nobody")
		assert.True(t, errors.Is(err, document.ErrNotFound))
		assert.True(t, errors.Is(err, apperr.NotFound))
	})

	t.Run("update requires existing", func(t *testing.T) {
		s := newStore(t)
		err := s.Update(ctx, document.Menu, "Margherita", []byte(`{}`))
		assert.True(t, errors.Is(err, document.ErrNotFound))

		require.NoError(t, s.Create(ctx, document.Menu, "Margherita", []byte(`{"price":10,"description":"a long description"}`)))
		require.NoError(t, s.Update(ctx, document.Menu, "Margherita", []byte(`{"price":12}`)))

		got, err := s.Read(ctx, document.Menu, "Margherita")
		require.NoError(t, err)
		assert.JSONEq(t, `{"price":12}`, string(got))
	})

	t.Run("delete requires existing", func(t *testing.T) {
		s := newStore(t)
		assert.True(t, errors.Is(s.Delete(ctx, document.Carts, "alice"), document.ErrNotFound))

		require.NoError(t, s.Create(ctx, document.Carts, "alice", []byte(`{}`)))
		require.NoError(t, s.Delete(ctx, document.Carts, "alice"))

		_, err := s.Read(ctx, document.Carts, "alice")
		assert.True(t, errors.Is(err, document.ErrNotFound))
	})

	t.Run("list and read all", func(t *testing.T) {
		s := newStore(t)
		keys, err := s.List(ctx, document.Menu)
		require.NoError(t, err)
		assert.Empty(t, keys)

		require.NoError(t, s.Create(ctx, document.Menu, "b", []byte(`{"name":"b"}`)))
		require.NoError(t, s.Create(ctx, document.Menu, "a", []byte(`{"name":"a"}`)))
		require.NoError(t, s.Create(ctx, document.Menu, "c", []byte(`not json`)))

		keys, err = s.List(ctx, document.Menu)
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b", "c"}, keys)

		docs, err := s.ReadAll(ctx, document.Menu)
		require.NoError(t, err)
		require.Len(t, docs, 3)
		assert.JSONEq(t, `{"name":"a"}`, string(docs[0]))
		assert.JSONEq(t, `{"name":"b"}`, string(docs[1]))
		assert.JSONEq(t, `{}`, string(docs[2]))
	})

	t.Run("rejects unsafe keys", func(t *testing.T) {
		s := newStore(t)
		for _, key := range []string{"", "  ", "../users/alice", "a/b", `a\b`, ".hidden"} {
			err := s.Create(ctx, document.Users, key, []byte(`{}`))
			assert.Truef(t, errors.Is(err, apperr.Validation), "key %q: %v", key, err)
		}
	})

	t.Run("honours cancelled context", func(t *testing.T) {
		s := newStore(t)
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		assert.ErrorIs(t, s.Create(cctx, document.Users, "alice", []byte(`{}`)), context.Canceled)
	})
}
