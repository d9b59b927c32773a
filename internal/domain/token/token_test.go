package token

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidAt(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	tok := New("abcdefghij0123456789", "alice", now, time.Hour)

	assert.True(t, tok.ValidAt(now))
	assert.True(t, tok.ValidAt(now.Add(59*time.Minute)))
	assert.False(t, tok.ValidAt(now.Add(time.Hour)))
	assert.False(t, tok.ValidAt(now.Add(2*time.Hour)))
}

func TestExtend(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	tok := New("abcdefghij0123456789", "alice", now, time.Hour)

	later := now.Add(30 * time.Minute)
	require.NoError(t, tok.Extend(later, 24*time.Hour))
	assert.Equal(t, later.Add(24*time.Hour), tok.Expires)

	err := tok.Extend(later.Add(25*time.Hour), 24*time.Hour)
	assert.True(t, errors.Is(err, ErrExpired))
}

func TestWellFormedID(t *testing.T) {
	assert.True(t, WellFormedID("abcdefghij0123456789"))
	assert.False(t, WellFormedID("abc"))
	assert.False(t, WellFormedID("ABCDEFGHIJ0123456789"))
	assert.False(t, WellFormedID("abcdefghij012345678/"))
}
