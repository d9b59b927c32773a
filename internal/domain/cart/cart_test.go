package cart

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func TestUpsertAppendReplaceRemove(t *testing.T) {
	c := New("abcdefghij0123456789", "alice")
	assert.Equal(t, StatusCreated, c.Status)

	require.NoError(t, c.Upsert("Margherita", 2, nil))
	require.NoError(t, c.Upsert("Pepperoni", 1, nil))
	assert.Equal(t, []LineItem{{"Margherita", 2}, {"Pepperoni", 1}}, c.Items)
	assert.Equal(t, StatusModified, c.Status)

	require.NoError(t, c.Upsert("Hawaii", 3, ptr(0)))
	assert.Equal(t, []LineItem{{"Hawaii", 3}, {"Pepperoni", 1}}, c.Items)

	require.NoError(t, c.Upsert("", 0, ptr(1)))
	assert.Equal(t, []LineItem{{"Hawaii", 3}}, c.Items)
}

func TestUpsertValidation(t *testing.T) {
	c := New("abcdefghij0123456789", "alice")

	assert.ErrorIs(t, c.Upsert("Margherita", 0, nil), ErrInvalidQuantity)
	assert.ErrorIs(t, c.Upsert("Margherita", -1, nil), ErrInvalidQuantity)
	assert.ErrorIs(t, c.Upsert("  ", 1, nil), ErrMissingName)
	assert.ErrorIs(t, c.Upsert("Margherita", 1, ptr(0)), ErrInvalidIndex)

	require.NoError(t, c.Upsert("Margherita", 1, nil))
	assert.ErrorIs(t, c.Upsert("Margherita", 1, ptr(1)), ErrInvalidIndex)
	assert.ErrorIs(t, c.Upsert("Margherita", 1, ptr(-1)), ErrInvalidIndex)
	assert.Len(t, c.Items, 1)
}

func TestRecalculate(t *testing.T) {
	c := New("abcdefghij0123456789", "alice")
	require.NoError(t, c.SetItems([]LineItem{
		{Name: "Margherita", Quantity: 2},
		{Name: "Ghost", Quantity: 5},
		{Name: "Pepperoni", Quantity: 1},
	}))

	unresolved := c.Recalculate(map[string]float64{"Margherita": 10, "Pepperoni": 12.5})

	assert.Equal(t, 32.5, c.Total)
	assert.Equal(t, []string{"Ghost"}, unresolved)
}

func TestSnapshotIsIndependent(t *testing.T) {
	c := New("abcdefghij0123456789", "alice")
	require.NoError(t, c.Upsert("Margherita", 2, nil))

	snap := c.Snapshot()
	require.NoError(t, c.Upsert("Pepperoni", 1, ptr(0)))

	assert.Equal(t, "Margherita", snap.Items[0].Name)
}
