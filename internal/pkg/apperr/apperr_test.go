package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindMatching(t *testing.T) {
	err := fmt.Errorf("cart: %w", New(Conflict, "cart already exists"))

	assert.True(t, errors.Is(err, Conflict))
	assert.False(t, errors.Is(err, NotFound))
	assert.Equal(t, Conflict, KindOf(err))
	assert.Equal(t, "cart already exists", Message(err))
}

func TestStageAndCause(t *testing.T) {
	cause := errors.New("card declined")
	err := AtStage(Upstream, "payment", "payment failed", cause)

	assert.True(t, errors.Is(err, Upstream))
	assert.True(t, errors.Is(err, cause))
	assert.Equal(t, "payment", StageOf(err))
	assert.Equal(t, "payment failed", Message(err))
	assert.Contains(t, err.Error(), "card declined")
}

func TestStageOfNested(t *testing.T) {
	inner := AtStage(Storage, "order_save", "could not save order", errors.New("disk full"))
	outer := Wrap(Storage, "checkout failed", inner)

	assert.Equal(t, "order_save", StageOf(outer))
}

func TestUnclassifiedErrorsDoNotLeak(t *testing.T) {
	err := errors.New("open /var/data/users/alice.json: permission denied")

	assert.Equal(t, Kind(""), KindOf(err))
	assert.Equal(t, "internal error", Message(err))
	assert.Equal(t, "", StageOf(err))
}
