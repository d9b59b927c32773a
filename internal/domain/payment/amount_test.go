package payment

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMinorUnits(t *testing.T) {
	assert.Equal(t, int64(2000), MinorUnits(20))
	assert.Equal(t, int64(1999), MinorUnits(19.99))
	assert.Equal(t, int64(30), MinorUnits(0.1+0.2))
	assert.Equal(t, int64(0), MinorUnits(0))
}
