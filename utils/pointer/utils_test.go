package pointer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEqual(t *testing.T) {
	assert.True(t, Equal[float64](nil, nil))
	assert.False(t, Equal(Create(1.0), nil))
	assert.False(t, Equal(nil, Create(1.0)))
	assert.True(t, Equal(Create(1.5), Create(1.5)))
	assert.False(t, Equal(Create(1.5), Create(2.5)))
}

func TestNotNull(t *testing.T) {
	assert.Equal(t, 3.0, NotNull(Create(3.0), 0))
	assert.Equal(t, 0.0, NotNull[float64](nil, 0))
}
