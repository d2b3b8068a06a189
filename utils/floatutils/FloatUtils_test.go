package floatutils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClip(t *testing.T) {
	assert.Equal(t, 1.0, Clip(3, -1, 1))
	assert.Equal(t, -1.0, Clip(-3, -1, 1))
	assert.Equal(t, 0.5, Clip(0.5, -1, 1))
}

func TestIsClose(t *testing.T) {
	assert.True(t, IsClose(1, 1+1e-12))
	assert.True(t, IsClose(0, 0))
	assert.False(t, IsClose(1, 1.001))
	assert.False(t, IsClose(0, 1e-20))
}
