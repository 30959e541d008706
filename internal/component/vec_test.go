package component

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVec3(t *testing.T) {
	a := Vec3{1, 2, 3}
	b := Vec3{1, 1, 1}
	assert.Equal(t, Vec3{2, 3, 4}, a.Add(b))
	assert.Equal(t, Vec3{0, 1, 2}, a.Sub(b))
	assert.Equal(t, Vec3{2, 4, 6}, a.Scale(2))
	assert.True(t, Vec3{}.IsZero())
	assert.InDelta(t, 5, Vec3{3, 4, 0}.Len(), 1e-6)
}

func TestClampLen(t *testing.T) {
	assert.Equal(t, Vec3{1, 0, 0}, Vec3{1, 0, 0}.ClampLen(2))
	got := Vec3{3, 4, 0}.ClampLen(1)
	assert.InDelta(t, 0.6, got.X, 1e-6)
	assert.InDelta(t, 0.8, got.Y, 1e-6)
	assert.Equal(t, Vec3{}, Vec3{}.ClampLen(1))
}
