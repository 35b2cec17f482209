package geom_test

import (
	"testing"

	"github.com/alexokonski/fixedtick/shared/geom"
	"github.com/stretchr/testify/require"
)

func TestMagnitude(t *testing.T) {
	v := geom.New(3, 4)
	require.InDelta(t, 5.0, float64(v.Magnitude()), 1e-6)
}

func TestNormalizePreservesDirection(t *testing.T) {
	v := geom.New(0.5, -0.5).Normalize()
	require.InDelta(t, 1.0, float64(v.Magnitude()), 1e-6)
	require.Greater(t, v.X, float32(0))
	require.Less(t, v.Y, float32(0))
}

func TestNormalizeZeroVector(t *testing.T) {
	v := geom.New(0, 0).Normalize()
	require.Equal(t, geom.New(0, 0), v)
}

func TestClampF(t *testing.T) {
	require.Equal(t, float32(1), geom.ClampF(5, -1, 1))
	require.Equal(t, float32(-1), geom.ClampF(-5, -1, 1))
	require.Equal(t, float32(0), geom.ClampF(0, -1, 1))
}

func TestLerp(t *testing.T) {
	a := geom.New(0, 0)
	b := geom.New(10, 20)
	require.Equal(t, geom.New(5, 10), geom.Lerp(a, b, 0.5))
}
