package channels

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestRectangularPassthrough covers spec §8: rectangular mode with
// identical maps is a pure copy and flagged as passthrough.
func TestRectangularPassthrough(t *testing.T) {
	r, err := New(StereoMap(), StereoMap(), Rectangular, nil)
	require.NoError(t, err)
	require.True(t, r.IsPassthrough())

	src := []float32{0.1, 0.2, 0.3, 0.4}
	dst := make([]float32, 4)
	r.Route(dst, src, 2)
	require.Equal(t, src, dst)
}

// TestSimpleMonoExpansion covers spec §3 scenario: mono input {0.5,-0.5,0.25}
// with "simple" expands to both stereo outputs equal to the input.
func TestSimpleMonoExpansion(t *testing.T) {
	r, err := New(MonoMap(), StereoMap(), Simple, nil)
	require.NoError(t, err)
	require.Equal(t, FastPathMonoToStereo, r.FastPath())

	src := []float32{0.5, -0.5, 0.25}
	dst := make([]float32, 6)
	r.Route(dst, src, 3)
	require.Equal(t, []float32{0.5, 0.5, -0.5, -0.5, 0.25, 0.25}, dst)
}

// TestPlanarBlend51ToStereo covers spec §4.2/§8: left output = FL + 0.5*FC +
// 0.25*BL + 0.5*SL.
func TestPlanarBlend51ToStereo(t *testing.T) {
	in := Surround51Map() // FL, FR, FC, LFE, BL, BR
	r, err := New(in, StereoMap(), PlanarBlend, nil)
	require.NoError(t, err)

	require.InDelta(t, 1.0, r.Weight(0, 0), 1e-9)  // FL -> L
	require.InDelta(t, 0.5, r.Weight(0, 2), 1e-9)   // FC -> L
	require.InDelta(t, 0.0, r.Weight(0, 3), 1e-9)   // LFE -> L
	require.InDelta(t, 0.25, r.Weight(0, 4), 1e-9)  // BL -> L
	require.InDelta(t, 1.0, r.Weight(1, 1), 1e-9)   // FR -> R
	require.InDelta(t, 0.5, r.Weight(1, 2), 1e-9)   // FC -> R
	require.InDelta(t, 0.25, r.Weight(1, 5), 1e-9)  // BR -> R

	frame := []float32{-1, 1, 0, 0, 0, 0}
	out := make([]float32, 2)
	r.Route(out, frame, 1)
	require.InDelta(t, -1.0, out[0], 1e-6)
	require.InDelta(t, 1.0, out[1], 1e-6)

	frame2 := []float32{0, 0, 1, 0, 0, 0}
	out2 := make([]float32, 2)
	r.Route(out2, frame2, 1)
	require.InDelta(t, 0.5, out2[0], 1e-6)
	require.InDelta(t, 0.5, out2[1], 1e-6)
}

func TestAnyToMonoSumsNonLFE(t *testing.T) {
	in := Surround51Map()
	r, err := New(in, MonoMap(), Rectangular, nil)
	require.NoError(t, err)
	require.Equal(t, FastPathNone, r.FastPath())

	frame := []float32{1, 1, 1, 99, 1, 1} // LFE ignored
	out := make([]float32, 1)
	r.Route(out, frame, 1)
	require.InDelta(t, 1.0, out[0], 1e-6)
}

func TestShuffleFastPath(t *testing.T) {
	in := Map{FrontRight, FrontLeft}
	out := StereoMap()
	r, err := New(in, out, Simple, nil)
	require.NoError(t, err)
	require.Equal(t, FastPathShuffle, r.FastPath())

	src := []float32{10, 20}
	dst := make([]float32, 2)
	r.Route(dst, src, 1)
	require.Equal(t, []float32{20, 10}, dst)
}

func TestCustomWeightsVerbatim(t *testing.T) {
	custom := [][]float64{{0.25, 0.75}}
	r, err := New(StereoMap(), MonoMap(), Custom, custom)
	require.NoError(t, err)
	require.InDelta(t, 0.25, r.Weight(0, 0), 1e-9)
	require.InDelta(t, 0.75, r.Weight(0, 1), 1e-9)
}

func TestCustomDimensionMismatch(t *testing.T) {
	_, err := New(StereoMap(), MonoMap(), Custom, [][]float64{{1, 2, 3}})
	require.ErrorIs(t, err, ErrDimensionMismatch)
}
