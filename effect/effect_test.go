package effect

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPannerCenterIsEqualPowerBothChannels(t *testing.T) {
	p := NewPanner(2)
	in := []float32{1, 1, 1, 1}
	out := make([]float32, 4)
	inFrames, outFrames := 2, 2
	require.NoError(t, p.Process(in, &inFrames, out, &outFrames))
	want := float32(math.Sqrt2 / 2)
	require.InDelta(t, want, out[0], 1e-6)
	require.InDelta(t, want, out[1], 1e-6)
}

func TestPannerHardLeftSilencesRight(t *testing.T) {
	p := NewPanner(2)
	p.SetPan(-1)
	in := []float32{1, 1}
	out := make([]float32, 2)
	inFrames, outFrames := 1, 1
	require.NoError(t, p.Process(in, &inFrames, out, &outFrames))
	require.InDelta(t, 1.0, out[0], 1e-6)
	require.InDelta(t, 0.0, out[1], 1e-6)
}

func TestPannerHardRightSilencesLeft(t *testing.T) {
	p := NewPanner(2)
	p.SetPan(1)
	in := []float32{1, 1}
	out := make([]float32, 2)
	inFrames, outFrames := 1, 1
	require.NoError(t, p.Process(in, &inFrames, out, &outFrames))
	require.InDelta(t, 0.0, out[0], 1e-6)
	require.InDelta(t, 1.0, out[1], 1e-6)
}

func TestPannerClampsOutOfRangePan(t *testing.T) {
	p := NewPanner(2)
	p.SetPan(5)
	require.Equal(t, 1.0, p.Pan())
	p.SetPan(-5)
	require.Equal(t, -1.0, p.Pan())
}

func TestPannerMonoPassesThrough(t *testing.T) {
	p := NewPanner(1)
	in := []float32{0.3, -0.7}
	out := make([]float32, 2)
	inFrames, outFrames := 2, 2
	require.NoError(t, p.Process(in, &inFrames, out, &outFrames))
	require.Equal(t, in, out)
}

func TestChainEmptyIsPassthrough(t *testing.T) {
	c := NewChain(nil, 2)
	in := []float32{1, 2, 3, 4}
	out := make([]float32, 4)
	inFrames, outFrames := 2, 2
	require.NoError(t, c.Process(in, &inFrames, out, &outFrames))
	require.Equal(t, in, out)
}

func TestChainRunsAttachedNodesInOrder(t *testing.T) {
	left := NewPanner(2)
	left.SetPan(-1)
	n1 := NewNode(left)
	right := NewPanner(2)
	right.SetPan(1)
	n2 := NewNode(right)
	require.NoError(t, n1.Attach(n2))

	c := NewChain(n1, 2)
	in := []float32{1, 1}
	out := make([]float32, 2)
	inFrames, outFrames := 1, 1
	require.NoError(t, c.Process(in, &inFrames, out, &outFrames))
	// hard-left silences the right channel, then hard-right silences the
	// left channel, so both outputs end up at zero.
	require.InDelta(t, 0.0, out[0], 1e-6)
	require.InDelta(t, 0.0, out[1], 1e-6)
}

func TestNodeAttachSelfIsCycle(t *testing.T) {
	n := NewNode(NewPanner(2))
	require.ErrorIs(t, n.Attach(n), ErrCycle)
}

func TestNodeAttachBackReferenceIsCycle(t *testing.T) {
	a := NewNode(NewPanner(2))
	b := NewNode(NewPanner(2))
	require.NoError(t, a.Attach(b))
	require.ErrorIs(t, b.Attach(a), ErrCycle)
}

func TestNodeDetach(t *testing.T) {
	a := NewNode(NewPanner(2))
	b := NewNode(NewPanner(2))
	require.NoError(t, a.Attach(b))
	require.Equal(t, b, a.Output())
	a.Detach()
	require.Nil(t, a.Output())
}
