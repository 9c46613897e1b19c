package mixer

import (
	"testing"

	"github.com/agalue/goma/source"
	"github.com/stretchr/testify/require"
)

func TestMixSumAndVolumeScenario(t *testing.T) {
	// spec §8 scenario 5: stereo, accumulation 64 frames, volume 0.5, two
	// constant-1.0 sources -> every output sample is 1.0 after clip.
	m := New(2, 64)
	m.SetVolume(0.5)
	require.NoError(t, m.Begin(4))

	a := make([]float32, 4*2)
	b := make([]float32, 4*2)
	for i := range a {
		a[i] = 1.0
		b[i] = 1.0
	}
	require.NoError(t, m.MixPCMFrames(a, 4, 1.0))
	require.NoError(t, m.MixPCMFrames(b, 4, 1.0))

	out := make([]float32, 4*2)
	n, err := m.End(out)
	require.NoError(t, err)
	require.Equal(t, 4, n)
	for _, v := range out {
		require.InDelta(t, 1.0, v, 1e-6)
	}
}

func TestSubmixNestingSumsIntoParent(t *testing.T) {
	// spec §8 scenario 6: a master mixer and two submixes, each mixing one
	// constant source at volume 1.0; after master end the output equals the
	// sample-wise sum of the two sources, clipped.
	master := New(2, 512)
	require.NoError(t, master.Begin(8))

	sub1 := New(2, 512)
	require.NoError(t, sub1.BeginSubmix(master, 8))
	srcA := make([]float32, 8*2)
	for i := range srcA {
		srcA[i] = 0.3
	}
	require.NoError(t, sub1.MixPCMFrames(srcA, 8, 1.0))
	_, err := sub1.End(nil)
	require.NoError(t, err)

	sub2 := New(2, 512)
	require.NoError(t, sub2.BeginSubmix(master, 8))
	srcB := make([]float32, 8*2)
	for i := range srcB {
		srcB[i] = 0.4
	}
	require.NoError(t, sub2.MixPCMFrames(srcB, 8, 1.0))
	_, err = sub2.End(nil)
	require.NoError(t, err)

	out := make([]float32, 8*2)
	n, err := master.End(out)
	require.NoError(t, err)
	require.Equal(t, 8, n)
	for _, v := range out {
		require.InDelta(t, 0.7, v, 1e-6)
	}
}

func TestSubmixFrameCountMustMatchParent(t *testing.T) {
	master := New(2, 512)
	require.NoError(t, master.Begin(8))

	sub := New(2, 512)
	require.ErrorIs(t, sub.BeginSubmix(master, 4), ErrInvalidArgs)
}

func TestMixCallsOutsideBeginEndFail(t *testing.T) {
	m := New(2, 64)
	_, err := m.MixDataSource(source.NewBuffer([]float32{0, 0}, 2, 8000), 1.0)
	require.ErrorIs(t, err, ErrInvalidOperation)

	err = m.MixPCMFrames(make([]float32, 4), 2, 1.0)
	require.ErrorIs(t, err, ErrInvalidOperation)

	require.NoError(t, m.Begin(4))
	_, err = m.End(make([]float32, 8))
	require.NoError(t, err)
	// end() returned the mixer to idle; a second end without begin fails.
	_, err = m.End(make([]float32, 8))
	require.ErrorIs(t, err, ErrInvalidOperation)
}

func TestSetEffectFailsWhileMixing(t *testing.T) {
	m := New(2, 64)
	require.NoError(t, m.Begin(4))
	require.ErrorIs(t, m.SetEffect(nil), ErrInvalidOperation)
}

func TestMixDataSourceUsesMapWhenAvailable(t *testing.T) {
	m := New(1, 64)
	require.NoError(t, m.Begin(3))

	buf := source.NewBuffer([]float32{1, 2, 3}, 1, 8000)
	n, err := m.MixDataSource(buf, 1.0)
	require.NoError(t, err)
	require.Equal(t, 3, n)

	out := make([]float32, 3)
	_, err = m.End(out)
	require.NoError(t, err)
	require.Equal(t, []float32{1, 2, 3}, out)
}

// doublingEffect is a stub effect that emits twice the frames it's given,
// standing in for a resampling effect attached to a submix.
type doublingEffect struct{ channels int }

func (e doublingEffect) InputChannels() int  { return e.channels }
func (e doublingEffect) OutputChannels() int { return e.channels }
func (e doublingEffect) RequiredInputFrames(outFrames int) int { return outFrames / 2 }
func (e doublingEffect) ExpectedOutputFrames(inFrames int) int { return inFrames * 2 }
func (e doublingEffect) Process(in []float32, inFrames *int, out []float32, outFrames *int) error {
	n := *inFrames
	for i := 0; i < n; i++ {
		for c := 0; c < e.channels; c++ {
			out[(2*i)*e.channels+c] = in[i*e.channels+c]
			out[(2*i+1)*e.channels+c] = in[i*e.channels+c]
		}
	}
	*outFrames = n * 2
	return nil
}

func TestSubmixEffectChangingFrameCountFailsRatherThanOverrunParent(t *testing.T) {
	master := New(2, 512)
	require.NoError(t, master.Begin(8))

	sub := New(2, 512)
	require.NoError(t, sub.BeginSubmix(master, 8))
	require.NoError(t, sub.SetEffect(doublingEffect{channels: 2}))
	require.NoError(t, sub.MixPCMFrames(make([]float32, 8*2), 8, 1.0))

	_, err := sub.End(nil)
	require.ErrorIs(t, err, ErrInvalidOperation)
}

func TestClipSaturatesOutOfRangeAccumulation(t *testing.T) {
	m := New(1, 64)
	require.NoError(t, m.Begin(1))
	src := []float32{2.0}
	require.NoError(t, m.MixPCMFrames(src, 1, 1.0))
	out := make([]float32, 1)
	_, err := m.End(out)
	require.NoError(t, err)
	require.Equal(t, float32(1.0), out[0])
}
