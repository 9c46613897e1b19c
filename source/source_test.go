package source

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBufferLoopsWithinSingleCall(t *testing.T) {
	buf := NewBuffer([]float32{1, 2, 3}, 1, 8000)
	dst := make([]float32, 7)
	n, err := buf.Read(dst, 7, true)
	require.NoError(t, err)
	require.Equal(t, 7, n)
	require.Equal(t, []float32{1, 2, 3, 1, 2, 3, 1}, dst)
}

func TestBufferAtEndWithoutLoop(t *testing.T) {
	buf := NewBuffer([]float32{1, 2, 3}, 1, 8000)
	dst := make([]float32, 5)
	n, err := buf.Read(dst, 5, false)
	require.ErrorIs(t, err, ErrAtEnd)
	require.Equal(t, 3, n)
}

func TestBufferMapUnmap(t *testing.T) {
	buf := NewBuffer([]float32{1, 2, 3, 4}, 2, 8000)
	data, n, err := buf.Map(10)
	require.NoError(t, err)
	require.Equal(t, 2, n)
	require.Equal(t, []float32{1, 2, 3, 4}, data)
	require.NoError(t, buf.Unmap(n))
	cursor, _ := buf.GetCursor()
	require.EqualValues(t, 2, cursor)
}

func TestWaveformSquareAlternates(t *testing.T) {
	w := NewWaveform(Square, 1, 4, 1.0, 1.0) // 1Hz at 4Hz sample rate
	dst := make([]float32, 4)
	n, err := w.Read(dst, 4, false)
	require.NoError(t, err)
	require.Equal(t, 4, n)
	require.Equal(t, []float32{1, 1, -1, -1}, dst)
}

func TestWaveformNegativeAmplitudeInverts(t *testing.T) {
	pos := NewWaveform(Square, 1, 4, 1.0, 1.0)
	neg := NewWaveform(Square, 1, 4, -1.0, 1.0)
	dp := make([]float32, 4)
	dn := make([]float32, 4)
	pos.Read(dp, 4, false)
	neg.Read(dn, 4, false)
	for i := range dp {
		require.Equal(t, -dp[i], dn[i])
	}
}

func TestNoiseWhiteReproducibleWithSameSeed(t *testing.T) {
	a := NewNoise(White, 1, 8000, 42, 1.0)
	b := NewNoise(White, 1, 8000, 42, 1.0)
	da := make([]float32, 16)
	db := make([]float32, 16)
	a.Read(da, 16, false)
	b.Read(db, 16, false)
	require.Equal(t, da, db)
}

func TestNoiseBoundedAmplitude(t *testing.T) {
	n := NewNoise(Brownian, 1, 8000, 1, 0.8)
	dst := make([]float32, 1000)
	n.Read(dst, 1000, false)
	for _, v := range dst {
		require.LessOrEqual(t, v, float32(0.81))
		require.GreaterOrEqual(t, v, float32(-0.81))
	}
}
