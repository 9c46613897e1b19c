package ringbuffer

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestWrapScenario reproduces spec §8 scenario 2 exactly: capacity 8,
// write 5, read 3, write 5 (splitting across the wrap), read 7.
func TestWrapScenario(t *testing.T) {
	rb, err := New(8)
	require.NoError(t, err)

	n := rb.Write([]byte{1, 2, 3, 4, 5})
	require.Equal(t, 5, n)

	out := make([]byte, 3)
	n = rb.Read(out)
	require.Equal(t, 3, n)
	require.Equal(t, []byte{1, 2, 3}, out)

	n = rb.Write([]byte{6, 7, 8, 9, 10})
	require.Equal(t, 5, n)

	out2 := make([]byte, 7)
	n = rb.Read(out2)
	require.Equal(t, 7, n)
	require.Equal(t, []byte{4, 5, 6, 7, 8, 9, 10}, out2)
}

func TestPointerDistance(t *testing.T) {
	rb, err := New(16)
	require.NoError(t, err)
	rb.Write([]byte{1, 2, 3, 4})
	require.Equal(t, 4, rb.PointerDistance())
	buf := make([]byte, 1)
	rb.Read(buf)
	require.Equal(t, 3, rb.PointerDistance())
}

func TestWriteStopsWhenFull(t *testing.T) {
	rb, err := New(4)
	require.NoError(t, err)
	n := rb.Write([]byte{1, 2, 3, 4, 5, 6})
	require.Equal(t, 4, n)
	require.Equal(t, 0, rb.Write([]byte{7}))
}

func TestSeekNeverOvertakesOpposingCursor(t *testing.T) {
	rb, err := New(8)
	require.NoError(t, err)
	rb.Write([]byte{1, 2, 3})
	require.Error(t, rb.SeekRead(4))
	require.NoError(t, rb.SeekRead(3))
}

func TestFrameRingWholeFramesOnly(t *testing.T) {
	fr, err := NewFrameRing(4, 4) // 4 frames of 4 bytes (e.g. stereo s16)
	require.NoError(t, err)
	written := fr.WriteFrames([]byte{1, 2, 3, 4, 5, 6, 7, 8, 9}) // 2 whole frames + partial
	require.Equal(t, 2, written)
	require.Equal(t, 2, fr.AvailableFrames())
}
