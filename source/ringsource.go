package source

import (
	"unsafe"

	"github.com/agalue/goma/ringbuffer"
)

// RingSource adapts a frame-oriented ring buffer into a DataSource so the
// mixer can mix directly from it (spec §4.9 "mix-from-ring-buffer"). It
// implements Mapper so the mixer takes the zero-copy path rather than an
// extra buffer hop.
type RingSource struct {
	rb         *ringbuffer.FrameRing
	channels   int
	sampleRate int
}

// NewRingSource wraps an existing frame ring buffer as a data source.
func NewRingSource(rb *ringbuffer.FrameRing, channels, sampleRate int) *RingSource {
	return &RingSource{rb: rb, channels: channels, sampleRate: sampleRate}
}

func (r *RingSource) Channels() int   { return r.channels }
func (r *RingSource) SampleRate() int { return r.sampleRate }

func (r *RingSource) GetCursor() (int64, error) { return 0, ErrNotImplemented }
func (r *RingSource) GetLength() (int64, error) { return 0, ErrNotImplemented }

// Seek is not meaningful on a live ring buffer.
func (r *RingSource) Seek(frame int64) error { return ErrNotImplemented }

// Read drains up to frameCount frames from the ring buffer. A ring buffer
// never reports ErrAtEnd: when it is empty the caller simply gets fewer
// frames than requested (silence fill is the mixer's responsibility).
func (r *RingSource) Read(dst []float32, frameCount int, loop bool) (int, error) {
	byteBuf := float32SliceAsBytes(dst[:frameCount*r.channels])
	n := r.rb.ReadFrames(byteBuf)
	return n, nil
}

// Map exposes the ring buffer's readable span directly as float32 frames,
// avoiding the byte-buffer round trip Read requires.
func (r *RingSource) Map(frameCount int) ([]float32, int, error) {
	bytesPerFrame := r.channels * 4
	span := r.rb.AcquireReadBytes(frameCount * bytesPerFrame)
	return bytesAsFloat32Slice(span), len(span) / bytesPerFrame, nil
}

// Unmap commits the frames consumed from the slice returned by Map.
func (r *RingSource) Unmap(frameCount int) error {
	return r.rb.CommitReadFrames(frameCount)
}

// float32SliceAsBytes reinterprets a float32 slice as its underlying bytes
// without copying, the same technique the retrieval pack's oto backend
// adapter uses to move PCM data between a byte-oriented API and float32
// sample math.
func float32SliceAsBytes(s []float32) []byte {
	if len(s) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&s[0])), len(s)*4)
}

func bytesAsFloat32Slice(b []byte) []float32 {
	if len(b) == 0 {
		return nil
	}
	return unsafe.Slice((*float32)(unsafe.Pointer(&b[0])), len(b)/4)
}
