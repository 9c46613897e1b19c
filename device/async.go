package device

import (
	"unsafe"

	"github.com/agalue/goma/ringbuffer"
)

// asyncHelper owns the intermediary ring buffer spec §3/§4.5 describes for
// backends that deliver audio on their own thread in whatever chunk size
// they please: it repacks that chunking into the fixed
// Config.PeriodSizeInFrames the user callback always sees. Frames are
// carried through the ring as raw bytes of interleaved float32 (the
// engine's working format throughout), reinterpreted via the same
// unsafe-cast technique the source and convert packages use.
type asyncHelper struct {
	ring         *ringbuffer.FrameRing
	channels     int
	periodFrames int
	scratch      []float32 // periodFrames*channels, reused across rounds
}

func newAsyncHelper(channels, periodFrames int) *asyncHelper {
	bytesPerFrame := channels * 4
	capacityFrames := periodFrames * 4
	rb, _ := ringbuffer.NewFrameRing(capacityFrames, bytesPerFrame)
	return &asyncHelper{
		ring:         rb,
		channels:     channels,
		periodFrames: periodFrames,
		scratch:      make([]float32, periodFrames*channels),
	}
}

func (h *asyncHelper) bytesPerFrame() int { return h.channels * 4 }

// fillPlayback drains frameCount frames into output, topping up the ring
// with one user-callback period at a time whenever it runs dry.
func (h *asyncHelper) fillPlayback(output []byte, frameCount int, userCallback DataCallback) {
	bpf := h.bytesPerFrame()
	produced := 0
	for produced < frameCount {
		if h.ring.AvailableFrames() == 0 {
			userCallback(h.scratch, nil, h.periodFrames)
			h.ring.WriteFrames(f32ToBytes(h.scratch))
		}
		n := h.ring.ReadFrames(output[produced*bpf : frameCount*bpf])
		if n == 0 {
			break // ring capacity smaller than one period; nothing more to give
		}
		produced += n
	}
}

// pushCapture buffers frameCount frames of input, invoking userCallback
// once for every full period accumulated.
func (h *asyncHelper) pushCapture(input []byte, frameCount int, userCallback DataCallback) {
	bpf := h.bytesPerFrame()
	consumed := 0
	for consumed < frameCount {
		n := h.ring.WriteFrames(input[consumed*bpf : frameCount*bpf])
		if n == 0 {
			break // ring full; remaining input is dropped (backpressure)
		}
		consumed += n
		for h.ring.AvailableFrames() >= h.periodFrames {
			h.ring.ReadFrames(f32ToBytes(h.scratch))
			userCallback(nil, h.scratch, h.periodFrames)
		}
	}
}

// pushCaptureDuplex fuses capture and playback into one user callback per
// period, assuming (as malgo's combined Data callback does) that the
// backend delivers matched-size input/output chunks in the same call. Any
// shortfall at the tail — not enough captured input yet to fill a whole
// period — is zero-filled in output rather than blocking, since the
// backend callback must return promptly.
func (h *asyncHelper) pushCaptureDuplex(input []byte, frameCount int, playback *asyncHelper, output []byte, userCallback DataCallback) {
	bpfIn := h.bytesPerFrame()
	bpfOut := playback.bytesPerFrame()

	h.ring.WriteFrames(input[:frameCount*bpfIn])

	produced := 0
	for produced < frameCount {
		if h.ring.AvailableFrames() < h.periodFrames {
			break
		}
		h.ring.ReadFrames(f32ToBytes(h.scratch))
		userCallback(playback.scratch, h.scratch, h.periodFrames)
		playback.ring.WriteFrames(f32ToBytes(playback.scratch))

		n := playback.ring.ReadFrames(output[produced*bpfOut : frameCount*bpfOut])
		if n == 0 {
			break
		}
		produced += n
	}
	for i := produced * bpfOut; i < frameCount*bpfOut; i++ {
		output[i] = 0
	}
}

func f32ToBytes(s []float32) []byte {
	if len(s) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&s[0])), len(s)*4)
}
