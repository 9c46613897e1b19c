// Package sampleformat implements per-sample format conversion: the
// format-kernel layer of the audio engine. It converts between the sample
// formats the engine understands, applies optional dither on
// wider-to-narrower conversions, and interleaves/deinterleaves multi-channel
// buffers.
package sampleformat

import "fmt"

// Format identifies a PCM sample encoding.
type Format int

const (
	Unknown Format = iota
	U8
	S16
	S24 // packed 3-byte little-endian
	S32
	F32
)

// String implements fmt.Stringer.
func (f Format) String() string {
	switch f {
	case U8:
		return "u8"
	case S16:
		return "s16"
	case S24:
		return "s24"
	case S32:
		return "s32"
	case F32:
		return "f32"
	default:
		return "unknown"
	}
}

// BytesPerSample returns the storage size of one sample in this format.
func (f Format) BytesPerSample() int {
	switch f {
	case U8:
		return 1
	case S16:
		return 2
	case S24:
		return 3
	case S32, F32:
		return 4
	default:
		return 0
	}
}

// Signed reports whether the format's native representation is signed.
// u8 is the sole unsigned format; its zero level sits at 128 rather than 0.
func (f Format) Signed() bool {
	return f != U8
}

// ZeroLevel returns the sample value that represents digital silence, as a
// raw bit pattern interpretation specific to the format (128 for u8, 0 for
// every signed/float format).
func (f Format) ZeroLevel() int {
	if f == U8 {
		return 128
	}
	return 0
}

// Valid reports whether f is a known, non-zero sample format.
func (f Format) Valid() bool {
	return f >= U8 && f <= F32
}

// ErrInvalidFormat is returned when an unknown or unsupported format pair is
// requested.
type ErrInvalidFormat struct {
	From, To Format
}

func (e *ErrInvalidFormat) Error() string {
	return fmt.Sprintf("sampleformat: unsupported conversion %s -> %s", e.From, e.To)
}
