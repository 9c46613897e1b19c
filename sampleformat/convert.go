package sampleformat

import (
	"encoding/binary"
	"math"
)

// scale returns the integer full-scale magnitude used to map this format's
// native range onto the canonical float64 domain [-1, +1].
func (f Format) scale() float64 {
	switch f {
	case U8:
		return 128.0
	case S16:
		return 32768.0
	case S24:
		return 8388608.0
	case S32:
		return 2147483648.0
	default:
		return 1.0
	}
}

// bitDepth returns the nominal integer bit depth used to decide whether a
// conversion is narrowing (and therefore eligible for dither). f32 is
// treated as wider than every integer format.
func (f Format) bitDepth() int {
	switch f {
	case U8:
		return 8
	case S16:
		return 16
	case S24:
		return 24
	case S32:
		return 32
	case F32:
		return 64
	default:
		return 0
	}
}

// loadSample reads one sample at byte offset i from buf (format f) and
// returns it in the canonical float64 domain.
func loadSample(buf []byte, i int, f Format) float64 {
	switch f {
	case U8:
		return (float64(buf[i]) - 128.0) / f.scale()
	case S16:
		v := int16(binary.LittleEndian.Uint16(buf[i*2:]))
		return float64(v) / f.scale()
	case S24:
		b0, b1, b2 := buf[i*3], buf[i*3+1], buf[i*3+2]
		raw := int32(b0) | int32(b1)<<8 | int32(b2)<<16
		if raw&0x800000 != 0 {
			raw |= ^int32(0xFFFFFF) // sign-extend 24 -> 32
		}
		return float64(raw) / f.scale()
	case S32:
		v := int32(binary.LittleEndian.Uint32(buf[i*4:]))
		return float64(v) / f.scale()
	case F32:
		bits := binary.LittleEndian.Uint32(buf[i*4:])
		return float64(math.Float32frombits(bits))
	default:
		return 0
	}
}

// storeSample writes canonical value v into buf at sample index i in format
// f, rounding and clamping when quantizing to an integer format. Any dither
// offset has already been added to v by the caller.
func storeSample(buf []byte, i int, f Format, v float64) {
	switch f {
	case U8:
		raw := clampInt(roundHalfAwayFromZero(v*f.scale())+128, 0, 255)
		buf[i] = byte(raw)
	case S16:
		raw := clampInt(roundHalfAwayFromZero(v*f.scale()), -32768, 32767)
		binary.LittleEndian.PutUint16(buf[i*2:], uint16(int16(raw)))
	case S24:
		raw := clampInt(roundHalfAwayFromZero(v*f.scale()), -8388608, 8388607)
		buf[i*3] = byte(raw)
		buf[i*3+1] = byte(raw >> 8)
		buf[i*3+2] = byte(raw >> 16)
	case S32:
		raw := clampInt64(roundHalfAwayFromZero64(v*f.scale()), -2147483648, 2147483647)
		binary.LittleEndian.PutUint32(buf[i*4:], uint32(int32(raw)))
	case F32:
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(float32(v)))
	}
}

func roundHalfAwayFromZero(v float64) int {
	if v >= 0 {
		return int(v + 0.5)
	}
	return int(v - 0.5)
}

func roundHalfAwayFromZero64(v float64) int64 {
	if v >= 0 {
		return int64(v + 0.5)
	}
	return int64(v - 0.5)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampInt64(v, lo, hi int64) int64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Converter holds the dither state needed for continuity across repeated
// Convert calls on the same logical stream (mirrors the persistent dither
// state the original library keeps per data converter instance).
type Converter struct {
	dither *ditherSource
}

// NewConverter creates a format converter. seed controls the dither PRNG;
// pass a fixed seed for reproducible tests.
func NewConverter(seed int64) *Converter {
	return &Converter{dither: newDitherSource(seed)}
}

// Convert converts sampleCount samples (not frames — channel layout is the
// channel router's concern) from one format to another, applying dither
// when narrowing to an integer destination. Same-format conversions are a
// plain byte copy.
func (c *Converter) Convert(dst, src []byte, sampleCount int, from, to Format, dither DitherMode) error {
	if !from.Valid() || !to.Valid() {
		return &ErrInvalidFormat{From: from, To: to}
	}
	if from == to {
		copy(dst, src[:sampleCount*from.BytesPerSample()])
		return nil
	}
	narrowing := dither != DitherNone && to != F32 && to.bitDepth() < from.bitDepth()
	lsb := 2.0 / math.Pow(2, float64(to.bitDepth()))
	if to == U8 {
		lsb = 2.0 / 256.0
	}
	for i := 0; i < sampleCount; i++ {
		v := loadSample(src, i, from)
		if narrowing {
			v += c.dither.sample(dither, lsb)
		}
		storeSample(dst, i, to, v)
	}
	return nil
}

// ConvertSimple is a convenience wrapper for one-shot conversions with no
// dither, for call sites that don't need dither continuity. It builds a
// throwaway Converter with a fixed seed, which is never drawn from since no
// dither is applied.
func ConvertSimple(dst, src []byte, sampleCount int, from, to Format) error {
	c := &Converter{dither: newDitherSource(1)}
	return c.Convert(dst, src, sampleCount, from, to, DitherNone)
}
