package sampleformat

import "math/rand"

// DitherMode selects the noise-shaping strategy applied before quantizing a
// wider sample down to a narrower integer format.
type DitherMode int

const (
	DitherNone DitherMode = iota
	DitherRectangle
	DitherTriangle
)

// ditherSource generates dither noise in the range roughly [-1, 1] (rectangle)
// or [-1, 1] with a triangular PDF (triangle, the sum of two independent
// rectangle draws), matching the reference dither used by the original
// library's ma_dither_sample_f32.
type ditherSource struct {
	rng *rand.Rand
}

func newDitherSource(seed int64) *ditherSource {
	return &ditherSource{rng: rand.New(rand.NewSource(seed))}
}

// sample returns a dither offset scaled to the destination integer range's
// single least-significant-bit step, ready to be added to a float sample
// before quantization.
func (d *ditherSource) sample(mode DitherMode, lsb float64) float64 {
	switch mode {
	case DitherRectangle:
		return (d.rng.Float64()*2 - 1) * lsb * 0.5
	case DitherTriangle:
		r1 := d.rng.Float64()*2 - 1
		r2 := d.rng.Float64()*2 - 1
		return (r1 + r2) * 0.5 * lsb * 0.5
	default:
		return 0
	}
}
