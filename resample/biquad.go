package resample

import "math"

// biquad is a single Direct Form I biquad section, used to build the
// resampler's optional low-pass post-filter (spec §4.3).
type biquad struct {
	b0, b1, b2 float64
	a1, a2     float64
	x1, x2     float64 // per-channel state, indexed by caller
	y1, y2     float64
}

// lowPassCoefficients computes RBJ-cookbook low-pass coefficients for the
// given cutoff/sampleRate/Q, normalized so a0 == 1.
func lowPassCoefficients(cutoff, sampleRate, q float64) biquad {
	w0 := 2 * math.Pi * cutoff / sampleRate
	alpha := math.Sin(w0) / (2 * q)
	cosw0 := math.Cos(w0)

	a0 := 1 + alpha
	b0 := (1 - cosw0) / 2 / a0
	b1 := (1 - cosw0) / a0
	b2 := b0
	a1 := (-2 * cosw0) / a0
	a2 := (1 - alpha) / a0

	return biquad{b0: b0, b1: b1, b2: b2, a1: a1, a2: a2}
}

func (b *biquad) process(x float64) float64 {
	y := b.b0*x + b.b1*b.x1 + b.b2*b.x2 - b.a1*b.y1 - b.a2*b.y2
	b.x2, b.x1 = b.x1, x
	b.y2, b.y1 = b.y1, y
	return y
}

// biquadCascade runs multiple biquad stages with independent state per
// channel, implementing a low-pass filter of order 2*len(stages).
type biquadCascade struct {
	coeffs   biquad // shared coefficients across stages and channels
	stages   int
	channels int
	state    []biquad // channels*stages entries, each seeded with coeffs at construction
}

func newBiquadCascade(order int, cutoff, sampleRate float64, channels int) *biquadCascade {
	stages := (order + 1) / 2
	if stages < 1 {
		stages = 1
	}
	c := &biquadCascade{
		coeffs:   lowPassCoefficients(cutoff, sampleRate, 0.7071),
		stages:   stages,
		channels: channels,
		state:    make([]biquad, channels*stages),
	}
	for i := range c.state {
		c.state[i] = c.coeffs
	}
	return c
}

func (c *biquadCascade) processSample(channel int, x float64) float64 {
	v := x
	for s := 0; s < c.stages; s++ {
		v = c.state[channel*c.stages+s].process(v)
	}
	return v
}
