// Package resample implements the arbitrary sample-rate converter from
// spec §4.3: a linear interpolator with an optional low-pass post-filter,
// supporting dynamic rate changes without discontinuities and exact
// required/expected frame-count accounting.
package resample

import (
	"errors"
	"math"
)

// ErrInvalidArgs is returned for zero/negative rates or channel counts.
var ErrInvalidArgs = errors.New("resample: invalid arguments")

// Resampler converts an interleaved float32 stream from one sample rate to
// another, frame by frame, preserving interpolation state across calls and
// across dynamic rate changes.
type Resampler struct {
	channels int
	rateIn   float64
	rateOut  float64
	step     float64 // input frames advanced per output frame

	frac  float64 // fractional position into the next input frame
	carry []float32

	filterOrder int
	filter      *biquadCascade
	primed      bool
}

// New creates a resampler. order selects the low-pass post-filter order
// (1-8); pass 0 to disable the post-filter entirely (pure linear
// interpolation).
func New(channels, rateIn, rateOut, order int) (*Resampler, error) {
	if channels <= 0 || rateIn <= 0 || rateOut <= 0 {
		return nil, ErrInvalidArgs
	}
	r := &Resampler{
		channels:    channels,
		rateIn:      float64(rateIn),
		rateOut:     float64(rateOut),
		step:        float64(rateIn) / float64(rateOut),
		carry:       make([]float32, channels),
		filterOrder: order,
	}
	r.rebuildFilter()
	return r, nil
}

func (r *Resampler) rebuildFilter() {
	if r.filterOrder <= 0 {
		r.filter = nil
		return
	}
	nyquist := math.Min(r.rateIn, r.rateOut) / 2
	cutoff := nyquist * 0.9
	opRate := math.Max(r.rateIn, r.rateOut)
	r.filter = newBiquadCascade(r.filterOrder, cutoff, opRate, r.channels)
}

// SetRate changes the conversion ratio to rateIn/rateOut, preserving
// interpolation phase so the transition doesn't click.
func (r *Resampler) SetRate(rateIn, rateOut int) error {
	if rateIn <= 0 || rateOut <= 0 {
		return ErrInvalidArgs
	}
	r.rateIn = float64(rateIn)
	r.rateOut = float64(rateOut)
	r.step = r.rateIn / r.rateOut
	r.rebuildFilter()
	return nil
}

// SetRateRatio sets the conversion ratio directly as numerator/denominator
// (numerator is the "input rate" side of the ratio), for exact fractional
// changes without floating-point drift from re-deriving it through Hz.
func (r *Resampler) SetRateRatio(numerator, denominator int) error {
	if numerator <= 0 || denominator <= 0 {
		return ErrInvalidArgs
	}
	r.step = float64(numerator) / float64(denominator)
	r.rebuildFilter()
	return nil
}

// maxOutputFrames returns the largest M such that producing M output
// frames only requires indices already covered by inFrames of new input
// (plus the one-sample carry from the previous call). Linear interpolation
// needs both i0 and i0+1, so a frame at virtual index i0 is only producible
// once inFrames covers one frame past it.
func (r *Resampler) maxOutputFrames(inFrames int) int {
	m := 0
	for {
		v := r.frac + float64(m)*r.step
		i0 := int(math.Floor(v))
		if i0+2 > inFrames {
			break
		}
		m++
	}
	return m
}

// RequiredInputFrames returns the number of input frames needed to produce
// exactly outFrames output frames at the resampler's current rate and
// phase.
func (r *Resampler) RequiredInputFrames(outFrames int) int {
	if outFrames <= 0 {
		return 0
	}
	v := r.frac + float64(outFrames-1)*r.step
	return int(math.Floor(v)) + 2
}

// ExpectedOutputFrames returns the number of output frames produced by
// inFrames input frames at the resampler's current rate and phase.
func (r *Resampler) ExpectedOutputFrames(inFrames int) int {
	return r.maxOutputFrames(inFrames)
}

// virtualSample indexes a stream made of the one-sample carry from the
// previous call followed by in: index -1 is the carry, index >= 0 is
// in[index].
func (r *Resampler) virtualSample(in []float32, channel, index int) float64 {
	if index < 0 {
		return float64(r.carry[channel])
	}
	return float64(in[index*r.channels+channel])
}

// Process converts as much of in as fits into out. On return, *inFrames and
// *outFrames hold the frames actually consumed/produced, which may be less
// than requested.
func (r *Resampler) Process(in []float32, inFrames *int, out []float32, outFrames *int) error {
	requestedOut := *outFrames
	available := *inFrames

	m := r.maxOutputFrames(available)
	if m > requestedOut {
		m = requestedOut
	}

	for j := 0; j < m; j++ {
		v := r.frac + float64(j)*r.step
		i0 := int(math.Floor(v))
		t := v - float64(i0)
		for c := 0; c < r.channels; c++ {
			s0 := r.virtualSample(in, c, i0)
			s1 := r.virtualSample(in, c, i0+1)
			sample := s0 + (s1-s0)*t
			if r.filter != nil {
				sample = r.filter.processSample(c, sample)
			}
			out[j*r.channels+c] = float32(sample)
		}
	}

	if m > 0 {
		vEnd := r.frac + float64(m)*r.step
		consumed := int(math.Floor(vEnd)) + 1
		if consumed > available {
			consumed = available
		}
		for c := 0; c < r.channels; c++ {
			r.carry[c] = in[(consumed-1)*r.channels+c]
		}
		r.frac = vEnd - float64(consumed)
		*inFrames = consumed
	} else {
		*inFrames = 0
	}
	*outFrames = m
	return nil
}
