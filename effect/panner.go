package effect

import "math"

// Panner is an equal-power stereo panner. The reference library's
// ma_panner_process_pcm_frames is a pure-copy stub; this implements the
// law spec §9 names as the resolution: pan ∈ [-1, +1] maps to gains
// cos((pan+1)π/4) (left) and sin((pan+1)π/4) (right). Channel counts other
// than 2 pass through unchanged, since equal-power panning is only defined
// for a stereo image.
type Panner struct {
	channels int
	pan      float64
}

// NewPanner creates a panner for the given channel count, centered (pan 0).
func NewPanner(channels int) *Panner {
	return &Panner{channels: channels}
}

// SetPan sets the pan position, clamped to [-1, +1].
func (p *Panner) SetPan(pan float64) {
	if pan < -1 {
		pan = -1
	}
	if pan > 1 {
		pan = 1
	}
	p.pan = pan
}

// Pan returns the current pan position.
func (p *Panner) Pan() float64 { return p.pan }

func (p *Panner) InputChannels() int  { return p.channels }
func (p *Panner) OutputChannels() int { return p.channels }

// RequiredInputFrames and ExpectedOutputFrames are both identity: panning
// never changes the frame count.
func (p *Panner) RequiredInputFrames(outFrames int) int { return outFrames }
func (p *Panner) ExpectedOutputFrames(inFrames int) int { return inFrames }

// Process applies the equal-power pan law from in to out over
// min(*inFrames, *outFrames) frames.
// Non-stereo channel layouts are copied through unchanged, matching the
// reference stub's fallback behavior for layouts it has no pan law for.
func (p *Panner) Process(in []float32, inFrames *int, out []float32, outFrames *int) error {
	n := *inFrames
	if *outFrames < n {
		n = *outFrames
	}

	if p.channels != 2 {
		copy(out[:n*p.channels], in[:n*p.channels])
		*inFrames, *outFrames = n, n
		return nil
	}

	gainL := math.Cos((p.pan + 1) * math.Pi / 4)
	gainR := math.Sin((p.pan + 1) * math.Pi / 4)
	for f := 0; f < n; f++ {
		out[f*2] = in[f*2] * float32(gainL)
		out[f*2+1] = in[f*2+1] * float32(gainR)
	}
	*inFrames, *outFrames = n, n
	return nil
}
