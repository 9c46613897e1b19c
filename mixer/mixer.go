// Package mixer implements the accumulation-buffer mixer from spec §4.9:
// sources are summed volume-scaled into an accumulation buffer between
// begin/end, then the mixer's own volume, clip, and optional effect are
// applied at end. Submixes nest by adding their finalized output into a
// parent mixer's accumulation buffer instead of an external buffer.
package mixer

import (
	"errors"

	"github.com/agalue/goma/effect"
	"github.com/agalue/goma/ringbuffer"
	"github.com/agalue/goma/sampleformat"
	"github.com/agalue/goma/source"
)

// ErrInvalidOperation is returned for mix_* calls outside begin/end, a
// second begin without an intervening end, set_effect while mixing, or a
// submix whose effect changed its frame count so it no longer matches its
// parent's at End.
var ErrInvalidOperation = errors.New("mixer: invalid operation")

// ErrInvalidArgs is returned for a requested frame count that exceeds the
// mixer's accumulation buffer capacity, or a BeginSubmix frame count that
// differs from the parent's.
var ErrInvalidArgs = errors.New("mixer: invalid arguments")

type state int

const (
	stateIdle state = iota
	stateMixing
)

// Mixer accumulates any number of sources into a fixed-capacity buffer,
// then finalizes with volume, clip, and an optional effect (spec §4.9).
// The accumulation type is float32 throughout: every data source in this
// engine is already normalized to interleaved float32 before it reaches the
// mixer (see the convert and source packages), so there is no separate
// widened-integer accumulator to maintain — float32 both is and serves as
// the "widened" type spec §3 describes for the f32 case.
type Mixer struct {
	channels       int
	capacityFrames int
	accum          []float32

	volume float32
	fx     effect.Effect

	state         state
	frameCountOut int
	parent        *Mixer
}

// New creates a mixer with the given channel count and accumulation buffer
// capacity in frames.
func New(channels, capacityFrames int) *Mixer {
	return &Mixer{
		channels:       channels,
		capacityFrames: capacityFrames,
		accum:          make([]float32, capacityFrames*channels),
		volume:         1.0,
	}
}

// SetVolume sets the mixer's linear volume factor, applied at end.
func (m *Mixer) SetVolume(v float32) { m.volume = v }

// Volume returns the mixer's current volume factor.
func (m *Mixer) Volume() float32 { return m.volume }

// SetEffect attaches (or clears, with nil) the mixer's output effect. It
// fails with ErrInvalidOperation while inside begin/end.
func (m *Mixer) SetEffect(fx effect.Effect) error {
	if m.state != stateIdle {
		return ErrInvalidOperation
	}
	m.fx = fx
	return nil
}

// Begin opens the mixer as a master mix for frameCountOut frames, zeroing
// the accumulation buffer.
func (m *Mixer) Begin(frameCountOut int) error {
	if m.state != stateIdle {
		return ErrInvalidOperation
	}
	if frameCountOut < 0 || frameCountOut > m.capacityFrames {
		return ErrInvalidArgs
	}
	m.zeroAccum(frameCountOut)
	m.frameCountOut = frameCountOut
	m.parent = nil
	m.state = stateMixing
	return nil
}

// BeginSubmix opens m as a submix nested inside parent's currently open
// begin/end window. frameCountOut must equal the parent's own frame count
// (spec §4.9's submix frame-count rule): the child must close before the
// parent does.
func (m *Mixer) BeginSubmix(parent *Mixer, frameCountOut int) error {
	if m.state != stateIdle {
		return ErrInvalidOperation
	}
	if parent.state != stateMixing {
		return ErrInvalidOperation
	}
	if frameCountOut != parent.frameCountOut {
		return ErrInvalidArgs
	}
	m.zeroAccum(frameCountOut)
	m.frameCountOut = frameCountOut
	m.parent = parent
	m.state = stateMixing
	return nil
}

func (m *Mixer) zeroAccum(frameCountOut int) {
	n := frameCountOut * m.channels
	for i := 0; i < n; i++ {
		m.accum[i] = 0
	}
}

// MixPCMFrames adds frameCount frames of src, scaled by volume, into the
// accumulation buffer. It must be called between Begin/BeginSubmix and End.
func (m *Mixer) MixPCMFrames(src []float32, frameCount int, volume float32) error {
	if m.state != stateMixing {
		return ErrInvalidOperation
	}
	n := frameCount
	if n > m.frameCountOut {
		n = m.frameCountOut
	}
	for i := 0; i < n*m.channels; i++ {
		m.accum[i] += src[i] * volume
	}
	return nil
}

// MixDataSource reads up to the mixer's current frame count from ds and
// mixes it in at the given volume. It takes the zero-copy Map/Unmap path
// when ds implements source.Mapper, falling back to Read otherwise (spec
// §4.8's "core falls back to read when map is absent"). It returns the
// frame count actually mixed and propagates source.ErrAtEnd when ds runs
// out without looping.
func (m *Mixer) MixDataSource(ds source.DataSource, volume float32) (int, error) {
	if m.state != stateMixing {
		return 0, ErrInvalidOperation
	}
	buf := make([]float32, m.frameCountOut*m.channels)
	n, err := source.ReadFrames(ds, buf, m.frameCountOut, false)
	if err != nil && !errors.Is(err, source.ErrAtEnd) {
		return 0, err
	}
	if mixErr := m.MixPCMFrames(buf, n, volume); mixErr != nil {
		return 0, mixErr
	}
	return n, err
}

// MixRingBuffer mixes directly from a frame ring buffer by wrapping it as
// a data source whose Map returns the readable span (spec §4.9's
// mix-from-ring-buffer).
func (m *Mixer) MixRingBuffer(rb *ringbuffer.FrameRing, sampleRate int, volume float32) (int, error) {
	rs := source.NewRingSource(rb, m.channels, sampleRate)
	return m.MixDataSource(rs, volume)
}

// End finalizes the mix: applies the mixer's volume, clips to [-1, 1], runs
// the attached effect (if any), and writes the result into dst (a master
// mix) or adds it into the parent's accumulation buffer (a submix). A submix
// whose effect changed the frame count so it no longer matches the parent's
// own frame count fails with ErrInvalidOperation (spec §4.9's submix
// frame-count rule) rather than writing past the parent's accumulation
// buffer. It returns the number of frames written and resets the mixer to
// idle.
func (m *Mixer) End(dst []float32) (int, error) {
	if m.state != stateMixing {
		return 0, ErrInvalidOperation
	}
	n := m.frameCountOut
	result := m.accum[:n*m.channels]
	for i := range result {
		result[i] *= m.volume
	}
	for i := range result {
		result[i] = sampleformat.ClipF32(result[i])
	}

	outFrames := n
	if m.fx != nil {
		reqOut := m.fx.ExpectedOutputFrames(n)
		fxOut := make([]float32, reqOut*m.channels)
		inN, outN := n, reqOut
		if err := m.fx.Process(result, &inN, fxOut, &outN); err != nil {
			return 0, err
		}
		result = fxOut[:outN*m.channels]
		outFrames = outN
	}

	if m.parent != nil {
		if outFrames != m.parent.frameCountOut {
			m.state = stateIdle
			return 0, ErrInvalidOperation
		}
		for i := 0; i < outFrames*m.channels; i++ {
			m.parent.accum[i] += result[i]
		}
	} else {
		copy(dst[:outFrames*m.channels], result)
	}

	m.state = stateIdle
	return outFrames, nil
}
