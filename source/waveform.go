package source

import "math"

// WaveType selects the oscillator shape a Waveform generates.
type WaveType int

const (
	Sine WaveType = iota
	Square
	Triangle
	Sawtooth
)

// Waveform is an infinite, restartable data source producing a single
// periodic shape replicated identically across every channel. Negative
// amplitude inverts the waveform, per spec §4.10.
type Waveform struct {
	waveType   WaveType
	channels   int
	sampleRate int
	amplitude  float64
	frequency  float64

	phase float64 // radians for Sine, normalized [0,1) fraction otherwise
}

// NewWaveform creates a waveform generator.
func NewWaveform(waveType WaveType, channels, sampleRate int, amplitude, frequency float64) *Waveform {
	return &Waveform{
		waveType:   waveType,
		channels:   channels,
		sampleRate: sampleRate,
		amplitude:  amplitude,
		frequency:  frequency,
	}
}

func (w *Waveform) Channels() int   { return w.channels }
func (w *Waveform) SampleRate() int { return w.sampleRate }

// GetCursor is not meaningful for an infinite periodic source.
func (w *Waveform) GetCursor() (int64, error) { return 0, ErrNotImplemented }

// GetLength is undefined for an infinite source.
func (w *Waveform) GetLength() (int64, error) { return 0, ErrNotImplemented }

// Seek only supports rewinding the phase accumulator to frame 0; any other
// target is rejected since the source has no concept of absolute position.
func (w *Waveform) Seek(frame int64) error {
	if frame != 0 {
		return ErrNotImplemented
	}
	w.phase = 0
	return nil
}

func (w *Waveform) sampleAt() float64 {
	switch w.waveType {
	case Sine:
		return w.amplitude * math.Sin(w.phase)
	case Square:
		if w.phase < 0.5 {
			return w.amplitude
		}
		return -w.amplitude
	case Triangle:
		// Triangle rising from -amp at phase 0 to +amp at 0.5, back down by 1.
		if w.phase < 0.5 {
			return w.amplitude * (4*w.phase - 1)
		}
		return w.amplitude * (3 - 4*w.phase)
	case Sawtooth:
		return w.amplitude * (2*w.phase - 1)
	default:
		return 0
	}
}

func (w *Waveform) advance() {
	if w.waveType == Sine {
		w.phase += 2 * math.Pi * w.frequency / float64(w.sampleRate)
		if w.phase >= 2*math.Pi {
			w.phase -= 2 * math.Pi
		}
		return
	}
	w.phase += w.frequency / float64(w.sampleRate)
	if w.phase >= 1.0 {
		w.phase -= 1.0
	}
}

// Read generates frameCount frames. Waveforms are infinite, so loop has no
// observable effect beyond the contract's requirement that it never
// returns ErrAtEnd.
func (w *Waveform) Read(dst []float32, frameCount int, loop bool) (int, error) {
	for f := 0; f < frameCount; f++ {
		v := float32(w.sampleAt())
		base := f * w.channels
		for c := 0; c < w.channels; c++ {
			dst[base+c] = v
		}
		w.advance()
	}
	return frameCount, nil
}
