package source

import "math/rand"

// NoiseType selects the spectral shape of a Noise source.
type NoiseType int

const (
	White NoiseType = iota
	Pink
	Brownian
)

// Noise is an infinite, non-seekable data source generating pseudo-random
// samples. Seek only accepts frame 0 as a no-op, matching spec §4.10.
type Noise struct {
	noiseType  NoiseType
	channels   int
	sampleRate int
	amplitude  float64
	rng        *rand.Rand

	// pink noise state: Voss-McCartney with a fixed octave count.
	pinkRows   []float64
	pinkCounts []int

	// brownian noise state: leaky integrator.
	brownState float64
}

const pinkOctaves = 7

// NewNoise creates a noise generator. seed makes output reproducible.
func NewNoise(noiseType NoiseType, channels, sampleRate int, seed int64, amplitude float64) *Noise {
	n := &Noise{
		noiseType:  noiseType,
		channels:   channels,
		sampleRate: sampleRate,
		amplitude:  amplitude,
		rng:        rand.New(rand.NewSource(seed)),
	}
	if noiseType == Pink {
		n.pinkRows = make([]float64, pinkOctaves)
		n.pinkCounts = make([]int, pinkOctaves)
	}
	return n
}

func (n *Noise) Channels() int   { return n.channels }
func (n *Noise) SampleRate() int { return n.sampleRate }

func (n *Noise) GetCursor() (int64, error) { return 0, ErrNotImplemented }
func (n *Noise) GetLength() (int64, error) { return 0, ErrNotImplemented }

// Seek is a no-op at frame 0 (noise has no meaningful position) and
// unsupported otherwise.
func (n *Noise) Seek(frame int64) error {
	if frame != 0 {
		return ErrNotImplemented
	}
	return nil
}

func (n *Noise) white() float64 {
	return n.amplitude * (n.rng.Float64()*2 - 1)
}

// pink implements Voss-McCartney: each call advances a binary counter and
// re-rolls the octave rows whose bit just flipped, summing all rows.
func (n *Noise) pink() float64 {
	idx := 0
	for i := range n.pinkCounts {
		n.pinkCounts[i]++
		if n.pinkCounts[i]&1 == 0 {
			idx = i
			break
		}
	}
	n.pinkRows[idx] = n.rng.Float64()*2 - 1
	sum := 0.0
	for _, v := range n.pinkRows {
		sum += v
	}
	return n.amplitude * sum / float64(len(n.pinkRows))
}

// brownian integrates white noise with a small leak factor to keep the
// random walk bounded.
func (n *Noise) brownian() float64 {
	const leak = 0.98
	n.brownState = n.brownState*leak + (n.rng.Float64()*2-1)*0.05
	if n.brownState > 1 {
		n.brownState = 1
	}
	if n.brownState < -1 {
		n.brownState = -1
	}
	return n.amplitude * n.brownState
}

// Read generates frameCount frames of noise, infinite so loop never
// triggers ErrAtEnd.
func (n *Noise) Read(dst []float32, frameCount int, loop bool) (int, error) {
	for f := 0; f < frameCount; f++ {
		var v float64
		switch n.noiseType {
		case White:
			v = n.white()
		case Pink:
			v = n.pink()
		case Brownian:
			v = n.brownian()
		}
		base := f * n.channels
		fv := float32(v)
		for c := 0; c < n.channels; c++ {
			dst[base+c] = fv
		}
	}
	return frameCount, nil
}
