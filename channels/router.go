package channels

import "fmt"

// FastPath identifies a detected shortcut that bypasses the general
// weighted-sum loop.
type FastPath int

const (
	FastPathNone FastPath = iota
	FastPathPassthrough
	FastPathShuffle
	FastPathMonoExpansion
	FastPathStereoToMono
	FastPathMonoToStereo
)

// Router routes frameCount frames of interleaved float32 samples from an
// input channel layout to an output channel layout using a weight matrix
// synthesized from the declared mix mode.
type Router struct {
	InChannels  int
	OutChannels int
	InMap       Map
	OutMap      Map
	Mode        MixMode

	matrix   [][]float64 // matrix[out][in]
	fastPath FastPath
	perm     []int // for FastPathShuffle: dst channel i <- src channel perm[i]
}

// ErrDimensionMismatch is returned when a custom weight matrix's dimensions
// don't match the declared channel counts.
var ErrDimensionMismatch = fmt.Errorf("channels: custom weight matrix dimensions do not match channel counts")

// New builds a Router. custom is only consulted when mode == Custom, and
// must be [OutChannels][InChannels].
func New(inMap, outMap Map, mode MixMode, custom [][]float64) (*Router, error) {
	r := &Router{
		InChannels:  len(inMap),
		OutChannels: len(outMap),
		InMap:       inMap,
		OutMap:      outMap,
		Mode:        mode,
	}

	switch {
	case mode == Custom:
		if len(custom) != r.OutChannels {
			return nil, ErrDimensionMismatch
		}
		for _, row := range custom {
			if len(row) != r.InChannels {
				return nil, ErrDimensionMismatch
			}
		}
		r.matrix = custom
	case r.InChannels == 1 && inMap[0] == Mono:
		r.matrix = monoExpansionMatrix(outMap)
	case r.OutChannels == 1 && outMap[0] == Mono:
		r.matrix = anyToMonoMatrix(inMap)
	default:
		r.matrix = generalMatrix(inMap, outMap, mode)
	}

	r.detectFastPath()
	return r, nil
}

func monoExpansionMatrix(outMap Map) [][]float64 {
	m := make([][]float64, len(outMap))
	for i, pos := range outMap {
		m[i] = []float64{0}
		if pos != LFE {
			m[i][0] = 1.0
		}
	}
	return m
}

func anyToMonoMatrix(inMap Map) [][]float64 {
	count := 0
	for _, p := range inMap {
		if p != LFE {
			count++
		}
	}
	row := make([]float64, len(inMap))
	if count > 0 {
		w := 1.0 / float64(count)
		for i, p := range inMap {
			if p != LFE {
				row[i] = w
			}
		}
	}
	return [][]float64{row}
}

func generalMatrix(inMap, outMap Map, mode MixMode) [][]float64 {
	m := make([][]float64, len(outMap))
	for o, outPos := range outMap {
		m[o] = make([]float64, len(inMap))
		for i, inPos := range inMap {
			switch mode {
			case PlanarBlend:
				m[o][i] = PlanarBlendWeight(outPos, inPos)
			default: // Rectangular, Simple
				m[o][i] = RectangularWeight(outPos, inPos)
			}
		}
	}
	return m
}

func (r *Router) detectFastPath() {
	if r.InChannels == 1 && r.InMap[0] == Mono && r.OutChannels == 2 {
		r.fastPath = FastPathMonoToStereo
		return
	}
	if r.InChannels == 1 && r.InMap[0] == Mono && r.OutChannels > 1 {
		r.fastPath = FastPathMonoExpansion
		return
	}
	if r.OutChannels == 1 && r.OutMap[0] == Mono && r.InChannels == 2 {
		r.fastPath = FastPathStereoToMono
		return
	}
	if r.InChannels != r.OutChannels {
		return
	}
	if r.Mode != Rectangular && r.Mode != Simple {
		return
	}
	if equalMaps(r.InMap, r.OutMap) {
		r.fastPath = FastPathPassthrough
		return
	}
	if perm, ok := permutationOf(r.InMap, r.OutMap); ok {
		r.fastPath = FastPathShuffle
		r.perm = perm
		return
	}
}

func equalMaps(a, b Map) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// permutationOf reports whether out is a reordering of in (same multiset of
// positions), returning perm such that out[i] == in[perm[i]].
func permutationOf(in, out Map) ([]int, bool) {
	used := make([]bool, len(in))
	perm := make([]int, len(out))
	for oi, op := range out {
		found := -1
		for ii, ip := range in {
			if !used[ii] && ip == op {
				found = ii
				break
			}
		}
		if found == -1 {
			return nil, false
		}
		used[found] = true
		perm[oi] = found
	}
	return perm, true
}

// FastPath reports the detected shortcut, if any.
func (r *Router) FastPath() FastPath { return r.fastPath }

// IsPassthrough reports whether routing reduces to a memory copy.
func (r *Router) IsPassthrough() bool { return r.fastPath == FastPathPassthrough }

// Weight returns the synthesized weight matrix entry for (outChannel,
// inChannel), mostly useful for tests asserting specific weight values.
func (r *Router) Weight(outChannel, inChannel int) float64 {
	return r.matrix[outChannel][inChannel]
}

// Route routes frameCount interleaved frames from src (r.InChannels wide)
// into dst (r.OutChannels wide).
func (r *Router) Route(dst, src []float32, frameCount int) {
	switch r.fastPath {
	case FastPathPassthrough:
		copy(dst[:frameCount*r.OutChannels], src[:frameCount*r.InChannels])
		return
	case FastPathShuffle:
		for f := 0; f < frameCount; f++ {
			for o := 0; o < r.OutChannels; o++ {
				dst[f*r.OutChannels+o] = src[f*r.InChannels+r.perm[o]]
			}
		}
		return
	case FastPathMonoExpansion, FastPathMonoToStereo:
		for f := 0; f < frameCount; f++ {
			s := src[f*r.InChannels]
			for o := 0; o < r.OutChannels; o++ {
				if r.matrix[o][0] != 0 {
					dst[f*r.OutChannels+o] = s * float32(r.matrix[o][0])
				} else {
					dst[f*r.OutChannels+o] = 0
				}
			}
		}
		return
	case FastPathStereoToMono:
		w := r.matrix[0]
		for f := 0; f < frameCount; f++ {
			l := src[f*2]
			rr := src[f*2+1]
			dst[f] = l*float32(w[0]) + rr*float32(w[1])
		}
		return
	}

	for f := 0; f < frameCount; f++ {
		inBase := f * r.InChannels
		outBase := f * r.OutChannels
		for o := 0; o < r.OutChannels; o++ {
			var sum float32
			row := r.matrix[o]
			for i := 0; i < r.InChannels; i++ {
				if row[i] != 0 {
					sum += src[inBase+i] * float32(row[i])
				}
			}
			dst[outBase+o] = sum
		}
	}
}
