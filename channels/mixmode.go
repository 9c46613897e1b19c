package channels

// MixMode selects the strategy used to synthesize the mix-weight matrix
// (spec §4.2).
type MixMode int

const (
	Rectangular MixMode = iota
	Simple
	PlanarBlend
	Custom
)

// planarWeight holds the same-side blend weight a source position
// contributes to a differently-placed destination position on the same
// side, per spec §4.2's worked example (FL→L=1, FC→L=0.5, BL→L=0.25,
// SL→L=0.5, symmetric for R). Keyed by (outRole, inRole) since the table is
// side-agnostic; side matching is applied by weight() below.
var planarSameSideWeight = map[[2]Position]float64{
	{FrontLeft, FrontLeft}:   1.0,
	{FrontLeft, BackLeft}:    0.25,
	{FrontLeft, SideLeft}:    0.5,
	{BackLeft, FrontLeft}:    0.25,
	{BackLeft, BackLeft}:     1.0,
	{BackLeft, SideLeft}:     0.5,
	{SideLeft, FrontLeft}:    0.5,
	{SideLeft, BackLeft}:     0.5,
	{SideLeft, SideLeft}:     1.0,
}

// side returns -1 for left-family positions, +1 for right-family, 0 for
// center/LFE/none.
func side(p Position) int {
	switch p {
	case FrontLeft, BackLeft, SideLeft:
		return -1
	case FrontRight, BackRight, SideRight:
		return 1
	default:
		return 0
	}
}

// mirrorToLeft maps a right-side position to its left-side counterpart so
// the same-side table above can be reused for the right channel.
func mirrorToLeft(p Position) Position {
	switch p {
	case FrontRight:
		return FrontLeft
	case BackRight:
		return BackLeft
	case SideRight:
		return SideLeft
	default:
		return p
	}
}

// weight returns the planar-blend contribution of input position `in` to
// output position `out`. LFE only feeds LFE (spec §4.2); FrontCenter
// contributes half its signal to every left- or right-side output (front,
// back or side) on its own side-agnostic basis.
func weight(out, in Position) float64 {
	if out == LFE || in == LFE {
		if out == LFE && in == LFE {
			return 1.0
		}
		return 0.0
	}
	if in == FrontCenter {
		if side(out) != 0 {
			return 0.5
		}
		if out == FrontCenter {
			return 1.0
		}
		return 0.0
	}
	if out == FrontCenter {
		return 0.0
	}

	outSide := side(out)
	inSide := side(in)
	if outSide == 0 || inSide == 0 {
		if out == in {
			return 1.0
		}
		return 0.0
	}
	if outSide != inSide {
		return 0.0
	}
	return planarSameSideWeight[[2]Position{mirrorToLeft(out), mirrorToLeft(in)}]
}

// RectangularWeight returns the simple/rectangular weight: 1 where
// positions match exactly, 0 otherwise.
func RectangularWeight(out, in Position) float64 {
	if out == in && out != None {
		return 1.0
	}
	return 0.0
}

// PlanarBlendWeight returns the planar_blend weight for the out/in pair.
func PlanarBlendWeight(out, in Position) float64 {
	return weight(out, in)
}
