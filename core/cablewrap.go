package core

import (
	"fmt"
	"math"
)

// AxisType is the closed set of antenna mount kinds the engine understands.
// Each variant has its own explicit sky-direction -> axis-coordinate
// conversion rule; an unknown variant is a configuration-load error.
type AxisType int

const (
	// AxisAZEL is an azimuth-elevation mount.
	AxisAZEL AxisType = iota
	// AxisHADC is an hour-angle/declination (equatorial) mount.
	AxisHADC
	// AxisXYNS is a fixed x-y mount with the x axis along north-south.
	AxisXYNS
	// AxisXYEW is a fixed x-y mount with the x axis along east-west.
	AxisXYEW
	// AxisRICH is the Richmond legacy equatorial mount.
	AxisRICH
	// AxisSEST is the SEST legacy mount, an azimuth-elevation antenna whose
	// azimuth reading is referenced to south instead of north.
	AxisSEST
	// AxisALGO is the Algonquin legacy equatorial mount.
	AxisALGO
)

var axisTypeNames = map[string]AxisType{
	"AZEL": AxisAZEL,
	"HADC": AxisHADC,
	"XYNS": AxisXYNS,
	"XYEW": AxisXYEW,
	"RICH": AxisRICH,
	"SEST": AxisSEST,
	"ALGO": AxisALGO,
}

// ParseAxisType maps a catalog mount string onto an AxisType.
func ParseAxisType(s string) (AxisType, error) {
	if t, ok := axisTypeNames[s]; ok {
		return t, nil
	}
	return 0, fmt.Errorf("unknown axis type %q", s)
}

func (t AxisType) String() string {
	for name, v := range axisTypeNames {
		if v == t {
			return name
		}
	}
	return fmt.Sprintf("AxisType(%d)", int(t))
}

// AxisCoord is one physically reachable pair of axis coordinates (radians).
type AxisCoord struct {
	Axis1 float64
	Axis2 float64
}

// AxisConfig describes one axis's nominal hardware range and the safety
// margins contracted from each end before any feasibility test. All values
// are radians.
type AxisConfig struct {
	Low        float64
	High       float64
	LowMargin  float64
	HighMargin float64
}

type axisRange struct {
	low, high float64
}

func (r axisRange) contains(v float64) bool {
	return v >= r.low && v <= r.high
}

func (r axisRange) mid() float64 {
	return (r.low + r.high) / 2
}

// CableWrap models a station's axis limits and wrap behaviour: it converts a
// geometrically unique sky direction into the finite set of physically
// reachable axis-coordinate pairs and resolves the ambiguity. Immutable,
// built from static station configuration.
type CableWrap struct {
	axisType AxisType
	latitude float64

	axis1 axisRange
	axis2 axisRange

	// wrap1 is the wrap period of the first axis, 0 for mounts whose first
	// axis cannot rotate through a full turn.
	wrap1 float64
}

// NewCableWrap validates and builds the wrap model. Limits are stored after
// margin contraction, so any coordinate flagged feasible has physical slack.
// latitude (radians) feeds the equatorial and x-y conversion rules.
func NewCableWrap(axisType AxisType, latitude float64, axis1, axis2 AxisConfig) (*CableWrap, error) {
	r1, err := contract(axis1)
	if err != nil {
		return nil, fmt.Errorf("axis 1: %w", err)
	}
	r2, err := contract(axis2)
	if err != nil {
		return nil, fmt.Errorf("axis 2: %w", err)
	}

	wrap := 0.0
	switch axisType {
	case AxisAZEL, AxisSEST, AxisHADC, AxisRICH, AxisALGO:
		wrap = twoPi
	case AxisXYNS, AxisXYEW:
		wrap = 0
	default:
		return nil, fmt.Errorf("unknown axis type %d", int(axisType))
	}

	return &CableWrap{
		axisType: axisType,
		latitude: latitude,
		axis1:    r1,
		axis2:    r2,
		wrap1:    wrap,
	}, nil
}

func contract(cfg AxisConfig) (axisRange, error) {
	if cfg.LowMargin < 0 || cfg.HighMargin < 0 {
		return axisRange{}, fmt.Errorf("negative safety margin")
	}
	low := cfg.Low + cfg.LowMargin
	high := cfg.High - cfg.HighMargin
	if low >= high {
		return axisRange{}, fmt.Errorf("inverted limits after margin contraction [%g, %g]", low, high)
	}
	return axisRange{low: low, high: high}, nil
}

// Type returns the mount kind.
func (cw *CableWrap) Type() AxisType { return cw.axisType }

// baseCoord applies the mount-specific conversion from a sky direction to raw
// axis coordinates, before any wrap disambiguation.
func (cw *CableWrap) baseCoord(az, el float64) AxisCoord {
	switch cw.axisType {
	case AxisAZEL:
		return AxisCoord{Axis1: az, Axis2: el}
	case AxisSEST:
		// SEST reads azimuth from south.
		return AxisCoord{Axis1: az - math.Pi, Axis2: el}
	case AxisHADC, AxisRICH, AxisALGO:
		ha, dec := haDecFromAzEl(az, el, cw.latitude)
		return AxisCoord{Axis1: ha, Axis2: dec}
	case AxisXYNS:
		x := math.Atan2(math.Cos(el)*math.Cos(az), math.Sin(el))
		y := math.Asin(math.Cos(el) * math.Sin(az))
		return AxisCoord{Axis1: x, Axis2: y}
	case AxisXYEW:
		x := math.Atan2(math.Cos(el)*math.Sin(az), math.Sin(el))
		y := math.Asin(math.Cos(el) * math.Cos(az))
		return AxisCoord{Axis1: x, Axis2: y}
	}
	// Unreachable: NewCableWrap rejects unknown types.
	return AxisCoord{Axis1: az, Axis2: el}
}

// haDecFromAzEl converts a topocentric direction (azimuth from north, east
// positive) into local hour angle and declination for an observer at the
// given latitude.
func haDecFromAzEl(az, el, lat float64) (ha, dec float64) {
	sinDec := math.Sin(lat)*math.Sin(el) + math.Cos(lat)*math.Cos(el)*math.Cos(az)
	dec = math.Asin(sinDec)
	ha = math.Atan2(-math.Sin(az)*math.Cos(el),
		math.Cos(lat)*math.Sin(el)-math.Sin(lat)*math.Cos(el)*math.Cos(az))
	return ha, dec
}

// CandidatesFor returns every physically valid axis-coordinate pair for the
// sky direction, in increasing axis-1 order. For a wrapped first axis that is
// every base + k·wrap inside the contracted range. An empty slice is the
// normal "not reachable" result, never an error.
func (cw *CableWrap) CandidatesFor(az, el float64) []AxisCoord {
	base := cw.baseCoord(az, el)
	if !cw.axis2.contains(base.Axis2) {
		return nil
	}

	if cw.wrap1 == 0 {
		if cw.axis1.contains(base.Axis1) {
			return []AxisCoord{base}
		}
		return nil
	}

	// Smallest k with base + k·wrap >= low.
	k := math.Ceil((cw.axis1.low - base.Axis1) / cw.wrap1)
	var out []AxisCoord
	for a1 := base.Axis1 + k*cw.wrap1; a1 <= cw.axis1.high; a1 += cw.wrap1 {
		out = append(out, AxisCoord{Axis1: a1, Axis2: base.Axis2})
	}
	return out
}

// InRange reports whether a resolved coordinate pair lies within the
// contracted limits.
func (cw *CableWrap) InRange(axis1, axis2 float64) bool {
	return cw.axis1.contains(axis1) && cw.axis2.contains(axis2)
}

// NeutralPoint returns the midpoint of the contracted range for axis 1 or 2,
// the disambiguation anchor of the range. Any other index yields NaN.
func (cw *CableWrap) NeutralPoint(axis int) float64 {
	switch axis {
	case 1:
		return cw.axis1.mid()
	case 2:
		return cw.axis2.mid()
	}
	return math.NaN()
}

// NearCurrent resolves the wrap ambiguity by picking the candidate closest to
// the station's current axis-1 coordinate. This is the rule used on the
// committed-scheduling path. ok is false when no candidate is reachable.
func (cw *CableWrap) NearCurrent(az, el, currentAxis1 float64) (AxisCoord, bool) {
	return nearest(cw.CandidatesFor(az, el), currentAxis1)
}

// NearNeutral resolves the ambiguity toward the axis-1 range midpoint. It is
// a diagnostic rule; it fails when no candidate lies within range at all.
func (cw *CableWrap) NearNeutral(az, el float64) (AxisCoord, bool) {
	return nearest(cw.CandidatesFor(az, el), cw.axis1.mid())
}

// NearGiven resolves the ambiguity toward an externally supplied reference
// coordinate, for what-if evaluation that must not touch station state.
func (cw *CableWrap) NearGiven(az, el, ref float64) (AxisCoord, bool) {
	return nearest(cw.CandidatesFor(az, el), ref)
}

func nearest(cands []AxisCoord, ref float64) (AxisCoord, bool) {
	if len(cands) == 0 {
		return AxisCoord{}, false
	}
	best := cands[0]
	bestDist := math.Abs(cands[0].Axis1 - ref)
	for _, c := range cands[1:] {
		if d := math.Abs(c.Axis1 - ref); d < bestDist {
			best = c
			bestDist = d
		}
	}
	return best, true
}
