package core

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/interp"
)

const twoPi = 2 * math.Pi

// HorizonMask is a station's piecewise-linear azimuth -> minimum-elevation
// boundary, describing terrain and obstructions around the antenna. It is
// built once from station configuration and immutable afterwards.
type HorizonMask struct {
	az []float64
	el []float64
	pl interp.PiecewiseLinear
}

// NewHorizonMask builds a mask from (azimuth, minimum-elevation) control
// points in radians. Azimuths must start at 0 and be strictly increasing; the
// table spans one full revolution. If the closing point at 2π is missing it
// is synthesized from the first point, so that a query azimuth equal to the
// last table azimuth behaves exactly like the first. Malformed tables are a
// configuration error rejected here, never at query time.
func NewHorizonMask(azimuths, elevations []float64) (*HorizonMask, error) {
	if len(azimuths) != len(elevations) {
		return nil, fmt.Errorf("horizon mask: %d azimuths vs %d elevations", len(azimuths), len(elevations))
	}
	if len(azimuths) < 2 {
		return nil, fmt.Errorf("horizon mask: need at least 2 control points, got %d", len(azimuths))
	}
	if azimuths[0] != 0 {
		return nil, fmt.Errorf("horizon mask: table must start at azimuth 0, got %g", azimuths[0])
	}
	for i := 1; i < len(azimuths); i++ {
		if azimuths[i] <= azimuths[i-1] {
			return nil, fmt.Errorf("horizon mask: azimuths not strictly increasing at index %d (%g after %g)",
				i, azimuths[i], azimuths[i-1])
		}
	}
	last := azimuths[len(azimuths)-1]
	if last > twoPi+1e-9 {
		return nil, fmt.Errorf("horizon mask: table exceeds one revolution (last azimuth %g)", last)
	}

	az := append([]float64(nil), azimuths...)
	el := append([]float64(nil), elevations...)
	if last < twoPi-1e-9 {
		// Close the table so lookups near 2π wrap onto the first point.
		az = append(az, twoPi)
		el = append(el, el[0])
	}

	m := &HorizonMask{az: az, el: el}
	if err := m.pl.Fit(az, el); err != nil {
		return nil, fmt.Errorf("horizon mask: %w", err)
	}
	return m, nil
}

// MinElevation returns the interpolated minimum elevation at the given
// azimuth (radians, any wrap).
func (m *HorizonMask) MinElevation(az float64) float64 {
	return m.pl.Predict(normalizeAz(az))
}

// Visible reports whether a direction clears the local horizon boundary.
func (m *HorizonMask) Visible(az, el float64) bool {
	return el >= m.MinElevation(az)
}

// Boundary samples the mask at the given azimuth step (radians) over one full
// revolution, endpoints inclusive, for reporting and export. A non-positive
// step defaults to 1 degree.
func (m *HorizonMask) Boundary(step float64) (azimuths, elevations []float64) {
	if step <= 0 {
		step = math.Pi / 180
	}
	for az := 0.0; az <= twoPi+1e-12; az += step {
		azimuths = append(azimuths, az)
		elevations = append(elevations, m.MinElevation(az))
	}
	return azimuths, elevations
}

// normalizeAz maps an azimuth into [0, 2π), correcting negative fmod results.
func normalizeAz(az float64) float64 {
	az = math.Mod(az, twoPi)
	if az < 0 {
		az += twoPi
	}
	return az
}
