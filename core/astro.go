package core

import (
	"fmt"
	"math"
	"time"

	satellite "github.com/joshuaferrara/go-satellite"
	"github.com/soniakeys/meeus/v3/coord"
	"github.com/soniakeys/meeus/v3/nutation"
	"github.com/soniakeys/meeus/v3/sidereal"
	"github.com/soniakeys/unit"

	"github.com/vlbitools/schedcore/model"
)

// AzElModel selects the earth-orientation treatment used when computing
// topocentric azimuth/elevation for sidereal sources.
type AzElModel int

const (
	// AzElSimple uses mean sidereal time and omits nutation corrections.
	AzElSimple AzElModel = iota
	// AzElRigorous uses apparent sidereal time, which folds in nutation and
	// the equation of the equinoxes.
	AzElRigorous
)

// ParseAzElModel maps a configuration string onto an AzElModel.
func ParseAzElModel(s string) (AzElModel, error) {
	switch s {
	case "", "simple":
		return AzElSimple, nil
	case "rigorous":
		return AzElRigorous, nil
	}
	return 0, fmt.Errorf("unknown azimuth/elevation model %q", s)
}

// EarthOrientation bundles the nutation and earth-rotation parameters for one
// epoch, the correction set the rigorous pointing model consumes. All angles
// are radians.
type EarthOrientation struct {
	DeltaPsi      float64
	DeltaEps      float64
	TrueObliquity float64
	ApparentGST   float64
}

// EarthOrientationAt evaluates the correction parameters for a modified
// Julian date.
func EarthOrientationAt(mjd float64) EarthOrientation {
	jd := mjd + 2400000.5
	dPsi, dEps := nutation.Nutation(jd)
	eps0 := nutation.MeanObliquity(jd)
	return EarthOrientation{
		DeltaPsi:      dPsi.Rad(),
		DeltaEps:      dEps.Rad(),
		TrueObliquity: eps0.Rad() + dEps.Rad(),
		ApparentGST:   sidereal.Apparent(jd).Rad(),
	}
}

// azElSidereal computes the topocentric azimuth (from north, east positive)
// and elevation of a fixed equatorial direction as seen from pos at the given
// modified Julian date.
func azElSidereal(ra, dec float64, pos model.StationPosition, mjd float64, m AzElModel) (az, el float64) {
	jd := mjd + 2400000.5
	var st unit.Time
	if m == AzElRigorous {
		st = sidereal.Apparent(jd)
	} else {
		st = sidereal.Mean(jd)
	}
	// Meeus measures observer longitude positive west and azimuth westward
	// from south; convert on both boundaries.
	A, h := coord.EqToHz(unit.RAFromRad(ra), unit.Angle(dec),
		unit.Angle(pos.Lat), unit.Angle(-pos.Lon), st)
	return normalizeAz(A.Rad() + math.Pi), h.Rad()
}

// azElSatellite propagates a TLE-defined satellite to t and returns its look
// angles from pos: azimuth from north and elevation, radians.
func azElSatellite(sat satellite.Satellite, pos model.StationPosition, t time.Time) (az, el float64) {
	t = t.UTC()
	year, month, day := t.Date()
	hour, min, sec := t.Clock()

	eci, _ := satellite.Propagate(sat, year, int(month), day, hour, min, sec)
	jday := satellite.JDay(year, int(month), day, hour, min, sec)
	obs := satellite.LatLong{Latitude: pos.Lat, Longitude: pos.Lon}
	la := satellite.ECIToLookAngles(eci, obs, pos.Alt/1000.0, jday)
	return normalizeAz(la.Az), la.El
}

// ValidateTLE checks that a two-line element pair parses, so catalog loading
// can reject malformed satellite sources up front instead of at query time.
func ValidateTLE(tle1, tle2 string) error {
	_, err := newSatellite(tle1, tle2)
	return err
}

// newSatellite parses a TLE pair. go-satellite panics on malformed element
// lines, so the parse is fenced and surfaced as a configuration error.
func newSatellite(tle1, tle2 string) (sat satellite.Satellite, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("parse TLE: %v", r)
		}
	}()
	sat = satellite.TLEToSat(tle1, tle2, satellite.GravityWGS72)
	return sat, nil
}
