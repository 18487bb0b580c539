package core

import (
	"math"
	"testing"
	"time"

	"github.com/vlbitools/schedcore/model"
)

// Teach-in element set for ISS; the epoch only matters relative to itself in
// these tests.
const (
	issTLE1 = "1 25544U 98067A   21275.59097222  .00000204  00000-0  10270-4 0  9990"
	issTLE2 = "2 25544  51.6459 115.9059 0001817  61.3028  35.9198 15.49370953257760"
)

func TestParseAzElModel(t *testing.T) {
	cases := []struct {
		in   string
		want AzElModel
	}{
		{"", AzElSimple},
		{"simple", AzElSimple},
		{"rigorous", AzElRigorous},
	}
	for _, c := range cases {
		got, err := ParseAzElModel(c.in)
		if err != nil {
			t.Fatalf("ParseAzElModel(%q): %v", c.in, err)
		}
		if got != c.want {
			t.Fatalf("ParseAzElModel(%q) = %v, want %v", c.in, got, c.want)
		}
	}
	if _, err := ParseAzElModel("exact"); err == nil {
		t.Fatalf("unknown model string must be rejected")
	}
}

func TestEarthOrientationAt(t *testing.T) {
	// 2025-03-20, mid-session.
	eo := EarthOrientationAt(60754.75)

	if eo.DeltaPsi == 0 || math.Abs(eo.DeltaPsi) > 1e-3 {
		t.Fatalf("nutation in longitude = %g rad, outside plausible range", eo.DeltaPsi)
	}
	if eo.DeltaEps == 0 || math.Abs(eo.DeltaEps) > 1e-3 {
		t.Fatalf("nutation in obliquity = %g rad, outside plausible range", eo.DeltaEps)
	}
	// Obliquity of the ecliptic stays near 23.44 deg on any modern date.
	if eo.TrueObliquity < deg(23.3) || eo.TrueObliquity > deg(23.6) {
		t.Fatalf("true obliquity = %g deg", eo.TrueObliquity*180/math.Pi)
	}
	if eo.ApparentGST < 0 || eo.ApparentGST >= twoPi {
		t.Fatalf("apparent GST = %g rad, want [0, 2pi)", eo.ApparentGST)
	}
}

func TestAzElSiderealAtPole(t *testing.T) {
	pos := model.StationPosition{Lat: deg(90), Lon: 0}
	mjd := 60754.75

	for _, m := range []AzElModel{AzElSimple, AzElRigorous} {
		_, el := azElSidereal(deg(120), deg(35), pos, mjd, m)
		if math.Abs(el-deg(35)) > 1e-6 {
			t.Fatalf("model %v: polar elevation = %g deg, want declination 35", m, el*180/math.Pi)
		}
	}
}

func TestAzElSiderealModelsAgreeClosely(t *testing.T) {
	pos := model.StationPosition{Lat: deg(49.145), Lon: deg(12.878)}
	mjd := 60754.75

	azS, elS := azElSidereal(deg(187.3), deg(2.05), pos, mjd, AzElSimple)
	azR, elR := azElSidereal(deg(187.3), deg(2.05), pos, mjd, AzElRigorous)

	if azS == azR {
		t.Fatalf("nutation correction had no effect on azimuth")
	}
	// The equation of the equinoxes is tens of arcseconds at most.
	if math.Abs(azS-azR) > deg(0.05) || math.Abs(elS-elR) > deg(0.05) {
		t.Fatalf("models diverge: daz=%g deg del=%g deg",
			(azS-azR)*180/math.Pi, (elS-elR)*180/math.Pi)
	}
	if azS < 0 || azS >= twoPi {
		t.Fatalf("azimuth = %g rad, want [0, 2pi)", azS)
	}
}

func TestAzElSiderealTracksEarthRotation(t *testing.T) {
	pos := model.StationPosition{Lat: deg(22.13), Lon: deg(-159.67)}
	mjd := 60754.75

	az1, _ := azElSidereal(deg(15.69), deg(58.4), pos, mjd, AzElSimple)
	az2, _ := azElSidereal(deg(15.69), deg(58.4), pos, mjd+0.25, AzElSimple)
	if az1 == az2 {
		t.Fatalf("pointing did not move over six hours")
	}
}

func TestSatelliteLookAngles(t *testing.T) {
	sat, err := newSatellite(issTLE1, issTLE2)
	if err != nil {
		t.Fatalf("newSatellite: %v", err)
	}

	pos := model.StationPosition{Lat: deg(49.145), Lon: deg(12.878), Alt: 669}
	t0 := time.Date(2021, 10, 2, 14, 11, 0, 0, time.UTC)

	az1, el1 := azElSatellite(sat, pos, t0)
	az2, el2 := azElSatellite(sat, pos, t0.Add(90*time.Second))

	if az1 < 0 || az1 >= twoPi {
		t.Fatalf("azimuth = %g rad, want [0, 2pi)", az1)
	}
	if el1 < -math.Pi/2 || el1 > math.Pi/2 {
		t.Fatalf("elevation = %g rad, outside [-pi/2, pi/2]", el1)
	}
	if az1 == az2 && el1 == el2 {
		t.Fatalf("low-orbit satellite did not move over 90 seconds")
	}
}

func TestValidateTLE(t *testing.T) {
	if err := ValidateTLE(issTLE1, issTLE2); err != nil {
		t.Fatalf("valid element set rejected: %v", err)
	}
	if err := ValidateTLE("garbage", "lines"); err == nil {
		t.Fatalf("malformed element set must be rejected")
	}
}
