package core

import (
	"math"
	"testing"
)

func deg(d float64) float64 { return d * math.Pi / 180 }

func TestHorizonMaskInterpolation(t *testing.T) {
	mask, err := NewHorizonMask(
		[]float64{deg(0), deg(90), deg(180), deg(270)},
		[]float64{deg(5), deg(10), deg(20), deg(10)},
	)
	if err != nil {
		t.Fatalf("NewHorizonMask: %v", err)
	}

	cases := []struct {
		az, want float64
	}{
		{deg(0), deg(5)},
		{deg(90), deg(10)},
		{deg(45), deg(7.5)},
		{deg(135), deg(15)},
		{deg(270), deg(10)},
		// Closing segment synthesized back to the first point.
		{deg(315), deg(7.5)},
	}
	for _, c := range cases {
		got := mask.MinElevation(c.az)
		if math.Abs(got-c.want) > 1e-9 {
			t.Fatalf("MinElevation(%g deg) = %g, want %g", c.az*180/math.Pi, got, c.want)
		}
	}
}

func TestHorizonMaskWrapInvariance(t *testing.T) {
	mask, err := NewHorizonMask(
		[]float64{deg(0), deg(120), deg(240)},
		[]float64{deg(3), deg(12), deg(6)},
	)
	if err != nil {
		t.Fatalf("NewHorizonMask: %v", err)
	}

	for _, az := range []float64{deg(10), deg(100), deg(200), deg(355)} {
		base := mask.MinElevation(az)
		for _, wrapped := range []float64{az + twoPi, az - twoPi, az + 3*twoPi} {
			if got := mask.MinElevation(wrapped); math.Abs(got-base) > 1e-9 {
				t.Fatalf("MinElevation not wrap invariant at az %g: %g vs %g", az, got, base)
			}
		}
	}
}

func TestHorizonMaskVisible(t *testing.T) {
	mask, err := NewHorizonMask(
		[]float64{0, twoPi},
		[]float64{deg(10), deg(10)},
	)
	if err != nil {
		t.Fatalf("NewHorizonMask: %v", err)
	}

	if mask.Visible(deg(123), deg(9.5)) {
		t.Fatalf("elevation below flat 10 deg mask reported visible")
	}
	if !mask.Visible(deg(123), deg(10)) {
		t.Fatalf("elevation equal to mask boundary must count as visible")
	}
	if !mask.Visible(deg(123), deg(45)) {
		t.Fatalf("elevation above mask reported invisible")
	}
}

func TestHorizonMaskRejectsMalformedTables(t *testing.T) {
	cases := []struct {
		name string
		az   []float64
		el   []float64
	}{
		{"length mismatch", []float64{0, 1, 2}, []float64{0, 1}},
		{"too few points", []float64{0}, []float64{0}},
		{"nonzero start", []float64{deg(10), deg(180)}, []float64{0, 0}},
		{"not increasing", []float64{0, deg(180), deg(90)}, []float64{0, 0, 0}},
		{"beyond one revolution", []float64{0, deg(400)}, []float64{0, 0}},
	}
	for _, c := range cases {
		if _, err := NewHorizonMask(c.az, c.el); err == nil {
			t.Fatalf("%s: expected error, got nil", c.name)
		}
	}
}

func TestHorizonMaskBoundary(t *testing.T) {
	mask, err := NewHorizonMask(
		[]float64{0, deg(180)},
		[]float64{deg(5), deg(15)},
	)
	if err != nil {
		t.Fatalf("NewHorizonMask: %v", err)
	}

	azs, els := mask.Boundary(math.Pi / 2)
	if len(azs) != len(els) {
		t.Fatalf("Boundary returned %d azimuths but %d elevations", len(azs), len(els))
	}
	if len(azs) < 5 {
		t.Fatalf("Boundary with quarter-turn step returned %d samples, want at least 5", len(azs))
	}
	if azs[0] != 0 {
		t.Fatalf("Boundary must start at azimuth 0, got %g", azs[0])
	}
	if math.Abs(azs[len(azs)-1]-twoPi) > 1e-9 {
		t.Fatalf("Boundary must end at 2pi, got %g", azs[len(azs)-1])
	}
	if math.Abs(els[0]-deg(5)) > 1e-9 {
		t.Fatalf("Boundary elevation at az 0 = %g, want %g", els[0], deg(5))
	}
}
