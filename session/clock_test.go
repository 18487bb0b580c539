package session

import (
	"math"
	"testing"
	"time"
)

func TestClockJulianDates(t *testing.T) {
	// J2000.0: JD 2451545.0, MJD 51544.5.
	c := NewClock(time.Date(2000, 1, 1, 12, 0, 0, 0, time.UTC))

	if got := c.MJDStart(); math.Abs(got-51544.5) > 1e-9 {
		t.Fatalf("MJDStart = %g, want 51544.5", got)
	}
	if got := c.JD(0); math.Abs(got-2451545.0) > 1e-9 {
		t.Fatalf("JD(0) = %g, want 2451545", got)
	}
	if got := c.MJD(86400); math.Abs(got-51545.5) > 1e-9 {
		t.Fatalf("MJD one day in = %g, want 51545.5", got)
	}
	if got := c.MJD(43200); math.Abs(got-51545.0) > 1e-9 {
		t.Fatalf("MJD half a day in = %g, want 51545", got)
	}
}

func TestClockTimeConversions(t *testing.T) {
	epoch := time.Date(2025, 3, 20, 18, 0, 0, 0, time.UTC)
	c := NewClock(epoch)

	if !c.Epoch().Equal(epoch) {
		t.Fatalf("Epoch = %v, want %v", c.Epoch(), epoch)
	}
	if got := c.Time(90); !got.Equal(epoch.Add(90 * time.Second)) {
		t.Fatalf("Time(90) = %v", got)
	}
	if got := c.Seconds(epoch.Add(90 * time.Second)); got != 90 {
		t.Fatalf("Seconds = %d, want 90", got)
	}
	if got := c.Seconds(epoch); got != 0 {
		t.Fatalf("Seconds at epoch = %d, want 0", got)
	}
}

func TestClockNormalizesToUTC(t *testing.T) {
	loc := time.FixedZone("CET", 3600)
	c := NewClock(time.Date(2025, 3, 20, 19, 0, 0, 0, loc))
	want := time.Date(2025, 3, 20, 18, 0, 0, 0, time.UTC)
	if !c.Epoch().Equal(want) {
		t.Fatalf("Epoch = %v, want %v", c.Epoch(), want)
	}
}
