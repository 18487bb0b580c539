package session

import (
	"time"

	"github.com/soniakeys/meeus/v3/julian"
)

// EpochClock is an interface for converting between session-relative seconds
// and absolute time scales. Engine components depend on this abstraction
// rather than a concrete clock type, enabling testability.
type EpochClock interface {
	// Epoch returns the session start instant (UTC).
	Epoch() time.Time
	// MJD returns the modified Julian date at the given session second.
	MJD(seconds int) float64
	// Time returns the absolute instant at the given session second.
	Time(seconds int) time.Time
}

// Clock anchors a session: all engine timestamps are seconds since the
// session epoch, and astronomical reductions need the matching Julian dates.
// It implements EpochClock.
type Clock struct {
	epoch time.Time
	mjd0  float64
}

const mjdOffset = 2400000.5

// NewClock constructs a clock for a session starting at epoch.
func NewClock(epoch time.Time) *Clock {
	epoch = epoch.UTC()
	return &Clock{
		epoch: epoch,
		mjd0:  julian.TimeToJD(epoch) - mjdOffset,
	}
}

// Epoch returns the session start instant.
func (c *Clock) Epoch() time.Time { return c.epoch }

// MJDStart returns the modified Julian date of the session start.
func (c *Clock) MJDStart() float64 { return c.mjd0 }

// MJD returns the modified Julian date at the given session second.
func (c *Clock) MJD(seconds int) float64 {
	return c.mjd0 + float64(seconds)/86400.0
}

// JD returns the Julian date at the given session second.
func (c *Clock) JD(seconds int) float64 {
	return c.MJD(seconds) + mjdOffset
}

// Time returns the absolute instant at the given session second.
func (c *Clock) Time(seconds int) time.Time {
	return c.epoch.Add(time.Duration(seconds) * time.Second)
}

// Seconds converts an absolute instant into session-relative seconds,
// truncated toward zero.
func (c *Clock) Seconds(t time.Time) int {
	return int(t.UTC().Sub(c.epoch) / time.Second)
}
