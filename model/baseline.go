package model

import (
	"errors"
	"fmt"
)

// ErrDurationFixed indicates a baseline's scan duration was already revised.
var ErrDurationFixed = errors.New("baseline scan duration already fixed")

// Baseline records one committed joint observation of a source by a pair of
// stations: the unit the external scheduler accumulates into a session
// schedule. It is immutable after construction except for the scan duration,
// which may be revised exactly once (e.g. extended to the binding band's
// required integration time).
type Baseline struct {
	StationID1 string
	StationID2 string
	SourceID   string

	// StartTime is the scheduled scan start in seconds since session epoch.
	StartTime int

	scanDuration int
	durationSet  bool
}

// NewBaseline constructs a baseline. The two station IDs must be distinct.
func NewBaseline(staID1, staID2, srcID string, startTime int) (Baseline, error) {
	if staID1 == staID2 {
		return Baseline{}, fmt.Errorf("baseline requires two distinct stations, got %q twice", staID1)
	}
	return Baseline{
		StationID1: staID1,
		StationID2: staID2,
		SourceID:   srcID,
		StartTime:  startTime,
	}, nil
}

// ScanDuration returns the assigned scan duration in seconds (0 until set).
func (b *Baseline) ScanDuration() int {
	return b.scanDuration
}

// SetScanDuration assigns the scan duration in seconds. The duration must be
// positive and may be set only once.
func (b *Baseline) SetScanDuration(seconds int) error {
	if seconds <= 0 {
		return fmt.Errorf("scan duration must be positive, got %d", seconds)
	}
	if b.durationSet {
		return ErrDurationFixed
	}
	b.scanDuration = seconds
	b.durationSet = true
	return nil
}
