package core

import (
	"errors"
	"fmt"

	"github.com/vlbitools/schedcore/model"
)

// ErrStaleCommit indicates a commit whose end pointing predates the station's
// current pointing. That is a caller-contract violation, not a schedulable
// negative result: history is never silently reordered.
var ErrStaleCommit = errors.New("commit end time precedes current pointing")

// Overheads are the per-scan timing overheads of a station, seconds.
// Defaults match common session values.
type Overheads struct {
	Setup       int
	Source      int
	Tape        int
	Calibration int
	// CorSynch is extra scan time for correlator synchronization.
	CorSynch int
}

// DefaultOverheads returns the customary overhead set.
func DefaultOverheads() Overheads {
	return Overheads{Setup: 10, Source: 5, Tape: 1, Calibration: 10, CorSynch: 3}
}

// Limits are per-station scheduling thresholds, seconds. The engine exposes
// them as plain configuration; the external scan-selection loop compares
// computed slew/idle times against them and rejects candidates itself.
type Limits struct {
	MinScan     int
	MaxScan     int
	MaxSlewTime int
	MaxWait     int
}

// DefaultLimits returns the customary threshold set.
func DefaultLimits() Limits {
	return Limits{MinScan: 30, MaxScan: 600, MaxSlewTime: 9999, MaxWait: 9999}
}

// ScanEvent is one timestamped entry in a station's operational history.
type ScanEvent struct {
	Time  int
	Label string
}

// StationState is the mutable per-station session record: current pointing,
// usage history and counters. It is mutated exclusively through Update after
// a scan is committed and never rolled back — the external optimizer branches
// via Clone instead of undoing mutations. Commits to one state must be
// serialized by the caller; read accessors take no lock.
type StationState struct {
	StationID string

	current model.Pointing

	history  []ScanEvent
	startLog []model.Pointing
	endLog   []model.Pointing

	nscans int
	nbls   int

	// FirstScan marks that the station has not observed yet (or was just
	// reset after a break): no setup/source/tape/calibration or slew time is
	// spent on its next scan.
	FirstScan bool
	// Available gates the station in and out of candidate generation.
	Available bool

	Overheads Overheads
	Limits    Limits
}

// NewStationState builds the session-start state for a station. The current
// pointing should usually be seeded with Station.NeutralPointing.
func NewStationState(stationID string, current model.Pointing, ov Overheads, lim Limits) *StationState {
	return &StationState{
		StationID: stationID,
		current:   current,
		FirstScan: true,
		Available: true,
		Overheads: ov,
		Limits:    lim,
	}
}

// scanEventPhases label the canonical per-scan timestamp sequence passed to
// Update: the pre-observation phases followed by the scan itself.
var scanEventPhases = [...]string{"setup", "source", "tape", "calibration", "scan start", "scan end"}

// Update is the single state mutation, applied once per accepted scan: it
// appends the event timestamps and pointing logs, moves the current pointing
// to end, advances the scan/baseline counters and clears the first-scan flag.
// It applies atomically — a failed precondition leaves the state untouched.
func (st *StationState) Update(nbl int, start, end model.Pointing, times []int, srcName string) error {
	if nbl < 0 {
		return fmt.Errorf("station %s: negative baseline count %d", st.StationID, nbl)
	}
	if end.Time < st.current.Time {
		return fmt.Errorf("station %s: %w (end %d < current %d)",
			st.StationID, ErrStaleCommit, end.Time, st.current.Time)
	}

	for i, t := range times {
		label := fmt.Sprintf("event %d", i)
		if i < len(scanEventPhases) {
			label = scanEventPhases[i]
		}
		st.history = append(st.history, ScanEvent{Time: t, Label: label + " " + srcName})
	}
	st.startLog = append(st.startLog, start)
	st.endLog = append(st.endLog, end)
	st.current = end
	st.nscans++
	st.nbls += nbl
	st.FirstScan = false
	return nil
}

// Current returns the most recent committed pointing.
func (st *StationState) Current() model.Pointing { return st.current }

// NScans returns the number of scans this station participated in.
func (st *StationState) NScans() int { return st.nscans }

// NBaselines returns the number of baselines observed with this station.
func (st *StationState) NBaselines() int { return st.nbls }

// History returns the ordered event log. The slice is a copy.
func (st *StationState) History() []ScanEvent {
	return append([]ScanEvent(nil), st.history...)
}

// StartLog returns the per-scan start pointings. The slice is a copy.
func (st *StationState) StartLog() []model.Pointing {
	return append([]model.Pointing(nil), st.startLog...)
}

// EndLog returns the per-scan end pointings. The slice is a copy.
func (st *StationState) EndLog() []model.Pointing {
	return append([]model.Pointing(nil), st.endLog...)
}

// ConstantOverhead returns the fixed pre-observation cost of the station's
// next scan: zero while the first-scan flag is set, otherwise the sum of the
// setup, source, tape and calibration overheads.
func (st *StationState) ConstantOverhead() int {
	if st.FirstScan {
		return 0
	}
	return st.Overheads.Setup + st.Overheads.Source + st.Overheads.Tape + st.Overheads.Calibration
}

// Clone returns a deep copy, the branching primitive for backtracking search.
func (st *StationState) Clone() *StationState {
	cp := *st
	cp.history = append([]ScanEvent(nil), st.history...)
	cp.startLog = append([]model.Pointing(nil), st.startLog...)
	cp.endLog = append([]model.Pointing(nil), st.endLog...)
	return &cp
}
