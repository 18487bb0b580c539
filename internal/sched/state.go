// internal/sched/state.go
package sched

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/vlbitools/schedcore/core"
	"github.com/vlbitools/schedcore/internal/logging"
	"github.com/vlbitools/schedcore/kb"
	"github.com/vlbitools/schedcore/model"
	"github.com/vlbitools/schedcore/session"
)

var (
	// ErrStationNotFound indicates a scan references an unknown station.
	ErrStationNotFound = errors.New("station not found")
	// ErrSourceNotFound indicates a scan references an unknown source.
	ErrSourceNotFound = errors.New("source not found")
	// ErrTooFewStations indicates a scan with fewer than two participants.
	ErrTooFewStations = errors.New("scan needs at least two stations")
	// ErrStaleCommit re-exports the engine's commit-precondition error so
	// callers can depend on sched.* alone.
	ErrStaleCommit = core.ErrStaleCommit
)

// StationScan is one station's leg of a scan: the resolved start and end
// pointings plus the event timestamps to append to its history.
type StationScan struct {
	StationID string
	Start     model.Pointing
	End       model.Pointing
	Times     []int
}

// Scan is a fully decided joint observation the external optimizer hands to
// CommitScan.
type Scan struct {
	SourceID  string
	StartTime int
	Duration  int
	Stations  []StationScan
}

// SessionMetricsRecorder receives count updates for session-level entities.
type SessionMetricsRecorder interface {
	SetSessionCounts(stations, sources, scans, baselines int)
}

// SessionState owns the session's mutable scheduling state: the station/source
// registry plus the accumulated baselines. Read-only candidate evaluation goes
// straight to the stations and takes no lock here; CommitScan is the only
// mutation and holds the session lock for its duration.
type SessionState struct {
	// mu is the coarse session-level lock. Take it before touching the KB to
	// keep the SessionState -> KB lock ordering.
	mu sync.RWMutex

	store *kb.KnowledgeBase
	clock *session.Clock

	baselines []model.Baseline
	nscans    int

	log     logging.Logger
	metrics SessionMetricsRecorder
}

// SessionSnapshot captures a consistent view of the session: cloned station
// states (safe to mutate) and the committed baselines.
type SessionSnapshot struct {
	States    map[string]*core.StationState
	Baselines []model.Baseline
	NScans    int
}

// SessionStateOption customises SessionState construction.
type SessionStateOption func(*SessionState)

// WithMetricsRecorder attaches an optional metrics recorder for entity counts.
func WithMetricsRecorder(m SessionMetricsRecorder) SessionStateOption {
	return func(s *SessionState) {
		s.metrics = m
	}
}

// NewSessionState wires the registry and clock into a session record.
func NewSessionState(store *kb.KnowledgeBase, clock *session.Clock, log logging.Logger, opts ...SessionStateOption) *SessionState {
	if log == nil {
		log = logging.Noop()
	}
	s := &SessionState{
		store: store,
		clock: clock,
		log:   log,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	s.updateMetrics()
	return s
}

// KB exposes the underlying registry.
func (s *SessionState) KB() *kb.KnowledgeBase { return s.store }

// Clock exposes the session clock.
func (s *SessionState) Clock() *session.Clock { return s.clock }

// CommitScan validates and applies one accepted scan: every participating
// station's state transition plus the pairwise baselines. Validation runs
// before any mutation, so a rejected scan leaves the session untouched; the
// per-station transitions themselves are serialized by the session lock.
func (s *SessionState) CommitScan(ctx context.Context, scan Scan) ([]model.Baseline, error) {
	if len(scan.Stations) < 2 {
		return nil, fmt.Errorf("%w: got %d", ErrTooFewStations, len(scan.Stations))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	src := s.store.GetSource(scan.SourceID)
	if src == nil {
		return nil, fmt.Errorf("%w: %q", ErrSourceNotFound, scan.SourceID)
	}

	// Phase 1: preconditions only, no mutation yet.
	for _, leg := range scan.Stations {
		state := s.store.State(leg.StationID)
		if state == nil {
			return nil, fmt.Errorf("%w: %q", ErrStationNotFound, leg.StationID)
		}
		if leg.End.Time < state.Current().Time {
			return nil, fmt.Errorf("station %s: %w (end %d < current %d)",
				leg.StationID, ErrStaleCommit, leg.End.Time, state.Current().Time)
		}
	}

	// Each station observes every other participant: n-1 baselines apiece.
	nblPerStation := len(scan.Stations) - 1

	var committed []model.Baseline
	for i := 0; i < len(scan.Stations); i++ {
		for j := i + 1; j < len(scan.Stations); j++ {
			bl, err := model.NewBaseline(scan.Stations[i].StationID, scan.Stations[j].StationID,
				scan.SourceID, scan.StartTime)
			if err != nil {
				return nil, err
			}
			if err := bl.SetScanDuration(scan.Duration); err != nil {
				return nil, err
			}
			committed = append(committed, bl)
		}
	}

	// Phase 2: apply. Preconditions held, so these cannot fail.
	for _, leg := range scan.Stations {
		if err := s.store.CommitScan(leg.StationID, nblPerStation, leg.Start, leg.End, leg.Times, src.Name); err != nil {
			return nil, err
		}
	}
	s.baselines = append(s.baselines, committed...)
	s.nscans++

	s.log.Info(ctx, "scan committed",
		logging.String("source", src.Name),
		logging.Int("start", scan.StartTime),
		logging.Int("duration", scan.Duration),
		logging.Int("stations", len(scan.Stations)),
		logging.Int("baselines", len(committed)),
	)
	s.updateMetricsLocked()
	return committed, nil
}

// Baselines returns a copy of the committed baselines.
func (s *SessionState) Baselines() []model.Baseline {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.Baseline(nil), s.baselines...)
}

// NScans returns the number of committed scans.
func (s *SessionState) NScans() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.nscans
}

// Snapshot captures a consistent, independently mutable view of the session
// for the optimizer's backtracking search.
func (s *SessionState) Snapshot() SessionSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	states := make(map[string]*core.StationState)
	for _, sta := range s.store.ListStations() {
		if st := s.store.State(sta.ID()); st != nil {
			states[sta.ID()] = st.Clone()
		}
	}
	return SessionSnapshot{
		States:    states,
		Baselines: append([]model.Baseline(nil), s.baselines...),
		NScans:    s.nscans,
	}
}

// Branch forks the session: shared immutable stations and sources, deep-copied
// station states and baseline list. Commits into the branch leave the parent
// untouched.
func (s *SessionState) Branch() *SessionState {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := &SessionState{
		store:     s.store.Branch(),
		clock:     s.clock,
		baselines: append([]model.Baseline(nil), s.baselines...),
		nscans:    s.nscans,
		log:       s.log,
	}
	return out
}

func (s *SessionState) updateMetrics() {
	s.mu.RLock()
	defer s.mu.RUnlock()
	s.updateMetricsLocked()
}

func (s *SessionState) updateMetricsLocked() {
	if s.metrics == nil {
		return
	}
	s.metrics.SetSessionCounts(
		len(s.store.ListStations()),
		len(s.store.ListSources()),
		s.nscans,
		len(s.baselines),
	)
}
