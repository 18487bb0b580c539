package kb

import (
	"fmt"
	"sync"

	"github.com/vlbitools/schedcore/core"
	"github.com/vlbitools/schedcore/model"
)

// EventType indicates what kind of change happened in the KB.
type EventType int

const (
	EventScanCommitted EventType = iota
)

// Event is emitted to subscribers when a scan is committed against a station.
type Event struct {
	Type       EventType
	StationID  string
	SourceName string
	NScans     int
	NBaselines int
}

// KnowledgeBase is an in-memory, thread-safe registry of the session's
// stations, sources and per-station states. Read-only feasibility queries go
// straight to the Station objects; the commit path goes through CommitScan,
// which serializes mutations of a station's state.
type KnowledgeBase struct {
	mu sync.RWMutex

	stations map[string]*core.Station
	states   map[string]*core.StationState
	sources  map[string]*model.Source

	subs []func(Event)
}

// NewKnowledgeBase constructs an empty KB.
func NewKnowledgeBase() *KnowledgeBase {
	return &KnowledgeBase{
		stations: make(map[string]*core.Station),
		states:   make(map[string]*core.StationState),
		sources:  make(map[string]*model.Source),
	}
}

// AddStation registers a station together with its session state. A nil
// state gets a default: neutral parked pointing, customary overheads and
// limits. It returns an error if the ID already exists.
func (kb *KnowledgeBase) AddStation(sta *core.Station, state *core.StationState) error {
	kb.mu.Lock()
	defer kb.mu.Unlock()

	if _, exists := kb.stations[sta.ID()]; exists {
		return fmt.Errorf("station with ID %q already exists", sta.ID())
	}
	if state == nil {
		state = core.NewStationState(sta.ID(), sta.NeutralPointing(0),
			core.DefaultOverheads(), core.DefaultLimits())
	} else if state.StationID != sta.ID() {
		return fmt.Errorf("state station ID %q does not match station %q", state.StationID, sta.ID())
	}
	kb.stations[sta.ID()] = sta
	kb.states[sta.ID()] = state
	return nil
}

// AddSource registers a source. It returns an error if the ID already exists.
func (kb *KnowledgeBase) AddSource(src *model.Source) error {
	kb.mu.Lock()
	defer kb.mu.Unlock()

	if _, exists := kb.sources[src.ID]; exists {
		return fmt.Errorf("source with ID %q already exists", src.ID)
	}
	kb.sources[src.ID] = src
	return nil
}

// GetStation returns the station with the given ID, or nil if not found.
func (kb *KnowledgeBase) GetStation(id string) *core.Station {
	kb.mu.RLock()
	defer kb.mu.RUnlock()
	return kb.stations[id]
}

// State returns the session state of the station with the given ID, or nil.
func (kb *KnowledgeBase) State(id string) *core.StationState {
	kb.mu.RLock()
	defer kb.mu.RUnlock()
	return kb.states[id]
}

// GetSource returns the source with the given ID, or nil if not found.
func (kb *KnowledgeBase) GetSource(id string) *model.Source {
	kb.mu.RLock()
	defer kb.mu.RUnlock()
	return kb.sources[id]
}

// ListStations returns a snapshot slice of all stations.
func (kb *KnowledgeBase) ListStations() []*core.Station {
	kb.mu.RLock()
	defer kb.mu.RUnlock()

	res := make([]*core.Station, 0, len(kb.stations))
	for _, s := range kb.stations {
		res = append(res, s)
	}
	return res
}

// ListSources returns a snapshot slice of all sources.
func (kb *KnowledgeBase) ListSources() []*model.Source {
	kb.mu.RLock()
	defer kb.mu.RUnlock()

	res := make([]*model.Source, 0, len(kb.sources))
	for _, s := range kb.sources {
		res = append(res, s)
	}
	return res
}

// CommitScan applies the single per-station commit transition under the KB
// lock, so no two commits mutate one station concurrently, and notifies
// subscribers. Evaluation stays lock-free; only this path is serialized.
func (kb *KnowledgeBase) CommitScan(stationID string, nbl int, start, end model.Pointing, times []int, srcName string) error {
	kb.mu.Lock()
	state, ok := kb.states[stationID]
	if !ok {
		kb.mu.Unlock()
		return fmt.Errorf("station with ID %q not found", stationID)
	}
	if err := state.Update(nbl, start, end, times, srcName); err != nil {
		kb.mu.Unlock()
		return err
	}
	event := Event{
		Type:       EventScanCommitted,
		StationID:  stationID,
		SourceName: srcName,
		NScans:     state.NScans(),
		NBaselines: state.NBaselines(),
	}
	subs := append([]func(Event){}, kb.subs...)
	kb.mu.Unlock()

	// Notify subscribers outside the lock to avoid deadlocks.
	for _, sub := range subs {
		sub(event)
	}
	return nil
}

// Branch returns a new KB sharing the immutable stations and sources but
// carrying deep copies of every station state. Backtracking search commits
// into a branch and discards it, instead of undoing mutations.
func (kb *KnowledgeBase) Branch() *KnowledgeBase {
	kb.mu.RLock()
	defer kb.mu.RUnlock()

	out := NewKnowledgeBase()
	for id, sta := range kb.stations {
		out.stations[id] = sta
	}
	for id, st := range kb.states {
		out.states[id] = st.Clone()
	}
	for id, src := range kb.sources {
		out.sources[id] = src
	}
	return out
}

// Subscribe registers a callback for KB events. It returns an unsubscribe function.
func (kb *KnowledgeBase) Subscribe(fn func(Event)) (unsubscribe func()) {
	kb.mu.Lock()
	defer kb.mu.Unlock()
	kb.subs = append(kb.subs, fn)
	idx := len(kb.subs) - 1

	return func() {
		kb.mu.Lock()
		defer kb.mu.Unlock()
		if idx < 0 || idx >= len(kb.subs) {
			return
		}
		kb.subs = append(kb.subs[:idx], kb.subs[idx+1:]...)
		idx = -1
	}
}
