package kb

import (
	"math"
	"testing"
	"time"

	"github.com/vlbitools/schedcore/core"
	"github.com/vlbitools/schedcore/model"
	"github.com/vlbitools/schedcore/session"
)

func testStation(t *testing.T, id string) *core.Station {
	t.Helper()
	clock := session.NewClock(time.Date(2025, 3, 20, 18, 0, 0, 0, time.UTC))
	sta, err := core.NewStation(core.StationConfig{
		ID:       id,
		Name:     id + " 20m",
		Position: model.StationPosition{Lat: 49.145 * math.Pi / 180, Lon: 12.878 * math.Pi / 180},
		AxisType: core.AxisAZEL,
		Axis1:    core.AxisConfig{Low: 0, High: 4 * math.Pi},
		Axis2:    core.AxisConfig{Low: 0, High: math.Pi / 2},
		Rates:    core.SlewRates{Axis1: 0.05, Axis2: 0.02},
	}, clock)
	if err != nil {
		t.Fatalf("NewStation: %v", err)
	}
	return sta
}

func TestKnowledgeBaseRegistration(t *testing.T) {
	store := NewKnowledgeBase()
	sta := testStation(t, "WETTZELL")

	if err := store.AddStation(sta, nil); err != nil {
		t.Fatalf("AddStation: %v", err)
	}
	if err := store.AddStation(sta, nil); err == nil {
		t.Fatalf("duplicate station id must be rejected")
	}

	got := store.GetStation("WETTZELL")
	if got != sta {
		t.Fatalf("GetStation returned %v", got)
	}
	if store.GetStation("NONE") != nil {
		t.Fatalf("unknown station must be nil")
	}

	// A nil state defaults to a parked, first-scan record.
	st := store.State("WETTZELL")
	if st == nil {
		t.Fatalf("State returned nil for a registered station")
	}
	if !st.FirstScan || !st.Current().Resolved {
		t.Fatalf("default state = %+v", st)
	}
	if st.Current().Axis1 != sta.NeutralPointing(0).Axis1 {
		t.Fatalf("default state not parked at the neutral point")
	}

	src := &model.Source{ID: "3C273", Name: "3C273B", Kind: model.SourceSidereal}
	if err := store.AddSource(src); err != nil {
		t.Fatalf("AddSource: %v", err)
	}
	if err := store.AddSource(src); err == nil {
		t.Fatalf("duplicate source id must be rejected")
	}
	if store.GetSource("3C273") != src {
		t.Fatalf("GetSource mismatch")
	}

	if got := store.ListStations(); len(got) != 1 {
		t.Fatalf("ListStations = %d entries", len(got))
	}
	if got := store.ListSources(); len(got) != 1 {
		t.Fatalf("ListSources = %d entries", len(got))
	}
}

func TestKnowledgeBaseRejectsMismatchedState(t *testing.T) {
	store := NewKnowledgeBase()
	sta := testStation(t, "KOKEE")
	wrong := core.NewStationState("OTHER", sta.NeutralPointing(0), core.DefaultOverheads(), core.DefaultLimits())
	if err := store.AddStation(sta, wrong); err == nil {
		t.Fatalf("state with a foreign station id must be rejected")
	}
}

func TestKnowledgeBaseCommitScan(t *testing.T) {
	store := NewKnowledgeBase()
	sta := testStation(t, "WETTZELL")
	if err := store.AddStation(sta, nil); err != nil {
		t.Fatalf("AddStation: %v", err)
	}

	var events []Event
	unsubscribe := store.Subscribe(func(e Event) { events = append(events, e) })

	start := model.Pointing{Time: 100, Resolved: true}
	end := model.Pointing{Time: 160, Resolved: true}
	if err := store.CommitScan("WETTZELL", 2, start, end, []int{74, 84, 89, 99, 100, 160}, "3C273B"); err != nil {
		t.Fatalf("CommitScan: %v", err)
	}

	st := store.State("WETTZELL")
	if st.NScans() != 1 || st.NBaselines() != 2 {
		t.Fatalf("state after commit: nscans=%d nbls=%d", st.NScans(), st.NBaselines())
	}
	if st.Current().Time != 160 {
		t.Fatalf("current time = %d, want 160", st.Current().Time)
	}

	if len(events) != 1 {
		t.Fatalf("subscriber saw %d events, want 1", len(events))
	}
	e := events[0]
	if e.Type != EventScanCommitted || e.StationID != "WETTZELL" || e.SourceName != "3C273B" {
		t.Fatalf("event = %+v", e)
	}
	if e.NScans != 1 || e.NBaselines != 2 {
		t.Fatalf("event counters = %+v", e)
	}

	unsubscribe()
	end2 := model.Pointing{Time: 300, Resolved: true}
	if err := store.CommitScan("WETTZELL", 1, end, end2, []int{250, 300}, "CTA26"); err != nil {
		t.Fatalf("CommitScan: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("unsubscribed callback still invoked")
	}

	if err := store.CommitScan("NONE", 1, start, end, nil, "X"); err == nil {
		t.Fatalf("commit against an unknown station must fail")
	}
}

func TestKnowledgeBaseBranchIsolation(t *testing.T) {
	store := NewKnowledgeBase()
	sta := testStation(t, "WETTZELL")
	if err := store.AddStation(sta, nil); err != nil {
		t.Fatalf("AddStation: %v", err)
	}

	branch := store.Branch()
	if branch.GetStation("WETTZELL") != sta {
		t.Fatalf("branch must share the immutable station objects")
	}

	end := model.Pointing{Time: 60, Resolved: true}
	if err := branch.CommitScan("WETTZELL", 1, model.Pointing{Time: 10}, end, []int{10, 60}, "A"); err != nil {
		t.Fatalf("CommitScan on branch: %v", err)
	}

	if got := store.State("WETTZELL").NScans(); got != 0 {
		t.Fatalf("parent state mutated by branch commit: nscans=%d", got)
	}
	if got := branch.State("WETTZELL").NScans(); got != 1 {
		t.Fatalf("branch state nscans=%d, want 1", got)
	}
}
