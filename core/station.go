package core

import (
	"fmt"
	"math"
	"sync"
	"time"

	satellite "github.com/joshuaferrara/go-satellite"

	"github.com/vlbitools/schedcore/model"
	"github.com/vlbitools/schedcore/session"
)

// SlewRates are the per-axis angular rates of the antenna drive, radians per
// second. Axes move concurrently, so a slew lasts as long as its slower axis.
type SlewRates struct {
	Axis1 float64
	Axis2 float64
}

// StationConfig is the static description a Station is built from. Angles
// are radians; the mask tables may be empty for stations with an open horizon.
type StationConfig struct {
	ID   string
	Name string

	Position model.StationPosition

	AxisType AxisType
	Axis1    AxisConfig
	Axis2    AxisConfig
	Rates    SlewRates

	MaskAzimuths   []float64
	MaskElevations []float64

	Model AzElModel

	SEFD   map[string]float64
	MinSNR map[string]float64
}

// Station answers the per-station feasibility questions of the scheduler:
// where a source is at a time, whether the antenna can see and reach it, and
// how long the slew takes. All queries are read-only; the mutable session
// record lives in StationState.
type Station struct {
	id   string
	name string

	pos   model.StationPosition
	wrap  *CableWrap
	mask  *HorizonMask
	rates SlewRates
	model AzElModel
	equip *Equipment

	clock session.EpochClock

	// satMu guards the per-source TLE parse cache so read-only queries stay
	// safe under concurrent evaluation.
	satMu sync.Mutex
	sats  map[string]satellite.Satellite
}

// NewStation validates the configuration and builds the station. All
// configuration errors (bad axis type, inverted limits, malformed mask) are
// fatal here so that query time stays failure-free.
func NewStation(cfg StationConfig, clock session.EpochClock) (*Station, error) {
	if cfg.ID == "" {
		return nil, fmt.Errorf("station: empty id")
	}
	if clock == nil {
		return nil, fmt.Errorf("station %s: nil session clock", cfg.ID)
	}
	if cfg.Rates.Axis1 <= 0 || cfg.Rates.Axis2 <= 0 {
		return nil, fmt.Errorf("station %s: slew rates must be positive, got (%g, %g)",
			cfg.ID, cfg.Rates.Axis1, cfg.Rates.Axis2)
	}

	wrap, err := NewCableWrap(cfg.AxisType, cfg.Position.Lat, cfg.Axis1, cfg.Axis2)
	if err != nil {
		return nil, fmt.Errorf("station %s: %w", cfg.ID, err)
	}

	var mask *HorizonMask
	if len(cfg.MaskAzimuths) > 0 || len(cfg.MaskElevations) > 0 {
		mask, err = NewHorizonMask(cfg.MaskAzimuths, cfg.MaskElevations)
		if err != nil {
			return nil, fmt.Errorf("station %s: %w", cfg.ID, err)
		}
	}

	return &Station{
		id:    cfg.ID,
		name:  cfg.Name,
		pos:   cfg.Position,
		wrap:  wrap,
		mask:  mask,
		rates: cfg.Rates,
		model: cfg.Model,
		equip: NewEquipment(cfg.SEFD, cfg.MinSNR),
		clock: clock,
		sats:  make(map[string]satellite.Satellite),
	}, nil
}

// ID returns the station identifier.
func (s *Station) ID() string { return s.id }

// Name returns the human-readable station name.
func (s *Station) Name() string { return s.name }

// Position returns the station location.
func (s *Station) Position() model.StationPosition { return s.pos }

// ECEF returns the station position as a geometry vector (metres).
func (s *Station) ECEF() Vec3 { return Vec3{X: s.pos.X, Y: s.pos.Y, Z: s.pos.Z} }

// Wrap exposes the cable-wrap model.
func (s *Station) Wrap() *CableWrap { return s.wrap }

// Mask exposes the horizon mask; nil means an open horizon.
func (s *Station) Mask() *HorizonMask { return s.mask }

// Equipment exposes the sensitivity tables.
func (s *Station) Equipment() *Equipment { return s.equip }

// PointingAt computes the unresolved pointing (azimuth/elevation, no axis
// coordinates yet) toward a source at a session time. Errors indicate
// malformed sources, not infeasibility.
func (s *Station) PointingAt(src *model.Source, t int) (model.Pointing, error) {
	var az, el float64
	switch src.Kind {
	case model.SourceSidereal:
		az, el = azElSidereal(src.RA, src.Dec, s.pos, s.clock.MJD(t), s.model)
	case model.SourceSatellite:
		sat, err := s.satellite(src)
		if err != nil {
			return model.Pointing{}, fmt.Errorf("station %s: source %s: %w", s.id, src.ID, err)
		}
		az, el = azElSatellite(sat, s.pos, s.clock.Time(t))
	default:
		return model.Pointing{}, fmt.Errorf("station %s: source %s: unknown kind %q", s.id, src.ID, src.Kind)
	}
	return model.Pointing{Time: t, Az: az, El: el}, nil
}

// Visible reports whether the source clears the horizon mask at t and maps to
// at least one axis-coordinate candidate inside the contracted limits. False
// is a normal negative result.
func (s *Station) Visible(src *model.Source, t int) bool {
	_, ok := s.Evaluate(src, t)
	return ok
}

// Evaluate combines PointingAt and the visibility test, returning the
// unresolved pointing alongside the verdict so candidate generators do not
// recompute the geometry.
func (s *Station) Evaluate(src *model.Source, t int) (model.Pointing, bool) {
	p, err := s.PointingAt(src, t)
	if err != nil {
		return model.Pointing{}, false
	}
	return p, s.visiblePointing(p)
}

func (s *Station) visiblePointing(p model.Pointing) bool {
	if s.mask != nil {
		if !s.mask.Visible(p.Az, p.El) {
			return false
		}
	} else if p.El < 0 {
		return false
	}
	return len(s.wrap.CandidatesFor(p.Az, p.El)) > 0
}

// SlewTime resolves to's axis coordinates via nearest-to-current
// disambiguation relative to from, then returns the slew duration under the
// linear rate model: the larger of the two per-axis traversal times. ok is
// false when no axis candidate is reachable; callers must check visibility
// first, as the duration is undefined in that case.
//
// On success to's Axis1/Axis2 are filled in and Resolved is set.
func (s *Station) SlewTime(from model.Pointing, to *model.Pointing) (time.Duration, bool) {
	if !from.Resolved {
		c, ok := s.wrap.NearNeutral(from.Az, from.El)
		if !ok {
			return 0, false
		}
		from.Axis1, from.Axis2, from.Resolved = c.Axis1, c.Axis2, true
	}

	c, ok := s.wrap.NearCurrent(to.Az, to.El, from.Axis1)
	if !ok {
		return 0, false
	}
	to.Axis1 = c.Axis1
	to.Axis2 = c.Axis2
	to.Resolved = true

	t1 := math.Abs(to.Axis1-from.Axis1) / s.rates.Axis1
	t2 := math.Abs(to.Axis2-from.Axis2) / s.rates.Axis2
	return time.Duration(math.Max(t1, t2) * float64(time.Second)), true
}

// NeutralPointing returns a resolved pointing parked at the neutral point of
// both axes, the usual seed for a station's current pointing before its first
// scan.
func (s *Station) NeutralPointing(t int) model.Pointing {
	return model.Pointing{
		Time:     t,
		Axis1:    s.wrap.NeutralPoint(1),
		Axis2:    s.wrap.NeutralPoint(2),
		Resolved: true,
	}
}

func (s *Station) satellite(src *model.Source) (satellite.Satellite, error) {
	s.satMu.Lock()
	defer s.satMu.Unlock()
	if sat, ok := s.sats[src.ID]; ok {
		return sat, nil
	}
	sat, err := newSatellite(src.TLE1, src.TLE2)
	if err != nil {
		return satellite.Satellite{}, err
	}
	s.sats[src.ID] = sat
	return sat, nil
}
