package kb

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/vlbitools/schedcore/core"
	"github.com/vlbitools/schedcore/model"
	"github.com/vlbitools/schedcore/session"
)

// SessionCatalog is a small summary of what was loaded from JSON. It's
// mainly useful for logging from main().
type SessionCatalog struct {
	Epoch      time.Time
	StationIDs []string
	SourceIDs  []string
}

// internal JSON shapes – kept unexported so we're free to evolve them.
type sessionCatalogJSON struct {
	Session  sessionJSON   `json:"session"`
	Stations []stationJSON `json:"stations"`
	Sources  []sourceJSON  `json:"sources"`
}

type sessionJSON struct {
	Start time.Time `json:"start"`
}

type stationJSON struct {
	ID        string             `json:"id"`
	Name      string             `json:"name"`
	Position  positionJSON       `json:"position"`
	AxisType  string             `json:"axis_type"`
	Axis1     axisJSON           `json:"axis1"`
	Axis2     axisJSON           `json:"axis2"`
	Mask      []maskPointJSON    `json:"horizon_mask"`
	AzElModel string             `json:"azel_model"` // "simple" | "rigorous"; defaults to simple
	Overheads *overheadsJSON     `json:"overheads"`
	Limits    *limitsJSON        `json:"limits"`
	SEFD      map[string]float64 `json:"sefd"`
	MinSNR    map[string]float64 `json:"min_snr"`
}

type positionJSON struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Z      float64 `json:"z"`
	LatDeg float64 `json:"lat_deg"`
	LonDeg float64 `json:"lon_deg"`
	AltM   float64 `json:"alt_m"`
}

type axisJSON struct {
	LowDeg        float64  `json:"low_deg"`
	HighDeg       float64  `json:"high_deg"`
	RateDegPerSec float64  `json:"rate_deg_per_sec"`
	MarginLowDeg  *float64 `json:"margin_low_deg"`  // optional; axis defaults apply
	MarginHighDeg *float64 `json:"margin_high_deg"` // optional; axis defaults apply
}

type maskPointJSON struct {
	AzDeg float64 `json:"az_deg"`
	ElDeg float64 `json:"el_deg"`
}

type overheadsJSON struct {
	SetupS       int `json:"setup_s"`
	SourceS      int `json:"source_s"`
	TapeS        int `json:"tape_s"`
	CalibrationS int `json:"calibration_s"`
	CorSynchS    int `json:"corsynch_s"`
}

type limitsJSON struct {
	MinScanS     int `json:"min_scan_s"`
	MaxScanS     int `json:"max_scan_s"`
	MaxSlewTimeS int `json:"max_slew_time_s"`
	MaxWaitS     int `json:"max_wait_s"`
}

type sourceJSON struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	RADeg  float64 `json:"ra_deg"`
	DecDeg float64 `json:"dec_deg"`
	TLE1   string  `json:"tle1"`
	TLE2   string  `json:"tle2"`
}

// Customary safety margins, degrees: wider on the wrap axis.
const (
	defaultAxis1MarginDeg = 5
	defaultAxis2MarginDeg = 1
)

// LoadSessionCatalog reads a JSON session catalog from r, populates the
// KnowledgeBase with stations (plus their initial states) and sources, and
// returns the session clock alongside a summary of what was loaded.
//
// All configuration validation happens here, through the station
// constructors: a malformed station (unknown axis type, inverted limits,
// non-increasing mask azimuths, bad TLE) fails the load.
func LoadSessionCatalog(store *KnowledgeBase, r io.Reader) (*session.Clock, *SessionCatalog, error) {
	if store == nil {
		return nil, nil, fmt.Errorf("LoadSessionCatalog: store is nil")
	}

	var payload sessionCatalogJSON
	dec := json.NewDecoder(r)
	if err := dec.Decode(&payload); err != nil {
		return nil, nil, fmt.Errorf("LoadSessionCatalog: decode failed: %w", err)
	}
	if payload.Session.Start.IsZero() {
		return nil, nil, fmt.Errorf("LoadSessionCatalog: session.start missing")
	}

	clock := session.NewClock(payload.Session.Start)
	result := &SessionCatalog{
		Epoch:      clock.Epoch(),
		StationIDs: make([]string, 0, len(payload.Stations)),
		SourceIDs:  make([]string, 0, len(payload.Sources)),
	}

	for _, js := range payload.Stations {
		if js.ID == "" {
			return nil, nil, fmt.Errorf("LoadSessionCatalog: station with empty id")
		}
		cfg, ov, lim, err := stationConfigFromJSON(js)
		if err != nil {
			return nil, nil, fmt.Errorf("LoadSessionCatalog: station %s: %w", js.ID, err)
		}
		sta, err := core.NewStation(cfg, clock)
		if err != nil {
			return nil, nil, fmt.Errorf("LoadSessionCatalog: %w", err)
		}
		state := core.NewStationState(sta.ID(), sta.NeutralPointing(0), ov, lim)
		if err := store.AddStation(sta, state); err != nil {
			return nil, nil, fmt.Errorf("LoadSessionCatalog: %w", err)
		}
		result.StationIDs = append(result.StationIDs, js.ID)
	}

	for _, js := range payload.Sources {
		if js.ID == "" {
			return nil, nil, fmt.Errorf("LoadSessionCatalog: source with empty id")
		}
		src := sourceFromJSON(js)
		if src.Kind == model.SourceSatellite {
			if err := core.ValidateTLE(src.TLE1, src.TLE2); err != nil {
				return nil, nil, fmt.Errorf("LoadSessionCatalog: source %s: %w", js.ID, err)
			}
		}
		if err := store.AddSource(src); err != nil {
			return nil, nil, fmt.Errorf("LoadSessionCatalog: %w", err)
		}
		result.SourceIDs = append(result.SourceIDs, js.ID)
	}

	return clock, result, nil
}

func stationConfigFromJSON(js stationJSON) (core.StationConfig, core.Overheads, core.Limits, error) {
	axisType, err := core.ParseAxisType(js.AxisType)
	if err != nil {
		return core.StationConfig{}, core.Overheads{}, core.Limits{}, err
	}
	azelModel, err := core.ParseAzElModel(js.AzElModel)
	if err != nil {
		return core.StationConfig{}, core.Overheads{}, core.Limits{}, err
	}

	cfg := core.StationConfig{
		ID:   js.ID,
		Name: js.Name,
		Position: model.StationPosition{
			X:   js.Position.X,
			Y:   js.Position.Y,
			Z:   js.Position.Z,
			Lat: degToRad(js.Position.LatDeg),
			Lon: degToRad(js.Position.LonDeg),
			Alt: js.Position.AltM,
		},
		AxisType: axisType,
		Axis1:    axisConfigFromJSON(js.Axis1, defaultAxis1MarginDeg),
		Axis2:    axisConfigFromJSON(js.Axis2, defaultAxis2MarginDeg),
		Rates: core.SlewRates{
			Axis1: degToRad(js.Axis1.RateDegPerSec),
			Axis2: degToRad(js.Axis2.RateDegPerSec),
		},
		Model:  azelModel,
		SEFD:   js.SEFD,
		MinSNR: js.MinSNR,
	}
	for _, p := range js.Mask {
		cfg.MaskAzimuths = append(cfg.MaskAzimuths, degToRad(p.AzDeg))
		cfg.MaskElevations = append(cfg.MaskElevations, degToRad(p.ElDeg))
	}

	ov := core.DefaultOverheads()
	if js.Overheads != nil {
		ov = core.Overheads{
			Setup:       js.Overheads.SetupS,
			Source:      js.Overheads.SourceS,
			Tape:        js.Overheads.TapeS,
			Calibration: js.Overheads.CalibrationS,
			CorSynch:    js.Overheads.CorSynchS,
		}
	}
	lim := core.DefaultLimits()
	if js.Limits != nil {
		lim = core.Limits{
			MinScan:     js.Limits.MinScanS,
			MaxScan:     js.Limits.MaxScanS,
			MaxSlewTime: js.Limits.MaxSlewTimeS,
			MaxWait:     js.Limits.MaxWaitS,
		}
	}
	return cfg, ov, lim, nil
}

func axisConfigFromJSON(js axisJSON, defaultMarginDeg float64) core.AxisConfig {
	lowMargin, highMargin := defaultMarginDeg, defaultMarginDeg
	if js.MarginLowDeg != nil {
		lowMargin = *js.MarginLowDeg
	}
	if js.MarginHighDeg != nil {
		highMargin = *js.MarginHighDeg
	}
	return core.AxisConfig{
		Low:        degToRad(js.LowDeg),
		High:       degToRad(js.HighDeg),
		LowMargin:  degToRad(lowMargin),
		HighMargin: degToRad(highMargin),
	}
}

func sourceFromJSON(js sourceJSON) *model.Source {
	src := &model.Source{
		ID:   js.ID,
		Name: js.Name,
	}
	if js.TLE1 != "" && js.TLE2 != "" {
		src.Kind = model.SourceSatellite
		src.TLE1 = js.TLE1
		src.TLE2 = js.TLE2
		return src
	}
	src.Kind = model.SourceSidereal
	src.RA = degToRad(js.RADeg)
	src.Dec = degToRad(js.DecDeg)
	return src
}

func degToRad(d float64) float64 { return d * math.Pi / 180 }
