package observability

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// EngineCollector bundles Prometheus metrics for the constraint engine and
// provides a ready-to-serve /metrics handler.
type EngineCollector struct {
	gatherer prometheus.Gatherer

	VisibilityChecks *prometheus.CounterVec
	SlewSeconds      *prometheus.HistogramVec
	ScansCommitted   *prometheus.CounterVec

	SessionStations  prometheus.Gauge
	SessionSources   prometheus.Gauge
	SessionScans     prometheus.Gauge
	SessionBaselines prometheus.Gauge
}

// NewEngineCollector registers engine Prometheus metrics against the provided
// registerer, defaulting to the global Prometheus registry when nil.
func NewEngineCollector(reg prometheus.Registerer) (*EngineCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	visibility := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "engine_visibility_checks_total",
		Help: "Total number of station visibility evaluations, labeled by station and verdict.",
	}, []string{"station", "visible"})
	visibility, err := registerCounterVec(reg, visibility, "engine_visibility_checks_total")
	if err != nil {
		return nil, err
	}

	slews := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "engine_slew_duration_seconds",
		Help:    "Computed antenna slew durations in seconds.",
		Buckets: []float64{1, 2, 5, 10, 20, 30, 60, 120, 300, 600},
	}, []string{"station"})
	slews, err = registerHistogramVec(reg, slews, "engine_slew_duration_seconds")
	if err != nil {
		return nil, err
	}

	committed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "engine_scans_committed_total",
		Help: "Total number of scan commits applied per station.",
	}, []string{"station"})
	committed, err = registerCounterVec(reg, committed, "engine_scans_committed_total")
	if err != nil {
		return nil, err
	}

	stations, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "session_stations",
		Help: "Current number of stations in the session.",
	}), "session_stations")
	if err != nil {
		return nil, err
	}
	sources, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "session_sources",
		Help: "Current number of sources in the session.",
	}), "session_sources")
	if err != nil {
		return nil, err
	}
	scans, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "session_scans",
		Help: "Number of scans committed so far in the session.",
	}), "session_scans")
	if err != nil {
		return nil, err
	}
	baselines, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "session_baselines",
		Help: "Number of baselines committed so far in the session.",
	}), "session_baselines")
	if err != nil {
		return nil, err
	}

	return &EngineCollector{
		gatherer:         gatherer,
		VisibilityChecks: visibility,
		SlewSeconds:      slews,
		ScansCommitted:   committed,
		SessionStations:  stations,
		SessionSources:   sources,
		SessionScans:     scans,
		SessionBaselines: baselines,
	}, nil
}

// ObserveVisibility records one visibility evaluation verdict.
func (c *EngineCollector) ObserveVisibility(station string, visible bool) {
	if c == nil || c.VisibilityChecks == nil {
		return
	}
	verdict := "false"
	if visible {
		verdict = "true"
	}
	c.VisibilityChecks.WithLabelValues(station, verdict).Inc()
}

// ObserveSlew records one computed slew duration.
func (c *EngineCollector) ObserveSlew(station string, d time.Duration) {
	if c == nil || c.SlewSeconds == nil {
		return
	}
	c.SlewSeconds.WithLabelValues(station).Observe(d.Seconds())
}

// IncCommitted counts one committed scan for a station.
func (c *EngineCollector) IncCommitted(station string) {
	if c == nil || c.ScansCommitted == nil {
		return
	}
	c.ScansCommitted.WithLabelValues(station).Inc()
}

// SetSessionCounts satisfies the SessionMetricsRecorder interface so the
// session state can drive gauge values directly from its commit path.
func (c *EngineCollector) SetSessionCounts(stations, sources, scans, baselines int) {
	if c == nil {
		return
	}
	if c.SessionStations != nil {
		c.SessionStations.Set(float64(stations))
	}
	if c.SessionSources != nil {
		c.SessionSources.Set(float64(sources))
	}
	if c.SessionScans != nil {
		c.SessionScans.Set(float64(scans))
	}
	if c.SessionBaselines != nil {
		c.SessionBaselines.Set(float64(baselines))
	}
}

// Handler exposes a ready-to-use /metrics handler.
func (c *EngineCollector) Handler() http.Handler {
	gatherer := c.gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

func registerCounterVec(reg prometheus.Registerer, vec *prometheus.CounterVec, name string) (*prometheus.CounterVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerHistogramVec(reg prometheus.Registerer, vec *prometheus.HistogramVec, name string) (*prometheus.HistogramVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.HistogramVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerGauge(reg prometheus.Registerer, gauge prometheus.Gauge, name string) (prometheus.Gauge, error) {
	if err := reg.Register(gauge); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Gauge); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return gauge, nil
}
