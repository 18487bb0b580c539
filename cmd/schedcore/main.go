package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/vlbitools/schedcore/core"
	"github.com/vlbitools/schedcore/internal/logging"
	"github.com/vlbitools/schedcore/internal/observability"
	"github.com/vlbitools/schedcore/internal/sched"
	"github.com/vlbitools/schedcore/kb"
	"github.com/vlbitools/schedcore/model"
)

func main() {
	catalogPath := flag.String("catalog", "configs/session_catalog.json", "path to the JSON session catalog")
	envPath := flag.String("env", "", "optional .env file with LOG_* / SCHED_* settings")
	metricsAddr := flag.String("metrics-addr", ":9090", "HTTP address for Prometheus /metrics")
	sessionLen := flag.Int("session-length", 3600, "session length in seconds")
	step := flag.Int("step", 60, "retry step in seconds when no scan fits")
	flag.Parse()

	if *envPath != "" {
		if err := godotenv.Load(*envPath); err != nil {
			// Not fatal: flags and real environment still apply.
			os.Stderr.WriteString("warning: could not load env file: " + err.Error() + "\n")
		}
	}

	log := logging.NewFromEnv()
	ctx := context.Background()

	collector, err := observability.NewEngineCollector(nil)
	if err != nil {
		log.Error(ctx, "failed to initialise metrics collector", logging.String("error", err.Error()))
		os.Exit(1)
	}
	metricsSrv := serveMetrics(*metricsAddr, collector, log)

	shutdownTracing, err := observability.InitTracing(ctx, observability.TracingConfigFromEnv(), log)
	if err != nil {
		log.Error(ctx, "failed to initialise tracing", logging.String("error", err.Error()))
		os.Exit(1)
	}
	defer observability.ShutdownWithTimeout(ctx, shutdownTracing, log)

	store := kb.NewKnowledgeBase()
	f, err := os.Open(*catalogPath)
	if err != nil {
		log.Error(ctx, "failed to open session catalog", logging.String("path", *catalogPath), logging.String("error", err.Error()))
		os.Exit(1)
	}
	clock, catalog, err := kb.LoadSessionCatalog(store, f)
	f.Close()
	if err != nil {
		log.Error(ctx, "failed to load session catalog", logging.String("error", err.Error()))
		os.Exit(1)
	}
	log.Info(ctx, "loaded session catalog",
		logging.String("epoch", catalog.Epoch.Format(time.RFC3339)),
		logging.Int("stations", len(catalog.StationIDs)),
		logging.Int("sources", len(catalog.SourceIDs)),
	)

	state := sched.NewSessionState(store, clock, log, sched.WithMetricsRecorder(collector))

	runSession(ctx, state, collector, log, *sessionLen, *step)

	for _, sta := range store.ListStations() {
		st := store.State(sta.ID())
		log.Info(ctx, "station summary",
			logging.String("station", sta.ID()),
			logging.Int("scans", st.NScans()),
			logging.Int("baselines", st.NBaselines()),
		)
	}
	log.Info(ctx, "session complete",
		logging.Int("scans", state.NScans()),
		logging.Int("baselines", len(state.Baselines())),
	)

	if metricsSrv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = metricsSrv.Shutdown(shutdownCtx)
	}
}

// candidate is one station's feasible leg for a scan under evaluation.
type candidate struct {
	station  *core.Station
	state    *core.StationState
	pointing model.Pointing
	ready    int // earliest session second the station can start observing
}

// runSession drives a deliberately simple greedy loop over the session: at
// each step it takes the first source at least two stations can observe,
// commits the scan, and jumps to its end. The real optimizer lives outside
// this repo; this loop exists to exercise every engine operation end to end.
func runSession(ctx context.Context, state *sched.SessionState, collector *observability.EngineCollector, log logging.Logger, sessionLen, step int) {
	tracer := otel.Tracer("schedcore/demo")
	store := state.KB()

	t := 0
	for t < sessionLen {
		scheduled := false
		for _, src := range store.ListSources() {
			evalCtx, evalLog := logging.WithEvalLogger(ctx, log)
			if ok := tryScheduleScan(evalCtx, tracer, state, collector, evalLog, src, t, &scheduled); ok {
				// Jump past the committed scan.
				t = scheduled2end(state)
				break
			}
		}
		if !scheduled {
			t += step
		}
	}
}

// scheduled2end returns the end second of the most recently committed scan.
func scheduled2end(state *sched.SessionState) int {
	bls := state.Baselines()
	last := bls[len(bls)-1]
	return last.StartTime + last.ScanDuration()
}

func tryScheduleScan(ctx context.Context, tracer trace.Tracer, state *sched.SessionState, collector *observability.EngineCollector, log logging.Logger, src *model.Source, t int, scheduled *bool) bool {
	ctx, span := tracer.Start(ctx, "evaluate.candidate",
		trace.WithAttributes(
			attribute.String("source", src.ID),
			attribute.Int("time", t),
		))
	defer span.End()

	store := state.KB()

	var cands []candidate
	for _, sta := range store.ListStations() {
		st := store.State(sta.ID())
		if !st.Available {
			continue
		}

		p, visible := sta.Evaluate(src, t)
		collector.ObserveVisibility(sta.ID(), visible)
		if !visible {
			continue
		}

		slew, ok := sta.SlewTime(st.Current(), &p)
		if !ok {
			continue
		}
		collector.ObserveSlew(sta.ID(), slew)

		slewSec := int(slew.Round(time.Second).Seconds())
		ready := t + st.ConstantOverhead()
		if !st.FirstScan {
			if slewSec > st.Limits.MaxSlewTime {
				continue
			}
			ready += slewSec
		}
		cands = append(cands, candidate{station: sta, state: st, pointing: p, ready: ready})
	}

	if len(cands) < 2 {
		return false
	}

	// All stations start together once the slowest one is ready.
	scanStart := 0
	duration := 0
	for _, c := range cands {
		if c.ready > scanStart {
			scanStart = c.ready
		}
		if c.state.Limits.MinScan > duration {
			duration = c.state.Limits.MinScan
		}
	}
	scanEnd := scanStart + duration

	var legs []sched.StationScan
	for _, c := range cands {
		start, ok := c.station.Evaluate(src, scanStart)
		if !ok {
			return false
		}
		if _, ok := c.station.SlewTime(c.state.Current(), &start); !ok {
			return false
		}
		end, ok := c.station.Evaluate(src, scanEnd)
		if !ok {
			return false
		}
		if _, ok := c.station.SlewTime(start, &end); !ok {
			return false
		}
		legs = append(legs, sched.StationScan{
			StationID: c.station.ID(),
			Start:     start,
			End:       end,
			Times:     scanTimes(c.state, scanStart, scanEnd),
		})
	}

	scan := sched.Scan{
		SourceID:  src.ID,
		StartTime: scanStart,
		Duration:  duration,
		Stations:  legs,
	}
	committed, err := state.CommitScan(ctx, scan)
	if err != nil {
		log.Warn(ctx, "scan commit rejected", logging.String("source", src.ID), logging.String("error", err.Error()))
		return false
	}
	for _, leg := range legs {
		collector.IncCommitted(leg.StationID)
	}
	span.SetAttributes(attribute.Int("baselines", len(committed)))
	*scheduled = true
	return true
}

// scanTimes lays the station's pre-observation phases back to back so the
// calibration phase ends exactly at scan start.
func scanTimes(st *core.StationState, scanStart, scanEnd int) []int {
	ov := st.Overheads
	cal := scanStart - ov.Calibration
	tape := cal - ov.Tape
	source := tape - ov.Source
	setup := source - ov.Setup
	return []int{setup, source, tape, cal, scanStart, scanEnd}
}

func serveMetrics(addr string, collector *observability.EngineCollector, log logging.Logger) *http.Server {
	if collector == nil {
		return nil
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", collector.Handler())

	srv := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Warn(context.Background(), "metrics server exited", logging.String("error", err.Error()))
		}
	}()

	log.Info(context.Background(), "serving Prometheus metrics", logging.String("addr", addr))
	return srv
}
