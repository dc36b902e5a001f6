// Package metrics exposes the coordinator's live state as Prometheus
// gauges and counters, flipping the teacher's query-client usage of
// client_golang (pkg/monitoring/prometheus.Client queries an external
// Prometheus server) into the opposite direction: this process is the
// thing being scraped.
package metrics

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ailscvrp/core/pkg/coordinator"
	"github.com/ailscvrp/core/pkg/monitor"
)

// Config configures the exporter's HTTP exposition endpoint.
type Config struct {
	ListenAddr string
	Path       string // defaults to /metrics
}

// Exporter registers and serves the coordinator's Prometheus metrics.
// ThreadStats counters are cumulative totals; Exporter tracks the last
// value it exported per thread so repeated SampleOnce calls can Add()
// the delta into the monotonic Prometheus counters.
type Exporter struct {
	cfg      Config
	registry *prometheus.Registry
	server   *http.Server

	eliteSize      prometheus.Gauge
	globalBestF    prometheus.Gauge
	threadIters    *prometheus.CounterVec
	threadRestarts *prometheus.CounterVec
	threadInserts  *prometheus.CounterVec
	threadCurrentF *prometheus.GaugeVec

	mu   sync.Mutex
	last map[int]cumulative
}

type cumulative struct {
	iterations int64
	restarts   int64
	inserts    int64
}

// New constructs an Exporter with all ailscoord_* collectors registered
// against a private registry (never the global default one, so multiple
// coordinators in the same process never collide).
func New(cfg Config) *Exporter {
	if cfg.Path == "" {
		cfg.Path = "/metrics"
	}
	reg := prometheus.NewRegistry()

	e := &Exporter{
		cfg:      cfg,
		registry: reg,
		last:     make(map[int]cumulative),
		eliteSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "ailscoord_elite_pool_size",
			Help: "Current number of solutions held in the elite set.",
		}),
		globalBestF: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "ailscoord_global_best_f",
			Help: "Objective value of the best feasible solution found so far.",
		}),
		threadIters: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ailscoord_thread_iterations_total",
			Help: "Total iterations executed by a worker thread.",
		}, []string{"thread"}),
		threadRestarts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ailscoord_thread_restarts_total",
			Help: "Total restarts the coordinator has performed on a worker slot.",
		}, []string{"thread"}),
		threadInserts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ailscoord_thread_elite_insertions_total",
			Help: "Total elite-set insertions contributed by a worker thread.",
		}, []string{"thread"}),
		threadCurrentF: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "ailscoord_thread_current_best_f",
			Help: "Current best objective value known to a worker thread.",
		}, []string{"thread"}),
	}

	reg.MustRegister(e.eliteSize, e.globalBestF, e.threadIters, e.threadRestarts, e.threadInserts, e.threadCurrentF)
	return e
}

// Serve starts the HTTP exposition endpoint in the background. It
// returns immediately; call Shutdown to stop it.
func (e *Exporter) Serve() error {
	mux := http.NewServeMux()
	mux.Handle(e.cfg.Path, promhttp.HandlerFor(e.registry, promhttp.HandlerOpts{}))
	e.server = &http.Server{Addr: e.cfg.ListenAddr, Handler: mux}

	ln, err := net.Listen("tcp", e.cfg.ListenAddr)
	if err != nil {
		return fmt.Errorf("metrics listen: %w", err)
	}
	go func() {
		_ = e.server.Serve(ln)
	}()
	return nil
}

// Registry exposes the private registry for callers that want to mount
// the metrics handler on their own mux instead of calling Serve.
func (e *Exporter) Registry() *prometheus.Registry {
	return e.registry
}

// EliteSizeGauge, GlobalBestGauge, and ThreadIterationsCounter expose the
// underlying collectors for tests that want to assert on sampled values
// via prometheus/client_golang/prometheus/testutil.
func (e *Exporter) EliteSizeGauge() prometheus.Gauge                { return e.eliteSize }
func (e *Exporter) GlobalBestGauge() prometheus.Gauge               { return e.globalBestF }
func (e *Exporter) ThreadIterationsCounter() *prometheus.CounterVec { return e.threadIters }

// Shutdown stops the HTTP exposition endpoint with a bounded wait.
func (e *Exporter) Shutdown(ctx context.Context) error {
	if e.server == nil {
		return nil
	}
	return e.server.Shutdown(ctx)
}

// SampleOnce pulls a one-shot snapshot from the elite pool size, the
// global best, and every registered thread's stats, updating every
// collector. Intended to be called on a ticker by the caller, since the
// exporter itself has no opinion on cadence. The CLI does not call it; it
// samples once at the end of a run through SampleFromSummary.
func (e *Exporter) SampleOnce(eliteSize int, globalBestF float64, hasBest bool, mon *monitor.ThreadMonitor) {
	e.eliteSize.Set(float64(eliteSize))
	if hasBest {
		e.globalBestF.Set(globalBestF)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	for _, id := range mon.WorkerIDs() {
		stats := mon.Stats(id)
		if stats == nil {
			continue
		}
		label := fmt.Sprintf("%d", id)
		prev := e.last[id]

		iters, restarts, inserts := stats.Iterations(), stats.RestartCount(), stats.EliteInsertions()
		if d := iters - prev.iterations; d > 0 {
			e.threadIters.WithLabelValues(label).Add(float64(d))
		}
		if d := restarts - prev.restarts; d > 0 {
			e.threadRestarts.WithLabelValues(label).Add(float64(d))
		}
		if d := inserts - prev.inserts; d > 0 {
			e.threadInserts.WithLabelValues(label).Add(float64(d))
		}
		e.threadCurrentF.WithLabelValues(label).Set(stats.CurrentBestF())

		e.last[id] = cumulative{iterations: iters, restarts: restarts, inserts: inserts}
	}
}

// SampleFromSummary is a convenience for a final, one-time scrape at the
// end of a coordinator.Run, useful for short-lived CLI invocations that
// never serve metrics continuously.
func (e *Exporter) SampleFromSummary(summary coordinator.Summary) {
	e.eliteSize.Set(float64(summary.EliteSize))
	if summary.Best != nil {
		e.globalBestF.Set(summary.Best.F)
	}
}
