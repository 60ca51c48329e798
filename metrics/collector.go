// Package metrics exports engine and cache statistics over a Prometheus
// endpoint for long simulation runs.
package metrics

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/llcsim/llcsim/simcache"
)

// Collector snapshots cache and engine statistics into Prometheus
// gauges. Observe is called by the host at its own cadence; the values
// always reflect the latest snapshot.
type Collector struct {
	registry *prometheus.Registry

	accesses         prometheus.Gauge
	hits             prometheus.Gauge
	misses           prometheus.Gauge
	evictions        prometheus.Gauge
	bypasses         prometheus.Gauge
	streamingSets    prometheus.Gauge
	deadLineFraction prometheus.Gauge
	psel             prometheus.Gauge

	server *http.Server
}

// NewCollector creates a collector with all metrics registered under the
// given namespace.
func NewCollector(namespace string) *Collector {
	c := &Collector{registry: prometheus.NewRegistry()}

	gauge := func(name, help string) prometheus.Gauge {
		g := prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      name,
			Help:      help,
		})
		c.registry.MustRegister(g)
		return g
	}

	c.accesses = gauge("accesses", "Total cache accesses observed.")
	c.hits = gauge("hits", "Total cache hits.")
	c.misses = gauge("misses", "Total cache misses.")
	c.evictions = gauge("evictions", "Total valid-line evictions.")
	c.bypasses = gauge("bypasses", "Total misses not allocated.")
	c.streamingSets = gauge("streaming_sets", "Sets currently classified as streaming.")
	c.deadLineFraction = gauge("dead_line_fraction", "Fraction of resident lines classified dead.")
	c.psel = gauge("psel", "Current policy-selection counter value.")

	return c
}

// Observe snapshots the cache's current statistics into the gauges.
func (c *Collector) Observe(cache *simcache.Cache) {
	stats := cache.Stats()
	engine := cache.Engine()

	c.accesses.Set(float64(stats.Hits + stats.Misses))
	c.hits.Set(float64(stats.Hits))
	c.misses.Set(float64(stats.Misses))
	c.evictions.Set(float64(stats.Evictions))
	c.bypasses.Set(float64(stats.Bypasses))
	c.streamingSets.Set(float64(engine.StreamingSetCount()))
	c.deadLineFraction.Set(engine.DeadLineFraction())
	c.psel.Set(float64(engine.PSEL()))
}

// Registry returns the underlying Prometheus registry, for hosts that
// serve metrics themselves.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Serve starts an HTTP server exposing /metrics on addr. It returns
// immediately; server errors are logged.
func (c *Collector) Serve(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{}))

	c.server = &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := c.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("metrics server failed", "addr", addr, "error", err)
		}
	}()
}

// Shutdown stops the metrics server, if one was started.
func (c *Collector) Shutdown(ctx context.Context) error {
	if c.server == nil {
		return nil
	}
	return c.server.Shutdown(ctx)
}
