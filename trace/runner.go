package trace

import (
	"fmt"
	"io"

	"github.com/llcsim/llcsim/simcache"
)

// RunResult holds the outcome of driving one trace through a cache.
type RunResult struct {
	// Name identifies the trace
	Name string `json:"name"`

	// Description explains what the trace exercises
	Description string `json:"description"`

	// Accesses is the number of accesses issued
	Accesses uint64 `json:"accesses"`

	// Hits is the number of cache hits
	Hits uint64 `json:"hits"`

	// Misses is the number of cache misses
	Misses uint64 `json:"misses"`

	// Evictions is the number of valid lines evicted
	Evictions uint64 `json:"evictions"`

	// Bypasses is the number of misses not allocated
	Bypasses uint64 `json:"bypasses"`

	// HitRate is the hit percentage
	HitRate float64 `json:"hit_rate"`
}

// Runner drives a cache model from a trace generator.
type Runner struct {
	// Cache is the model under test.
	Cache *simcache.Cache

	// Heartbeat is the number of accesses between periodic engine
	// diagnostics written to Out. Zero disables heartbeats.
	Heartbeat uint64

	// Out receives heartbeat lines. Ignored when nil.
	Out io.Writer
}

// Run issues n accesses from the generator and returns the aggregated
// result. Cache statistics are cleared first so results of consecutive
// runs do not mix.
func (r *Runner) Run(g Generator, n uint64) RunResult {
	r.Cache.ResetStats()

	for i := uint64(0); i < n; i++ {
		a := g.Next()
		r.Cache.Access(a.PC, a.Addr, a.Write)

		if r.Heartbeat > 0 && r.Out != nil && (i+1)%r.Heartbeat == 0 {
			fmt.Fprintf(r.Out, "[%s %d/%d] %s\n", g.Name(), i+1, n,
				r.Cache.Engine().Heartbeat())
		}
	}

	stats := r.Cache.Stats()
	return RunResult{
		Name:        g.Name(),
		Description: g.Description(),
		Accesses:    stats.Hits + stats.Misses,
		Hits:        stats.Hits,
		Misses:      stats.Misses,
		Evictions:   stats.Evictions,
		Bypasses:    stats.Bypasses,
		HitRate:     stats.HitRate(),
	}
}
