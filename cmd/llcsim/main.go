// Package main provides the entry point for llcsim.
// llcsim drives synthetic access traces through a last-level-cache model
// with an adaptive replacement engine and reports policy behavior.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/llcsim/llcsim/metrics"
	"github.com/llcsim/llcsim/replacement"
	"github.com/llcsim/llcsim/simcache"
	"github.com/llcsim/llcsim/trace"
)

var (
	configPath  = flag.String("config", "", "Path to replacement engine JSON config file")
	traceName   = flag.String("trace", "mix", "Trace to run: sequential, hotset, mix, random")
	accesses    = flag.Uint64("n", 1_000_000, "Number of accesses to simulate")
	seed        = flag.Int64("seed", 1, "Seed for trace and engine randomness")
	cacheSize   = flag.Int("size", 2*1024*1024, "Cache size in bytes")
	ways        = flag.Int("ways", 16, "Cache associativity")
	blockSize   = flag.Int("blocksize", 64, "Cache line size in bytes")
	noBypass    = flag.Bool("no-bypass", false, "Disable bypass; insert streaming fills distant instead")
	heartbeat   = flag.Uint64("heartbeat", 0, "Accesses between periodic diagnostics (0 disables)")
	metricsAddr = flag.String("metrics-addr", "", "Address to serve Prometheus metrics on (empty disables)")
	verbose     = flag.Bool("v", false, "Verbose output")
)

func main() {
	flag.Parse()

	cacheConfig := simcache.Config{
		Size:          *cacheSize,
		Associativity: *ways,
		BlockSize:     *blockSize,
		HitLatency:    simcache.DefaultLLCConfig().HitLatency,
		MissLatency:   simcache.DefaultLLCConfig().MissLatency,
		BypassEnabled: !*noBypass,
		Seed:          *seed,
	}

	cache, err := buildCache(cacheConfig)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error building cache: %v\n", err)
		os.Exit(1)
	}

	generator, err := trace.New(*traceName, *seed)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		fmt.Fprintf(os.Stderr, "\nUsage: llcsim [options]\n\nOptions:\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	if *verbose {
		fmt.Printf("Trace: %s - %s\n", generator.Name(), generator.Description())
		fmt.Printf("Cache: %d sets x %d ways x %dB lines\n",
			cache.NumSets(), *ways, *blockSize)
	}

	var collector *metrics.Collector
	if *metricsAddr != "" {
		collector = metrics.NewCollector("llcsim")
		collector.Serve(*metricsAddr)
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			collector.Shutdown(ctx)
		}()
	}

	runner := &trace.Runner{
		Cache:     cache,
		Heartbeat: *heartbeat,
		Out:       os.Stdout,
	}

	result := runner.Run(generator, *accesses)

	if collector != nil {
		collector.Observe(cache)
	}

	fmt.Printf("\n")
	fmt.Printf("Trace: %s\n", result.Name)
	fmt.Printf("Accesses:  %d\n", result.Accesses)
	fmt.Printf("Hits:      %d (%.1f%%)\n", result.Hits, result.HitRate)
	fmt.Printf("Misses:    %d\n", result.Misses)
	fmt.Printf("Evictions: %d\n", result.Evictions)
	fmt.Printf("Bypasses:  %d\n", result.Bypasses)
	fmt.Printf("\n")
	fmt.Print(cache.Engine().Report())
}

// buildCache assembles the cache, applying the engine config file when
// one is given.
func buildCache(cacheConfig simcache.Config) (*simcache.Cache, error) {
	if *configPath == "" {
		return simcache.New(cacheConfig)
	}

	policy, err := replacement.LoadConfig(*configPath)
	if err != nil {
		return nil, err
	}
	policy.NumSets = cacheConfig.Size / (cacheConfig.Associativity * cacheConfig.BlockSize)
	policy.NumWays = cacheConfig.Associativity
	policy.Seed = cacheConfig.Seed

	return simcache.NewWithPolicy(cacheConfig, policy)
}
