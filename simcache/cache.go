// Package simcache provides a trace-driven set-associative cache model
// for replacement-policy studies, using an Akita cache directory for
// tag/state management and the replacement engine for victim selection
// and insertion decisions. The model tracks tags only; replacement
// behavior never depends on data contents.
package simcache

import (
	"fmt"

	akitacache "github.com/sarchlab/akita/v4/mem/cache"

	"github.com/llcsim/llcsim/replacement"
)

// Config holds cache configuration parameters.
type Config struct {
	// Size in bytes
	Size int
	// Associativity (number of ways)
	Associativity int
	// BlockSize in bytes (cache line size)
	BlockSize int
	// HitLatency in cycles
	HitLatency uint64
	// MissLatency in cycles (includes memory access time)
	MissLatency uint64
	// BypassEnabled lets the engine skip allocation for fills it flags
	// as non-reusable. When false, such fills are inserted distant.
	BypassEnabled bool
	// Seed for the engine's pseudo-random generator.
	Seed int64
}

// DefaultLLCConfig returns the canonical last-level-cache geometry used
// for policy studies: 2MB, 16-way, 64B lines (2048 sets).
func DefaultLLCConfig() Config {
	return Config{
		Size:          2 * 1024 * 1024,
		Associativity: 16,
		BlockSize:     64,
		HitLatency:    30,
		MissLatency:   150,
		BypassEnabled: true,
		Seed:          1,
	}
}

// AccessResult contains the result of a cache access.
type AccessResult struct {
	// Hit indicates whether the access was a cache hit.
	Hit bool
	// Latency is the number of cycles this access takes.
	Latency uint64
	// Bypassed is true if the miss was not allocated.
	Bypassed bool
	// Evicted is true if a valid block was evicted.
	Evicted bool
	// EvictedAddr is the address of the evicted block (if Evicted is true).
	EvictedAddr uint64
}

// Statistics holds cache performance statistics.
type Statistics struct {
	Reads     uint64
	Writes    uint64
	Hits      uint64
	Misses    uint64
	Evictions uint64
	Bypasses  uint64
}

// HitRate returns the hit fraction as a percentage.
func (s Statistics) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total) * 100
}

// Cache is a tag-only set-associative cache model driven by a
// replacement engine.
type Cache struct {
	config  Config
	numSets int

	// Akita cache directory for tag/state management
	directory *akitacache.DirectoryImpl

	// Replacement policy engine and its directory adapter
	engine *replacement.Engine
	finder *replacement.VictimFinder

	stats Statistics
}

// New creates a cache with the default replacement parameters for its
// geometry.
func New(config Config) (*Cache, error) {
	numSets, err := numSetsOf(config)
	if err != nil {
		return nil, err
	}

	policy := replacement.DefaultConfig()
	policy.NumSets = numSets
	policy.NumWays = config.Associativity
	policy.Seed = config.Seed

	// Small geometries cannot carry the default leader population.
	if 2*policy.LeaderSetsPerPolicy > numSets {
		policy.LeaderSetsPerPolicy = numSets / 2
		if policy.LeaderSetsPerPolicy == 0 {
			policy.LeaderSetsPerPolicy = 1
		}
	}

	return NewWithPolicy(config, policy)
}

// NewWithPolicy creates a cache with an explicit replacement
// configuration. The policy geometry must match the cache geometry.
func NewWithPolicy(config Config, policy replacement.Config) (*Cache, error) {
	numSets, err := numSetsOf(config)
	if err != nil {
		return nil, err
	}
	if policy.NumSets != numSets || policy.NumWays != config.Associativity {
		return nil, fmt.Errorf("policy geometry %dx%d does not match cache geometry %dx%d",
			policy.NumSets, policy.NumWays, numSets, config.Associativity)
	}

	engine, err := replacement.New(policy)
	if err != nil {
		return nil, err
	}

	finder := replacement.NewVictimFinder(engine)

	return &Cache{
		config:  config,
		numSets: numSets,
		directory: akitacache.NewDirectory(
			numSets,
			config.Associativity,
			config.BlockSize,
			finder,
		),
		engine: engine,
		finder: finder,
	}, nil
}

func numSetsOf(config Config) (int, error) {
	if config.Associativity <= 0 || config.BlockSize <= 0 {
		return 0, fmt.Errorf("associativity and block size must be > 0")
	}
	numSets := config.Size / (config.Associativity * config.BlockSize)
	if numSets <= 0 {
		return 0, fmt.Errorf("cache size %d too small for %d ways of %dB blocks",
			config.Size, config.Associativity, config.BlockSize)
	}
	return numSets, nil
}

// Config returns the cache configuration.
func (c *Cache) Config() Config {
	return c.config
}

// NumSets returns the number of sets implied by the geometry.
func (c *Cache) NumSets() int {
	return c.numSets
}

// Engine returns the replacement engine driving the cache.
func (c *Cache) Engine() *replacement.Engine {
	return c.engine
}

// Stats returns cache statistics.
func (c *Cache) Stats() Statistics {
	return c.stats
}

// ResetStats clears cache statistics.
func (c *Cache) ResetStats() {
	c.stats = Statistics{}
}

// setIndex mirrors the directory's address-to-set mapping.
func (c *Cache) setIndex(blockAddr uint64) uint32 {
	return uint32(blockAddr / uint64(c.config.BlockSize) % uint64(c.numSets))
}

// Access performs one cache access on behalf of the instruction at pc.
func (c *Cache) Access(pc, addr uint64, write bool) AccessResult {
	if write {
		c.stats.Writes++
	} else {
		c.stats.Reads++
	}

	access := replacement.AccessLoad
	if write {
		access = replacement.AccessRFO
	}

	// Compute block-aligned address for lookup
	blockAddr := (addr / uint64(c.config.BlockSize)) * uint64(c.config.BlockSize)

	block := c.directory.Lookup(0, blockAddr) // PID=0 for now
	if block != nil && block.IsValid {
		c.stats.Hits++
		c.directory.Visit(block)
		if write {
			block.IsDirty = true
		}

		c.engine.Update(uint32(block.SetID), uint32(block.WayID),
			pc, blockAddr, 0, access, true)

		return AccessResult{Hit: true, Latency: c.config.HitLatency}
	}

	// Cache miss
	c.stats.Misses++
	result := AccessResult{Latency: c.config.MissLatency}
	set := c.setIndex(blockAddr)

	if c.config.BypassEnabled {
		decision := c.engine.Decide(set, pc, blockAddr, access)
		if decision.Action == replacement.ActionBypass {
			c.stats.Bypasses++
			c.engine.RecordBypass(set, pc, blockAddr)
			result.Bypassed = true
			return result
		}
	}

	// Find victim block
	c.finder.SetAccess(pc, blockAddr, access)
	victim := c.directory.FindVictim(blockAddr)
	if victim == nil {
		// This shouldn't happen with proper directory setup
		return result
	}

	var victimAddr uint64
	if victim.IsValid {
		c.stats.Evictions++
		result.Evicted = true
		result.EvictedAddr = victim.Tag // Tag stores block-aligned address
		victimAddr = victim.Tag
	}

	victim.Tag = blockAddr
	victim.IsValid = true
	victim.IsDirty = write
	c.directory.Visit(victim)

	c.engine.Update(uint32(victim.SetID), uint32(victim.WayID),
		pc, blockAddr, victimAddr, access, false)

	return result
}

// Reset invalidates all cache lines and restores the engine and
// statistics to their initial state.
func (c *Cache) Reset() {
	c.directory.Reset()
	c.engine.Reset()
	c.stats = Statistics{}
}
