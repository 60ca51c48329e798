package replacement

import (
	"encoding/json"
	"fmt"
	"os"
)

// Config holds the geometry and learning parameters of the replacement
// engine. Defaults follow the common LLC configuration used for policy
// studies: 2048 sets, 16 ways, 2-bit RRPV.
type Config struct {
	// NumSets is the number of cache sets the engine tracks.
	NumSets int `json:"num_sets"`

	// NumWays is the associativity of each set.
	NumWays int `json:"num_ways"`

	// RRPVBits is the width of the per-line re-reference prediction value.
	// Default: 2 bits (RRPV in [0, 3]).
	RRPVBits int `json:"rrpv_bits"`

	// SignatureBits is the width of the PC signature used to index the
	// reuse predictor table. The table has 2^SignatureBits entries.
	// Default: 10 bits (1024 entries).
	SignatureBits int `json:"signature_bits"`

	// StreamWindow is the number of recent address deltas kept per set for
	// streaming detection. Default: 4.
	StreamWindow int `json:"stream_window"`

	// StreamThreshold is the number of matching nonzero deltas within the
	// window required to classify a set as streaming. Default: 3.
	StreamThreshold int `json:"stream_threshold"`

	// DeadBits is the width of the per-line dead-block counter.
	// Default: 2 bits.
	DeadBits int `json:"dead_bits"`

	// PSELBits is the width of the set-dueling preference counter.
	// Default: 10 bits.
	PSELBits int `json:"psel_bits"`

	// LeaderSetsPerPolicy is the number of leader sets pinned to each of
	// the two dueling insertion policies. Default: 32.
	LeaderSetsPerPolicy int `json:"leader_sets_per_policy"`

	// BRRIPLongChance is the denominator of the bimodal insertion
	// probability: BRRIP inserts at RRPV_MAX-1 once every BRRIPLongChance
	// fills and at RRPV_MAX otherwise. Default: 32.
	BRRIPLongChance int `json:"brrip_long_chance"`

	// DecayEpoch is the number of accesses between dead-block counter
	// decay sweeps. Default: 8192.
	DecayEpoch uint64 `json:"decay_epoch"`

	// Seed initializes the engine-owned pseudo-random generator used for
	// bimodal insertion, making runs reproducible.
	Seed int64 `json:"seed"`
}

// DefaultConfig returns a Config with the canonical LLC parameters.
func DefaultConfig() Config {
	return Config{
		NumSets:             2048,
		NumWays:             16,
		RRPVBits:            2,
		SignatureBits:       10,
		StreamWindow:        4,
		StreamThreshold:     3,
		DeadBits:            2,
		PSELBits:            10,
		LeaderSetsPerPolicy: 32,
		BRRIPLongChance:     32,
		DecayEpoch:          8192,
		Seed:                1,
	}
}

// LoadConfig loads a Config from a JSON file. Missing fields keep their
// default values.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read replacement config file: %w", err)
	}

	config := DefaultConfig()
	if err := json.Unmarshal(data, &config); err != nil {
		return Config{}, fmt.Errorf("failed to parse replacement config: %w", err)
	}

	return config, nil
}

// SaveConfig writes the Config to a JSON file.
func (c Config) SaveConfig(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize replacement config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write replacement config file: %w", err)
	}

	return nil
}

// Clone returns a copy of the Config.
func (c Config) Clone() Config {
	return c
}

// Validate checks the init-time invariants. Geometry and counter widths
// are fixed for the lifetime of an engine, so violations are reported
// here rather than during steady-state operation.
func (c Config) Validate() error {
	if c.NumSets <= 0 {
		return fmt.Errorf("num_sets must be > 0")
	}
	if c.NumWays <= 0 {
		return fmt.Errorf("num_ways must be > 0")
	}
	if c.RRPVBits < 1 || c.RRPVBits > 4 {
		return fmt.Errorf("rrpv_bits must be in [1, 4]")
	}
	if c.SignatureBits < 5 || c.SignatureBits > 12 {
		return fmt.Errorf("signature_bits must be in [5, 12]")
	}
	if c.StreamWindow < 2 || c.StreamWindow > 8 {
		return fmt.Errorf("stream_window must be in [2, 8]")
	}
	if c.StreamThreshold < 1 || c.StreamThreshold > c.StreamWindow {
		return fmt.Errorf("stream_threshold must be in [1, stream_window]")
	}
	if c.DeadBits < 1 || c.DeadBits > 4 {
		return fmt.Errorf("dead_bits must be in [1, 4]")
	}
	if c.PSELBits < 4 || c.PSELBits > 16 {
		return fmt.Errorf("psel_bits must be in [4, 16]")
	}
	if c.LeaderSetsPerPolicy < 1 {
		return fmt.Errorf("leader_sets_per_policy must be > 0")
	}
	if 2*c.LeaderSetsPerPolicy > c.NumSets {
		return fmt.Errorf("leader sets (%d per policy) exceed num_sets (%d)",
			c.LeaderSetsPerPolicy, c.NumSets)
	}
	if c.BRRIPLongChance < 1 {
		return fmt.Errorf("brrip_long_chance must be > 0")
	}
	if c.DecayEpoch == 0 {
		return fmt.Errorf("decay_epoch must be > 0")
	}
	return nil
}

// rrpvMax returns the saturation bound of the RRPV counter.
func (c Config) rrpvMax() uint8 {
	return uint8(1<<c.RRPVBits - 1)
}

// deadMax returns the saturation bound of the dead-block counter.
func (c Config) deadMax() uint8 {
	return uint8(1<<c.DeadBits - 1)
}

// pselMax returns the saturation bound of the PSEL counter.
func (c Config) pselMax() uint32 {
	return uint32(1<<c.PSELBits - 1)
}
