// Package trace provides deterministic synthetic access traces for
// exercising the replacement engine, plus a runner that drives a cache
// model from a trace. Each generator targets a specific policy behavior:
// streams for bypass, hot sets for reuse protection, mixes for dueling.
package trace

import (
	"fmt"
	"math/rand"
)

// Access is one memory access of a trace.
type Access struct {
	// PC is the program counter of the access.
	PC uint64
	// Addr is the physical address accessed.
	Addr uint64
	// Write marks the access as a store.
	Write bool
}

// Generator produces an infinite access trace.
type Generator interface {
	// Name identifies the trace.
	Name() string
	// Description explains what the trace exercises.
	Description() string
	// Next returns the next access.
	Next() Access
}

// New constructs a generator by name. Known names: sequential, hotset,
// mix, random.
func New(name string, seed int64) (Generator, error) {
	switch name {
	case "sequential":
		return NewSequential(0x400100, 0x1000_0000, 64), nil
	case "hotset":
		return NewHotSet(0x2000_0000, 512, 64), nil
	case "mix":
		return NewScanMix(seed), nil
	case "random":
		return NewRandom(seed, 256*1024*1024), nil
	default:
		return nil, fmt.Errorf("unknown trace %q", name)
	}
}

// Sequential walks memory at a constant stride and never revisits a
// block: the canonical streaming workload. A well-behaved policy inserts
// these fills distant or bypasses them.
type Sequential struct {
	pc     uint64
	next   uint64
	stride uint64
}

// NewSequential returns a constant-stride scan starting at base.
func NewSequential(pc, base, stride uint64) *Sequential {
	return &Sequential{pc: pc, next: base, stride: stride}
}

func (s *Sequential) Name() string { return "sequential" }

func (s *Sequential) Description() string {
	return "constant-stride scan with no reuse - exercises streaming detection and bypass"
}

func (s *Sequential) Next() Access {
	a := Access{PC: s.pc, Addr: s.next}
	s.next += s.stride
	return a
}

// HotSet cycles over a fixed working set of blocks, each block touched
// by a stable PC. Every block is re-referenced each round, so a
// well-behaved policy keeps the whole set resident.
type HotSet struct {
	base      uint64
	blocks    int
	blockSize uint64
	idx       int
}

// NewHotSet returns a cyclic trace over blocks lines of blockSize bytes.
func NewHotSet(base uint64, blocks int, blockSize uint64) *HotSet {
	return &HotSet{base: base, blocks: blocks, blockSize: blockSize}
}

func (h *HotSet) Name() string { return "hotset" }

func (h *HotSet) Description() string {
	return "cyclic reuse over a fixed working set - exercises reuse prediction and MRU insertion"
}

func (h *HotSet) Next() Access {
	idx := h.idx
	h.idx = (h.idx + 1) % h.blocks

	// A small pool of PCs so the signature predictor sees repeated,
	// consistent call sites.
	pc := 0x401000 + uint64(idx%8)*4
	return Access{PC: pc, Addr: h.base + uint64(idx)*h.blockSize}
}

// ScanMix interleaves a reusable working set with a polluting scan:
// the trace where insertion-depth choice matters most. SRRIP protects
// the scan too long; BRRIP sheds it, so the duel should settle on BRRIP.
type ScanMix struct {
	hot  *HotSet
	scan *Sequential
	rng  *rand.Rand
}

// NewScanMix returns a seeded mix of two-thirds hot-set accesses and
// one-third scan accesses.
func NewScanMix(seed int64) *ScanMix {
	return &ScanMix{
		hot:  NewHotSet(0x2000_0000, 2048, 64),
		scan: NewSequential(0x400100, 0x6000_0000, 64),
		rng:  rand.New(rand.NewSource(seed)),
	}
}

func (m *ScanMix) Name() string { return "mix" }

func (m *ScanMix) Description() string {
	return "hot working set polluted by a streaming scan - exercises set dueling and insertion depth"
}

func (m *ScanMix) Next() Access {
	if m.rng.Intn(3) == 0 {
		return m.scan.Next()
	}
	return m.hot.Next()
}

// Random draws uniformly over a span, with a write fraction. Nearly no
// reuse: a worst case that mostly measures that the policy does no harm.
type Random struct {
	rng  *rand.Rand
	span uint64
}

// NewRandom returns a seeded uniform-random trace over span bytes.
func NewRandom(seed int64, span uint64) *Random {
	return &Random{rng: rand.New(rand.NewSource(seed)), span: span}
}

func (r *Random) Name() string { return "random" }

func (r *Random) Description() string {
	return "uniform random accesses - baseline with negligible reuse"
}

func (r *Random) Next() Access {
	return Access{
		PC:    0x400000 + uint64(r.rng.Intn(64))*4,
		Addr:  uint64(r.rng.Int63n(int64(r.span))),
		Write: r.rng.Intn(4) == 0,
	}
}
