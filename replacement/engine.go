// Package replacement implements a last-level-cache replacement-policy
// decision engine. The engine combines RRIP victim selection with three
// learned predictors (PC-signature reuse prediction, per-set streaming
// detection, and dead-block prediction) and arbitrates between SRRIP and
// BRRIP baseline insertion via set dueling.
//
// The engine holds no tags and no data. A host cache model calls Victim
// to pick a way before a fill and Update after every access; both run in
// O(ways) time and cannot fail for in-range indices.
package replacement

import (
	"fmt"
	"math/rand"
	"strings"
)

// AccessType identifies the kind of memory access driving a decision.
type AccessType uint8

const (
	// AccessLoad is a demand load.
	AccessLoad AccessType = iota
	// AccessRFO is a store miss (read-for-ownership).
	AccessRFO
	// AccessPrefetch is a hardware prefetch fill.
	AccessPrefetch
	// AccessWriteback is a writeback arriving from an inner cache level.
	AccessWriteback
)

// Action is the allocation choice of a fill decision.
type Action uint8

const (
	// ActionInsert allocates the line at Decision.Depth.
	ActionInsert Action = iota
	// ActionBypass recommends not allocating the line at all.
	ActionBypass
)

// Decision is the tri-state outcome of the fill path: insert at a given
// RRPV depth, or bypass the cache entirely. Hosts that cannot bypass
// treat ActionBypass as a distant insert.
type Decision struct {
	Action Action
	Depth  uint8
}

// Engine is one replacement-policy instance. All state is owned by the
// engine value and mutated only through its methods; the host drives it
// strictly sequentially, one access at a time, so no locking is needed.
// Hosts with multiple LLC slices construct one Engine per slice.
type Engine struct {
	cfg     Config
	meta    *metaStore
	ship    *shipTable
	streams *streamDetector
	duel    *duelState
	rng     *rand.Rand

	accessCount uint64
	stats       Stats
}

// New creates an engine with all structures at their default state:
// every RRPV at the distant maximum, dead counters at the midpoint,
// the signature table neutral, and PSEL at its midpoint. Leader sets
// are assigned deterministically at a fixed stride.
func New(config Config) (*Engine, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid replacement config: %w", err)
	}

	e := &Engine{
		cfg:     config,
		meta:    newMetaStore(config.NumSets, config.NumWays),
		ship:    newShipTable(config.SignatureBits),
		streams: newStreamDetector(config.NumSets, config.StreamWindow, config.StreamThreshold),
		duel:    newDuelState(config.NumSets, config.LeaderSetsPerPolicy, config.pselMax()),
		rng:     rand.New(rand.NewSource(config.Seed)),
	}
	e.meta.resetAll(config.rrpvMax(), config.deadMax()/2)

	return e, nil
}

// Config returns the engine configuration.
func (e *Engine) Config() Config {
	return e.cfg
}

// Victim returns the way to evict for a fill into the set. The result is
// always a valid index in [0, NumWays). Confidently dead frames are
// taken first; otherwise the RRIP scan applies, aging the set as needed.
func (e *Engine) Victim(set uint32, pc, addr uint64, access AccessType) uint32 {
	return e.selectVictim(set)
}

// Decide previews the fill decision for a missing access without
// changing any state. Bypass-capable hosts call it before allocating;
// if it returns ActionBypass they skip Victim/Update and call
// RecordBypass instead.
func (e *Engine) Decide(set uint32, pc, addr uint64, access AccessType) Decision {
	sig := e.ship.signatureOf(pc)
	streaming := e.streams.peek(set, addr)
	return e.fillDecision(sig, streaming, false, e.duel.policyFor(set))
}

// Update records the outcome of one access and advances all learned
// state. For hits, way is the hit way; for misses, way is the way
// previously returned by Victim and now holding the new line.
// victimAddr is the address of the evicted line, or zero; it is carried
// for host-side bookkeeping and not used for training, which relies on
// the fill-time signature stored per line.
func (e *Engine) Update(set, way uint32, pc, addr, victimAddr uint64, access AccessType, hit bool) {
	e.stats.Accesses++
	e.tickDecay()

	streaming := e.streams.observe(set, addr)
	line := e.meta.line(set, way)

	if hit {
		e.stats.Hits++
		line.RRPV = 0
		if line.Valid {
			e.ship.onHit(line.Signature)
		}
		line.Reused = true
		e.deadOnHit(line)
		return
	}

	e.stats.Misses++

	// Train the evicted residency before the frame is reused. The stored
	// fill-time signature is trained, never the incoming PC's.
	frameDead := false
	evictedUnreused := false
	prevDead := line.Dead
	if line.Valid {
		e.ship.onEvict(line.Signature, line.Reused)
		frameDead = e.isLikelyDead(line)
		evictedUnreused = !line.Reused
	}

	sig := e.ship.signatureOf(pc)
	decision := e.fillDecision(sig, streaming, frameDead, e.duel.policyFor(set))

	line.Valid = true
	line.Signature = sig
	line.Reused = false
	line.RRPV = decision.Depth
	e.deadOnFill(line, decision.Depth)

	if decision.Action == ActionBypass {
		// The host allocated anyway, so the best the engine can do is
		// make the line the next victim.
		line.Dead = e.cfg.deadMax()
		e.stats.StreamingFills++
	}

	// Frame-level deadness persists across residencies: an unreused
	// eviction biases the frame's new resident toward eviction.
	if evictedUnreused {
		e.deadOnEvict(line, prevDead)
	}

	switch {
	case decision.Depth == 0:
		e.stats.MRUInserts++
	case decision.Depth >= e.cfg.rrpvMax():
		e.stats.DistantInserts++
	default:
		e.stats.MidInserts++
	}

	e.duel.onMiss(set)
}

// RecordBypass records a miss the host chose not to allocate after
// Decide returned ActionBypass. The streaming history and the duel still
// observe the access; no line metadata changes.
func (e *Engine) RecordBypass(set uint32, pc, addr uint64) {
	e.stats.Accesses++
	e.stats.Bypasses++
	e.tickDecay()
	e.streams.observe(set, addr)
	e.duel.onMiss(set)
}

// fillDecision resolves the insertion depth for a miss. First match
// wins: streaming overrides everything unless the signature shows strong
// reuse, a dead frame biases distant, strong reuse protects at MRU,
// moderate reuse lands mid-stack, and the dueling baseline covers the
// rest.
func (e *Engine) fillDecision(sig uint16, streaming, frameDead bool, policy Policy) Decision {
	rrpvMax := e.cfg.rrpvMax()

	if streaming && !e.ship.predictsHighReuse(sig) {
		return Decision{Action: ActionBypass, Depth: rrpvMax}
	}
	if frameDead && !e.ship.predictsHighReuse(sig) {
		return Decision{Action: ActionInsert, Depth: rrpvMax}
	}
	if e.ship.predictsHighReuse(sig) {
		return Decision{Action: ActionInsert, Depth: 0}
	}
	if e.ship.predictsModerateReuse(sig) {
		depth := uint8(1)
		if depth > rrpvMax {
			depth = rrpvMax
		}
		return Decision{Action: ActionInsert, Depth: depth}
	}
	return Decision{Action: ActionInsert, Depth: e.baselineDepth(policy)}
}

// Reset restores the engine to its post-New state, including statistics
// and the pseudo-random generator.
func (e *Engine) Reset() {
	e.meta.resetAll(e.cfg.rrpvMax(), e.cfg.deadMax()/2)
	e.ship.reset()
	e.streams.reset()
	e.duel.reset()
	e.rng = rand.New(rand.NewSource(e.cfg.Seed))
	e.accessCount = 0
	e.stats = Stats{}
}

// Stats returns the engine statistics.
func (e *Engine) Stats() Stats {
	return e.stats
}

// Line returns a copy of the metadata of one cache line.
func (e *Engine) Line(set, way uint32) Line {
	return *e.meta.line(set, way)
}

// IsStreaming reports whether the set is currently classified as
// streaming.
func (e *Engine) IsStreaming(set uint32) bool {
	return e.streams.isStreaming(set)
}

// StreamingSetCount returns the number of sets currently classified as
// streaming.
func (e *Engine) StreamingSetCount() int {
	return e.streams.streamingSetCount()
}

// PolicyFor returns the baseline insertion policy currently governing
// the set.
func (e *Engine) PolicyFor(set uint32) Policy {
	return e.duel.policyFor(set)
}

// PSEL returns the current value of the policy-selection counter. Values
// at or above the midpoint select SRRIP for follower sets.
func (e *Engine) PSEL() uint32 {
	return e.duel.psel
}

// SignatureOf returns the table signature the engine derives from a PC.
func (e *Engine) SignatureOf(pc uint64) uint16 {
	return e.ship.signatureOf(pc)
}

// PredictsHighReuse reports whether fills under the PC's signature would
// currently be protected at MRU.
func (e *Engine) PredictsHighReuse(pc uint64) bool {
	return e.ship.predictsHighReuse(e.ship.signatureOf(pc))
}

// DeadLineFraction returns the fraction of tracked residencies whose
// frame is confidently dead. Diagnostic only.
func (e *Engine) DeadLineFraction() float64 {
	valid, dead := 0, 0
	for i := range e.meta.lines {
		line := &e.meta.lines[i]
		if !line.Valid {
			continue
		}
		valid++
		if e.isLikelyDead(line) {
			dead++
		}
	}
	if valid == 0 {
		return 0
	}
	return float64(dead) / float64(valid)
}

// Report returns the final free-text diagnostics for the run.
func (e *Engine) Report() string {
	var b strings.Builder
	s := e.stats

	fmt.Fprintf(&b, "Replacement engine report\n")
	fmt.Fprintf(&b, "  Accesses:        %d (%.1f%% hits)\n", s.Accesses, s.HitRate())
	fmt.Fprintf(&b, "  Fills:           MRU %d / mid %d / distant %d (%.1f%% distant)\n",
		s.MRUInserts, s.MidInserts, s.DistantInserts, s.DistantFillRate())
	fmt.Fprintf(&b, "  Bypasses:        %d\n", s.Bypasses)
	fmt.Fprintf(&b, "  Streaming fills: %d\n", s.StreamingFills)
	fmt.Fprintf(&b, "  Streaming sets:  %d of %d\n", e.StreamingSetCount(), e.cfg.NumSets)
	fmt.Fprintf(&b, "  Dead victims:    %d\n", s.DeadVictims)
	fmt.Fprintf(&b, "  Dead lines:      %.1f%%\n", e.DeadLineFraction()*100)
	fmt.Fprintf(&b, "  Decay sweeps:    %d\n", s.DecaySweeps)
	fmt.Fprintf(&b, "  PSEL:            %d of %d (followers use %s)\n",
		e.duel.psel, e.duel.pselMax, e.PolicyFor(e.followerSet()))

	return b.String()
}

// Heartbeat returns a one-line periodic diagnostic.
func (e *Engine) Heartbeat() string {
	s := e.stats
	return fmt.Sprintf("accesses=%d hitRate=%.1f%% streamingSets=%d deadLines=%.1f%% psel=%d",
		s.Accesses, s.HitRate(), e.StreamingSetCount(), e.DeadLineFraction()*100, e.duel.psel)
}

// followerSet returns some follower set index, for reporting which
// policy the followers currently use.
func (e *Engine) followerSet() uint32 {
	for i := range e.duel.roles {
		if e.duel.roles[i] == roleFollower {
			return uint32(i)
		}
	}
	return 0
}
