package replacement

// Dead-block prediction lives in the per-line Dead counters of the
// metadata store; this file holds the training and decay rules.
//
// The counter is frame-scoped: it survives refills, so a frame whose
// residencies repeatedly die without reuse accumulates deadness and is
// preferred by the victim selector. Hits clear it, and a periodic decay
// sweep relaxes stale classifications so no frame stays blacklisted.

// deadOnHit marks the line as live again.
func (e *Engine) deadOnHit(line *Line) {
	line.Dead = 0
}

// deadOnFill seeds the counter from the insertion decision: lines
// inserted distant start closer to dead than lines protected at MRU.
// Seeds are monotone in depth and always below the maximum, so a fresh
// fill is never dead-preferred on its own; only accumulated history
// (deadOnEvict) can push a frame to the threshold.
func (e *Engine) deadOnFill(line *Line, depth uint8) {
	max := e.cfg.deadMax()
	var seed uint8
	switch {
	case depth == 0:
		seed = 0
	case depth >= e.cfg.rrpvMax():
		seed = max - 1
	default:
		seed = 1
	}
	if seed >= max {
		seed = max - 1
	}
	line.Dead = seed
}

// deadOnEvict carries the frame's deadness into the new residency when
// the previous resident died without reuse: the counter the evicted line
// accumulated, plus one, floors the refill default. Repeatedly unreused
// frames therefore climb to the maximum; one hit clears the history.
func (e *Engine) deadOnEvict(line *Line, prevDead uint8) {
	carried := prevDead
	if carried < e.cfg.deadMax() {
		carried++
	}
	if carried > line.Dead {
		line.Dead = carried
	}
}

// isLikelyDead reports whether the frame is confidently dead.
func (e *Engine) isLikelyDead(line *Line) bool {
	return line.Dead >= e.cfg.deadMax()
}

// tickDecay advances the global access counter and, once per epoch,
// decrements every dead-block counter by one (bounded at zero).
func (e *Engine) tickDecay() {
	e.accessCount++
	if e.accessCount%e.cfg.DecayEpoch != 0 {
		return
	}

	for i := range e.meta.lines {
		if e.meta.lines[i].Dead > 0 {
			e.meta.lines[i].Dead--
		}
	}
	e.stats.DecaySweeps++
}
