package replacement

// selectVictim picks the way to evict from a set.
//
// A frame flagged confidently dead is taken before any RRPV scan. The
// scan itself looks for RRPV == max at the lowest way index; when no way
// qualifies, every RRPV in the set is aged by one and the scan retries.
// Each aging pass raises the minimum RRPV toward the ceiling, so the
// loop terminates within RRPV_MAX+1 passes and always returns a valid
// way.
func (e *Engine) selectVictim(set uint32) uint32 {
	ways := uint32(e.cfg.NumWays)
	rrpvMax := e.cfg.rrpvMax()

	for way := uint32(0); way < ways; way++ {
		line := e.meta.line(set, way)
		if line.Valid && e.isLikelyDead(line) {
			e.stats.DeadVictims++
			return way
		}
	}

	for pass := 0; pass <= int(rrpvMax); pass++ {
		for way := uint32(0); way < ways; way++ {
			if e.meta.line(set, way).RRPV >= rrpvMax {
				return way
			}
		}
		for way := uint32(0); way < ways; way++ {
			line := e.meta.line(set, way)
			if line.RRPV < rrpvMax {
				line.RRPV++
			}
		}
		e.stats.AgingPasses++
	}

	// Unreachable: the first aging pass already puts the set's maximum
	// RRPV at the ceiling.
	return 0
}

// baselineDepth returns the insertion RRPV dictated by the given dueling
// policy. BRRIP's occasional long insert draws from the engine-owned
// seeded generator.
func (e *Engine) baselineDepth(policy Policy) uint8 {
	rrpvMax := e.cfg.rrpvMax()

	if policy == PolicySRRIP {
		if rrpvMax == 0 {
			return 0
		}
		return rrpvMax - 1
	}

	if e.rng.Intn(e.cfg.BRRIPLongChance) == 0 && rrpvMax > 0 {
		return rrpvMax - 1
	}
	return rrpvMax
}
