package replacement

// shipCounterMax is the saturation bound of the 2-bit per-signature
// reuse counters.
const shipCounterMax = 3

// shipNeutral is the reset value of the reuse counters, midway between
// "never reused" and "always reused".
const shipNeutral = 1

// shipTable is a SHiP-lite reuse predictor: a single global table of
// saturating counters indexed by a hashed PC signature. Counters are
// trained lazily: whether a block was reused is only known at hit or
// eviction time, so the prediction always lags by one residency.
type shipTable struct {
	counters []uint8
	sigBits  uint
	sigMask  uint64
}

func newShipTable(sigBits int) *shipTable {
	t := &shipTable{
		counters: make([]uint8, 1<<sigBits),
		sigBits:  uint(sigBits),
		sigMask:  uint64(1<<sigBits - 1),
	}
	t.reset()
	return t
}

func (t *shipTable) reset() {
	for i := range t.counters {
		t.counters[i] = shipNeutral
	}
}

// signatureOf hashes a PC into a table index. Folding the upper bits in
// keeps distinct call sites from aliasing on low-bit alignment alone.
func (t *shipTable) signatureOf(pc uint64) uint16 {
	return uint16((pc ^ (pc >> t.sigBits)) & t.sigMask)
}

// onHit rewards a signature whose block was re-referenced.
func (t *shipTable) onHit(sig uint16) {
	if t.counters[sig] < shipCounterMax {
		t.counters[sig]++
	}
}

// onEvict penalizes a signature whose block was evicted without reuse.
func (t *shipTable) onEvict(sig uint16, reused bool) {
	if reused {
		return
	}
	if t.counters[sig] > 0 {
		t.counters[sig]--
	}
}

// predictsHighReuse reports whether the signature's counter is saturated,
// i.e. blocks filled under it should be protected at MRU.
func (t *shipTable) predictsHighReuse(sig uint16) bool {
	return t.counters[sig] >= shipCounterMax
}

// predictsModerateReuse reports whether the signature shows some reuse
// history, warranting a middle insertion depth.
func (t *shipTable) predictsModerateReuse(sig uint16) bool {
	return t.counters[sig] >= 2
}
