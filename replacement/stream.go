package replacement

// streamState tracks the recent address deltas of one set. The streaming
// flag is a pure function of the buffered deltas: it is recomputed on
// every observation and clears as soon as the stride pattern breaks out
// of the window.
type streamState struct {
	lastAddr  uint64
	seen      bool
	deltas    []int64
	ptr       int
	streaming bool
}

// streamDetector classifies per-set access patterns. A set whose recent
// deltas are dominated by a single nonzero stride is marked streaming,
// signaling bulk data unlikely to be reused before eviction.
type streamDetector struct {
	sets      []streamState
	window    int
	threshold int
}

func newStreamDetector(numSets, window, threshold int) *streamDetector {
	d := &streamDetector{
		sets:      make([]streamState, numSets),
		window:    window,
		threshold: threshold,
	}
	for i := range d.sets {
		d.sets[i].deltas = make([]int64, window)
	}
	return d
}

func (d *streamDetector) reset() {
	for i := range d.sets {
		s := &d.sets[i]
		s.lastAddr = 0
		s.seen = false
		s.ptr = 0
		s.streaming = false
		for j := range s.deltas {
			s.deltas[j] = 0
		}
	}
}

// observe records the access address and reclassifies the set.
func (d *streamDetector) observe(set uint32, addr uint64) bool {
	s := &d.sets[set]

	var delta int64
	if s.seen {
		delta = int64(addr) - int64(s.lastAddr)
	}
	s.lastAddr = addr
	s.seen = true
	s.deltas[s.ptr] = delta
	s.ptr = (s.ptr + 1) % d.window

	s.streaming = classify(s.deltas, d.threshold)
	return s.streaming
}

// peek reports what the streaming flag would become if addr were
// observed, without recording it. Used by bypass-capable hosts that
// consult the detector before deciding whether to allocate.
func (d *streamDetector) peek(set uint32, addr uint64) bool {
	s := &d.sets[set]

	var delta int64
	if s.seen {
		delta = int64(addr) - int64(s.lastAddr)
	}

	scratch := make([]int64, len(s.deltas))
	copy(scratch, s.deltas)
	scratch[s.ptr] = delta

	return classify(scratch, d.threshold)
}

func (d *streamDetector) isStreaming(set uint32) bool {
	return d.sets[set].streaming
}

// streamingSetCount returns the number of sets currently classified as
// streaming. Diagnostic only.
func (d *streamDetector) streamingSetCount() int {
	n := 0
	for i := range d.sets {
		if d.sets[i].streaming {
			n++
		}
	}
	return n
}

// classify reports whether at least threshold of the buffered deltas
// equal the most common nonzero delta.
func classify(deltas []int64, threshold int) bool {
	for _, candidate := range deltas {
		if candidate == 0 {
			continue
		}
		match := 0
		for _, d := range deltas {
			if d == candidate {
				match++
			}
		}
		if match >= threshold {
			return true
		}
	}
	return false
}
