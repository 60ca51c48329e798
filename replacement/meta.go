package replacement

// Line holds the replacement metadata for one cache line.
type Line struct {
	// RRPV is the re-reference prediction value; higher means more
	// evictable. Saturates at the configured maximum.
	RRPV uint8

	// Dead is the dead-block counter of the frame. At its maximum the
	// line is considered confidently dead and is preferred for eviction.
	Dead uint8

	// Signature is the PC signature recorded at fill time. Eviction-time
	// reuse training always uses this stored signature, not the PC of the
	// access that triggered the eviction.
	Signature uint16

	// Reused records whether the line has been hit since its fill.
	Reused bool

	// Valid indicates the frame holds a tracked residency. Training is
	// skipped for frames that have never been filled.
	Valid bool
}

// metaStore is the per-(set, way) metadata arena. It is pure indexed
// storage; all policy decisions live in the engine.
type metaStore struct {
	ways  int
	lines []Line
}

func newMetaStore(sets, ways int) *metaStore {
	return &metaStore{
		ways:  ways,
		lines: make([]Line, sets*ways),
	}
}

func (m *metaStore) line(set, way uint32) *Line {
	return &m.lines[int(set)*m.ways+int(way)]
}

// resetAll restores every line to its post-init state: distant RRPV,
// dead counter at the neutral midpoint, no residency.
func (m *metaStore) resetAll(rrpvMax, deadInit uint8) {
	for i := range m.lines {
		m.lines[i] = Line{RRPV: rrpvMax, Dead: deadInit}
	}
}
