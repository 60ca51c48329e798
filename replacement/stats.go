package replacement

// Stats holds the engine's access and decision counts.
type Stats struct {
	// Accesses is the total number of Update and RecordBypass calls.
	Accesses uint64
	// Hits is the number of accesses that hit.
	Hits uint64
	// Misses is the number of accesses that missed and filled a line.
	Misses uint64
	// Bypasses is the number of misses the host skipped allocation for.
	Bypasses uint64
	// MRUInserts counts fills protected at RRPV 0.
	MRUInserts uint64
	// MidInserts counts fills at intermediate RRPV depths.
	MidInserts uint64
	// DistantInserts counts fills at RRPV_MAX.
	DistantInserts uint64
	// StreamingFills counts fills forced distant by the streaming
	// detector.
	StreamingFills uint64
	// DeadVictims counts evictions where a confidently dead frame was
	// taken ahead of the RRPV scan.
	DeadVictims uint64
	// AgingPasses counts whole-set RRPV aging rounds during victim
	// selection.
	AgingPasses uint64
	// DecaySweeps counts dead-block decay epochs completed.
	DecaySweeps uint64
}

// HitRate returns the hit fraction of all observed accesses as a
// percentage.
func (s Stats) HitRate() float64 {
	if s.Accesses == 0 {
		return 0
	}
	return float64(s.Hits) / float64(s.Accesses) * 100
}

// DistantFillRate returns the fraction of fills inserted at RRPV_MAX
// (including streaming fills) as a percentage. Together with Bypasses
// this measures how much of the fill stream the engine treated as
// non-reusable.
func (s Stats) DistantFillRate() float64 {
	fills := s.MRUInserts + s.MidInserts + s.DistantInserts
	if fills == 0 {
		return 0
	}
	return float64(s.DistantInserts) / float64(fills) * 100
}
