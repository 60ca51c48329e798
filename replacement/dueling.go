package replacement

// Policy identifies one of the two dueling baseline insertion policies.
type Policy uint8

const (
	// PolicySRRIP inserts at RRPV_MAX-1, giving every fill one aging pass
	// of protection.
	PolicySRRIP Policy = iota
	// PolicyBRRIP inserts at RRPV_MAX on most fills and at RRPV_MAX-1
	// with a small probability, protecting only a trickle of lines.
	PolicyBRRIP
)

func (p Policy) String() string {
	if p == PolicySRRIP {
		return "SRRIP"
	}
	return "BRRIP"
}

// leaderRole marks the dueling role of a set.
type leaderRole uint8

const (
	roleFollower leaderRole = iota
	roleSRRIPLeader
	roleBRRIPLeader
)

// duelState arbitrates between the two baseline policies. A fixed,
// interleaved sample of leader sets is pinned to each policy at init;
// every other set follows the policy currently winning the duel, as
// recorded by the saturating PSEL counter.
//
// PSEL is miss-driven: a miss in an SRRIP leader moves it toward BRRIP,
// a miss in a BRRIP leader moves it toward SRRIP. High PSEL favors SRRIP.
type duelState struct {
	psel     uint32
	pselMax  uint32
	midpoint uint32
	roles    []leaderRole
}

func newDuelState(numSets, leadersPerPolicy int, pselMax uint32) *duelState {
	d := &duelState{
		pselMax:  pselMax,
		midpoint: (pselMax + 1) / 2,
		roles:    make([]leaderRole, numSets),
	}
	d.assignLeaders(leadersPerPolicy)
	d.psel = d.midpoint
	return d
}

// assignLeaders pins leader sets at a fixed stride across the index
// space, alternating policies so both samples see the same index
// distribution. A set is never assigned to both policies.
func (d *duelState) assignLeaders(leadersPerPolicy int) {
	numSets := len(d.roles)
	stride := numSets / (2 * leadersPerPolicy)
	if stride == 0 {
		stride = 1
	}

	assigned := 0
	for i := 0; i < numSets && assigned < 2*leadersPerPolicy; i += stride {
		if assigned%2 == 0 {
			d.roles[i] = roleSRRIPLeader
		} else {
			d.roles[i] = roleBRRIPLeader
		}
		assigned++
	}
}

func (d *duelState) reset() {
	d.psel = d.midpoint
}

// policyFor returns the insertion policy governing the set. Leaders are
// pinned; followers consult PSEL.
func (d *duelState) policyFor(set uint32) Policy {
	switch d.roles[set] {
	case roleSRRIPLeader:
		return PolicySRRIP
	case roleBRRIPLeader:
		return PolicyBRRIP
	default:
		if d.psel >= d.midpoint {
			return PolicySRRIP
		}
		return PolicyBRRIP
	}
}

// onMiss nudges PSEL for leader-set misses. Follower sets never move the
// counter, keeping the duel an unbiased sample.
func (d *duelState) onMiss(set uint32) {
	switch d.roles[set] {
	case roleSRRIPLeader:
		if d.psel > 0 {
			d.psel--
		}
	case roleBRRIPLeader:
		if d.psel < d.pselMax {
			d.psel++
		}
	}
}
