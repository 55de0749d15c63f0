// Package state implements the shared-state tables of spec.md §3/§4.A:
// CurrentNode, Vote (embedded), LeaderNode, VoteTerms, VoteResults,
// Followers, and HeartbeatLatency. In the reference design these tables
// are kernel-resident eBPF maps shared by both planes; here they are one
// mutex-guarded Store, with the spec's ownership partition (§5/§9) enforced
// by handing each plane a narrow interface instead of the concrete type:
// the control plane gets ControlPlaneView, the data plane gets
// DataPlaneView, and the admin surface gets AdminView. Each interface
// writes only the tables its plane owns, except for the few cross-plane
// writes named on the methods that perform them (ApplyHeartbeat,
// ResetVoteResults, RecordFollowerSend, SetLeaderLastSeen).
package state

import "sync"

// RoleState is CurrentNode.State's role enum.
type RoleState int

const (
	Follower RoleState = iota
	Candidate
	Leader
)

func (s RoleState) String() string {
	switch s {
	case Follower:
		return "Follower"
	case Candidate:
		return "Candidate"
	case Leader:
		return "Leader"
	default:
		return "Unknown"
	}
}

// Vote is CurrentNode's embedded election-in-progress bookkeeping.
type Vote struct {
	InProgress      bool
	StartedTs       int64 // monotonic nanoseconds
	EndedTs         int64 // monotonic nanoseconds
	ElectionTimeout int64 // nanoseconds
}

// CurrentNode is the singleton describing this node's own role and term.
type CurrentNode struct {
	State RoleState
	Term  uint64
	Peers [2]uint32 // host-order IPv4, 0 = empty slot
	Vote  Vote
}

// LeaderNode is the singleton describing the last-observed leader.
type LeaderNode struct {
	LastSeen      int64 // monotonic nanoseconds
	SourceAddrRaw uint32
	TermID        uint64
}

// voteTermCapacity bounds VoteTerms per spec.md §3 ("bounded capacity (e.g.
// 8192); oldest entries may be evicted by the host table under capacity
// pressure").
const voteTermCapacity = 8192

// Capacities for the remaining hash-mapped tables. Only followersCapacity
// is enforced, by AddFollower; RecordFollowerSend, RecordHeartbeatLatency
// and SetVoteResult do not check a bound. The two-peer cluster this
// demonstrator targets never approaches any of them.
const (
	followersCapacity        = 256
	heartbeatLatencyCapacity = 256
	voteResultsCapacity      = 256
)

// Store holds all six shared-state tables behind one mutex per table group.
// The grouping mirrors spec.md §9's ownership rule: currentMu guards
// CurrentNode (written by the control plane, plus the data plane's
// ApplyHeartbeat); electionMu guards LeaderNode, VoteTerms, and VoteResults
// (written by the data plane, plus the control plane's ResetVoteResults and
// SetLeaderLastSeen); followersMu guards Followers and HeartbeatLatency
// (admin adds/removes Followers, the control plane stamps send times, the
// data plane writes HeartbeatLatency and reads Followers).
type Store struct {
	currentMu sync.RWMutex
	node      CurrentNode

	electionMu     sync.RWMutex
	leader         LeaderNode
	voteTerms      map[uint64]bool
	voteTermsOrder []uint64 // FIFO eviction order
	voteResults    map[uint32]byte // 0 = NO, 1 = YES

	followersMu      sync.RWMutex
	followers        map[uint32]int64 // peer -> last heartbeat-request send time (ns)
	heartbeatLatency map[uint32]int64 // peer -> last RTT sample (ns)
}

// NewStore returns an initialized Store with CurrentNode in the bootstrap
// state prescribed by spec.md §3 (state=Follower, term=0, vote=zeroed) and
// LeaderNode.LastSeen set to now.
func NewStore(now int64, peers [2]uint32) *Store {
	return &Store{
		node: CurrentNode{
			State: Follower,
			Term:  0,
			Peers: peers,
		},
		leader:           LeaderNode{LastSeen: now},
		voteTerms:        make(map[uint64]bool),
		voteResults:      make(map[uint32]byte),
		followers:        make(map[uint32]int64),
		heartbeatLatency: make(map[uint32]int64),
	}
}
