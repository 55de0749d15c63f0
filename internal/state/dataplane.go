package state

// DataPlaneView is the access surface the packet classifier (component B)
// gets: read of CurrentNode.State/Term, write of LeaderNode, read/write of
// VoteTerms, write of VoteResults and HeartbeatLatency, and read-only
// Followers (to validate heartbeat-response origin per spec.md §4.B.5).
// Its only CurrentNode mutation is ApplyHeartbeat, documented below.
type DataPlaneView interface {
	// CurrentNodeState returns CurrentNode's role and term, read-only.
	CurrentNodeState() (RoleState, uint64)

	// SetLeaderNode replaces the LeaderNode singleton wholesale.
	SetLeaderNode(LeaderNode)

	// HasVoted reports whether this node already cast a vote for term.
	HasVoted(term uint64) bool
	// RecordVote inserts term into VoteTerms unconditionally (spec.md
	// §4.B.1 step 5). Returns an error if the table is at capacity and the
	// host table cannot make room (spec.md §7: "Capacity failure on insert
	// is fatal for that handler; packet is dropped").
	RecordVote(term uint64) error

	// SetVoteResult overwrites VoteResults[peer] with 0 (NO) or 1 (YES).
	SetVoteResult(peer uint32, yes bool)

	// FollowerSendTime returns the last recorded heartbeat-request send
	// time for peer, and whether an entry exists.
	FollowerSendTime(peer uint32) (int64, bool)

	// RecordHeartbeatLatency overwrites HeartbeatLatency[peer].
	RecordHeartbeatLatency(peer uint32, latencyNs int64)

	// ApplyHeartbeat performs the CurrentNode mutation spec.md §4.B.4 steps
	// 3-4 demand on receipt of any valid heartbeat-request: if not already
	// Follower, transition to Follower and clear Vote; then set term to
	// incoming_term unconditionally. This is the one documented exception
	// to "only C mutates CurrentNode" (spec.md §9) — the testable property
	// "N is in Follower state immediately afterward" requires the
	// transition to be visible before the packet handler returns, which
	// rules out deferring it to the FSM's next tick.
	ApplyHeartbeat(term uint64)
}

func (s *Store) CurrentNodeState() (RoleState, uint64) {
	s.currentMu.RLock()
	defer s.currentMu.RUnlock()
	return s.node.State, s.node.Term
}

func (s *Store) SetLeaderNode(l LeaderNode) {
	s.electionMu.Lock()
	defer s.electionMu.Unlock()
	s.leader = l
}

func (s *Store) HasVoted(term uint64) bool {
	s.electionMu.RLock()
	defer s.electionMu.RUnlock()
	return s.voteTerms[term]
}

func (s *Store) RecordVote(term uint64) error {
	s.electionMu.Lock()
	defer s.electionMu.Unlock()
	if s.voteTerms[term] {
		return nil
	}
	if len(s.voteTerms) >= voteTermCapacity {
		// Evict the oldest recorded term to make room, per spec.md §3
		// ("oldest entries may be evicted by the host table under
		// capacity pressure") rather than failing the insert outright —
		// this mirrors an LRU-ish kernel hash map more closely than a
		// hard capacity error would for a table that is never read back
		// for anything but membership ("did we vote for this term?").
		oldest := s.voteTermsOrder[0]
		s.voteTermsOrder = s.voteTermsOrder[1:]
		delete(s.voteTerms, oldest)
	}
	s.voteTerms[term] = true
	s.voteTermsOrder = append(s.voteTermsOrder, term)
	return nil
}

func (s *Store) SetVoteResult(peer uint32, yes bool) {
	s.electionMu.Lock()
	defer s.electionMu.Unlock()
	if yes {
		s.voteResults[peer] = 1
	} else {
		s.voteResults[peer] = 0
	}
}

func (s *Store) FollowerSendTime(peer uint32) (int64, bool) {
	s.followersMu.RLock()
	defer s.followersMu.RUnlock()
	ts, ok := s.followers[peer]
	return ts, ok
}

func (s *Store) RecordHeartbeatLatency(peer uint32, latencyNs int64) {
	s.followersMu.Lock()
	defer s.followersMu.Unlock()
	s.heartbeatLatency[peer] = latencyNs
}

func (s *Store) ApplyHeartbeat(term uint64) {
	s.currentMu.Lock()
	defer s.currentMu.Unlock()
	if s.node.State != Follower {
		s.node.State = Follower
		s.node.Vote = Vote{}
	}
	s.node.Term = term
}

var _ DataPlaneView = (*Store)(nil)
