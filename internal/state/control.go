package state

// ControlPlaneView is the access surface the role FSM (component C) gets:
// full read/write of CurrentNode and its embedded Vote, plus read access
// to LeaderNode and VoteResults and the few writes to other planes' tables
// documented on ResetVoteResults, RecordFollowerSend and SetLeaderLastSeen.
// Per spec.md §9, the control plane is CurrentNode's owner.
type ControlPlaneView interface {
	// CurrentNode returns a copy of the CurrentNode singleton.
	CurrentNode() CurrentNode
	// SetCurrentNode replaces the CurrentNode singleton wholesale (§4.A:
	// "Writers must treat the whole entity value as replaced").
	SetCurrentNode(CurrentNode)

	// LeaderNode returns a copy of the LeaderNode singleton (read-only).
	LeaderNode() LeaderNode

	// VoteResultsSnapshot returns a copy of the current VoteResults map
	// (read-only; the data plane is the sole writer).
	VoteResultsSnapshot() map[uint32]byte
	// ResetVoteResults clears every VoteResults entry. Per spec.md §9's
	// resolved "reset" bug, this clears the whole table, not just one key.
	// Although conceptually a data-plane-owned table, VoteResults is reset
	// by the control plane at the end of every election per spec.md §4.C;
	// this is one of the documented exceptions to the ownership partition.
	ResetVoteResults()

	// Peers returns the fixed two-slot peer array.
	Peers() [2]uint32

	// RecordFollowerSend stamps Followers[peer] with now, the time a
	// heartbeat-request was just emitted to it. Per spec.md §4.C step 1,
	// this is the one Followers write the control plane performs
	// (everything else in Followers is admin-owned, per spec.md §4.A).
	RecordFollowerSend(peer uint32, now int64)

	// SetLeaderLastSeen stamps LeaderNode.LastSeen with now. Per spec.md
	// §4.C step 3 of the leader branch ("set LeaderNode.last_seen = now_ns
	// (to avoid this ex-leader being first to time out)"), this is the one
	// LeaderNode write the control plane performs, on crash-simulation
	// step-down only; every other LeaderNode write belongs to the data
	// plane's heartbeat-request handling.
	SetLeaderLastSeen(now int64)
}

func (s *Store) CurrentNode() CurrentNode {
	s.currentMu.RLock()
	defer s.currentMu.RUnlock()
	return s.node
}

func (s *Store) SetCurrentNode(n CurrentNode) {
	s.currentMu.Lock()
	defer s.currentMu.Unlock()
	s.node = n
}

func (s *Store) Peers() [2]uint32 {
	s.currentMu.RLock()
	defer s.currentMu.RUnlock()
	return s.node.Peers
}

func (s *Store) LeaderNode() LeaderNode {
	s.electionMu.RLock()
	defer s.electionMu.RUnlock()
	return s.leader
}

func (s *Store) VoteResultsSnapshot() map[uint32]byte {
	s.electionMu.RLock()
	defer s.electionMu.RUnlock()
	out := make(map[uint32]byte, len(s.voteResults))
	for k, v := range s.voteResults {
		out[k] = v
	}
	return out
}

func (s *Store) ResetVoteResults() {
	s.electionMu.Lock()
	defer s.electionMu.Unlock()
	for k := range s.voteResults {
		delete(s.voteResults, k)
	}
}

func (s *Store) RecordFollowerSend(peer uint32, now int64) {
	s.followersMu.Lock()
	defer s.followersMu.Unlock()
	s.followers[peer] = now
}

func (s *Store) SetLeaderLastSeen(now int64) {
	s.electionMu.Lock()
	defer s.electionMu.Unlock()
	s.leader.LastSeen = now
}

var _ ControlPlaneView = (*Store)(nil)
