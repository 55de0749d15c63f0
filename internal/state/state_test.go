package state

import "testing"

func TestNewStoreBootstrapDefaults(t *testing.T) {
	s := NewStore(1000, [2]uint32{10, 20})
	n := s.CurrentNode()
	if n.State != Follower {
		t.Errorf("expected bootstrap state Follower, got %s", n.State)
	}
	if n.Term != 0 {
		t.Errorf("expected bootstrap term 0, got %d", n.Term)
	}
	if n.Vote.InProgress {
		t.Error("expected bootstrap vote not in progress")
	}
	if s.LeaderNode().LastSeen != 1000 {
		t.Errorf("expected LeaderNode.LastSeen = 1000, got %d", s.LeaderNode().LastSeen)
	}
	if s.Peers() != [2]uint32{10, 20} {
		t.Errorf("unexpected peers: %v", s.Peers())
	}
}

func TestRecordVotePreventsDoubleInsertNoError(t *testing.T) {
	s := NewStore(0, [2]uint32{})
	if s.HasVoted(5) {
		t.Fatal("should not have voted for term 5 yet")
	}
	if err := s.RecordVote(5); err != nil {
		t.Fatalf("RecordVote: %v", err)
	}
	if !s.HasVoted(5) {
		t.Fatal("expected term 5 to be recorded")
	}
	// Recording again is idempotent, not an error.
	if err := s.RecordVote(5); err != nil {
		t.Fatalf("RecordVote (again): %v", err)
	}
}

func TestVoteTermsEviction(t *testing.T) {
	s := NewStore(0, [2]uint32{})
	for term := uint64(0); term < voteTermCapacity+10; term++ {
		if err := s.RecordVote(term); err != nil {
			t.Fatalf("RecordVote(%d): %v", term, err)
		}
	}
	if s.HasVoted(0) {
		t.Error("expected term 0 to have been evicted")
	}
	if !s.HasVoted(voteTermCapacity + 9) {
		t.Error("expected the most recent term to still be recorded")
	}
}

func TestVoteResultsSetAndReset(t *testing.T) {
	s := NewStore(0, [2]uint32{})
	s.SetVoteResult(1, true)
	s.SetVoteResult(2, false)

	snap := s.VoteResultsSnapshot()
	if snap[1] != 1 || snap[2] != 0 {
		t.Fatalf("unexpected snapshot: %v", snap)
	}

	s.ResetVoteResults()
	snap = s.VoteResultsSnapshot()
	if len(snap) != 0 {
		t.Fatalf("expected empty snapshot after reset, got %v", snap)
	}
}

func TestFollowersAddListRemove(t *testing.T) {
	s := NewStore(0, [2]uint32{})
	if err := s.AddFollower(7); err != nil {
		t.Fatalf("AddFollower: %v", err)
	}
	// idempotent
	if err := s.AddFollower(7); err != nil {
		t.Fatalf("AddFollower (again): %v", err)
	}

	s.RecordFollowerSend(7, 500)
	s.RecordHeartbeatLatency(7, 42)

	list := s.ListFollowers()
	if len(list) != 1 {
		t.Fatalf("expected 1 follower, got %d", len(list))
	}
	if list[0].Addr != 7 || list[0].LastHeartbeatSend != 500 || !list[0].HasLatency || list[0].LatencyNs != 42 {
		t.Fatalf("unexpected follower info: %+v", list[0])
	}

	if err := s.RemoveFollower(7); err != nil {
		t.Fatalf("RemoveFollower: %v", err)
	}
	if len(s.ListFollowers()) != 0 {
		t.Fatal("expected no followers after removal")
	}
}

func TestDataPlaneViewHonorsOwnership(t *testing.T) {
	s := NewStore(0, [2]uint32{})
	var dp DataPlaneView = s
	state, term := dp.CurrentNodeState()
	if state != Follower || term != 0 {
		t.Fatalf("unexpected current node state: %s/%d", state, term)
	}
	dp.SetLeaderNode(LeaderNode{LastSeen: 99, SourceAddrRaw: 1, TermID: 3})
	if s.LeaderNode().TermID != 3 {
		t.Fatal("expected LeaderNode to be updated through DataPlaneView")
	}
}
