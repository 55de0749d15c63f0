package state

import raftErrors "github.com/firefly-raftedge/raftedge/internal/errors"

var errCapacity = raftErrors.TableCapacity("followers")

// FollowerInfo is one row of the admin surface's "list" response: a peer,
// the last time a heartbeat-request was sent to it, and the last measured
// round-trip latency (if any).
type FollowerInfo struct {
	Addr             uint32
	LastHeartbeatSend int64 // ns, 0 if never sent
	LatencyNs        int64 // ns, 0 if no sample yet
	HasLatency       bool
}

// AdminView is the access surface the admin surface (component F) gets:
// add/remove/list on Followers, joined read-only with HeartbeatLatency.
type AdminView interface {
	// ListFollowers returns every tracked follower, joined with its most
	// recent HeartbeatLatency sample.
	ListFollowers() []FollowerInfo
	// AddFollower inserts peer with LastHeartbeatSend=0, per spec.md §4.F.
	// It is idempotent: adding an existing peer is a no-op success.
	AddFollower(peer uint32) error
	// RemoveFollower deletes peer from Followers (and its latency sample).
	RemoveFollower(peer uint32) error
}

func (s *Store) ListFollowers() []FollowerInfo {
	s.followersMu.RLock()
	defer s.followersMu.RUnlock()

	out := make([]FollowerInfo, 0, len(s.followers))
	for peer, ts := range s.followers {
		info := FollowerInfo{Addr: peer, LastHeartbeatSend: ts}
		if lat, ok := s.heartbeatLatency[peer]; ok {
			info.LatencyNs = lat
			info.HasLatency = true
		}
		out = append(out, info)
	}
	return out
}

func (s *Store) AddFollower(peer uint32) error {
	s.followersMu.Lock()
	defer s.followersMu.Unlock()
	if len(s.followers) >= followersCapacity {
		if _, exists := s.followers[peer]; !exists {
			return errCapacity
		}
	}
	if _, exists := s.followers[peer]; !exists {
		s.followers[peer] = 0
	}
	return nil
}

func (s *Store) RemoveFollower(peer uint32) error {
	s.followersMu.Lock()
	defer s.followersMu.Unlock()
	delete(s.followers, peer)
	delete(s.heartbeatLatency, peer)
	return nil
}

var _ AdminView = (*Store)(nil)
