package controlplane

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/firefly-raftedge/raftedge/internal/audit"
	"github.com/firefly-raftedge/raftedge/internal/clock"
	"github.com/firefly-raftedge/raftedge/internal/config"
	"github.com/firefly-raftedge/raftedge/internal/rpc"
	"github.com/firefly-raftedge/raftedge/internal/state"
	"github.com/firefly-raftedge/raftedge/internal/wire"
)

func newTestFSM(t *testing.T, clk clock.Clock, peers [2]uint32) (*FSM, *state.Store) {
	t.Helper()
	store := state.NewStore(clk.NowNano(), peers)
	emitter, err := rpc.NewEmitter()
	require.NoError(t, err)
	t.Cleanup(func() { emitter.Close() })

	cfg := config.DefaultConfig()
	cfg.ElectionTimeout = 50 * time.Millisecond
	cfg.ElectionJitterMin = 0
	cfg.ElectionJitterMax = time.Millisecond
	cfg.LeaderTimeout = 50 * time.Millisecond
	cfg.LeaderJitterMin = 0
	cfg.LeaderJitterMax = time.Millisecond
	cfg.LeaderHeartbeatFrequency = 10 * time.Millisecond
	cfg.LeaderHeartbeatCyclesBeforeCrash = 3
	cfg.Quorum = 2

	return New(store, emitter, clk, cfg, audit.NewLog(0)), store
}

func TestTickFollowerBecomesCandidateAfterTimeout(t *testing.T) {
	clk := clock.NewFakeClock(0)
	f, store := newTestFSM(t, clk, [2]uint32{})

	delay := f.tickFollower()
	require.Greater(t, delay, time.Duration(0), "expected positive delay before timeout")
	require.Equal(t, state.Follower, store.CurrentNode().State, "expected to remain Follower before timeout")

	clk.Advance(time.Second)
	f.tickFollower()
	require.Equal(t, state.Candidate, store.CurrentNode().State, "expected transition to Candidate after timeout")

	events := f.auditLog.Recent(0)
	require.Len(t, events, 1)
	require.Equal(t, audit.EventRoleTransition, events[0].Type)
	require.Equal(t, "Follower -> Candidate", events[0].Detail)
}

func TestTickCandidateStartsElectionAndEmitsVoteRequests(t *testing.T) {
	clk := clock.NewFakeClock(1000)
	peerConnA, err := net.ListenUDP("udp4", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: int(wire.VoteRequestPort)})
	require.NoError(t, err)
	defer peerConnA.Close()
	peerA, err := wire.IPv4ToUint32("127.0.0.1")
	require.NoError(t, err)

	f, store := newTestFSM(t, clk, [2]uint32{peerA, 0})
	node := store.CurrentNode()
	node.State = state.Candidate
	store.SetCurrentNode(node)

	delay, err := f.tickCandidate(context.Background())
	require.NoError(t, err)
	require.Equal(t, candidatePollInterval, delay, "expected poll-interval delay")

	node = store.CurrentNode()
	require.Equal(t, uint64(1), node.Term, "expected term incremented to 1")
	require.True(t, node.Vote.InProgress, "expected vote in progress")
	require.False(t, node.Vote.StartedTs == 0 || node.Vote.ElectionTimeout == 0, "expected non-zero vote timing fields while in progress")

	peerConnA.SetReadDeadline(time.Now().Add(2 * time.Second))
	buf := make([]byte, 64)
	n, _, err := peerConnA.ReadFromUDP(buf)
	require.NoError(t, err)
	require.Equal(t, int(wire.VoteRequestPort), peerConnA.LocalAddr().(*net.UDPAddr).Port, "expected vote request port")

	term, ok := wire.DecodeTerm(buf[:n])
	require.True(t, ok)
	require.Equal(t, uint64(1), term)

	events := f.auditLog.Recent(0)
	require.Len(t, events, 1)
	require.Equal(t, audit.EventElectionStarted, events[0].Type)
	require.Equal(t, "term 1", events[0].Detail)
}

func TestTickCandidateBecomesLeaderOnQuorum(t *testing.T) {
	clk := clock.NewFakeClock(0)
	f, store := newTestFSM(t, clk, [2]uint32{})

	node := store.CurrentNode()
	node.State = state.Candidate
	node.Term = 4
	node.Vote = state.Vote{InProgress: true, StartedTs: 0, ElectionTimeout: int64(time.Second)}
	store.SetCurrentNode(node)
	store.SetVoteResult(99, true)

	delay, err := f.tickCandidate(context.Background())
	require.NoError(t, err)
	require.Equal(t, time.Duration(0), delay, "expected immediate next tick on quorum")

	node = store.CurrentNode()
	require.Equal(t, state.Leader, node.State)
	require.False(t, node.Vote.InProgress, "expected vote cleared after winning")
	require.Empty(t, store.VoteResultsSnapshot(), "expected VoteResults cleared after winning")

	events := f.auditLog.Recent(0)
	require.Len(t, events, 1)
	require.Equal(t, audit.EventRoleTransition, events[0].Type)
	require.Equal(t, "Candidate -> Leader", events[0].Detail)
}

func TestTickCandidateAbortsElectionOnTimeout(t *testing.T) {
	clk := clock.NewFakeClock(0)
	f, store := newTestFSM(t, clk, [2]uint32{})

	node := store.CurrentNode()
	node.State = state.Candidate
	node.Term = 2
	node.Vote = state.Vote{InProgress: true, StartedTs: 0, ElectionTimeout: int64(time.Millisecond)}
	store.SetCurrentNode(node)
	store.SetVoteResult(99, false)

	clk.Advance(time.Second)
	delay, err := f.tickCandidate(context.Background())
	require.NoError(t, err)
	require.Equal(t, time.Duration(0), delay, "expected immediate retry after abort")

	node = store.CurrentNode()
	require.Equal(t, state.Candidate, node.State, "expected to remain Candidate after aborted election")
	require.False(t, node.Vote.InProgress, "expected vote cleared after abort")
	require.Empty(t, store.VoteResultsSnapshot(), "expected VoteResults cleared after abort")
}

func TestTickLeaderEmitsHeartbeatsAndRecordsFollowerSend(t *testing.T) {
	clk := clock.NewFakeClock(1000)
	peerConn, err := net.ListenUDP("udp4", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: int(wire.HeartbeatRequestPort)})
	require.NoError(t, err)
	defer peerConn.Close()
	peerAddr, err := wire.IPv4ToUint32("127.0.0.1")
	require.NoError(t, err)

	f, store := newTestFSM(t, clk, [2]uint32{peerAddr, 0})
	node := store.CurrentNode()
	node.State = state.Leader
	node.Term = 6
	store.SetCurrentNode(node)

	delay, err := f.tickLeader(context.Background())
	require.NoError(t, err)
	require.Equal(t, f.cfg.LeaderHeartbeatFrequency, delay, "expected heartbeat-frequency delay")

	followers := store.ListFollowers()
	require.Len(t, followers, 1)
	require.Equal(t, peerAddr, followers[0].Addr)
	require.Equal(t, int64(1000), followers[0].LastHeartbeatSend)

	peerConn.SetReadDeadline(time.Now().Add(2 * time.Second))
	buf := make([]byte, 64)
	n, _, err := peerConn.ReadFromUDP(buf)
	require.NoError(t, err)
	require.Equal(t, int(wire.HeartbeatRequestPort), peerConn.LocalAddr().(*net.UDPAddr).Port, "expected heartbeat request port")

	term, ok := wire.DecodeTerm(buf[:n])
	require.True(t, ok)
	require.Equal(t, uint64(6), term)
}

func TestTickLeaderSimulatesCrashAfterCyclesExceeded(t *testing.T) {
	clk := clock.NewFakeClock(500)
	f, store := newTestFSM(t, clk, [2]uint32{})
	f.cfg.LeaderTimeout = time.Millisecond // keep the crash-sleep short for the test

	node := store.CurrentNode()
	node.State = state.Leader
	store.SetCurrentNode(node)
	f.cycleCount = f.cfg.LeaderHeartbeatCyclesBeforeCrash

	delay, err := f.tickLeader(context.Background())
	require.NoError(t, err)
	require.Equal(t, time.Duration(0), delay, "expected immediate next tick after crash simulation")
	require.Equal(t, uint64(0), f.cycleCount, "expected cycle counter reset")
	require.Equal(t, state.Follower, store.CurrentNode().State, "expected to step down to Follower after simulated crash")

	events := f.auditLog.Recent(0)
	require.Len(t, events, 1)
	require.Equal(t, audit.EventRoleTransition, events[0].Type)
	require.Equal(t, "Leader -> Follower", events[0].Detail)
}

func TestRunReturnsErrTerminatedAtTerminationTerm(t *testing.T) {
	clk := clock.NewFakeClock(0)
	f, store := newTestFSM(t, clk, [2]uint32{})
	f.cfg.TerminationTerm = 3

	node := store.CurrentNode()
	node.Term = 3
	store.SetCurrentNode(node)

	require.ErrorIs(t, f.Run(context.Background()), ErrTerminated)
}
