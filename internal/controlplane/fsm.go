// Package controlplane implements the role finite-state machine of
// spec.md §4.C: the follower/candidate/leader transitions, election
// timing, quorum evaluation, and heartbeat emission that drive
// CurrentNode.
//
// Per the "Busy-wait FSM loops" REDESIGN FLAG in spec.md §9, FSM does not
// poll in a tight loop. Each tick computes the next wake deadline and the
// scheduler sleeps until then (or until a shorter poll interval while an
// election is outstanding, since VoteResults can change asynchronously as
// the data plane classifies incoming vote responses).
package controlplane

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/firefly-raftedge/raftedge/internal/audit"
	"github.com/firefly-raftedge/raftedge/internal/clock"
	"github.com/firefly-raftedge/raftedge/internal/config"
	"github.com/firefly-raftedge/raftedge/internal/logging"
	"github.com/firefly-raftedge/raftedge/internal/rpc"
	"github.com/firefly-raftedge/raftedge/internal/state"
	"github.com/firefly-raftedge/raftedge/internal/wire"
)

// ErrTerminated is returned by Run when CurrentNode.Term reaches the
// configured termination term (spec.md §4.C "Termination": the
// demonstrator exits status 0 at term 100).
var ErrTerminated = errors.New("controlplane: termination term reached")

// candidatePollInterval bounds how long the scheduler can go without
// rechecking VoteResults while an election is outstanding. VoteResults is
// written asynchronously by the data plane as vote responses arrive, so a
// single timer set to the election deadline alone would miss an
// already-reached quorum until the election timed out.
const candidatePollInterval = 20 * time.Millisecond

// FSM drives CurrentNode's role transitions. It owns no table state of its
// own; everything it reads or writes goes through view, the one interface
// through which the control plane may mutate CurrentNode (spec.md §9).
type FSM struct {
	view     state.ControlPlaneView
	emitter  *rpc.Emitter
	clk      clock.Clock
	cfg      *config.Config
	log      *logging.Logger
	auditLog *audit.Log

	cycleCount uint64
}

// New builds an FSM over view, using emitter to send RPCs and clk as the
// monotonic time source. cfg supplies the timing constants of spec.md §6.
// auditLog receives a ROLE_TRANSITION entry on every role change the FSM
// itself makes (Follower -> Candidate, Candidate -> Leader, and the
// simulated-crash Leader -> Follower) and an ELECTION_STARTED entry each
// time a new election begins, alongside the admin surface's
// FOLLOWER_ADDED/FOLLOWER_REMOVED entries (SPEC_FULL.md §3.1). The step
// down to Follower that the data plane applies on a heartbeat-request
// (state.DataPlaneView.ApplyHeartbeat) is not recorded.
func New(view state.ControlPlaneView, emitter *rpc.Emitter, clk clock.Clock, cfg *config.Config, auditLog *audit.Log) *FSM {
	return &FSM{
		view:     view,
		emitter:  emitter,
		clk:      clk,
		cfg:      cfg,
		log:      logging.NewLogger("controlplane"),
		auditLog: auditLog,
	}
}

// Run drives the scheduler until ctx is cancelled or CurrentNode.Term
// reaches cfg.TerminationTerm, in which case it returns ErrTerminated.
func (f *FSM) Run(ctx context.Context) error {
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		if f.view.CurrentNode().Term == f.cfg.TerminationTerm {
			return ErrTerminated
		}

		delay, err := f.tick(ctx)
		if err != nil {
			f.log.Warn("tick failed, will re-evaluate next cycle", "error", err)
		}
		if delay <= 0 {
			continue
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// tick dispatches on the current role and returns how long the scheduler
// should sleep before the next tick.
func (f *FSM) tick(ctx context.Context) (time.Duration, error) {
	switch f.view.CurrentNode().State {
	case state.Follower:
		return f.tickFollower(), nil
	case state.Candidate:
		return f.tickCandidate(ctx)
	case state.Leader:
		return f.tickLeader(ctx)
	default:
		return f.tickFollower(), nil
	}
}

// tickFollower implements spec.md §4.C's follower behavior: transition to
// Candidate once the leader has been silent for longer than
// LEADER_TIMEOUT_MS plus a freshly-drawn jitter window.
func (f *FSM) tickFollower() time.Duration {
	now := f.clk.NowNano()
	leader := f.view.LeaderNode()
	jitter := clock.JitterNanos(f.cfg.LeaderJitterMin, f.cfg.LeaderJitterMax)
	deadline := leader.LastSeen + f.cfg.LeaderTimeout.Nanoseconds() + jitter.Nanoseconds()

	if now > deadline {
		node := f.view.CurrentNode()
		node.State = state.Candidate
		f.view.SetCurrentNode(node)
		f.log.Info("leader timeout elapsed, becoming candidate", "term", node.Term)
		f.auditLog.Record(audit.EventRoleTransition, "Follower -> Candidate", nil)
		return 0
	}
	return time.Duration(deadline - now)
}

// tickCandidate implements spec.md §4.C's candidate behavior: evaluate an
// outstanding election for quorum or timeout, or start a new one.
func (f *FSM) tickCandidate(ctx context.Context) (time.Duration, error) {
	node := f.view.CurrentNode()
	now := f.clk.NowNano()

	if node.Vote.InProgress {
		timedOut := now-node.Vote.StartedTs > node.Vote.ElectionTimeout
		if !timedOut {
			if f.quorumReached(node) {
				node.Vote = state.Vote{}
				node.State = state.Leader
				f.view.SetCurrentNode(node)
				f.view.ResetVoteResults()
				f.cycleCount = 0
				f.log.Info("quorum reached, becoming leader", "term", node.Term)
				f.auditLog.Record(audit.EventRoleTransition, "Candidate -> Leader", nil)
				return 0, nil
			}
			return candidatePollInterval, nil
		}

		// Election timed out without quorum: abort and let the next tick
		// start a fresh one at a higher term.
		node.Vote = state.Vote{}
		f.view.SetCurrentNode(node)
		f.view.ResetVoteResults()
		f.log.Info("election timed out without quorum, retrying", "term", node.Term)
		return 0, nil
	}

	node.Term++
	jitter := clock.JitterNanos(f.cfg.ElectionJitterMin, f.cfg.ElectionJitterMax)
	node.Vote = state.Vote{
		InProgress:      true,
		StartedTs:       now,
		ElectionTimeout: f.cfg.ElectionTimeout.Nanoseconds() + jitter.Nanoseconds(),
	}
	f.view.SetCurrentNode(node)

	if err := f.emitter.Broadcast(ctx, node.Peers, wire.VoteRequestPort, node.Term); err != nil {
		return 0, err
	}
	f.log.Info("started election", "term", node.Term)
	f.auditLog.Record(audit.EventElectionStarted, fmt.Sprintf("term %d", node.Term), nil)
	return candidatePollInterval, nil
}

// quorumReached implements spec.md §4.C's quorum rule: the candidate's own
// vote plus every peer recorded YES in VoteResults.
func (f *FSM) quorumReached(node state.CurrentNode) bool {
	results := f.view.VoteResultsSnapshot()
	positive := 1
	for _, v := range results {
		if v == 1 {
			positive++
		}
	}
	return positive >= f.cfg.Quorum
}

// tickLeader implements spec.md §4.C's leader behavior: emit heartbeats,
// advance the crash-simulation cycle counter, and sleep for the heartbeat
// interval (or simulate a crash and step down).
func (f *FSM) tickLeader(ctx context.Context) (time.Duration, error) {
	node := f.view.CurrentNode()
	now := f.clk.NowNano()

	for _, peer := range node.Peers {
		if peer == 0 {
			continue
		}
		f.view.RecordFollowerSend(peer, now)
	}
	if err := f.emitter.Broadcast(ctx, node.Peers, wire.HeartbeatRequestPort, node.Term); err != nil {
		return 0, err
	}

	f.cycleCount++
	if f.cycleCount > f.cfg.LeaderHeartbeatCyclesBeforeCrash {
		crashSleep := f.cfg.LeaderTimeout + time.Millisecond
		f.log.Warn("simulating leader crash", "term", node.Term, "sleep", crashSleep)
		timer := time.NewTimer(crashSleep)
		select {
		case <-ctx.Done():
			timer.Stop()
			return 0, ctx.Err()
		case <-timer.C:
		}

		f.cycleCount = 0
		f.view.SetLeaderLastSeen(f.clk.NowNano())
		node = f.view.CurrentNode()
		node.State = state.Follower
		f.view.SetCurrentNode(node)
		f.auditLog.Record(audit.EventRoleTransition, "Leader -> Follower", nil)
		return 0, nil
	}

	return f.cfg.LeaderHeartbeatFrequency, nil
}
