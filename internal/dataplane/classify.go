package dataplane

import (
	raftErrors "github.com/firefly-raftedge/raftedge/internal/errors"
	"github.com/firefly-raftedge/raftedge/internal/state"
	"github.com/firefly-raftedge/raftedge/internal/wire"
)

// Verdict is the classifier's pass/drop/abort/reflect decision for one
// frame, the Go analogue of an XDP return code.
type Verdict int

const (
	// VerdictPass forwards the frame unmodified (not our concern).
	VerdictPass Verdict = iota
	// VerdictDrop discards the frame silently.
	VerdictDrop
	// VerdictAbort signals a malformed frame (non-IPv4-non-TCP-non-UDP
	// payload); the analogue of XDP_ABORTED.
	VerdictAbort
	// VerdictReflect means the frame was rewritten in place into its
	// response and should be transmitted back out the same interface.
	VerdictReflect
)

func (v Verdict) String() string {
	switch v {
	case VerdictPass:
		return "pass"
	case VerdictDrop:
		return "drop"
	case VerdictAbort:
		return "abort"
	case VerdictReflect:
		return "reflect"
	default:
		return "unknown"
	}
}

// Handle classifies and, where applicable, in-place rewrites buf — one
// raw Ethernet frame read off the attached interface — per spec.md §4.B.
// now is the monotonic-nanosecond reading to stamp into LeaderNode /
// HeartbeatLatency on the events that touch them.
func Handle(view state.DataPlaneView, buf []byte, now int64) Verdict {
	f, err := parseFrame(buf)
	if err != nil {
		switch raftErrors.GetCode(err) {
		case raftErrors.ErrCodeNotIPv4:
			return VerdictPass
		case raftErrors.ErrCodeNotUDPOrTCP:
			return VerdictAbort
		default:
			// Truncated header of a frame we otherwise can't classify:
			// no event to match, so it passes through untouched.
			return VerdictPass
		}
	}
	if f.isTCP() {
		// "Only UDP is meaningful; unrecognized combinations are passed
		// through unchanged" — TCP never carries a Raft RPC in this design.
		return VerdictPass
	}

	switch f.udpDstPort() {
	case wire.VoteRequestPort:
		return handleVoteRequest(view, f)
	case wire.VoteResponseYesPort:
		return handleVoteResponse(view, f, true)
	case wire.VoteResponseNoPort:
		return handleVoteResponse(view, f, false)
	case wire.HeartbeatRequestPort:
		return handleHeartbeatRequest(view, f, now)
	case wire.HeartbeatResponsePort:
		return handleHeartbeatResponse(view, f, now)
	default:
		return VerdictPass
	}
}

// handleVoteRequest implements spec.md §4.B.1.
func handleVoteRequest(view state.DataPlaneView, f *frame) Verdict {
	role, currentTerm := view.CurrentNodeState()
	if role == state.Leader {
		return VerdictDrop
	}

	term, ok := wire.DecodeTerm(f.udpPayload())
	if !ok {
		return VerdictDrop
	}

	if view.HasVoted(term) {
		return VerdictDrop
	}

	grantYes := term > currentTerm

	// Insert unconditionally — whether YES or NO — to prevent a second
	// vote for this term later in the process lifetime (spec.md §4.B.1
	// step 5). A capacity failure here is fatal for the packet (dropped),
	// per spec.md §7; RecordVote's eviction policy means this essentially
	// never happens, but the contract is honored regardless.
	if err := view.RecordVote(term); err != nil {
		return VerdictDrop
	}

	if grantYes {
		f.reflect(wire.VoteResponseYesPort)
	} else {
		f.reflect(wire.VoteResponseNoPort)
	}
	return VerdictReflect
}

// handleVoteResponse implements spec.md §4.B.2 / §4.B.3.
func handleVoteResponse(view state.DataPlaneView, f *frame, yes bool) Verdict {
	role, _ := view.CurrentNodeState()
	if role != state.Candidate {
		return VerdictDrop
	}
	view.SetVoteResult(f.srcIPv4(), yes)
	return VerdictDrop
}

// handleHeartbeatRequest implements spec.md §4.B.4.
func handleHeartbeatRequest(view state.DataPlaneView, f *frame, now int64) Verdict {
	payload := f.udpPayload()
	if len(payload) != wire.TermSize {
		// "If payload is not exactly 8 bytes, pass" — distinct from the
		// vote-request path, which drops malformed term payloads.
		return VerdictPass
	}
	term, ok := wire.DecodeTerm(payload)
	if !ok {
		return VerdictPass
	}

	// Transition to Follower and set term unconditionally (spec.md §4.B.4
	// steps 3-4); see ApplyHeartbeat's doc comment for why this single
	// CurrentNode mutation belongs to the data plane.
	view.ApplyHeartbeat(term)

	view.SetLeaderNode(state.LeaderNode{
		LastSeen:      now,
		SourceAddrRaw: f.srcIPv4(),
		TermID:        term,
	})

	f.reflect(wire.HeartbeatResponsePort)
	return VerdictReflect
}

// handleHeartbeatResponse implements spec.md §4.B.5.
func handleHeartbeatResponse(view state.DataPlaneView, f *frame, now int64) Verdict {
	peer := f.srcIPv4()
	sentAt, ok := view.FollowerSendTime(peer)
	if !ok {
		return VerdictDrop
	}
	view.RecordHeartbeatLatency(peer, now-sentAt)
	return VerdictDrop
}
