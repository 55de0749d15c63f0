package dataplane

import (
	"net"
	"unsafe"

	"golang.org/x/net/bpf"
	"golang.org/x/sys/unix"

	"github.com/firefly-raftedge/raftedge/internal/wire"
)

// netInterfaceByName resolves an interface name to its kernel index, the
// value SockaddrLinklayer and the BPF attach path both need.
func netInterfaceByName(name string) (int, error) {
	ifi, err := net.InterfaceByName(name)
	if err != nil {
		return 0, err
	}
	return ifi.Index, nil
}

// sockFilterPointer reinterprets a compiled classic-BPF program as the
// *unix.SockFilter the SO_ATTACH_FILTER setsockopt expects. bpf.RawInstruction
// and unix.SockFilter share an identical four-field, 8-byte layout
// (Op/Code uint16, Jt/Jf uint8, K uint32), so this is a legitimate reinterpret
// rather than a format conversion.
func sockFilterPointer(filter []bpf.RawInstruction) *unix.SockFilter {
	return (*unix.SockFilter)(unsafe.Pointer(&filter[0]))
}

// DefaultFilter compiles a classic-BPF program that accepts only IPv4/UDP
// frames destined for one of the five well-known Raft RPC ports, so the
// kernel can discard everything else before Listener.Run ever sees it. This
// is an additive pre-filter; Handle's own parse/dispatch logic is unchanged
// and remains correct even if the filter is omitted (Attach accepts a nil
// slice to skip installation).
func DefaultFilter() ([]bpf.RawInstruction, error) {
	// Ports checked in instructions 5-9 each jump straight to the ACCEPT
	// instruction (index 11) on a match; instructions 1 and 3 jump straight
	// to REJECT (index 10) on a mismatch. Falling off the end of the port
	// checks (none matched) reaches REJECT too.
	raw, err := bpf.Assemble([]bpf.Instruction{
		// 0-1: reject anything that isn't IPv4.
		bpf.LoadAbsolute{Off: ethTypeOffset, Size: 2},
		bpf.JumpIf{Cond: bpf.JumpNotEqual, Val: etherTypeIPv4, SkipTrue: 8},

		// 2-3: reject anything that isn't UDP.
		bpf.LoadAbsolute{Off: ethHeaderLen + 9, Size: 1},
		bpf.JumpIf{Cond: bpf.JumpNotEqual, Val: ipProtoUDP, SkipTrue: 6},

		// 4: load UDP destination port (fixed 20-byte IPv4 header assumed;
		// options-bearing packets simply fail this fast-path filter and are
		// never even attempted here — Handle's own full parser handles
		// those correctly whenever the filter is skipped entirely).
		bpf.LoadAbsolute{Off: ethHeaderLen + ipv4MinHeaderLen + 2, Size: 2},

		// 5-9: accept on any of the five well-known RPC ports.
		bpf.JumpIf{Cond: bpf.JumpEqual, Val: uint32(wire.VoteRequestPort), SkipTrue: 5},
		bpf.JumpIf{Cond: bpf.JumpEqual, Val: uint32(wire.VoteResponseNoPort), SkipTrue: 4},
		bpf.JumpIf{Cond: bpf.JumpEqual, Val: uint32(wire.VoteResponseYesPort), SkipTrue: 3},
		bpf.JumpIf{Cond: bpf.JumpEqual, Val: uint32(wire.HeartbeatRequestPort), SkipTrue: 2},
		bpf.JumpIf{Cond: bpf.JumpEqual, Val: uint32(wire.HeartbeatResponsePort), SkipTrue: 1},

		// 10: REJECT.
		bpf.RetConstant{Val: 0},
		// 11: ACCEPT, whole frame.
		bpf.RetConstant{Val: maxFrameLen},
	})
	if err != nil {
		return nil, err
	}
	return raw, nil
}
