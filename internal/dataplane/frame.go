// Package dataplane implements the packet classifier/rewriter of
// spec.md §4.B. In the reference design this runs as a verifier-checked
// XDP/eBPF program; see SPEC_FULL.md §1 for why this Go implementation
// instead hooks a raw AF_PACKET socket, but preserves the same bounded,
// non-blocking, bounds-checked-before-every-field-access parsing
// discipline the verifier would otherwise enforce.
package dataplane

import (
	"encoding/binary"

	raftErrors "github.com/firefly-raftedge/raftedge/internal/errors"
	"github.com/firefly-raftedge/raftedge/internal/wire"
)

const (
	ethHeaderLen     = 14
	ethTypeOffset    = 12
	ipv4MinHeaderLen = 20
	udpHeaderLen     = 8

	etherTypeIPv4 = 0x0800

	ipProtoTCP = 6
	ipProtoUDP = 17
)

// frame is a bounds-checked view over one Ethernet frame buffer, exposing
// just enough of the Ethernet/IPv4/UDP headers to classify and reflect a
// Raft RPC packet. All accessors validate offsets against len(buf) before
// reading, mirroring the verifier's "bounds check before access" rule.
type frame struct {
	buf      []byte
	ipStart  int
	ipHLen   int
	udpStart int
}

// parseFrame validates Ethernet -> IPv4 -> UDP/TCP headers in order,
// per spec.md §4.B's parse contract:
//   - bounds are checked before every field access
//   - a non-IPv4 EtherType yields (nil, errNotIPv4): the caller passes it through
//   - an IPv4 protocol that is neither UDP nor TCP yields (nil, errNotUDPOrTCP):
//     the caller aborts the packet
//   - a too-short frame at any stage yields (nil, errOutOfBounds): treated as
//     pass-through by the caller, since a genuinely truncated frame carries
//     no meaningful classification
func parseFrame(buf []byte) (*frame, error) {
	if len(buf) < ethHeaderLen {
		return nil, raftErrors.OutOfBounds("ethernet header")
	}
	ethType := binary.BigEndian.Uint16(buf[ethTypeOffset:ethHeaderLen])
	if ethType != etherTypeIPv4 {
		return nil, raftErrors.NotIPv4()
	}

	ipStart := ethHeaderLen
	if len(buf) < ipStart+ipv4MinHeaderLen {
		return nil, raftErrors.OutOfBounds("ipv4 header")
	}
	verIHL := buf[ipStart]
	ihl := int(verIHL&0x0F) * 4
	if ihl < ipv4MinHeaderLen {
		ihl = ipv4MinHeaderLen
	}
	if len(buf) < ipStart+ihl {
		return nil, raftErrors.OutOfBounds("ipv4 options")
	}

	proto := buf[ipStart+9]
	if proto != ipProtoUDP && proto != ipProtoTCP {
		return nil, raftErrors.NotUDPOrTCP(proto)
	}

	udpStart := ipStart + ihl
	if proto == ipProtoUDP && len(buf) < udpStart+udpHeaderLen {
		return nil, raftErrors.OutOfBounds("udp header")
	}

	return &frame{buf: buf, ipStart: ipStart, ipHLen: ihl, udpStart: udpStart}, nil
}

func (f *frame) isTCP() bool {
	return f.buf[f.ipStart+9] == ipProtoTCP
}

// srcIPv4 returns the IPv4 source address as a big-endian-derived uint32 —
// the canonical integer form used as the key for every peer-address table
// in this package (Followers, VoteResults, HeartbeatLatency, LeaderNode).
func (f *frame) srcIPv4() uint32 {
	return binary.BigEndian.Uint32(f.buf[f.ipStart+12 : f.ipStart+16])
}

func (f *frame) dstIPv4() uint32 {
	return binary.BigEndian.Uint32(f.buf[f.ipStart+16 : f.ipStart+20])
}

func (f *frame) udpDstPort() wire.Port {
	return wire.Port(binary.BigEndian.Uint16(f.buf[f.udpStart+2 : f.udpStart+4]))
}

func (f *frame) udpPayload() []byte {
	return f.buf[f.udpStart+udpHeaderLen:]
}

// reflect rewrites the frame in place into a response per spec.md §4.B
// "Reflection": Ethernet src/dst MACs swapped, IPv4 src/dst swapped, UDP
// destination port set to respPort (source port and payload untouched).
func (f *frame) reflect(respPort wire.Port) {
	// Ethernet: swap dst (bytes 0:6) and src (bytes 6:12).
	var macTmp [6]byte
	copy(macTmp[:], f.buf[0:6])
	copy(f.buf[0:6], f.buf[6:12])
	copy(f.buf[6:12], macTmp[:])

	// IPv4: swap src (12:16) and dst (16:20) within the IP header.
	var ipTmp [4]byte
	srcOff, dstOff := f.ipStart+12, f.ipStart+16
	copy(ipTmp[:], f.buf[srcOff:srcOff+4])
	copy(f.buf[srcOff:srcOff+4], f.buf[dstOff:dstOff+4])
	copy(f.buf[dstOff:dstOff+4], ipTmp[:])

	// UDP: destination-only port rewrite, source port preserved.
	binary.BigEndian.PutUint16(f.buf[f.udpStart+2:f.udpStart+4], uint16(respPort))
}
