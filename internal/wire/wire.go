// Package wire defines the on-the-wire constants shared by the data plane,
// the RPC emitter, and the control plane: the five Raft RPC port numbers and
// the fixed 8-byte big-endian term codec carried by every one of them.
package wire

import "encoding/binary"

// Port is a well-known UDP destination port identifying a Raft RPC kind.
type Port uint16

// Well-known ports, per spec.
const (
	VoteRequestPort      Port = 28000
	VoteResponseNoPort   Port = 29000
	VoteResponseYesPort  Port = 29001
	HeartbeatRequestPort Port = 27001
	HeartbeatResponsePort Port = 27000
)

// TermSize is the fixed payload length of every term-bearing RPC.
const TermSize = 8

// EncodeTerm serializes a term as an 8-byte big-endian payload.
func EncodeTerm(term uint64) []byte {
	buf := make([]byte, TermSize)
	binary.BigEndian.PutUint64(buf, term)
	return buf
}

// DecodeTerm parses an 8-byte big-endian term payload. ok is false if
// payload is not exactly TermSize bytes long.
func DecodeTerm(payload []byte) (term uint64, ok bool) {
	if len(payload) != TermSize {
		return 0, false
	}
	return binary.BigEndian.Uint64(payload), true
}
