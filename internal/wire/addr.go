package wire

import (
	"encoding/binary"
	"net"

	raftErrors "github.com/firefly-raftedge/raftedge/internal/errors"
)

// IPv4ToUint32 packs a dotted-quad IPv4 address into the 32-bit integer key
// used throughout the shared-state tables (spec.md §6: "converting to
// host-order u32 keys"). The byte order chosen here matches how the data
// plane reads the same address straight off the wire (frame.srcIPv4 uses
// encoding/binary.BigEndian on the IPv4 header's address bytes): using the
// same order on both paths is what lets a dotted-quad from PEERS or the
// admin surface compare equal to an address extracted from a live packet.
func IPv4ToUint32(dotted string) (uint32, error) {
	ip := net.ParseIP(dotted)
	if ip == nil {
		return 0, raftErrors.InvalidAdminInput("ip", "not a valid IP address")
	}
	v4 := ip.To4()
	if v4 == nil {
		return 0, raftErrors.InvalidAdminInput("ip", "not an IPv4 address")
	}
	return binary.BigEndian.Uint32(v4), nil
}

// Uint32ToIPv4 is IPv4ToUint32's inverse, used to render table keys back
// into dotted-quad form for admin/CLI output.
func Uint32ToIPv4(addr uint32) string {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], addr)
	return net.IP(b[:]).String()
}
