package dataplane

import "encoding/binary"

// buildFrame assembles a minimal Ethernet/IPv4/UDP(or TCP) frame for tests.
// srcMAC/dstMAC are 6 bytes each, srcIP/dstIP are host-order-free raw
// big-endian uint32 IPv4 addresses, matching how frame.srcIPv4/dstIPv4 read
// the wire.
func buildFrame(srcMAC, dstMAC [6]byte, srcIP, dstIP uint32, proto byte, srcPort, dstPort uint16, payload []byte) []byte {
	buf := make([]byte, ethHeaderLen+ipv4MinHeaderLen+udpHeaderLen+len(payload))

	copy(buf[0:6], dstMAC[:])
	copy(buf[6:12], srcMAC[:])
	binary.BigEndian.PutUint16(buf[12:14], etherTypeIPv4)

	ip := buf[ethHeaderLen:]
	ip[0] = 0x45 // version 4, IHL 5
	binary.BigEndian.PutUint16(ip[2:4], uint16(ipv4MinHeaderLen+udpHeaderLen+len(payload)))
	ip[9] = proto
	binary.BigEndian.PutUint32(ip[12:16], srcIP)
	binary.BigEndian.PutUint32(ip[16:20], dstIP)

	udp := ip[ipv4MinHeaderLen:]
	binary.BigEndian.PutUint16(udp[0:2], srcPort)
	binary.BigEndian.PutUint16(udp[2:4], dstPort)
	binary.BigEndian.PutUint16(udp[4:6], uint16(udpHeaderLen+len(payload)))
	copy(udp[udpHeaderLen:], payload)

	return buf
}

var (
	macA = [6]byte{0x02, 0x00, 0x00, 0x00, 0x00, 0x01}
	macB = [6]byte{0x02, 0x00, 0x00, 0x00, 0x00, 0x02}
)
