package dataplane

import (
	"testing"

	"github.com/stretchr/testify/require"

	raftErrors "github.com/firefly-raftedge/raftedge/internal/errors"
	"github.com/firefly-raftedge/raftedge/internal/wire"
)

func TestParseFrameRejectsShortEthernet(t *testing.T) {
	_, err := parseFrame(make([]byte, 4))
	require.Equal(t, raftErrors.ErrCodeBounds, raftErrors.GetCode(err))
}

func TestParseFrameRejectsNonIPv4(t *testing.T) {
	buf := buildFrame(macA, macB, 1, 2, ipProtoUDP, 1, 2, nil)
	buf[12], buf[13] = 0x08, 0x06 // ARP
	_, err := parseFrame(buf)
	require.Equal(t, raftErrors.ErrCodeNotIPv4, raftErrors.GetCode(err))
}

func TestParseFrameRejectsNonUDPOrTCP(t *testing.T) {
	buf := buildFrame(macA, macB, 1, 2, 1 /* ICMP */, 1, 2, nil)
	_, err := parseFrame(buf)
	require.Equal(t, raftErrors.ErrCodeNotUDPOrTCP, raftErrors.GetCode(err))
}

func TestParseFrameAcceptsTCP(t *testing.T) {
	buf := buildFrame(macA, macB, 1, 2, ipProtoTCP, 1, 2, nil)
	f, err := parseFrame(buf)
	require.NoError(t, err)
	require.True(t, f.isTCP())
}

func TestReflectSwapsAddressesAndRewritesPortOnly(t *testing.T) {
	payload := wire.EncodeTerm(7)
	buf := buildFrame(macA, macB, 0x0a000002, 0x0a000001, ipProtoUDP, 54321, uint16(wire.VoteRequestPort), payload)
	f, err := parseFrame(buf)
	require.NoError(t, err)

	origSrcMAC := append([]byte(nil), buf[6:12]...)
	origDstMAC := append([]byte(nil), buf[0:6]...)
	origSrcIP := f.srcIPv4()
	origDstIP := f.dstIPv4()

	f.reflect(wire.VoteResponseYesPort)

	require.Equal(t, string(origSrcMAC), string(buf[0:6]), "expected eth dst to become original eth src")
	require.Equal(t, string(origDstMAC), string(buf[6:12]), "expected eth src to become original eth dst")
	require.Equal(t, origDstIP, f.srcIPv4())
	require.Equal(t, origSrcIP, f.dstIPv4())
	require.Equal(t, wire.VoteResponseYesPort, f.udpDstPort())
	require.Equal(t, string(payload), string(f.udpPayload()), "expected payload unchanged")
}
