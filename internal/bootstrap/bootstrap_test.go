package bootstrap

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResolvePeersTruncatesToTwoSlots(t *testing.T) {
	peers, err := resolvePeers([]string{"10.0.0.2", "10.0.0.3", "10.0.0.4"})
	require.NoError(t, err)
	require.NotZero(t, peers[0])
	require.NotZero(t, peers[1])
	require.NotEqual(t, peers[0], peers[1])
}

func TestResolvePeersRejectsMalformedAddress(t *testing.T) {
	_, err := resolvePeers([]string{"not-an-ip"})
	require.Error(t, err)
}

func TestResolvePeersEmptyInputYieldsZeroSlots(t *testing.T) {
	peers, err := resolvePeers(nil)
	require.NoError(t, err)
	require.Zero(t, peers[0])
	require.Zero(t, peers[1])
}
