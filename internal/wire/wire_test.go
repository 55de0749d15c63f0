package wire

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTermRoundTrip(t *testing.T) {
	for _, term := range []uint64{0, 1, 100, 1 << 40} {
		payload := EncodeTerm(term)
		require.Len(t, payload, TermSize, "EncodeTerm(%d)", term)
		got, ok := DecodeTerm(payload)
		require.True(t, ok, "DecodeTerm(%x) rejected a valid payload", payload)
		require.Equal(t, term, got)
	}
}

func TestDecodeTermRejectsWrongLength(t *testing.T) {
	cases := [][]byte{nil, {}, {1, 2, 3}, {1, 2, 3, 4, 5, 6, 7, 8, 9}}
	for _, payload := range cases {
		_, ok := DecodeTerm(payload)
		require.False(t, ok, "DecodeTerm(%v) of length %d should be rejected", payload, len(payload))
	}
}

func TestEncodeTermBigEndian(t *testing.T) {
	payload := EncodeTerm(1)
	want := []byte{0, 0, 0, 0, 0, 0, 0, 1}
	require.Equal(t, want, payload)
}
