package base64codec_test

import (
	"testing"

	fuzz "github.com/google/gofuzz"
	"github.com/stretchr/testify/require"

	"github.com/bidcore/rtbcrypto/crypto/base64codec"
	"github.com/bidcore/rtbcrypto/rtberrors"
)

func TestRoundTrip(t *testing.T) {
	f := fuzz.New().NilChance(0).NumElements(0, 4096)
	for i := 0; i < 100; i++ {
		var b []byte
		f.Fuzz(&b)

		s := base64codec.Encode(b)
		got, err := base64codec.Decode(s)
		require.NoError(t, err)
		require.Equal(t, b, got)
	}
}

func TestEncodingIsURLSafeAndUnpadded(t *testing.T) {
	b := make([]byte, 32)
	for i := range b {
		b[i] = byte(i * 7)
	}
	s := base64codec.Encode(b)
	require.NotContains(t, s, "+")
	require.NotContains(t, s, "/")
	require.NotContains(t, s, "=")
}

func TestDecodeRejectsEmpty(t *testing.T) {
	_, err := base64codec.Decode("")
	require.True(t, rtberrors.Is(rtberrors.Malformed, err))
}

func TestDecodeRejectsMalformed(t *testing.T) {
	_, err := base64codec.Decode("not valid base64!!")
	require.True(t, rtberrors.Is(rtberrors.DecodingError, err))
}
