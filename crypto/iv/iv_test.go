package iv_test

import (
	"encoding/hex"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bidcore/rtbcrypto/crypto/iv"
	"github.com/bidcore/rtbcrypto/rtberrors"
)

func TestBuildPacksTimestampAndServerID(t *testing.T) {
	v := iv.Build(0x0102030405060708, 0x0A0B0C0D0E0F1011)
	require.Equal(t, "01020304050607080a0b0c0d0e0f1011", v.String())
}

func TestSharedVectorDecomposes(t *testing.T) {
	b, err := hex.DecodeString("E679B0BE000CD1400123456789ABCDEF")
	require.NoError(t, err)
	var v iv.T
	copy(v[:], b)

	secs, micros, err := iv.TimestampOf(v.Bytes())
	require.NoError(t, err)
	require.Equal(t, uint32(0xE679B0BE), secs)
	require.Equal(t, uint32(0x000CD140), micros)

	serverID, err := iv.ServerIDOf(v.Bytes())
	require.NoError(t, err)
	require.Equal(t, uint64(0x0123456789ABCDEF), serverID)
}

func TestFromBytesRejectsShortInput(t *testing.T) {
	_, err := iv.FromBytes(make([]byte, 15))
	require.True(t, rtberrors.Is(rtberrors.Malformed, err))
}

func TestJSONRoundTrip(t *testing.T) {
	want := iv.Build(1, 2)
	data, err := json.Marshal(want)
	require.NoError(t, err)

	var got iv.T
	require.NoError(t, json.Unmarshal(data, &got))
	require.Equal(t, want, got)
}

func TestUnmarshalJSONRejectsUnquoted(t *testing.T) {
	var v iv.T
	err := v.UnmarshalJSON([]byte("not-quoted"))
	require.Error(t, err)
}

func TestDefaultForNewPackageIsWellFormed(t *testing.T) {
	v := iv.DefaultForNewPackage()
	require.Len(t, v.Bytes(), iv.Size)
}

func TestDefaultForNewPackageConcurrentSafety(t *testing.T) {
	done := make(chan iv.T, 50)
	for i := 0; i < 50; i++ {
		go func() {
			done <- iv.DefaultForNewPackage()
		}()
	}
	seen := make(map[iv.T]bool)
	for i := 0; i < 50; i++ {
		v := <-done
		seen[v] = true
	}
	require.True(t, len(seen) > 1, "expected distinct IVs across concurrent calls")
}
