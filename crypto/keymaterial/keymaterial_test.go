package keymaterial_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bidcore/rtbcrypto/crypto/keymaterial"
)

func TestNewAcceptsArbitraryLengthKeys(t *testing.T) {
	for _, n := range []int{1, 16, 20, 32, 64, 100} {
		ek := make([]byte, n)
		ik := make([]byte, n)
		for i := range ek {
			ek[i] = byte(i)
			ik[i] = byte(255 - i)
		}
		km, err := keymaterial.New(ek, ik)
		require.NoError(t, err, "key length %d", n)
		require.NotNil(t, km)
	}
}

func TestNewAcceptsEmptyKey(t *testing.T) {
	// HMAC-SHA1 has no notion of a rejected key; New's validation step
	// exists to catch whatever crypto/hmac might panic on, not to enforce
	// a minimum length.
	km, err := keymaterial.New(nil, []byte("integrity"))
	require.NoError(t, err)
	require.NotNil(t, km)
}

func TestAccessorsReturnSuppliedBytes(t *testing.T) {
	ek := []byte("encryption-key-bytes")
	ik := []byte("integrity-key-bytes!")
	km, err := keymaterial.New(ek, ik)
	require.NoError(t, err)
	require.Equal(t, ek, km.EncryptionKey())
	require.Equal(t, ik, km.IntegrityKey())
}

func TestEqual(t *testing.T) {
	km1, err := keymaterial.New([]byte("key-a"), []byte("key-b"))
	require.NoError(t, err)
	km2, err := keymaterial.New([]byte("key-a"), []byte("key-b"))
	require.NoError(t, err)
	km3, err := keymaterial.New([]byte("key-a"), []byte("key-c"))
	require.NoError(t, err)

	require.True(t, km1.Equal(km2))
	require.False(t, km1.Equal(km3))
}

func TestStringNeverExposesKeyBytes(t *testing.T) {
	km, err := keymaterial.New([]byte("super-secret-encryption-key"), []byte("super-secret-integrity-key"))
	require.NoError(t, err)
	require.NotContains(t, km.String(), "secret")
	require.Equal(t, "HMAC-SHA1 key material", km.String())
}
