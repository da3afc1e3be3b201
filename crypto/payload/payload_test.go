package payload_test

import (
	"encoding/base64"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bidcore/rtbcrypto/crypto/container"
	"github.com/bidcore/rtbcrypto/crypto/iv"
	"github.com/bidcore/rtbcrypto/crypto/keymaterial"
	"github.com/bidcore/rtbcrypto/crypto/payload"
	"github.com/bidcore/rtbcrypto/rtberrors"
)

const (
	testEncryptionKeyB64 = "sIxwz7yw62yrfoLGt12lIHKuYrK/S5kLuApI2BQe7Ac="
	testIntegrityKeyB64  = "v3fsVcMBMMHYzRhi7SpM0sdqwzvAxM6KPTu9OtVod5I="
	testIVHex            = "E679B0BE000CD1400123456789ABCDEF"
)

func testContainer(t *testing.T) *container.T {
	t.Helper()
	ek, err := base64.StdEncoding.DecodeString(testEncryptionKeyB64)
	require.NoError(t, err)
	ik, err := base64.StdEncoding.DecodeString(testIntegrityKeyB64)
	require.NoError(t, err)
	km, err := keymaterial.New(ek, ik)
	require.NoError(t, err)
	return container.New(km)
}

func testIV(t *testing.T) iv.T {
	t.Helper()
	b, err := hex.DecodeString(testIVHex)
	require.NoError(t, err)
	var v iv.T
	copy(v[:], b)
	return v
}

func TestPriceEncodeVector(t *testing.T) {
	c := testContainer(t)
	v := testIV(t)
	p := payload.NewPrice(c)

	got, err := p.EncodePrice(710000000, &v)
	require.NoError(t, err)
	require.Equal(t, "5nmwvgAM0UABI0VniavN72_sy3TQFLWhVys-IA", got)
}

func TestPriceDecodeVector(t *testing.T) {
	c := testContainer(t)
	p := payload.NewPrice(c)

	got, err := p.DecodePrice("5nmwvgAM0UABI0VniavN72_sy3TQFLWhVys-IA")
	require.NoError(t, err)
	require.Equal(t, uint64(710000000), got)
}

func TestIdfaEncodeVector(t *testing.T) {
	c := testContainer(t)
	v := testIV(t)
	i := payload.NewIdfa(c)

	idfa, err := hex.DecodeString("0001020304050607")
	require.NoError(t, err)

	got, err := i.EncodeIdfa(idfa, &v)
	require.NoError(t, err)
	require.Equal(t, "5nmwvgAM0UABI0VniavN72_tyXf-QJOmeDOf7A", got)
}

func TestAdIdEncodeVector(t *testing.T) {
	c := testContainer(t)
	v := testIV(t)
	a := payload.NewAdId(c)

	id, err := hex.DecodeString("000102030405060708090A0B0C0D0E0F")
	require.NoError(t, err)

	got, err := a.Encrypt(id, &v)
	require.NoError(t, err)

	want, err := hex.DecodeString("E679B0BE000CD1400123456789ABCDEF6FEDC977FE4093A641D2F4B6687F7DDB81DA0A3F")
	require.NoError(t, err)
	require.Equal(t, want, got)
}

func TestTamperScenarioOne(t *testing.T) {
	c := testContainer(t)
	p := payload.NewPrice(c)

	cipher, err := base64.RawURLEncoding.DecodeString("5nmwvgAM0UABI0VniavN72_sy3TQFLWhVys-IA")
	require.NoError(t, err)
	cipher[len(cipher)-1] ^= 0x01

	_, err = p.Decrypt(cipher)
	require.True(t, rtberrors.Is(rtberrors.SignatureMismatch, err))
}

func TestPriceRoundTrip(t *testing.T) {
	c := testContainer(t)
	v := testIV(t)
	p := payload.NewPrice(c)

	for _, micros := range []uint64{0, 1, 710000000, 1<<63 - 1} {
		cipher, err := p.Encrypt(micros, &v)
		require.NoError(t, err)
		got, err := p.Decrypt(cipher)
		require.NoError(t, err)
		require.Equal(t, micros, got)
	}
}

func TestPriceRejectsWrongCipherSize(t *testing.T) {
	c := testContainer(t)
	p := payload.NewPrice(c)

	_, err := p.Decrypt(make([]byte, 27))
	require.True(t, rtberrors.Is(rtberrors.InvalidSize, err))
}

func TestAdIdRejectsWrongPayloadSize(t *testing.T) {
	c := testContainer(t)
	v := testIV(t)
	a := payload.NewAdId(c)

	_, err := a.Encrypt(make([]byte, 15), &v)
	require.True(t, rtberrors.Is(rtberrors.InvalidSize, err))

	_, err = a.Encrypt(make([]byte, 17), &v)
	require.True(t, rtberrors.Is(rtberrors.InvalidSize, err))
}

func TestIdfaRoundTrip(t *testing.T) {
	c := testContainer(t)
	v := testIV(t)
	i := payload.NewIdfa(c)

	for _, n := range []int{1, 8, 40, container.MaxPayload} {
		blob := make([]byte, n)
		for j := range blob {
			blob[j] = byte(j)
		}
		cipher, err := i.Encrypt(blob, &v)
		require.NoError(t, err)
		got, err := i.Decrypt(cipher)
		require.NoError(t, err)
		require.Equal(t, blob, got)
	}
}

func TestIdfaRejectsEmpty(t *testing.T) {
	c := testContainer(t)
	v := testIV(t)
	i := payload.NewIdfa(c)

	_, err := i.Encrypt(nil, &v)
	require.True(t, rtberrors.Is(rtberrors.InvalidSize, err))
}

func TestIdfaRejectsOversize(t *testing.T) {
	c := testContainer(t)
	v := testIV(t)
	i := payload.NewIdfa(c)

	_, err := i.Encrypt(make([]byte, container.MaxPayload+1), &v)
	require.True(t, rtberrors.Is(rtberrors.PayloadTooLarge, err))
}

func TestHyperlocalRoundTrip(t *testing.T) {
	c := testContainer(t)
	v := testIV(t)
	h := payload.NewHyperlocal(c)

	blob := []byte("serialized geofence signal blob")
	encoded, err := h.EncodeHyperlocal(blob, &v)
	require.NoError(t, err)

	got, err := h.DecodeHyperlocal(encoded)
	require.NoError(t, err)
	require.Equal(t, blob, got)
}

func TestPriceValueConversion(t *testing.T) {
	require.Equal(t, uint64(710000000), payload.EncodePriceValue(710.0))
	require.InDelta(t, 710.0, payload.DecodePriceValue(710000000), 1e-9)
}
