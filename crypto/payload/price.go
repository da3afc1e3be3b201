package payload

import (
	"encoding/binary"
	"math"

	"github.com/bidcore/rtbcrypto/crypto/base64codec"
	"github.com/bidcore/rtbcrypto/crypto/container"
	"github.com/bidcore/rtbcrypto/crypto/iv"
)

// priceSize is the fixed payload size of a Price: an 8-byte big-endian
// unsigned integer counting micros of the bid currency.
const priceSize = 8

// priceCipherSize is the fixed size of an encrypted Price package:
// container.Overhead plus priceSize.
const priceCipherSize = container.Overhead + priceSize

// Price encrypts and decrypts winning-price payloads: an 8-byte,
// big-endian, unsigned 64-bit integer counting micros (1 unit = 1e-6 of
// the bid currency).
type Price struct {
	codec
}

// NewPrice returns a Price codec backed by c.
func NewPrice(c *container.T) Price {
	return Price{codec{c}}
}

// Encrypt frames micros as an 8-byte big-endian integer and encrypts it.
func (p Price) Encrypt(micros uint64, ivValue *iv.T) ([]byte, error) {
	var buf [priceSize]byte
	binary.BigEndian.PutUint64(buf[:], micros)
	return p.encrypt(buf[:], ivValue)
}

// EncodePrice is Encrypt followed by base64 encoding.
func (p Price) EncodePrice(micros uint64, ivValue *iv.T) (string, error) {
	var buf [priceSize]byte
	binary.BigEndian.PutUint64(buf[:], micros)
	return p.encodeString(buf[:], ivValue)
}

// Decrypt decrypts cipher and returns the price in micros. Decrypt
// returns rtberrors.InvalidSize if cipher is not exactly priceCipherSize
// bytes.
func (p Price) Decrypt(cipher []byte) (uint64, error) {
	if err := checkExactSize(cipher, priceCipherSize, "price: cipher package"); err != nil {
		return 0, err
	}
	payload, err := p.decrypt(cipher)
	if err != nil {
		return 0, err
	}
	if err := checkExactSize(payload, priceSize, "price: payload"); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(payload), nil
}

// DecodePrice base64-decodes s and decrypts it into a price in micros.
func (p Price) DecodePrice(s string) (uint64, error) {
	cipher, err := decodeSizeChecked(s, priceCipherSize, "price: cipher package")
	if err != nil {
		return 0, err
	}
	return p.Decrypt(cipher)
}

// EncodePriceValue converts a floating-point currency value into micros,
// rounding to the nearest integer.
func EncodePriceValue(value float64) uint64 {
	return uint64(math.Round(value * 1e6))
}

// DecodePriceValue converts micros back into a floating-point currency
// value.
func DecodePriceValue(micros uint64) float64 {
	return float64(micros) / 1e6
}

// decodeSizeChecked base64-decodes s without yet running the container
// decrypt path, so that the fixed-size codecs can surface InvalidSize
// ahead of any crypto work on an obviously wrong-sized cipher package. It
// is a convenience shared by Price and AdId.
func decodeSizeChecked(s string, want int, what string) ([]byte, error) {
	cipher, err := base64codec.Decode(s)
	if err != nil {
		return nil, err
	}
	if err := checkExactSize(cipher, want, what); err != nil {
		return nil, err
	}
	return cipher, nil
}
