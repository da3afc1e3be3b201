// Package base64codec implements the URL-safe, unpadded base64 encoding
// (RFC 3548 §4) used wherever a crypto package needs an ASCII form —
// prices and IDFAs are typically carried as strings on the bid path.
package base64codec

import (
	"encoding/base64"

	"github.com/bidcore/rtbcrypto/rtberrors"
)

var encoding = base64.RawURLEncoding

// Encode returns the URL-safe, unpadded base64 encoding of b.
func Encode(b []byte) string {
	return encoding.EncodeToString(b)
}

// Decode decodes a URL-safe, unpadded base64 string. Decode rejects a nil
// or empty input with rtberrors.Malformed, since an empty encoded crypto
// package can never be valid (every package carries at least the 20
// bytes of overhead) — DecodingError is reserved for base64 that fails to
// decode at all.
func Decode(s string) ([]byte, error) {
	if len(s) == 0 {
		return nil, rtberrors.E(rtberrors.Malformed, "base64: empty input")
	}
	b, err := encoding.DecodeString(s)
	if err != nil {
		return nil, rtberrors.E(rtberrors.DecodingError, "base64: malformed input", err)
	}
	return b, nil
}
