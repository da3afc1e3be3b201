// Package payload implements the four payload-specific codecs that sit on
// top of crypto/container: Price, AdId, Idfa, and Hyperlocal. Each codec
// validates its payload's size and, where the payload is a scalar rather
// than an opaque blob, frames/unframes it; the actual encryption is
// delegated to a shared *container.T.
//
// The four codecs share nearly all of their logic (size-checked
// encrypt/decrypt plus a base64 sandwich), so that logic lives once, here,
// in a shared codec type embedded by each of price.go, adid.go, idfa.go,
// and hyperlocal.go — composition standing in for the source's base
// class/subclass hierarchy (see the core's design notes on inheritance).
package payload

import (
	"github.com/bidcore/rtbcrypto/crypto/base64codec"
	"github.com/bidcore/rtbcrypto/crypto/container"
	"github.com/bidcore/rtbcrypto/crypto/iv"
	"github.com/bidcore/rtbcrypto/rtberrors"
)

// codec is the shared skeleton every payload wrapper embeds. It is not
// exported: callers use Price, AdId, Idfa, and Hyperlocal, each of which
// adds its own size constraints around the shared encrypt/decrypt path.
type codec struct {
	c *container.T
}

// encrypt runs the shared container encryption path with no additional
// framing beyond what container.Encrypt itself does.
func (cd codec) encrypt(payload []byte, ivValue *iv.T) ([]byte, error) {
	return cd.c.Encrypt(payload, ivValue)
}

// decrypt runs the shared container decryption path and returns the
// recovered payload bytes.
func (cd codec) decrypt(cipher []byte) ([]byte, error) {
	work, err := cd.c.Decrypt(cipher)
	if err != nil {
		return nil, err
	}
	return container.Plaintext(work), nil
}

// encodeString base64-encodes the result of encrypt, for callers that
// carry the cipher package as ASCII (prices, IDFAs).
func (cd codec) encodeString(payload []byte, ivValue *iv.T) (string, error) {
	cipher, err := cd.encrypt(payload, ivValue)
	if err != nil {
		return "", err
	}
	return base64codec.Encode(cipher), nil
}

// decodeString base64-decodes s and runs the shared decrypt path.
func (cd codec) decodeString(s string) ([]byte, error) {
	cipher, err := base64codec.Decode(s)
	if err != nil {
		return nil, err
	}
	return cd.decrypt(cipher)
}

// checkExactSize returns rtberrors.InvalidSize unless len(b) == want.
func checkExactSize(b []byte, want int, what string) error {
	if len(b) != want {
		return rtberrors.E(rtberrors.InvalidSize, what)
	}
	return nil
}

// checkBoundedSize returns rtberrors.InvalidSize if b is empty, and
// rtberrors.PayloadTooLarge if it exceeds max.
func checkBoundedSize(b []byte, max int, what string) error {
	if len(b) == 0 {
		return rtberrors.E(rtberrors.InvalidSize, what, "empty payload")
	}
	if len(b) > max {
		return rtberrors.E(rtberrors.PayloadTooLarge, what)
	}
	return nil
}
