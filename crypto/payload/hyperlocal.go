package payload

import (
	"github.com/bidcore/rtbcrypto/crypto/base64codec"
	"github.com/bidcore/rtbcrypto/crypto/container"
	"github.com/bidcore/rtbcrypto/crypto/iv"
)

// Hyperlocal encrypts and decrypts geofence signal blobs: 1 to
// container.MaxPayload opaque bytes. Externally the blob is a serialized
// protobuf message; this codec treats it as opaque bytes, leaving
// marshaling to the caller (the protobuf mapper is explicitly out of
// scope for the crypto core).
type Hyperlocal struct {
	codec
}

// NewHyperlocal returns a Hyperlocal codec backed by c.
func NewHyperlocal(c *container.T) Hyperlocal {
	return Hyperlocal{codec{c}}
}

// Encrypt encrypts blob. Encrypt returns rtberrors.InvalidSize if blob is
// empty, or rtberrors.PayloadTooLarge if it exceeds container.MaxPayload
// bytes.
func (h Hyperlocal) Encrypt(blob []byte, ivValue *iv.T) ([]byte, error) {
	if err := checkBoundedSize(blob, container.MaxPayload, "hyperlocal: payload"); err != nil {
		return nil, err
	}
	return h.encrypt(blob, ivValue)
}

// EncodeHyperlocal is Encrypt followed by base64 encoding.
func (h Hyperlocal) EncodeHyperlocal(blob []byte, ivValue *iv.T) (string, error) {
	if err := checkBoundedSize(blob, container.MaxPayload, "hyperlocal: payload"); err != nil {
		return "", err
	}
	return h.encodeString(blob, ivValue)
}

// Decrypt decrypts cipher and returns the recovered blob.
func (h Hyperlocal) Decrypt(cipher []byte) ([]byte, error) {
	payload, err := h.decrypt(cipher)
	if err != nil {
		return nil, err
	}
	if err := checkBoundedSize(payload, container.MaxPayload, "hyperlocal: payload"); err != nil {
		return nil, err
	}
	return payload, nil
}

// DecodeHyperlocal base64-decodes s and decrypts it into the recovered
// blob.
func (h Hyperlocal) DecodeHyperlocal(s string) ([]byte, error) {
	cipher, err := base64codec.Decode(s)
	if err != nil {
		return nil, err
	}
	return h.Decrypt(cipher)
}
