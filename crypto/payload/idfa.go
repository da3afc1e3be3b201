package payload

import (
	"github.com/bidcore/rtbcrypto/crypto/base64codec"
	"github.com/bidcore/rtbcrypto/crypto/container"
	"github.com/bidcore/rtbcrypto/crypto/iv"
)

// Idfa encrypts and decrypts Apple IDFA-style identifiers: 1 to
// container.MaxPayload opaque bytes.
type Idfa struct {
	codec
}

// NewIdfa returns an Idfa codec backed by c.
func NewIdfa(c *container.T) Idfa {
	return Idfa{codec{c}}
}

// Encrypt encrypts idfa. Encrypt returns rtberrors.InvalidSize if idfa is
// empty, or rtberrors.PayloadTooLarge if it exceeds container.MaxPayload
// bytes.
func (i Idfa) Encrypt(idfa []byte, ivValue *iv.T) ([]byte, error) {
	if err := checkBoundedSize(idfa, container.MaxPayload, "idfa: payload"); err != nil {
		return nil, err
	}
	return i.encrypt(idfa, ivValue)
}

// EncodeIdfa is Encrypt followed by base64 encoding.
func (i Idfa) EncodeIdfa(idfa []byte, ivValue *iv.T) (string, error) {
	if err := checkBoundedSize(idfa, container.MaxPayload, "idfa: payload"); err != nil {
		return "", err
	}
	return i.encodeString(idfa, ivValue)
}

// Decrypt decrypts cipher and returns the recovered IDFA bytes.
func (i Idfa) Decrypt(cipher []byte) ([]byte, error) {
	payload, err := i.decrypt(cipher)
	if err != nil {
		return nil, err
	}
	if err := checkBoundedSize(payload, container.MaxPayload, "idfa: payload"); err != nil {
		return nil, err
	}
	return payload, nil
}

// DecodeIdfa base64-decodes s and decrypts it into the recovered IDFA
// bytes.
func (i Idfa) DecodeIdfa(s string) ([]byte, error) {
	cipher, err := base64codec.Decode(s)
	if err != nil {
		return nil, err
	}
	return i.Decrypt(cipher)
}
