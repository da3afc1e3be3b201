package payload

import (
	"github.com/bidcore/rtbcrypto/crypto/container"
	"github.com/bidcore/rtbcrypto/crypto/iv"
)

// adIDSize is the fixed payload size of an AdId: 16 opaque bytes, often
// interpreted by callers as a UUID, but treated here as opaque.
const adIDSize = 16

// adIDCipherSize is the fixed size of an encrypted AdId package.
const adIDCipherSize = container.Overhead + adIDSize

// AdId encrypts and decrypts platform-neutral ad identifiers: exactly 16
// opaque bytes.
type AdId struct {
	codec
}

// NewAdId returns an AdId codec backed by c.
func NewAdId(c *container.T) AdId {
	return AdId{codec{c}}
}

// Encrypt encrypts id. Encrypt returns rtberrors.InvalidSize if id is not
// exactly 16 bytes.
func (a AdId) Encrypt(id []byte, ivValue *iv.T) ([]byte, error) {
	if err := checkExactSize(id, adIDSize, "adid: payload"); err != nil {
		return nil, err
	}
	return a.encrypt(id, ivValue)
}

// EncodeAdId is Encrypt followed by base64 encoding.
func (a AdId) EncodeAdId(id []byte, ivValue *iv.T) (string, error) {
	if err := checkExactSize(id, adIDSize, "adid: payload"); err != nil {
		return "", err
	}
	return a.encodeString(id, ivValue)
}

// Decrypt decrypts cipher and returns the 16-byte ad ID. Decrypt returns
// rtberrors.InvalidSize if cipher is not exactly adIDCipherSize bytes.
func (a AdId) Decrypt(cipher []byte) ([]byte, error) {
	if err := checkExactSize(cipher, adIDCipherSize, "adid: cipher package"); err != nil {
		return nil, err
	}
	payload, err := a.decrypt(cipher)
	if err != nil {
		return nil, err
	}
	if err := checkExactSize(payload, adIDSize, "adid: payload"); err != nil {
		return nil, err
	}
	return payload, nil
}

// DecodeAdId base64-decodes s and decrypts it into a 16-byte ad ID.
func (a AdId) DecodeAdId(s string) ([]byte, error) {
	cipher, err := decodeSizeChecked(s, adIDCipherSize, "adid: cipher package")
	if err != nil {
		return nil, err
	}
	return a.Decrypt(cipher)
}
