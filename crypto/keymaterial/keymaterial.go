// Package keymaterial holds the two HMAC-SHA1 keys a crypto container
// needs: one to derive the keystream, one to compute the integrity tag.
//
// The type is grounded on grailbio/base/crypto/encryption's KeyDescriptor
// (which identifies a key by registry name and opaque ID); this package
// narrows that idea to the crypto core's single fixed algorithm, holding
// the key bytes themselves rather than a lookup handle, since the core
// has no key-rotation policy or external key registry (see Non-goals).
package keymaterial

import (
	"crypto/hmac"
	"crypto/sha1"

	"github.com/bidcore/rtbcrypto/rtberrors"
)

// Algorithm identifies the keyed-hash algorithm both keys are used with.
const Algorithm = "HMAC-SHA1"

// T holds the two secret keys used by a crypto container: an encryption
// key, used to derive the keystream, and an integrity key, used to
// compute the tag. T is immutable once constructed and safe for
// concurrent use from many goroutines.
type T struct {
	encryptionKey []byte
	integrityKey  []byte
}

// New constructs key material from the supplied encryption and integrity
// keys, validating both by initializing an HMAC-SHA1 with each. New
// returns an rtberrors.InvalidKey error if either key is rejected.
//
// Keys are typically 32 bytes, but any length HMAC accepts is allowed;
// the core treats key length as the caller's concern.
func New(encryptionKey, integrityKey []byte) (*T, error) {
	if err := validate(encryptionKey); err != nil {
		return nil, rtberrors.E(rtberrors.InvalidKey, "encryption key", err)
	}
	if err := validate(integrityKey); err != nil {
		return nil, rtberrors.E(rtberrors.InvalidKey, "integrity key", err)
	}
	ek := make([]byte, len(encryptionKey))
	copy(ek, encryptionKey)
	ik := make([]byte, len(integrityKey))
	copy(ik, integrityKey)
	return &T{encryptionKey: ek, integrityKey: ik}, nil
}

// validate primes an HMAC-SHA1 with key, the way the source's key
// material construction validates keys once rather than on every use.
func validate(key []byte) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = rtberrors.New("hmac rejected key")
		}
	}()
	h := hmac.New(sha1.New, key)
	h.Write(nil)
	h.Sum(nil)
	return nil
}

// EncryptionKey returns the key used to derive the keystream. Callers in
// this module's own packages may use it directly; external callers should
// treat T as opaque.
func (t *T) EncryptionKey() []byte { return t.encryptionKey }

// IntegrityKey returns the key used to compute the integrity tag.
func (t *T) IntegrityKey() []byte { return t.integrityKey }

// Equal reports whether t and other hold structurally identical key
// material.
func (t *T) Equal(other *T) bool {
	if t == nil || other == nil {
		return t == other
	}
	return hmac.Equal(t.encryptionKey, other.encryptionKey) &&
		hmac.Equal(t.integrityKey, other.integrityKey)
}

// String never exposes key bytes; only the algorithm identifier.
func (t *T) String() string {
	return Algorithm + " key material"
}
