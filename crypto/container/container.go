// Package container implements the crypto core's authenticated-encryption
// algorithm: a counter-mode HMAC-SHA1 keystream XOR'd into the payload,
// plus a truncated HMAC-SHA1 integrity tag over the plaintext and IV.
//
// The Encrypter/Decrypter shape (separate setup of a keyed primitive,
// then XOR into a preallocated buffer) is grounded on
// grailbio/base/crypto/encryption's engine type, whose Encrypt/Decrypt
// methods follow exactly this "allocate dst, derive keystream, XOR"
// structure for a CFB-mode block cipher. This package replaces that
// engine's block-cipher-plus-registry design (ruled out by this core's
// non-goal of supporting algorithms other than the one specified) with
// the fixed counter-mode-HMAC construction the wire format requires.
package container

import (
	"crypto/hmac"
	"crypto/sha1"
	"crypto/subtle"
	"hash"
	"sync"

	"github.com/bidcore/rtbcrypto/crypto/iv"
	"github.com/bidcore/rtbcrypto/crypto/keymaterial"
	"github.com/bidcore/rtbcrypto/log"
	"github.com/bidcore/rtbcrypto/rtberrors"
)

const (
	// IVSize is the length, in bytes, of the public initialization vector
	// prefix.
	IVSize = iv.Size
	// TagSize is the length, in bytes, of the integrity tag suffix.
	TagSize = 4
	// Overhead is the total non-payload size of a crypto package.
	Overhead = IVSize + TagSize
	// PageSize is the keystream section size: the output length of
	// HMAC-SHA1, and the largest number of payload bytes one HMAC
	// evaluation can cover.
	PageSize = sha1.Size
	// MaxSections is the largest number of keystream sections the counter
	// encoding supports: one zero-length-counter section, then 256
	// sections per counter width (1, 2, and 3 bytes).
	MaxSections = 3*256 + 1
	// MaxPayload is the largest payload, in bytes, Encrypt accepts.
	MaxPayload = PageSize * MaxSections
)

// T is a crypto container: the algorithmic core that turns a plaintext
// payload and IV into a self-describing cipher package, and back. T is
// safe for concurrent use from many goroutines.
type T struct {
	km         *keymaterial.T
	streamPool sync.Pool
	tagPool    sync.Pool
}

// New returns a container keyed by km.
func New(km *keymaterial.T) *T {
	c := &T{km: km}
	c.streamPool.New = func() interface{} {
		return hmac.New(sha1.New, km.EncryptionKey())
	}
	c.tagPool.New = func() interface{} {
		return hmac.New(sha1.New, km.IntegrityKey())
	}
	return c
}

func (c *T) borrowStreamHMAC() hash.Hash {
	h := c.streamPool.Get().(hash.Hash)
	h.Reset()
	return h
}

func (c *T) releaseStreamHMAC(h hash.Hash) { c.streamPool.Put(h) }

func (c *T) borrowTagHMAC() hash.Hash {
	h := c.tagPool.Get().(hash.Hash)
	h.Reset()
	return h
}

func (c *T) releaseTagHMAC(h hash.Hash) { c.tagPool.Put(h) }

// sectionCounter implements the variable-length, increment-at-end counter
// described by the wire format: the first section carries no counter
// bytes, the next 256 carry a 1-byte counter, the next 256 a 2-byte
// counter, and the next 256 a 3-byte counter.
type sectionCounter struct {
	size  int
	bytes [3]byte
}

// bytesFor returns the counter bytes to append to the HMAC input for the
// current section; the empty slice for the first section.
func (c *sectionCounter) bytesFor() []byte {
	return c.bytes[:c.size]
}

// advance moves the counter to the value the next section should use.
func (c *sectionCounter) advance() {
	if c.size == 0 {
		c.size = 1
		return
	}
	last := c.size - 1
	c.bytes[last]++
	if c.bytes[last] == 0 {
		c.size++
		for i := 0; i < c.size-1; i++ {
			c.bytes[i] = 0
		}
	}
}

// xorKeystream applies the counter-mode HMAC-SHA1 keystream to buf
// in place, sectioning buf into PageSize windows. ivBytes is the 16-byte
// public IV, included in every HMAC input ahead of the section counter.
func (c *T) xorKeystream(buf, ivBytes []byte) error {
	numSections := (len(buf) + PageSize - 1) / PageSize
	if numSections == 0 {
		return nil
	}
	if numSections > MaxSections {
		return rtberrors.E(rtberrors.PayloadTooLarge, "container: payload exceeds maximum section count")
	}
	h := c.borrowStreamHMAC()
	defer c.releaseStreamHMAC(h)

	var ctr sectionCounter
	var padBuf [PageSize]byte
	for i := 0; i < numSections; i++ {
		start := i * PageSize
		end := start + PageSize
		if end > len(buf) {
			end = len(buf)
		}
		section := buf[start:end]

		h.Reset()
		h.Write(ivBytes)
		if i > 0 {
			h.Write(ctr.bytesFor())
		}
		pad := h.Sum(padBuf[:0])
		for j := range section {
			section[j] ^= pad[j]
		}
		ctr.advance()
	}
	return nil
}

// tag computes the first TagSize bytes of HMAC-SHA1(integrityKey,
// plaintext || ivBytes).
func (c *T) tag(plaintext, ivBytes []byte) []byte {
	h := c.borrowTagHMAC()
	defer c.releaseTagHMAC(h)
	h.Reset()
	h.Write(plaintext)
	h.Write(ivBytes)
	sum := h.Sum(nil)
	return sum[:TagSize]
}

// Encrypt encrypts payload under ivValue (or a freshly generated IV, if
// ivValue is nil) and returns the cipher package: iv || ciphertext || tag.
//
// Encrypt returns rtberrors.PayloadTooLarge if payload exceeds MaxPayload
// bytes.
func (c *T) Encrypt(payload []byte, ivValue *iv.T) ([]byte, error) {
	if len(payload) > MaxPayload {
		return nil, rtberrors.E(rtberrors.PayloadTooLarge, "container: payload exceeds maximum size")
	}
	var use iv.T
	if ivValue == nil {
		use = iv.DefaultForNewPackage()
	} else {
		use = *ivValue
	}

	n := len(payload)
	work := make([]byte, IVSize+n+TagSize)
	copy(work[:IVSize], use[:])
	copy(work[IVSize:IVSize+n], payload)

	t := c.tag(work[IVSize:IVSize+n], work[:IVSize])
	copy(work[IVSize+n:], t)

	if err := c.xorKeystream(work[IVSize:IVSize+n], work[:IVSize]); err != nil {
		return nil, err
	}
	return work, nil
}

// Decrypt decrypts a cipher package produced by Encrypt, verifying its
// integrity tag in constant time. It returns the recovered plaintext
// payload.
//
// On success, the buffer Decrypt copies cipher into has its trailing
// TagSize bytes overwritten with the recomputed tag (which, since
// verification succeeded, equals the stored tag byte-for-byte); this
// mirrors a legacy consumer's expectations and must not be documented as
// part of the public contract.
//
// Decrypt returns rtberrors.Malformed if cipher is shorter than Overhead
// bytes, rtberrors.PayloadTooLarge if its payload would exceed MaxPayload,
// and rtberrors.SignatureMismatch if the tag does not verify.
func (c *T) Decrypt(cipher []byte) ([]byte, error) {
	if len(cipher) < Overhead {
		return nil, rtberrors.E(rtberrors.Malformed, "container: cipher package shorter than minimum overhead")
	}
	n := len(cipher) - Overhead
	if n > MaxPayload {
		return nil, rtberrors.E(rtberrors.PayloadTooLarge, "container: cipher package payload exceeds maximum size")
	}

	work := make([]byte, len(cipher))
	copy(work, cipher)

	ivBytes := work[:IVSize]
	payload := work[IVSize : IVSize+n]
	storedTag := work[IVSize+n:]

	if err := c.xorKeystream(payload, ivBytes); err != nil {
		return nil, err
	}

	expected := c.tag(payload, ivBytes)
	if subtle.ConstantTimeCompare(expected, storedTag) != 1 {
		log.Debug.Printf("container: integrity tag mismatch, cipher package %s", log.Redacted(cipher))
		return nil, rtberrors.E(rtberrors.SignatureMismatch, "container: integrity tag mismatch")
	}
	copy(storedTag, expected)
	return work, nil
}

// Plaintext extracts the payload from a buffer shaped like Decrypt's
// return value: iv(16) || payload(n) || tag(4).
func Plaintext(work []byte) []byte {
	if len(work) < Overhead {
		return nil
	}
	return work[IVSize : len(work)-TagSize]
}

// IV extracts the initialization vector prefix from a buffer shaped like
// Encrypt's or Decrypt's return value.
func IV(work []byte) (iv.T, error) {
	return iv.FromBytes(work)
}
