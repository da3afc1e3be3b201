// Package iv builds and parses the 16-byte public initialization vector
// that prefixes every crypto package: an 8-byte timestamp (seconds in the
// high 32 bits, microseconds in the low 32 bits) followed by an 8-byte
// server identifier, both big-endian.
//
// The hex-marshaling idiom below is grounded on grailbio/base's
// crypto/encryption.IV, which marshals a variable-length IV as a quoted
// hex string for JSON logs; this package's IV is fixed at 16 bytes, but
// keeps the same marshal/unmarshal shape for interoperable debug output.
package iv

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bidcore/rtbcrypto/rtberrors"
)

// Size is the fixed length of an initialization vector in bytes.
const Size = 16

// T is a 16-byte public initialization vector.
type T [Size]byte

// Build packs a timestamp field and a server ID into a new IV.
// timestampField encodes seconds-since-epoch in its high 32 bits and
// microseconds (0..999999) in its low 32 bits, per Build's callers; Build
// itself performs no validation of that encoding, it only packs the bits.
func Build(timestampField, serverID uint64) T {
	var t T
	binary.BigEndian.PutUint64(t[0:8], timestampField)
	binary.BigEndian.PutUint64(t[8:16], serverID)
	return t
}

// BuildFromWallClock converts a millisecond-precision wall-clock timestamp
// into the (seconds, microseconds) encoding Build expects, then packs it
// with serverID.
func BuildFromWallClock(nowMillis int64, serverID uint64) T {
	secs := nowMillis / 1000
	millisRem := nowMillis % 1000
	timestampField := (uint64(secs) << 32) | uint64(millisRem*1000)
	return Build(timestampField, serverID)
}

// TimestampOf reads the timestamp field out of the 16-byte prefix of b,
// returning (seconds, microseconds). b must be at least Size bytes.
func TimestampOf(b []byte) (secs, micros uint32, err error) {
	if len(b) < Size {
		return 0, 0, rtberrors.E(rtberrors.Malformed, "iv: input shorter than 16 bytes")
	}
	field := binary.BigEndian.Uint64(b[0:8])
	secs = uint32(field >> 32)
	micros = uint32(field & 0xFFFFFFFF)
	return secs, micros, nil
}

// ServerIDOf reads the server ID out of the 16-byte prefix of b.
func ServerIDOf(b []byte) (uint64, error) {
	if len(b) < Size {
		return 0, rtberrors.E(rtberrors.Malformed, "iv: input shorter than 16 bytes")
	}
	return binary.BigEndian.Uint64(b[8:16]), nil
}

// randPool holds one *rand.Rand per borrow, each freshly seeded from
// crypto/rand-backed entropy via time and goroutine-local allocation.
// Pooling (rather than a single shared *rand.Rand behind a mutex) is what
// lets DefaultForNewPackage be called concurrently from many goroutines
// without contention; the source material need not be cryptographically
// strong, only distinct across concurrent callers.
var randPool = sync.Pool{
	New: func() interface{} {
		return rand.New(rand.NewSource(time.Now().UnixNano() + int64(seedSalt())))
	},
}

var saltCounter uint64

// seedSalt is called from randPool.New, which sync.Pool invokes without
// any serialization of its own, so concurrent borrows can race on the
// counter; atomic.AddUint64 is what keeps that race out of -race runs.
func seedSalt() uint64 {
	return atomic.AddUint64(&saltCounter, 1)
}

// DefaultForNewPackage returns (current wall-clock timestamp, random
// server ID), for use when a caller has no specific IV to supply. Distinct
// concurrent calls are not guaranteed to return distinct values, but are
// overwhelmingly likely to in practice; the exchange tolerates arbitrary
// IVs so this is not a correctness requirement.
func DefaultForNewPackage() T {
	r := randPool.Get().(*rand.Rand)
	defer randPool.Put(r)
	serverID := r.Uint64()
	return BuildFromWallClock(time.Now().UnixNano()/int64(time.Millisecond), serverID)
}

// Bytes returns the IV's 16 bytes as a slice.
func (t T) Bytes() []byte { return t[:] }

// MarshalJSON marshals the IV as a hex-encoded, double-quoted string.
func (t T) MarshalJSON() ([]byte, error) {
	dst := make([]byte, hex.EncodedLen(Size)+2)
	hex.Encode(dst[1:], t[:])
	dst[0], dst[len(dst)-1] = '"', '"'
	return dst, nil
}

// UnmarshalJSON unmarshals a hex-encoded, double-quoted string into t.
func (t *T) UnmarshalJSON(data []byte) error {
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return fmt.Errorf("iv: not quoted")
	}
	data = data[1 : len(data)-1]
	if hex.DecodedLen(len(data)) != Size {
		return fmt.Errorf("iv: wrong length")
	}
	_, err := hex.Decode(t[:], data)
	return err
}

// String returns the IV as a hex string, for logging.
func (t T) String() string {
	return hex.EncodeToString(t[:])
}

// FromBytes copies the first Size bytes of b into a T. b must be at least
// Size bytes.
func FromBytes(b []byte) (T, error) {
	var t T
	if len(b) < Size {
		return t, rtberrors.E(rtberrors.Malformed, "iv: input shorter than 16 bytes")
	}
	copy(t[:], b[:Size])
	return t, nil
}
