// Package rtberrors implements an error type that defines standard,
// interpretable error codes for the crypto core's failure surface. Errors
// can be chained: thus attributing one error to another. The package is
// grounded on grailbio/base's errors package, generalized from its broad
// Kind taxonomy (retryable network/RPC errors, filesystem errors, etc.) to
// the small, non-retryable set a stateless authenticated-encryption
// container actually raises.
//
// Every crypto core operation either returns a valid result or returns an
// error of exactly one Kind; nothing here is retried, because nothing this
// package raises is transient (see the core's non-goals around retry
// policy).
package rtberrors

import (
	"bytes"
	"errors"
	"fmt"
	"runtime"
	"strings"

	"github.com/bidcore/rtbcrypto/log"
)

// Kind defines the type of error. Kinds are semantically meaningful and
// may be interpreted by the caller, e.g. to distinguish a caller mistake
// (InvalidSize) from a tampered wire message (SignatureMismatch).
type Kind int

const (
	// Other indicates an unclassified error.
	Other Kind = iota
	// InvalidKey indicates key material rejected by HMAC at construction.
	InvalidKey
	// Malformed indicates a cipher package shorter than the minimum
	// overhead, or a forbidden nil/empty encoded input.
	Malformed
	// InvalidSize indicates a payload with the wrong fixed length for its
	// codec (AdId != 16 bytes, Price ciphertext != 28 bytes, and so on).
	InvalidSize
	// PayloadTooLarge indicates a payload or ciphertext beyond the
	// container's maximum section count.
	PayloadTooLarge
	// SignatureMismatch indicates the integrity tag did not match after
	// decryption.
	SignatureMismatch
	// DecodingError indicates malformed base64 input.
	DecodingError

	maxKind
)

var kinds = map[Kind]string{
	Other:             "unclassified error",
	InvalidKey:        "invalid key material",
	Malformed:         "malformed crypto package",
	InvalidSize:       "invalid payload size",
	PayloadTooLarge:   "payload too large",
	SignatureMismatch: "signature mismatch",
	DecodingError:     "decoding error",
}

// String returns a human-readable explanation of the error kind k.
func (k Kind) String() string {
	return kinds[k]
}

// Separator is inserted between chained errors in Error's message.
var Separator = ": "

// Error is the standard error type returned by this module's packages. It
// carries a Kind (error code), an optional message, and an optional
// underlying cause that the error chains to.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

// E constructs an error from the provided arguments, in the manner of
// grailbio/base's errors.E. Arguments are interpreted by type:
//
//   - Kind: sets the Error's kind.
//   - string: sets the Error's message; multiple strings are joined with
//     a single space.
//   - *Error: copies the error and sets it as the cause.
//   - error: sets the cause.
//
// If a kind is not supplied but the cause is itself an *Error, the
// returned error inherits the cause's kind.
func E(args ...interface{}) error {
	if len(args) == 0 {
		panic("rtberrors.E: no args")
	}
	e := new(Error)
	var msg strings.Builder
	for _, arg := range args {
		switch arg := arg.(type) {
		case Kind:
			e.Kind = arg
		case string:
			if msg.Len() > 0 {
				msg.WriteString(" ")
			}
			msg.WriteString(arg)
		case *Error:
			cp := *arg
			if len(args) == 1 {
				return &cp
			}
			e.Err = &cp
		case error:
			e.Err = arg
		default:
			_, file, line, _ := runtime.Caller(1)
			log.Error.Printf("rtberrors.E: bad call (type %T) from %s:%d: %v", arg, file, line, arg)
			return &Error{Kind: Malformed, Message: fmt.Sprintf("unknown type %T in error call", arg)}
		}
	}
	e.Message = msg.String()
	if e.Kind == Other {
		if prev, ok := e.Err.(*Error); ok {
			e.Kind = prev.Kind
		}
	}
	return e
}

// Error returns a human-readable string describing e.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	var b bytes.Buffer
	e.writeError(&b)
	return b.String()
}

func (e *Error) writeError(b *bytes.Buffer) {
	if e.Message != "" {
		pad(b)
		b.WriteString(e.Message)
	}
	if e.Kind != Other {
		pad(b)
		b.WriteString(e.Kind.String())
	}
	if e.Err == nil {
		return
	}
	if inner, ok := e.Err.(*Error); ok {
		pad(b)
		b.WriteString(inner.Error())
	} else {
		pad(b)
		b.WriteString(e.Err.Error())
	}
}

func pad(b *bytes.Buffer) {
	if b.Len() > 0 {
		b.WriteString(Separator)
	}
}

// Unwrap returns e's cause, if any, letting the standard library's
// errors.Unwrap and errors.As work with *Error.
func (e *Error) Unwrap() error {
	return e.Err
}

// Recover recovers any error into an *Error, wrapping it with Kind Other
// if it is not already one.
func Recover(err error) *Error {
	if err == nil {
		return nil
	}
	if e, ok := err.(*Error); ok {
		return e
	}
	return E(err).(*Error)
}

// Is tells whether err's Kind (recursing through its chain via Other
// kinds) equals kind.
func Is(kind Kind, err error) bool {
	if err == nil {
		return false
	}
	return is(kind, Recover(err))
}

func is(kind Kind, e *Error) bool {
	if e.Kind != Other {
		return e.Kind == kind
	}
	if e.Err != nil {
		if inner, ok := e.Err.(*Error); ok {
			return is(kind, inner)
		}
	}
	return false
}

// New is synonymous with errors.New, provided so callers need import only
// this one errors package.
func New(msg string) error {
	return errors.New(msg)
}
