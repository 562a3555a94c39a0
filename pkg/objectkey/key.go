// Package objectkey implements the 20-byte content identifier used to
// address every object in the store, plus a streaming hash writer that
// computes it while an object is being serialized.
package objectkey

import (
	"crypto/sha1"
	"encoding/hex"
	"hash"
	"io"
	"regexp"

	"github.com/sleepymurph/dmv/pkg/constants"
	"github.com/sleepymurph/dmv/pkg/vcserrors"
)

// Key is the SHA-1 digest of an object's header plus content.
type Key [constants.ObjectKeySize]byte

var fullHexPattern = regexp.MustCompile(`^[0-9a-fA-F]{40}$`)

// Zero is the all-zero key, never a valid object key but useful as a sentinel.
var Zero Key

// Parse decodes a full 40-character hex string into a Key.
func Parse(s string) (Key, error) {
	if !fullHexPattern.MatchString(s) {
		return Key{}, vcserrors.New(vcserrors.CodeBadObjectKey,
			"object key must be 40 lowercase or uppercase hex characters: "+s)
	}
	return decodeHex(s)
}

// IsShortHex reports whether s looks like a short-hash prefix: hex digits,
// length in [8,40).
func IsShortHex(s string) bool {
	if len(s) < 8 || len(s) >= 40 {
		return false
	}
	for _, r := range s {
		if !isHexRune(r) {
			return false
		}
	}
	return true
}

func isHexRune(r rune) bool {
	return (r >= '0' && r <= '9') || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')
}

func decodeHex(s string) (Key, error) {
	var k Key
	b, err := hex.DecodeString(s)
	if err != nil {
		return Key{}, vcserrors.Wrap(vcserrors.CodeBadObjectKey, "invalid hex in object key", err)
	}
	if len(b) != constants.ObjectKeySize {
		return Key{}, vcserrors.New(vcserrors.CodeBadObjectKey, "object key must decode to 20 bytes")
	}
	copy(k[:], b)
	return k, nil
}

// FromBytes wraps a 20-byte slice as a Key, copying it.
func FromBytes(b []byte) (Key, error) {
	if len(b) != constants.ObjectKeySize {
		return Key{}, vcserrors.New(vcserrors.CodeBadObjectKey, "object key must be 20 bytes")
	}
	var k Key
	copy(k[:], b)
	return k, nil
}

// String renders the full 40-character lowercase hex form.
func (k Key) String() string {
	return hex.EncodeToString(k[:])
}

// Short renders the 8-character prefix used for display.
func (k Key) Short() string {
	return k.String()[:8]
}

// Bytes returns the raw 20-byte digest.
func (k Key) Bytes() []byte {
	return k[:]
}

// IsZero reports whether k is the all-zero sentinel.
func (k Key) IsZero() bool {
	return k == Zero
}

// HashWriter wraps an io.Writer, passing every write through to the inner
// sink while also feeding it into a SHA-1 accumulator. Once the caller has
// written the full header-plus-content of an object, Sum returns the key
// that object can later be looked up by.
type HashWriter struct {
	inner io.Writer
	h     hash.Hash
}

// NewHashWriter wraps inner so that everything written through it is also
// hashed.
func NewHashWriter(inner io.Writer) *HashWriter {
	return &HashWriter{inner: inner, h: sha1.New()}
}

func (w *HashWriter) Write(p []byte) (int, error) {
	n, err := w.inner.Write(p)
	if n > 0 {
		w.h.Write(p[:n])
	}
	return n, err
}

// Sum returns the accumulated key without resetting the hash state.
func (w *HashWriter) Sum() Key {
	var k Key
	copy(k[:], w.h.Sum(nil))
	return k
}

// Sum computes the key of data directly, without going through a Writer.
func Sum(data []byte) Key {
	sum := sha1.Sum(data)
	return Key(sum)
}
