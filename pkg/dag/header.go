// Package dag implements the four object kinds stored in the repository —
// Blob, ChunkedBlob, Tree, and Commit — and their byte-exact wire encoding.
package dag

import (
	"encoding/binary"
	"io"

	"github.com/sleepymurph/dmv/pkg/constants"
	"github.com/sleepymurph/dmv/pkg/vcserrors"
)

// ObjectType is one of the four 4-byte ASCII type tags.
type ObjectType string

const (
	TypeBlob        ObjectType = constants.TypeBlob
	TypeChunkedBlob ObjectType = constants.TypeChunkedBlob
	TypeTree        ObjectType = constants.TypeTree
	TypeCommit      ObjectType = constants.TypeCommit
)

func (t ObjectType) String() string { return string(t) }

// Header is the fixed 12-byte prefix of every stored object: a 4-byte type
// tag followed by a big-endian uint64 content size.
type Header struct {
	Type        ObjectType
	ContentSize uint64
}

// Encode writes the 12-byte header to w.
func (h Header) Encode(w io.Writer) error {
	if len(h.Type) != 4 {
		return vcserrors.New(vcserrors.CodeBadObjectHeader, "object type tag must be exactly 4 bytes: "+string(h.Type))
	}
	var buf [constants.HeaderSize]byte
	copy(buf[:4], h.Type)
	binary.BigEndian.PutUint64(buf[4:], h.ContentSize)
	_, err := w.Write(buf[:])
	if err != nil {
		return vcserrors.IO("while writing object header", err)
	}
	return nil
}

// DecodeHeader reads the 12-byte header from r.
func DecodeHeader(r io.Reader) (Header, error) {
	var buf [constants.HeaderSize]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return Header{}, vcserrors.IO("while reading object header", err)
	}
	return Header{
		Type:        ObjectType(buf[:4]),
		ContentSize: binary.BigEndian.Uint64(buf[4:]),
	}, nil
}
