package dag

import (
	"io"

	"github.com/sleepymurph/dmv/pkg/vcserrors"
)

// Blob holds the raw bytes of a file whose entire content fits in one
// chunk. Large files are instead split by pkg/chunker into several Blob
// objects referenced by a ChunkedBlob index.
type Blob struct {
	Content []byte
}

func (b *Blob) Type() ObjectType     { return TypeBlob }
func (b *Blob) ContentSize() uint64  { return uint64(len(b.Content)) }
func (b *Blob) EncodeContent(w io.Writer) error {
	_, err := w.Write(b.Content)
	if err != nil {
		return vcserrors.IO("while writing blob content", err)
	}
	return nil
}

func decodeBlobContent(r io.Reader, size uint64) (*Blob, error) {
	buf := make([]byte, size)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, vcserrors.IO("while reading blob content", err)
	}
	return &Blob{Content: buf}, nil
}
