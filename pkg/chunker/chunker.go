package chunker

import (
	"bufio"
	"io"

	"github.com/sleepymurph/dmv/pkg/vcserrors"
)

// ChunkReader splits a byte stream into content-defined chunks. Each call to
// Next returns the next chunk; io.EOF signals no chunks remain.
type ChunkReader struct {
	r *bufio.Reader
	f *flagger
}

// NewChunkReader wraps r so that reading through it yields chunks instead of
// arbitrary byte ranges.
func NewChunkReader(r io.Reader) *ChunkReader {
	return &ChunkReader{r: bufio.NewReaderSize(r, 64*1024), f: newFlagger()}
}

// Next returns the next chunk's bytes, or io.EOF when the stream is
// exhausted. A zero-length final chunk is never returned.
func (c *ChunkReader) Next() ([]byte, error) {
	var buf []byte
	for {
		b, err := c.r.ReadByte()
		if err == io.EOF {
			if len(buf) == 0 {
				return nil, io.EOF
			}
			return buf, nil
		}
		if err != nil {
			return nil, vcserrors.IO("while reading chunk input", err)
		}
		buf = append(buf, b)
		c.f.slide(b)
		if c.f.flag() {
			return buf, nil
		}
	}
}
