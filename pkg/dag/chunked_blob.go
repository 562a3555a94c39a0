package dag

import (
	"encoding/binary"
	"io"

	"github.com/sleepymurph/dmv/pkg/constants"
	"github.com/sleepymurph/dmv/pkg/objectkey"
	"github.com/sleepymurph/dmv/pkg/vcserrors"
)

// ChunkEntry is one record in a ChunkedBlob index: the chunk's offset in the
// original file, its size, and the key of the Blob object storing its bytes.
type ChunkEntry struct {
	Offset uint64
	Size   uint64
	Hash   objectkey.Key
}

const chunkEntrySize = 8 + 8 + constants.ObjectKeySize

// ChunkedBlob indexes the chunks of a large file in order. The sum of chunk
// sizes equals TotalSize, and offsets are cumulative starting at 0.
type ChunkedBlob struct {
	TotalSize uint64
	Chunks    []ChunkEntry
}

func (c *ChunkedBlob) Type() ObjectType { return TypeChunkedBlob }

func (c *ChunkedBlob) ContentSize() uint64 {
	return 8 + 8 + uint64(len(c.Chunks))*chunkEntrySize
}

func (c *ChunkedBlob) EncodeContent(w io.Writer) error {
	var head [16]byte
	binary.BigEndian.PutUint64(head[0:8], c.TotalSize)
	binary.BigEndian.PutUint64(head[8:16], uint64(len(c.Chunks)))
	if _, err := w.Write(head[:]); err != nil {
		return vcserrors.IO("while writing chunked blob header", err)
	}
	for _, entry := range c.Chunks {
		var buf [chunkEntrySize]byte
		binary.BigEndian.PutUint64(buf[0:8], entry.Offset)
		binary.BigEndian.PutUint64(buf[8:16], entry.Size)
		copy(buf[16:], entry.Hash.Bytes())
		if _, err := w.Write(buf[:]); err != nil {
			return vcserrors.IO("while writing chunk entry", err)
		}
	}
	return nil
}

func decodeChunkedBlobContent(r io.Reader) (*ChunkedBlob, error) {
	var head [16]byte
	if _, err := io.ReadFull(r, head[:]); err != nil {
		return nil, vcserrors.IO("while reading chunked blob header", err)
	}
	totalSize := binary.BigEndian.Uint64(head[0:8])
	chunkCount := binary.BigEndian.Uint64(head[8:16])

	chunks := make([]ChunkEntry, 0, chunkCount)
	for i := uint64(0); i < chunkCount; i++ {
		var buf [chunkEntrySize]byte
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return nil, vcserrors.IO("while reading chunk entry", err)
		}
		hash, err := objectkey.FromBytes(buf[16:])
		if err != nil {
			return nil, err
		}
		chunks = append(chunks, ChunkEntry{
			Offset: binary.BigEndian.Uint64(buf[0:8]),
			Size:   binary.BigEndian.Uint64(buf[8:16]),
			Hash:   hash,
		})
	}
	return &ChunkedBlob{TotalSize: totalSize, Chunks: chunks}, nil
}
