package chunker

import (
	"io"

	"github.com/sleepymurph/dmv/pkg/dag"
	"github.com/sleepymurph/dmv/pkg/objectkey"
)

// ObjectReader turns a byte stream into the sequence of objects that should
// be stored for it: zero chunks yields one empty Blob; exactly one chunk
// yields that Blob alone; two or more chunks yield each chunk as a Blob
// followed by a terminating ChunkedBlob index over all of them in order.
// The caller stores each returned object and keeps the last key as the
// file's identifier.
type ObjectReader struct {
	chunker       *ChunkReader
	chunkEntries  []dag.ChunkEntry
	offset        uint64
	chunkerDone   bool
	terminalDone  bool
}

// ReadFileObjects wraps r as an ObjectReader.
func ReadFileObjects(r io.Reader) *ObjectReader {
	return &ObjectReader{chunker: NewChunkReader(r)}
}

// Next returns the next object and its key, or io.EOF when the sequence is
// complete.
func (o *ObjectReader) Next() (dag.Object, objectkey.Key, error) {
	if o.terminalDone {
		return nil, objectkey.Key{}, io.EOF
	}

	if !o.chunkerDone {
		chunk, err := o.chunker.Next()
		switch {
		case err == io.EOF:
			o.chunkerDone = true
		case err != nil:
			return nil, objectkey.Key{}, err
		default:
			blob := &dag.Blob{Content: chunk}
			_, key, encErr := dag.EncodeToBytes(blob)
			if encErr != nil {
				return nil, objectkey.Key{}, encErr
			}
			size := uint64(len(chunk))
			o.chunkEntries = append(o.chunkEntries, dag.ChunkEntry{
				Offset: o.offset,
				Size:   size,
				Hash:   key,
			})
			o.offset += size
			return blob, key, nil
		}
	}

	o.terminalDone = true
	switch len(o.chunkEntries) {
	case 0:
		blob := &dag.Blob{}
		_, key, err := dag.EncodeToBytes(blob)
		return blob, key, err
	case 1:
		// The single chunk was already emitted as a plain Blob; no index
		// object follows it.
		return nil, objectkey.Key{}, io.EOF
	default:
		cb := &dag.ChunkedBlob{TotalSize: o.offset, Chunks: o.chunkEntries}
		_, key, err := dag.EncodeToBytes(cb)
		return cb, key, err
	}
}

// ReadAll drains the ObjectReader, invoking store for each object in order
// and returning the key of the last object emitted (the file's identifier).
func ReadAll(r io.Reader, store func(dag.Object, objectkey.Key) error) (objectkey.Key, error) {
	objects := ReadFileObjects(r)
	var last objectkey.Key
	any := false
	for {
		obj, key, err := objects.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return objectkey.Key{}, err
		}
		if err := store(obj, key); err != nil {
			return objectkey.Key{}, err
		}
		last = key
		any = true
	}
	if !any {
		// Next() always emits at least the empty-blob case before EOF, so
		// this would indicate a logic error rather than empty input.
		panic("chunker.ReadAll: object sequence was empty")
	}
	return last, nil
}
