package dag

import (
	"github.com/sleepymurph/dmv/pkg/codec/cborcanon"
	"github.com/sleepymurph/dmv/pkg/vcserrors"
)

// cborBlob, cborChunkedBlob, cborTree, and cborCommit are plain mirrors of
// the decoded kinds with cbor tags, used only by EncodeCBOR for the
// `show-object --cbor` debug affordance. The on-disk wire format (Encode /
// Decode above) is always the fixed binary layout from §3; this is an
// alternate introspection encoding, never written to the object store.
type cborChunkEntry struct {
	Offset uint64 `cbor:"offset"`
	Size   uint64 `cbor:"size"`
	Hash   string `cbor:"hash"`
}

type cborBlob struct {
	Type string `cbor:"type"`
	Size uint64 `cbor:"size"`
}

type cborChunkedBlob struct {
	Type      string           `cbor:"type"`
	TotalSize uint64           `cbor:"total_size"`
	Chunks    []cborChunkEntry `cbor:"chunks"`
}

type cborTreeEntry struct {
	Name string `cbor:"name"`
	Hash string `cbor:"hash"`
}

type cborTree struct {
	Type    string          `cbor:"type"`
	Entries []cborTreeEntry `cbor:"entries"`
}

type cborCommit struct {
	Type    string   `cbor:"type"`
	Tree    string   `cbor:"tree"`
	Parents []string `cbor:"parents"`
	Message string   `cbor:"message"`
}

// EncodeCBOR renders obj in canonical CBOR for debug inspection
// (`show-object --cbor`). It is never used for the object's persisted form.
func EncodeCBOR(obj Object) ([]byte, error) {
	var v interface{}
	switch o := obj.(type) {
	case *Blob:
		v = cborBlob{Type: string(TypeBlob), Size: o.ContentSize()}
	case *ChunkedBlob:
		entries := make([]cborChunkEntry, len(o.Chunks))
		for i, c := range o.Chunks {
			entries[i] = cborChunkEntry{Offset: c.Offset, Size: c.Size, Hash: c.Hash.String()}
		}
		v = cborChunkedBlob{Type: string(TypeChunkedBlob), TotalSize: o.TotalSize, Chunks: entries}
	case *Tree:
		entries := make([]cborTreeEntry, len(o.Entries))
		for i, e := range o.Entries {
			entries[i] = cborTreeEntry{Name: e.Name, Hash: e.Hash.String()}
		}
		v = cborTree{Type: string(TypeTree), Entries: entries}
	case *Commit:
		parents := make([]string, len(o.Parents))
		for i, p := range o.Parents {
			parents[i] = p.String()
		}
		v = cborCommit{Type: string(TypeCommit), Tree: o.Tree.String(), Parents: parents, Message: o.Message}
	default:
		return nil, vcserrors.New(vcserrors.CodeGeneric, "unsupported object kind for CBOR debug encoding")
	}
	return cborcanon.Marshal(v)
}
