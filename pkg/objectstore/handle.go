package objectstore

import (
	"bufio"
	"io"

	"github.com/sleepymurph/dmv/pkg/dag"
	"github.com/sleepymurph/dmv/pkg/objectkey"
	"github.com/sleepymurph/dmv/pkg/vcserrors"
)

// ObjectHandle exposes an object's header synchronously while its content
// is decoded lazily on demand. Requests for the wrong kind fail with a
// type-mismatch error naming the expected and observed types.
type ObjectHandle struct {
	header dag.Header
	key    objectkey.Key
	r      io.Reader
}

// OpenObject opens key and returns a handle exposing its header.
func (s *Store) OpenObject(key objectkey.Key) (*ObjectHandle, error) {
	f, err := s.OpenObjectFile(key)
	if err != nil {
		return nil, err
	}
	br := bufio.NewReader(f)
	header, err := dag.DecodeHeader(br)
	if err != nil {
		f.Close()
		return nil, err
	}
	return &ObjectHandle{header: header, key: key, r: br}, nil
}

// Header returns the object's header.
func (h *ObjectHandle) Header() dag.Header { return h.header }

func (h *ObjectHandle) typeError(want dag.ObjectType) error {
	return vcserrors.New(vcserrors.CodeBadObjectHeader,
		h.key.String()+" is a "+string(h.header.Type)+", expected a "+string(want))
}

// ReadBlob decodes the handle's content as a Blob, failing if the header
// names a different kind.
func (h *ObjectHandle) ReadBlob() (*dag.Blob, error) {
	if h.header.Type != dag.TypeBlob {
		return nil, h.typeError(dag.TypeBlob)
	}
	obj, err := decodeRemaining(h)
	if err != nil {
		return nil, err
	}
	return obj.(*dag.Blob), nil
}

// ReadChunkedBlob decodes the handle's content as a ChunkedBlob.
func (h *ObjectHandle) ReadChunkedBlob() (*dag.ChunkedBlob, error) {
	if h.header.Type != dag.TypeChunkedBlob {
		return nil, h.typeError(dag.TypeChunkedBlob)
	}
	obj, err := decodeRemaining(h)
	if err != nil {
		return nil, err
	}
	return obj.(*dag.ChunkedBlob), nil
}

// ReadTree decodes the handle's content as a Tree.
func (h *ObjectHandle) ReadTree() (*dag.Tree, error) {
	if h.header.Type != dag.TypeTree {
		return nil, h.typeError(dag.TypeTree)
	}
	obj, err := decodeRemaining(h)
	if err != nil {
		return nil, err
	}
	return obj.(*dag.Tree), nil
}

// ReadCommit decodes the handle's content as a Commit.
func (h *ObjectHandle) ReadCommit() (*dag.Commit, error) {
	if h.header.Type != dag.TypeCommit {
		return nil, h.typeError(dag.TypeCommit)
	}
	obj, err := decodeRemaining(h)
	if err != nil {
		return nil, err
	}
	return obj.(*dag.Commit), nil
}

func decodeRemaining(h *ObjectHandle) (dag.Object, error) {
	return dag.DecodeContent(h.header, h.r)
}

// ReadContent decodes the handle's content as whatever kind its header
// names, for callers that display an object without caring which kind it
// turns out to be.
func (h *ObjectHandle) ReadContent() (dag.Object, error) {
	return decodeRemaining(h)
}

// CopyContent streams the handle's raw content bytes to w, valid only for
// Blob handles. For ChunkedBlob handles use the store's CopyBlobContent,
// which resolves and concatenates each referenced chunk.
func (h *ObjectHandle) CopyContent(w io.Writer) error {
	if h.header.Type != dag.TypeBlob {
		return h.typeError(dag.TypeBlob)
	}
	_, err := io.CopyN(w, h.r, int64(h.header.ContentSize))
	if err != nil {
		return vcserrors.IO("while streaming blob content", err)
	}
	return nil
}

// OpenCommit opens key and decodes it as a Commit.
func (s *Store) OpenCommit(key objectkey.Key) (*dag.Commit, error) {
	h, err := s.OpenObject(key)
	if err != nil {
		return nil, err
	}
	return h.ReadCommit()
}

// OpenTree opens key and decodes it as a Tree, transparently dereferencing
// through a Commit's tree if key names a commit instead.
func (s *Store) OpenTree(key objectkey.Key) (*dag.Tree, error) {
	h, err := s.OpenObject(key)
	if err != nil {
		return nil, err
	}
	switch h.header.Type {
	case dag.TypeTree:
		return h.ReadTree()
	case dag.TypeCommit:
		commit, err := h.ReadCommit()
		if err != nil {
			return nil, err
		}
		return s.OpenTree(commit.Tree)
	default:
		return nil, h.typeError(dag.TypeTree)
	}
}

// CopyBlobContent streams the full content of a Blob or ChunkedBlob named
// by key into w, resolving chunk references in order for ChunkedBlobs.
func (s *Store) CopyBlobContent(key objectkey.Key, w io.Writer) error {
	h, err := s.OpenObject(key)
	if err != nil {
		return err
	}
	switch h.header.Type {
	case dag.TypeBlob:
		return h.CopyContent(w)
	case dag.TypeChunkedBlob:
		cb, err := h.ReadChunkedBlob()
		if err != nil {
			return err
		}
		for _, chunk := range cb.Chunks {
			if err := s.CopyBlobContent(chunk.Hash, w); err != nil {
				return err
			}
		}
		return nil
	default:
		return h.typeError(dag.TypeBlob)
	}
}
