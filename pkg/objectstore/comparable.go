package objectstore

import (
	"github.com/sleepymurph/dmv/pkg/dag"
	"github.com/sleepymurph/dmv/pkg/status"
	"github.com/sleepymurph/dmv/pkg/vcserrors"
)

// ContentSize returns the original (unchunked) size of the file node names:
// a Blob's header content size directly, or a ChunkedBlob's recorded total.
func (s *Store) ContentSize(node WalkNode) (uint64, error) {
	h, err := s.OpenObject(node.Hash)
	if err != nil {
		return 0, err
	}
	switch h.Header().Type {
	case dag.TypeBlob:
		return h.Header().ContentSize, nil
	case dag.TypeChunkedBlob:
		cb, err := h.ReadChunkedBlob()
		if err != nil {
			return 0, err
		}
		return cb.TotalSize, nil
	default:
		return 0, vcserrors.New(vcserrors.CodeBadObjectHeader, "node is not a file object: "+string(h.Header().Type))
	}
}

// Comparable converts a WalkNode into the node shape status comparison
// operates on. Object-store nodes are never ignored and have no filesystem
// path.
func (s *Store) Comparable(node WalkNode) (status.ComparableNode, error) {
	if node.IsTree() {
		hash := node.Hash
		return status.ComparableNode{IsTree: true, Hash: &hash}, nil
	}
	size, err := s.ContentSize(node)
	if err != nil {
		return status.ComparableNode{}, err
	}
	hash := node.Hash
	return status.ComparableNode{IsTree: false, FileSize: size, Hash: &hash}, nil
}

// ComparableChildren lists node's children (which must name a tree or
// commit) as comparable nodes keyed by name.
func (s *Store) ComparableChildren(node WalkNode) (map[string]status.ComparableNode, error) {
	children, err := s.ReadChildren(node)
	if err != nil {
		return nil, err
	}
	out := make(map[string]status.ComparableNode, len(children))
	for name, child := range children {
		cn, err := s.Comparable(child)
		if err != nil {
			return nil, err
		}
		out[name] = cn
	}
	return out, nil
}
