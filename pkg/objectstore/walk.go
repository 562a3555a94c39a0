package objectstore

import (
	"github.com/sleepymurph/dmv/pkg/dag"
	"github.com/sleepymurph/dmv/pkg/objectkey"
	"github.com/sleepymurph/dmv/pkg/walker"
)

// WalkNode is the node type a Store exposes to the generic walker: a
// key paired with the object kind it names.
type WalkNode struct {
	Hash objectkey.Key
	Type dag.ObjectType
}

func (n WalkNode) IsTree() bool { return n.Type == dag.TypeTree || n.Type == dag.TypeCommit }

// LookupNode implements walker.NodeLookup by opening just the header of
// the object named by hash.
func (s *Store) LookupNode(hash objectkey.Key) (WalkNode, error) {
	h, err := s.OpenObject(hash)
	if err != nil {
		return WalkNode{}, err
	}
	return WalkNode{Hash: hash, Type: h.Header().Type}, nil
}

// ReadChildren implements walker.NodeReader by opening node's tree (or, if
// node names a commit, the tree it points to) and returning its entries as
// child nodes keyed by name.
func (s *Store) ReadChildren(node WalkNode) (walker.ChildMap[WalkNode], error) {
	tree, err := s.OpenTree(node.Hash)
	if err != nil {
		return nil, err
	}
	children := make(walker.ChildMap[WalkNode], len(tree.Entries))
	for _, entry := range tree.Entries {
		child, err := s.LookupNode(entry.Hash)
		if err != nil {
			return nil, err
		}
		children[entry.Name] = child
	}
	return children, nil
}
