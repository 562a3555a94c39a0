package fstransfer

import (
	"github.com/sleepymurph/dmv/pkg/dag"
	"github.com/sleepymurph/dmv/pkg/filestore"
	"github.com/sleepymurph/dmv/pkg/objectkey"
	"github.com/sleepymurph/dmv/pkg/objectstore"
	"github.com/sleepymurph/dmv/pkg/status"
	"github.com/sleepymurph/dmv/pkg/walker"
)

// compareSource adapts an object store and a filesystem store to the
// two-source walker, with the object store on side A and the filesystem on
// side B.
type compareSource struct {
	objects *objectstore.Store
	files   *filestore.FileStore
}

func (s compareSource) IsTreeA(a status.ComparableNode) bool { return a.IsTree }
func (s compareSource) IsTreeB(b status.ComparableNode) bool { return b.IsTree }

func (s compareSource) ChildrenA(a status.ComparableNode) (walker.ChildMap[status.ComparableNode], error) {
	node := objectstore.WalkNode{Hash: *a.Hash, Type: dag.TypeTree}
	children, err := s.objects.ComparableChildren(node)
	if err != nil {
		return nil, err
	}
	return walker.ChildMap[status.ComparableNode](children), nil
}

func (s compareSource) ChildrenB(b status.ComparableNode) (walker.ChildMap[status.ComparableNode], error) {
	children, err := s.files.ReadChildrenComparable(b)
	if err != nil {
		return nil, err
	}
	return children, nil
}

// CompareWalkOp builds a StatusTree by walking an object tree (side A,
// possibly absent) against a filesystem tree (side B, possibly absent) in
// lockstep. Used by status and as the first phase of commit.
type CompareWalkOp struct {
	ShowIgnored bool
}

func (op *CompareWalkOp) status(node walker.PairNode[status.ComparableNode, status.ComparableNode]) status.Code {
	var source, target *status.ComparableNode
	if node.A.Present {
		source = &node.A.Node
	}
	if node.B.Present {
		target = &node.B.Node
	}
	return status.Compare(source, target)
}

func (op *CompareWalkOp) ShouldDescend(path string, node walker.PairNode[status.ComparableNode, status.ComparableNode]) bool {
	isDir := node.B.Present && node.B.Node.IsTree
	included := status.Included(op.status(node), op.ShowIgnored)
	return isDir && included
}

func (op *CompareWalkOp) NoDescend(path string, node walker.PairNode[status.ComparableNode, status.ComparableNode]) (*StatusTree, error) {
	var fsPath *string
	var targetIsDir bool
	var targetSize uint64
	var targetHash *objectkey.Key
	if node.B.Present {
		b := node.B.Node
		fsPath = b.FSPath
		targetIsDir = b.IsTree
		targetSize = b.FileSize
		targetHash = b.Hash
	} else if node.A.Present {
		targetHash = node.A.Node.Hash
	}
	return &StatusTree{
		Status:      op.status(node),
		FSPath:      fsPath,
		TargetIsDir: targetIsDir,
		TargetSize:  targetSize,
		TargetHash:  targetHash,
	}, nil
}

func (op *CompareWalkOp) PostDescend(path string, node walker.PairNode[status.ComparableNode, status.ComparableNode], children walker.ChildMap[*StatusTree]) (*StatusTree, error) {
	tree, err := op.NoDescend(path, node)
	if err != nil {
		return nil, err
	}
	tree.Children = map[string]*StatusTree(children)
	return tree, nil
}
