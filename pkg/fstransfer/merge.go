package fstransfer

import (
	"github.com/sleepymurph/dmv/pkg/dag"
	"github.com/sleepymurph/dmv/pkg/objectkey"
	"github.com/sleepymurph/dmv/pkg/objectstore"
	"github.com/sleepymurph/dmv/pkg/walker"
)

// mergeSource adapts an object store to the three-source walker: all three
// sides (ancestor, theirs, ours) are trees in the same store.
type mergeSource struct {
	objects *objectstore.Store
}

func (s mergeSource) IsTreeA(a objectstore.WalkNode) bool { return a.IsTree() }
func (s mergeSource) IsTreeB(b objectstore.WalkNode) bool { return b.IsTree() }
func (s mergeSource) IsTreeC(c objectstore.WalkNode) bool { return c.IsTree() }

func (s mergeSource) ChildrenA(a objectstore.WalkNode) (walker.ChildMap[objectstore.WalkNode], error) {
	return s.objects.ReadChildren(a)
}
func (s mergeSource) ChildrenB(b objectstore.WalkNode) (walker.ChildMap[objectstore.WalkNode], error) {
	return s.objects.ReadChildren(b)
}
func (s mergeSource) ChildrenC(c objectstore.WalkNode) (walker.ChildMap[objectstore.WalkNode], error) {
	return s.objects.ReadChildren(c)
}

// Conflict records a path where theirs and ours both changed relative to
// the common ancestor, and disagree.
type Conflict struct {
	Path     string
	Ancestor *objectkey.Key
	Theirs   *objectkey.Key
	Ours     *objectkey.Key
}

// ThreeWayMergeWalkOp merges theirs into ours using ancestor as the common
// base: unanimous nodes pass through, a node changed on only one side
// adopts that side's change, and a node changed differently on both sides
// is recorded as a Conflict (resolved provisionally to ours) so the merge
// completes structurally and the caller can report what needs resolving.
type ThreeWayMergeWalkOp struct {
	Objects   *objectstore.Store
	Conflicts []Conflict
}

func hashOf(node walker.Optional[objectstore.WalkNode]) *objectkey.Key {
	if !node.Present {
		return nil
	}
	h := node.Node.Hash
	return &h
}

func keysEqual(a, b *objectkey.Key) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func (op *ThreeWayMergeWalkOp) ShouldDescend(path string, node walker.TripleNode[objectstore.WalkNode, objectstore.WalkNode, objectstore.WalkNode]) bool {
	isTree := func(n walker.Optional[objectstore.WalkNode]) bool { return n.Present && n.Node.IsTree() }
	return isTree(node.Ancestor) || isTree(node.Theirs) || isTree(node.Ours)
}

func (op *ThreeWayMergeWalkOp) NoDescend(path string, node walker.TripleNode[objectstore.WalkNode, objectstore.WalkNode, objectstore.WalkNode]) (*objectkey.Key, error) {
	ancestor, theirs, ours := hashOf(node.Ancestor), hashOf(node.Theirs), hashOf(node.Ours)
	winner, conflict := resolveThreeWay(path, ancestor, theirs, ours)
	if conflict != nil {
		op.Conflicts = append(op.Conflicts, *conflict)
	}
	return winner, nil
}

func (op *ThreeWayMergeWalkOp) PostDescend(path string, node walker.TripleNode[objectstore.WalkNode, objectstore.WalkNode, objectstore.WalkNode], children walker.ChildMap[*objectkey.Key]) (*objectkey.Key, error) {
	var entries []dag.TreeEntry
	for name, hash := range children {
		if hash == nil {
			continue
		}
		entries = append(entries, dag.TreeEntry{Name: name, Hash: *hash})
	}
	if len(entries) == 0 {
		return nil, nil
	}
	tree, err := dag.NewTree(entries)
	if err != nil {
		return nil, err
	}
	hash, err := op.Objects.StoreObject(tree)
	if err != nil {
		return nil, err
	}
	return &hash, nil
}

// Merge three-way merges theirs into ours using ancestor as the base,
// returning the merged tree hash and any conflicts encountered.
func Merge(objects *objectstore.Store, ancestor, theirs, ours objectkey.Key) (objectkey.Key, []Conflict, error) {
	ancestorNode, err := nodeOrAbsent(objects, ancestor)
	if err != nil {
		return objectkey.Key{}, nil, err
	}
	theirsNode, err := nodeOrAbsent(objects, theirs)
	if err != nil {
		return objectkey.Key{}, nil, err
	}
	oursNode, err := nodeOrAbsent(objects, ours)
	if err != nil {
		return objectkey.Key{}, nil, err
	}

	op := &ThreeWayMergeWalkOp{Objects: objects}
	root := walker.TripleNode[objectstore.WalkNode, objectstore.WalkNode, objectstore.WalkNode]{
		Ancestor: ancestorNode, Theirs: theirsNode, Ours: oursNode,
	}
	src := mergeSource{objects: objects}
	hash, err := walker.WalkTriple[objectstore.WalkNode, objectstore.WalkNode, objectstore.WalkNode, *objectkey.Key](src, op, "", root)
	if err != nil {
		return objectkey.Key{}, nil, err
	}
	if hash == nil {
		return objectkey.Key{}, op.Conflicts, nil
	}
	return *hash, op.Conflicts, nil
}

func nodeOrAbsent(objects *objectstore.Store, key objectkey.Key) (walker.Optional[objectstore.WalkNode], error) {
	if key.IsZero() {
		return walker.None[objectstore.WalkNode](), nil
	}
	node, err := objects.LookupNode(key)
	if err != nil {
		return walker.Optional[objectstore.WalkNode]{}, err
	}
	return walker.Some(node), nil
}
