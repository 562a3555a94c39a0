package fstransfer

import (
	"github.com/sleepymurph/dmv/pkg/dag"
	"github.com/sleepymurph/dmv/pkg/objectkey"
	"github.com/sleepymurph/dmv/pkg/objectstore"
	"github.com/sleepymurph/dmv/pkg/status"
	"github.com/sleepymurph/dmv/pkg/walker"
)

// treeDiffSource is compareSource's symmetric twin: both sides live in the
// object store, used to diff two revisions directly rather than a
// revision against the working directory.
type treeDiffSource struct {
	objects *objectstore.Store
}

func (s treeDiffSource) IsTreeA(a status.ComparableNode) bool { return a.IsTree }
func (s treeDiffSource) IsTreeB(b status.ComparableNode) bool { return b.IsTree }

func (s treeDiffSource) childrenOf(node status.ComparableNode) (walker.ChildMap[status.ComparableNode], error) {
	wn := objectstore.WalkNode{Hash: *node.Hash, Type: dag.TypeTree}
	children, err := s.objects.ComparableChildren(wn)
	if err != nil {
		return nil, err
	}
	return walker.ChildMap[status.ComparableNode](children), nil
}

func (s treeDiffSource) ChildrenA(a status.ComparableNode) (walker.ChildMap[status.ComparableNode], error) {
	return s.childrenOf(a)
}

func (s treeDiffSource) ChildrenB(b status.ComparableNode) (walker.ChildMap[status.ComparableNode], error) {
	return s.childrenOf(b)
}

// TreeDiff compares two object-store trees directly (no working directory
// involved), producing the same StatusTree shape ComparePlan does so both
// can share a printer.
func TreeDiff(objects *objectstore.Store, from, to objectkey.Key) (*StatusTree, error) {
	src := treeDiffSource{objects: objects}
	op := &CompareWalkOp{ShowIgnored: true}

	var a walker.Optional[status.ComparableNode]
	if !from.IsZero() {
		node, err := objects.LookupNode(from)
		if err != nil {
			return nil, err
		}
		cn, err := objects.Comparable(node)
		if err != nil {
			return nil, err
		}
		a = walker.Some(cn)
	} else {
		a = walker.None[status.ComparableNode]()
	}

	var b walker.Optional[status.ComparableNode]
	if !to.IsZero() {
		node, err := objects.LookupNode(to)
		if err != nil {
			return nil, err
		}
		cn, err := objects.Comparable(node)
		if err != nil {
			return nil, err
		}
		b = walker.Some(cn)
	} else {
		b = walker.None[status.ComparableNode]()
	}

	root := walker.PairNode[status.ComparableNode, status.ComparableNode]{A: a, B: b}
	return walker.WalkPair[status.ComparableNode, status.ComparableNode, *StatusTree](src, op, "", root)
}
