package fstransfer

import (
	"os"
	"path/filepath"

	"github.com/sleepymurph/dmv/internal/progress"
	"github.com/sleepymurph/dmv/pkg/objectkey"
	"github.com/sleepymurph/dmv/pkg/objectstore"
	"github.com/sleepymurph/dmv/pkg/status"
	"github.com/sleepymurph/dmv/pkg/walker"
)

// mergeExtractSource adapts an object store (ancestor, theirs) and a
// filesystem store (ours, the live working directory) to the three-source
// walker.
type mergeExtractSource struct {
	objects *objectstore.Store
	files   *FsTransfer
}

func (s mergeExtractSource) IsTreeA(a objectstore.WalkNode) bool { return a.IsTree() }
func (s mergeExtractSource) IsTreeB(b objectstore.WalkNode) bool { return b.IsTree() }
func (s mergeExtractSource) IsTreeC(c status.ComparableNode) bool { return c.IsTree }

func (s mergeExtractSource) ChildrenA(a objectstore.WalkNode) (walker.ChildMap[objectstore.WalkNode], error) {
	return s.objects.ReadChildren(a)
}
func (s mergeExtractSource) ChildrenB(b objectstore.WalkNode) (walker.ChildMap[objectstore.WalkNode], error) {
	return s.objects.ReadChildren(b)
}
func (s mergeExtractSource) ChildrenC(c status.ComparableNode) (walker.ChildMap[status.ComparableNode], error) {
	return s.files.Files.ReadChildrenComparable(c)
}

// MergeExtractOp three-way merges ancestor/theirs (object store trees)
// into ours (the live working directory), writing the merged content
// directly to disk as it walks. Conflicted paths are left holding ours's
// content and recorded in Conflicts, matching ThreeWayMergeWalkOp's
// provisional resolution.
type MergeExtractOp struct {
	Objects   *objectstore.Store
	Files     *FsTransfer
	Root      string
	Counter   *progress.Counter
	Conflicts []Conflict
}

func (op *MergeExtractOp) absPath(path string) string {
	return filepath.Join(op.Root, filepath.FromSlash(path))
}

func (op *MergeExtractOp) ShouldDescend(path string, node walker.TripleNode[objectstore.WalkNode, objectstore.WalkNode, status.ComparableNode]) bool {
	isTree := func(present bool, tree bool) bool { return present && tree }
	return isTree(node.Ancestor.Present, node.Ancestor.Node.IsTree()) ||
		isTree(node.Theirs.Present, node.Theirs.Node.IsTree()) ||
		isTree(node.Ours.Present, node.Ours.Node.IsTree)
}

func (op *MergeExtractOp) NoDescend(path string, node walker.TripleNode[objectstore.WalkNode, objectstore.WalkNode, status.ComparableNode]) (struct{}, error) {
	var ancestor, theirs, ours *objectkey.Key
	if node.Ancestor.Present {
		h := node.Ancestor.Node.Hash
		ancestor = &h
	}
	if node.Theirs.Present {
		h := node.Theirs.Node.Hash
		theirs = &h
	}
	if node.Ours.Present {
		ours = node.Ours.Node.Hash
	}

	winner, conflict := resolveThreeWay(path, ancestor, theirs, ours)
	if conflict != nil {
		op.Conflicts = append(op.Conflicts, *conflict)
	}
	if winner == nil || keysEqual(winner, ours) {
		return struct{}{}, nil
	}

	absPath := op.absPath(path)
	if err := os.MkdirAll(filepath.Dir(absPath), 0755); err != nil {
		return struct{}{}, err
	}
	return struct{}{}, op.Files.Files.ExtractFile(op.Objects, *winner, absPath, op.Counter)
}

func (op *MergeExtractOp) PostDescend(path string, node walker.TripleNode[objectstore.WalkNode, objectstore.WalkNode, status.ComparableNode], children walker.ChildMap[struct{}]) (struct{}, error) {
	if path == "" {
		return struct{}{}, nil
	}
	return struct{}{}, os.MkdirAll(op.absPath(path), 0755)
}

// resolveThreeWay applies the same unanimous/single-side-changed/conflict
// rule as ThreeWayMergeWalkOp, returning the winning hash (nil for "no
// object here") and, on disagreement, the Conflict to report.
func resolveThreeWay(path string, ancestor, theirs, ours *objectkey.Key) (*objectkey.Key, *Conflict) {
	if keysEqual(theirs, ours) {
		return theirs, nil
	}
	if keysEqual(theirs, ancestor) {
		return ours, nil
	}
	if keysEqual(ours, ancestor) {
		return theirs, nil
	}
	return ours, &Conflict{Path: path, Ancestor: ancestor, Theirs: theirs, Ours: ours}
}

// MergeExtract three-way merges theirs into the working directory at root,
// using ancestor as the common base, writing the result directly to disk.
func MergeExtract(objects *objectstore.Store, files *FsTransfer, ancestor, theirs objectkey.Key, root string, counter *progress.Counter) ([]Conflict, error) {
	ancestorNode, err := nodeOrAbsent(objects, ancestor)
	if err != nil {
		return nil, err
	}
	theirsNode, err := nodeOrAbsent(objects, theirs)
	if err != nil {
		return nil, err
	}
	oursComparable, err := files.Files.LookupComparable(root)
	if err != nil {
		return nil, err
	}

	op := &MergeExtractOp{Objects: objects, Files: files, Root: root, Counter: counter}
	src := mergeExtractSource{objects: objects, files: files}
	rootNode := walker.TripleNode[objectstore.WalkNode, objectstore.WalkNode, status.ComparableNode]{
		Ancestor: ancestorNode, Theirs: theirsNode, Ours: walker.Some(oursComparable),
	}
	_, err = walker.WalkTriple[objectstore.WalkNode, objectstore.WalkNode, status.ComparableNode, struct{}](src, op, "", rootNode)
	if err != nil {
		return nil, err
	}
	return op.Conflicts, nil
}
