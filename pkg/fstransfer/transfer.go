package fstransfer

import (
	"github.com/sleepymurph/dmv/internal/progress"
	"github.com/sleepymurph/dmv/pkg/filestore"
	"github.com/sleepymurph/dmv/pkg/objectkey"
	"github.com/sleepymurph/dmv/pkg/objectstore"
	"github.com/sleepymurph/dmv/pkg/status"
	"github.com/sleepymurph/dmv/pkg/walker"
)

// FsTransfer combines an object store and a filesystem store to move trees
// between them.
type FsTransfer struct {
	Objects *objectstore.Store
	Files   *filestore.FileStore
}

// New pairs an already-open object store with a fresh filesystem store.
func New(objects *objectstore.Store) *FsTransfer {
	return &FsTransfer{Objects: objects, Files: filestore.New()}
}

// ComparePlan builds a StatusTree comparing baseline (a tree hash, or the
// zero key for "nothing") against the working directory at path.
func (t *FsTransfer) ComparePlan(baseline objectkey.Key, path string) (*StatusTree, error) {
	var a walker.Optional[status.ComparableNode]
	if !baseline.IsZero() {
		node, err := t.Objects.LookupNode(baseline)
		if err != nil {
			return nil, err
		}
		cn, err := t.Objects.Comparable(node)
		if err != nil {
			return nil, err
		}
		a = walker.Some(cn)
	} else {
		a = walker.None[status.ComparableNode]()
	}

	fileNode, err := t.Files.LookupComparable(path)
	if err != nil {
		return nil, err
	}

	src := compareSource{objects: t.Objects, files: t.Files}
	op := &CompareWalkOp{}
	root := walker.PairNode[status.ComparableNode, status.ComparableNode]{A: a, B: walker.Some(fileNode)}
	return walker.WalkPair[status.ComparableNode, status.ComparableNode, *StatusTree](src, op, "", root)
}

// HashPath computes a StatusTree for path against baseline, then realizes
// it into stored objects, returning the resulting hash.
func (t *FsTransfer) HashPath(baseline objectkey.Key, path string, counter *progress.Counter) (objectkey.Key, error) {
	plan, err := t.ComparePlan(baseline, path)
	if err != nil {
		return objectkey.Key{}, err
	}
	return HashPlan(plan, t.Objects, t.Files, counter)
}

// ExtractObject materializes hash (a Tree, Commit, or file object) under
// root.
func (t *FsTransfer) ExtractObject(hash objectkey.Key, root string, counter *progress.Counter) error {
	op := &ExtractObjectOp{Objects: t.Objects, Files: t.Files, Root: root, Counter: counter}
	_, err := walker.Walk[objectkey.Key, objectstore.WalkNode, struct{}](t.Objects, t.Objects, op, hash)
	return err
}
