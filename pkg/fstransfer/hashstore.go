package fstransfer

import (
	"github.com/sleepymurph/dmv/internal/progress"
	"github.com/sleepymurph/dmv/pkg/dag"
	"github.com/sleepymurph/dmv/pkg/filestore"
	"github.com/sleepymurph/dmv/pkg/objectkey"
	"github.com/sleepymurph/dmv/pkg/objectstore"
	"github.com/sleepymurph/dmv/pkg/status"
	"github.com/sleepymurph/dmv/pkg/vcserrors"
	"github.com/sleepymurph/dmv/pkg/walker"
)

// statusTreeSource adapts an already-built StatusTree to the single-source
// walker: the tree is fully materialized in memory, so lookup is an
// identity and reading children is a map conversion.
type statusTreeSource struct{}

func (statusTreeSource) LookupNode(start *StatusTree) (*StatusTree, error) { return start, nil }

func (statusTreeSource) ReadChildren(node *StatusTree) (walker.ChildMap[*StatusTree], error) {
	return walker.ChildMap[*StatusTree](node.Children), nil
}

// HashAndStoreOp walks a StatusTree (as built by CompareWalkOp) and
// realizes it as stored objects: known hashes (including those of
// unchanged files) pass through, files without one are hashed and stored,
// and directories are assembled into Tree objects bottom-up. A result of
// nil means "drop this entry" (an ignored or deleted path, or an empty
// directory).
type HashAndStoreOp struct {
	Objects  *objectstore.Store
	Files    *filestore.FileStore
	Progress *progress.Counter
}

func (op *HashAndStoreOp) ShouldDescend(path string, node *StatusTree) bool {
	return node.TargetIsDir && status.Included(node.Status, false)
}

func (op *HashAndStoreOp) PreDescend(path string, node *StatusTree) error { return nil }

func (op *HashAndStoreOp) NoDescend(path string, node *StatusTree) (*objectkey.Key, error) {
	if node.Status == status.Ignored || node.Status == status.Deleted {
		return nil, nil
	}
	if node.TargetHash != nil {
		return node.TargetHash, nil
	}
	if node.FSPath != nil {
		hash, err := op.Files.HashFile(*node.FSPath, op.Objects, op.Progress)
		if err != nil {
			return nil, err
		}
		return &hash, nil
	}
	return nil, vcserrors.New(vcserrors.CodeGeneric, path+": node has neither a known hash nor a filesystem path")
}

func (op *HashAndStoreOp) PostDescend(path string, node *StatusTree, children walker.ChildMap[*objectkey.Key]) (*objectkey.Key, error) {
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

// HashPlan realizes plan (as built by CompareWalkOp) into stored objects
// and returns the resulting root hash.
func HashPlan(plan *StatusTree, objects *objectstore.Store, files *filestore.FileStore, counter *progress.Counter) (objectkey.Key, error) {
	op := &HashAndStoreOp{Objects: objects, Files: files, Progress: counter}
	hash, err := walker.Walk[*StatusTree, *StatusTree, *objectkey.Key](statusTreeSource{}, statusTreeSource{}, op, plan)
	if err != nil {
		return objectkey.Key{}, err
	}
	if hash == nil {
		return objectkey.Key{}, vcserrors.New(vcserrors.CodeGeneric, "nothing to hash (all ignored?)")
	}
	return *hash, nil
}
