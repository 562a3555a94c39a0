// Package workdir ties the object store and filesystem store together
// into the working directory: branch and parent tracking, and the
// commit, checkout, merge, and log operations built on top of them.
package workdir

import (
	"path/filepath"
	"strings"

	"github.com/sleepymurph/dmv/internal/progress"
	"github.com/sleepymurph/dmv/internal/reporoot"
	"github.com/sleepymurph/dmv/pkg/dag"
	"github.com/sleepymurph/dmv/pkg/fstransfer"
	"github.com/sleepymurph/dmv/pkg/objectkey"
	"github.com/sleepymurph/dmv/pkg/objectstore"
	"github.com/sleepymurph/dmv/pkg/vcserrors"
)

// WorkDir is a repository's working directory: an object store plus a
// filesystem transfer helper plus the branch/parent state that survives
// between invocations.
type WorkDir struct {
	Objects  *objectstore.Store
	Transfer *fstransfer.FsTransfer
	Path     string
	state    *diskState
}

// Init creates a new object store at layout and a fresh working directory
// state.
func Init(layout reporoot.Layout) (*WorkDir, error) {
	store, err := objectstore.Init(layout.HiddenDir)
	if err != nil {
		return nil, err
	}
	return &WorkDir{
		Objects:  store,
		Transfer: fstransfer.New(store),
		Path:     layout.WorkingRoot,
		state:    initState(layout.WorkingRoot),
	}, nil
}

// Open opens an existing repository at layout, reading its working
// directory state.
func Open(layout reporoot.Layout) (*WorkDir, error) {
	store, err := objectstore.Open(layout.HiddenDir)
	if err != nil {
		return nil, err
	}
	state, err := openState(layout.WorkingRoot)
	if err != nil {
		return nil, err
	}
	return &WorkDir{
		Objects:  store,
		Transfer: fstransfer.New(store),
		Path:     layout.WorkingRoot,
		state:    state,
	}, nil
}

// Branch returns the branch the working directory tracks, and whether it
// has one (false means a detached head).
func (w *WorkDir) Branch() (string, bool) {
	return w.state.value.Branch, w.state.value.Branch != ""
}

// Subtree returns the subtree path the working directory was checked out
// from, and whether it has one.
func (w *WorkDir) Subtree() (string, bool) {
	return w.state.value.Subtree, w.state.value.Subtree != ""
}

// Parents returns the current parent commits: zero before any commit, one
// in the ordinary case, more than one mid-merge.
func (w *WorkDir) Parents() []objectkey.Key {
	return append([]objectkey.Key(nil), w.state.value.Parents...)
}

// FlushState writes the working directory's current state to disk if it
// has changed since the last flush.
func (w *WorkDir) FlushState() error {
	return w.state.flush()
}

// Head returns the first parent commit, and whether there is one.
func (w *WorkDir) Head() (objectkey.Key, bool) {
	if len(w.state.value.Parents) == 0 {
		return objectkey.Key{}, false
	}
	return w.state.value.Parents[0], true
}

// Commit hashes the working directory against its current parent (or the
// parent's subtree, if checked out as one), stores the result as a new
// Commit object, advances the tracked branch (if any) to point at it, and
// records it as the sole new parent.
func (w *WorkDir) Commit(message string) (branch string, hash objectkey.Key, err error) {
	parents := w.state.value.Parents
	var parentCommit *objectkey.Key
	if len(parents) > 0 {
		h := parents[0]
		parentCommit = &h
	}

	var baseline objectkey.Key
	if parentCommit != nil {
		baseline = *parentCommit
		if w.state.value.Subtree != "" {
			subtreeHash, ok, err := w.Objects.LookupTreePath(*parentCommit, w.state.value.Subtree)
			if err != nil {
				return "", objectkey.Key{}, err
			}
			if ok {
				baseline = subtreeHash
			}
		}
	}

	treeHash, err := w.Transfer.HashPath(baseline, w.Path, nil)
	if err != nil {
		return "", objectkey.Key{}, err
	}

	if parentCommit != nil && w.state.value.Subtree != "" {
		treeHash, err = w.patchSubtree(*parentCommit, w.state.value.Subtree, treeHash)
		if err != nil {
			return "", objectkey.Key{}, err
		}
	}

	commit := &dag.Commit{
		Tree:    treeHash,
		Parents: append([]objectkey.Key(nil), parents...),
		Message: message,
	}
	hash, err = w.Objects.StoreObject(commit)
	if err != nil {
		return "", objectkey.Key{}, err
	}

	w.state.value.Parents = []objectkey.Key{hash}
	if w.state.value.Branch != "" {
		if err := w.Objects.UpdateRef(w.state.value.Branch, hash); err != nil {
			return "", objectkey.Key{}, err
		}
	}
	if err := w.state.flush(); err != nil {
		return "", objectkey.Key{}, err
	}
	return w.state.value.Branch, hash, nil
}

// patchSubtree rebuilds rootTree with the tree entry at subtreePath
// replaced by newHash, re-storing every tree along the path from the root
// down to (and including) subtreePath's parent.
func (w *WorkDir) patchSubtree(rootTree objectkey.Key, subtreePath string, newHash objectkey.Key) (objectkey.Key, error) {
	type frame struct {
		tree      *dag.Tree
		component string
	}
	var stack []frame
	current := rootTree
	for _, component := range strings.Split(filepath.ToSlash(subtreePath), "/") {
		if component == "" {
			continue
		}
		tree, err := w.Objects.OpenTree(current)
		if err != nil {
			return objectkey.Key{}, err
		}
		child, _ := tree.Lookup(component)
		stack = append(stack, frame{tree: tree, component: component})
		current = child
	}

	result := newHash
	for i := len(stack) - 1; i >= 0; i-- {
		f := stack[i]
		entries := make([]dag.TreeEntry, 0, len(f.tree.Entries))
		for _, e := range f.tree.Entries {
			if e.Name == f.component {
				entries = append(entries, dag.TreeEntry{Name: e.Name, Hash: result})
			} else {
				entries = append(entries, e)
			}
		}
		newTree, err := dag.NewTree(entries)
		if err != nil {
			return objectkey.Key{}, err
		}
		hash, err := w.Objects.StoreObject(newTree)
		if err != nil {
			return objectkey.Key{}, err
		}
		result = hash
	}
	return result, nil
}

// Checkout extracts rev's tree to disk (skipping extraction if rev names
// the same commit and subtree already checked out) and updates the
// working directory's parent, branch, and subtree to match rev.
func (w *WorkDir) Checkout(rev objectstore.RevSpec) error {
	target, commit, ref, err := w.Objects.Lookup(rev)
	if err != nil {
		return err
	}

	sameCommit := len(w.state.value.Parents) == 1 && w.state.value.Parents[0] == commit
	sameSubtree := w.state.value.Subtree == rev.Path
	if !sameCommit || !sameSubtree {
		if err := w.Transfer.ExtractObject(target, w.Path, nil); err != nil {
			return err
		}
		w.state.value.Parents = []objectkey.Key{commit}
	}
	w.state.value.Branch = ref
	w.state.value.Subtree = rev.Path
	return w.state.flush()
}

// Merge three-way merges each of revs into the working directory in turn,
// finding the common ancestor among the accumulating parent set before
// each merge. Conflicted paths are left holding the working directory's
// own content; all conflicts across every rev are returned together.
func (w *WorkDir) Merge(revs []objectstore.RevSpec, counter *progress.Counter) ([]fstransfer.Conflict, error) {
	var allConflicts []fstransfer.Conflict
	for _, rev := range revs {
		theirs, err := w.Objects.FindObject(rev)
		if err != nil {
			return allConflicts, err
		}

		w.state.value.Parents = append(w.state.value.Parents, theirs)
		if err := w.state.flush(); err != nil {
			return allConflicts, err
		}

		ancestor, ok, err := w.Objects.FindCommonAncestor(w.state.value.Parents...)
		if err != nil {
			return allConflicts, err
		}
		if !ok {
			ancestor = objectkey.Key{}
		}

		conflicts, err := fstransfer.MergeExtract(w.Objects, w.Transfer, ancestor, theirs, w.Path, counter)
		if err != nil {
			return allConflicts, err
		}
		allConflicts = append(allConflicts, conflicts...)
	}
	return allConflicts, nil
}

// UpdateRefToHead points ref at the current head, failing if there is no
// head yet (no commit has been made).
func (w *WorkDir) UpdateRefToHead(ref string) (objectkey.Key, error) {
	head, ok := w.Head()
	if !ok {
		return objectkey.Key{}, vcserrors.New(vcserrors.CodeGeneric,
			"asked to set ref '"+ref+"' to head, but there is no current head (no initial commit)")
	}
	if err := w.Objects.UpdateRef(ref, head); err != nil {
		return objectkey.Key{}, err
	}
	return head, nil
}
