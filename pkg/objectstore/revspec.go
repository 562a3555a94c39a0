package objectstore

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/sleepymurph/dmv/pkg/dag"
	"github.com/sleepymurph/dmv/pkg/objectkey"
	"github.com/sleepymurph/dmv/pkg/vcserrors"
)

// RevSpec names a revision (full hash, short hash, or ref name) plus an
// optional path to resolve inside its tree.
type RevSpec struct {
	RevName string
	Path    string
}

// ParseRevSpec parses the command-line grammar refname[:path] or
// hex_prefix[:path].
func ParseRevSpec(s string) RevSpec {
	if idx := strings.Index(s, ":"); idx >= 0 {
		return RevSpec{RevName: s[:idx], Path: s[idx+1:]}
	}
	return RevSpec{RevName: s}
}

// FindObject resolves rev to a hash, returning RevNotFound if it cannot be
// resolved.
func (s *Store) FindObject(rev RevSpec) (objectkey.Key, error) {
	key, ok, err := s.TryFindObject(rev)
	if err != nil {
		return objectkey.Key{}, err
	}
	if !ok {
		return objectkey.Key{}, vcserrors.New(vcserrors.CodeRevNotFound, "revision not found: "+rev.RevName)
	}
	return key, nil
}

// TryFindObject resolves rev.RevName to a hash (exact ref, then short or
// full hex), then walks rev.Path component by component through trees
// starting from that hash, transparently opening a Commit's tree first.
func (s *Store) TryFindObject(rev RevSpec) (objectkey.Key, bool, error) {
	base, ok, err := s.resolveRevName(rev.RevName)
	if err != nil || !ok {
		return objectkey.Key{}, ok, err
	}
	if rev.Path == "" {
		return base, true, nil
	}
	return s.tryFindTreePath(base, rev.Path)
}

// Lookup resolves rev the same way TryFindObject does, additionally
// reporting the commit (or other base object) hash before any subtree
// descent and the ref name matched, if rev.RevName names one — the facts
// a checkout needs to update its working directory state.
func (s *Store) Lookup(rev RevSpec) (target objectkey.Key, commit objectkey.Key, ref string, err error) {
	var ok bool
	commit, ok, err = s.resolveRevName(rev.RevName)
	if err != nil {
		return objectkey.Key{}, objectkey.Key{}, "", err
	}
	if !ok {
		return objectkey.Key{}, objectkey.Key{}, "", vcserrors.New(vcserrors.CodeRevNotFound, "revision not found: "+rev.RevName)
	}
	if _, isRef := s.TryFindRef(rev.RevName); isRef {
		ref = rev.RevName
	}
	if rev.Path == "" {
		return commit, commit, ref, nil
	}
	target, ok, err = s.tryFindTreePath(commit, rev.Path)
	if err != nil {
		return objectkey.Key{}, objectkey.Key{}, "", err
	}
	if !ok {
		return objectkey.Key{}, objectkey.Key{}, "", vcserrors.New(vcserrors.CodeRevNotFound, "path not found: "+rev.Path)
	}
	return target, commit, ref, nil
}

// LookupTreePath resolves path inside hash's tree, transparently
// dereferencing hash's commit first if it names one instead of a tree.
func (s *Store) LookupTreePath(hash objectkey.Key, path string) (objectkey.Key, bool, error) {
	return s.tryFindTreePath(hash, path)
}

func (s *Store) resolveRevName(name string) (objectkey.Key, bool, error) {
	if key, ok := s.TryFindRef(name); ok {
		return key, true, nil
	}
	if key, err := objectkey.Parse(name); err == nil {
		if s.HasObject(key) {
			return key, true, nil
		}
	}
	if objectkey.IsShortHex(name) {
		key, ok, err := s.tryFindShortHash(name)
		if err != nil {
			return objectkey.Key{}, false, err
		}
		if ok {
			return key, true, nil
		}
	}
	return objectkey.Key{}, false, nil
}

// tryFindShortHash finds the single file under objects/<first two hex
// chars>/ whose name starts with the remaining prefix; multiple matches
// tolerate "first match wins" in directory order.
func (s *Store) tryFindShortHash(prefix string) (objectkey.Key, bool, error) {
	path := s.objectPathSloppy(prefix)
	dir := filepath.Dir(path)
	shortName := filepath.Base(path)

	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return objectkey.Key{}, false, nil
	}
	if err != nil {
		return objectkey.Key{}, false, vcserrors.IO("while listing object shard directory", err)
	}
	for _, entry := range entries {
		if strings.HasPrefix(entry.Name(), shortName) {
			key, err := s.keyFromPath(filepath.Join(dir, entry.Name()))
			if err != nil {
				return objectkey.Key{}, false, err
			}
			return key, true, nil
		}
	}
	return objectkey.Key{}, false, nil
}

// tryFindTreePath walks path component by component from key, opening a
// Commit's tree transparently first.
func (s *Store) tryFindTreePath(key objectkey.Key, path string) (objectkey.Key, bool, error) {
	h, err := s.OpenObject(key)
	if err != nil {
		return objectkey.Key{}, false, err
	}
	next := key
	if h.Header().Type == dag.TypeCommit {
		commit, err := h.ReadCommit()
		if err != nil {
			return objectkey.Key{}, false, err
		}
		next = commit.Tree
	}
	if path == "" {
		return next, true, nil
	}

	for _, component := range strings.Split(filepath.ToSlash(path), "/") {
		if component == "" {
			continue
		}
		tree, err := s.OpenTree(next)
		if err != nil {
			return objectkey.Key{}, false, vcserrors.Wrap(vcserrors.CodeGeneric,
				"while opening "+next.String()+"/"+component, err)
		}
		child, ok := tree.Lookup(component)
		if !ok {
			return objectkey.Key{}, false, nil
		}
		next = child
	}
	return next, true, nil
}
