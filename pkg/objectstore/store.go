// Package objectstore implements the on-disk, content-addressed object
// store: placement under objects/<hh>/<rest>, the ref map, revspec
// resolution, and the integrity scan.
package objectstore

import (
	"io"
	"os"
	"path/filepath"

	"github.com/sleepymurph/dmv/pkg/constants"
	"github.com/sleepymurph/dmv/pkg/dag"
	"github.com/sleepymurph/dmv/pkg/objectkey"
	"github.com/sleepymurph/dmv/pkg/vcserrors"
)

// Store is a repository's object database: a directory of immutable
// content-addressed object files plus a mutable ref map.
type Store struct {
	root string
	refs *RefMap
}

// Init creates the object store directory layout at root (if absent) and
// opens it.
func Init(root string) (*Store, error) {
	if err := os.MkdirAll(filepath.Join(root, constants.ObjectsDirName), 0755); err != nil {
		return nil, vcserrors.IO("while creating object store directory", err)
	}
	return Open(root)
}

// Open opens an existing object store rooted at root, reading its ref map
// (or starting with an empty one if no refs file exists yet).
func Open(root string) (*Store, error) {
	refs, err := OpenRefMap(filepath.Join(root, constants.RefsFileName))
	if err != nil {
		return nil, err
	}
	return &Store{root: root, refs: refs}, nil
}

// Root returns the object store's root directory.
func (s *Store) Root() string { return s.root }

func (s *Store) objectPath(key objectkey.Key) string {
	return s.objectPathSloppy(key.String())
}

// objectPathSloppy builds an object path from a full or partial hex string,
// sharding on the first two hex characters as objects/<hh>/<rest>.
func (s *Store) objectPathSloppy(hex string) string {
	if len(hex) < 2 {
		return filepath.Join(s.root, constants.ObjectsDirName, hex)
	}
	return filepath.Join(s.root, constants.ObjectsDirName, hex[:2], hex[2:])
}

func (s *Store) keyFromPath(path string) (objectkey.Key, error) {
	rel, err := filepath.Rel(filepath.Join(s.root, constants.ObjectsDirName), path)
	if err != nil {
		return objectkey.Key{}, vcserrors.Wrap(vcserrors.CodeBadObjectKey, "while deriving key from object path", err)
	}
	hex := filepath.Dir(rel) + filepath.Base(rel)
	return objectkey.Parse(hex)
}

// HasObject reports whether an object with the given key is already stored.
func (s *Store) HasObject(key objectkey.Key) bool {
	_, err := os.Stat(s.objectPath(key))
	return err == nil
}

// StoreObject writes obj to the store, returning its key. The store is
// idempotent: if the object already exists, no I/O beyond the existence
// probe is performed.
func (s *Store) StoreObject(obj dag.Object) (objectkey.Key, error) {
	encoded, key, err := dag.EncodeToBytes(obj)
	if err != nil {
		return objectkey.Key{}, err
	}
	if s.HasObject(key) {
		return key, nil
	}

	tmpPath := filepath.Join(s.root, constants.TmpFileName)
	if err := os.MkdirAll(filepath.Dir(tmpPath), 0755); err != nil {
		return objectkey.Key{}, vcserrors.IO("while preparing tmp file", err)
	}
	if err := os.WriteFile(tmpPath, encoded, 0644); err != nil {
		return objectkey.Key{}, vcserrors.IO("while writing tmp object file", err)
	}

	permPath := s.objectPath(key)
	if err := os.MkdirAll(filepath.Dir(permPath), 0755); err != nil {
		return objectkey.Key{}, vcserrors.IO("while creating object directory", err)
	}
	if err := os.Rename(tmpPath, permPath); err != nil {
		return objectkey.Key{}, vcserrors.IO("while moving object into place", err)
	}
	return key, nil
}

// StoreStream stores raw, already-encoded object bytes (header and
// content) read from r, verifying nothing beyond what the caller already
// computed as key. It is for callers that construct objects incrementally
// and already know the key; the chunked-file path stores its objects with
// StoreObject instead.
func (s *Store) StoreStream(key objectkey.Key, r io.Reader) error {
	if s.HasObject(key) {
		_, err := io.Copy(io.Discard, r)
		return err
	}
	tmpPath := filepath.Join(s.root, constants.TmpFileName)
	if err := os.MkdirAll(filepath.Dir(tmpPath), 0755); err != nil {
		return vcserrors.IO("while preparing tmp file", err)
	}
	f, err := os.OpenFile(tmpPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return vcserrors.IO("while opening tmp object file", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		return vcserrors.IO("while writing tmp object file", err)
	}
	if err := f.Close(); err != nil {
		return vcserrors.IO("while closing tmp object file", err)
	}
	permPath := s.objectPath(key)
	if err := os.MkdirAll(filepath.Dir(permPath), 0755); err != nil {
		return vcserrors.IO("while creating object directory", err)
	}
	if err := os.Rename(tmpPath, permPath); err != nil {
		return vcserrors.IO("while moving object into place", err)
	}
	return nil
}

// OpenObjectFile opens the raw file backing key for reading.
func (s *Store) OpenObjectFile(key objectkey.Key) (*os.File, error) {
	if !s.HasObject(key) {
		return nil, vcserrors.New(vcserrors.CodeObjectNotFound, key.String()+" not found in object store")
	}
	f, err := os.Open(s.objectPath(key))
	if err != nil {
		return nil, vcserrors.IO("while opening object file", err)
	}
	return f, nil
}
