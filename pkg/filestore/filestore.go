// Package filestore is the filesystem's counterpart to the object store: it
// reads files and directories, consults and updates a per-directory hash
// cache, and respects an ignore list, presenting the working directory as a
// tree the walker framework can traverse.
package filestore

import (
	"io"
	"os"
	"path/filepath"

	"github.com/sleepymurph/dmv/internal/progress"
	"github.com/sleepymurph/dmv/pkg/chunker"
	"github.com/sleepymurph/dmv/pkg/dag"
	"github.com/sleepymurph/dmv/pkg/hashcache"
	"github.com/sleepymurph/dmv/pkg/ignore"
	"github.com/sleepymurph/dmv/pkg/objectkey"
	"github.com/sleepymurph/dmv/pkg/objectstore"
	"github.com/sleepymurph/dmv/pkg/status"
	"github.com/sleepymurph/dmv/pkg/vcserrors"
	"github.com/sleepymurph/dmv/pkg/walker"
)

// countingReader wraps a reader, adding every byte read to a progress
// counter.
type countingReader struct {
	r       io.Reader
	counter *progress.Counter
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	if n > 0 {
		c.counter.Add(uint64(n))
	}
	return n, err
}

// countingWriter wraps a writer, adding every byte written to a progress
// counter.
type countingWriter struct {
	w       io.Writer
	counter *progress.Counter
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	if n > 0 {
		c.counter.Add(uint64(n))
	}
	return n, err
}

// FileWalkNode is a filesystem path plus its metadata, a cached hash if the
// cache has one, and whether the path is ignored.
type FileWalkNode struct {
	Path      string
	IsDir     bool
	Size      uint64
	Hash      *objectkey.Key
	IsIgnored bool
}

// Comparable converts a FileWalkNode into the node shape status comparison
// operates on.
func (n FileWalkNode) Comparable() status.ComparableNode {
	path := n.Path
	return status.ComparableNode{
		IsTree:    n.IsDir,
		FileSize:  n.Size,
		Hash:      n.Hash,
		FSPath:    &path,
		IsIgnored: n.IsIgnored,
	}
}

// FileStore reads the working directory in parallel with the object store:
// a hash cache registry to skip rehashing unchanged files, and an ignore
// list to skip excluded paths.
type FileStore struct {
	Cache   *hashcache.Registry
	Ignored *ignore.List
}

// New creates a FileStore with a fresh cache registry and the default
// ignore list.
func New() *FileStore {
	return &FileStore{Cache: hashcache.NewRegistry(), Ignored: ignore.Default()}
}

// LookupNode stats path and checks the cache for a known hash, without
// reading the file's content.
func (fs *FileStore) LookupNode(path string) (FileWalkNode, error) {
	info, err := os.Stat(path)
	if err != nil {
		return FileWalkNode{}, vcserrors.IO("while statting "+path, err)
	}
	node := FileWalkNode{
		Path:      path,
		IsDir:     info.IsDir(),
		Size:      uint64(info.Size()),
		IsIgnored: fs.Ignored.Ignores(path),
	}
	if !info.IsDir() {
		cache, err := fs.Cache.For(filepath.Dir(path))
		if err != nil {
			return FileWalkNode{}, err
		}
		stat := hashcache.Stats{Size: info.Size(), MtimeSecs: info.ModTime().Unix(), MtimeNanos: int64(info.ModTime().Nanosecond())}
		if hash, ok := cache.Lookup(filepath.Base(path), stat); ok {
			node.Hash = &hash
		}
	}
	return node, nil
}

// ReadChildren lists the entries of a directory node, looking each one up
// in turn.
func (fs *FileStore) ReadChildren(node FileWalkNode) (walker.ChildMap[FileWalkNode], error) {
	entries, err := os.ReadDir(node.Path)
	if err != nil {
		return nil, vcserrors.IO("while reading directory "+node.Path, err)
	}
	children := make(walker.ChildMap[FileWalkNode], len(entries))
	for _, e := range entries {
		childPath := filepath.Join(node.Path, e.Name())
		child, err := fs.LookupNode(childPath)
		if err != nil {
			return nil, err
		}
		children[e.Name()] = child
	}
	return children, nil
}

// HashFile stores path's content (chunked through an object reader) and
// returns the key of its final object, consulting and updating the hash
// cache so an unchanged file is never reread.
func (fs *FileStore) HashFile(path string, store *objectstore.Store, counter *progress.Counter) (objectkey.Key, error) {
	info, err := os.Stat(path)
	if err != nil {
		return objectkey.Key{}, vcserrors.IO("while statting "+path, err)
	}
	cache, err := fs.Cache.For(filepath.Dir(path))
	if err != nil {
		return objectkey.Key{}, err
	}
	stat := hashcache.Stats{Size: info.Size(), MtimeSecs: info.ModTime().Unix(), MtimeNanos: int64(info.ModTime().Nanosecond())}
	basename := filepath.Base(path)
	if hash, ok := cache.Lookup(basename, stat); ok {
		return hash, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return objectkey.Key{}, vcserrors.IO("while opening "+path, err)
	}
	defer f.Close()

	var r = io.Reader(f)
	if counter != nil {
		r = &countingReader{r: r, counter: counter}
	}

	last, err := chunker.ReadAll(r, func(obj dag.Object, key objectkey.Key) error {
		if store.HasObject(key) {
			return nil
		}
		_, err := store.StoreObject(obj)
		return err
	})
	if err != nil {
		return objectkey.Key{}, err
	}

	if err := cache.Insert(basename, stat, last); err != nil {
		return objectkey.Key{}, err
	}
	return last, nil
}

// ExtractFile materializes hash's Blob content at path, consulting and
// updating the hash cache so an already-current file is left untouched.
func (fs *FileStore) ExtractFile(store *objectstore.Store, hash objectkey.Key, path string, counter *progress.Counter) error {
	if info, err := os.Stat(path); err == nil {
		if info.IsDir() {
			if err := os.RemoveAll(path); err != nil {
				return vcserrors.IO("while removing directory to extract file "+path, err)
			}
		} else {
			cache, err := fs.Cache.For(filepath.Dir(path))
			if err != nil {
				return err
			}
			stat := hashcache.Stats{Size: info.Size(), MtimeSecs: info.ModTime().Unix(), MtimeNanos: int64(info.ModTime().Nanosecond())}
			if cached, ok := cache.Lookup(filepath.Base(path), stat); ok && cached == hash {
				return nil
			}
		}
	}

	out, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return vcserrors.IO("while creating "+path, err)
	}
	defer out.Close()

	var w io.Writer = out
	if counter != nil {
		w = &countingWriter{w: w, counter: counter}
	}
	if err := store.CopyBlobContent(hash, w); err != nil {
		return err
	}

	info, err := out.Stat()
	if err != nil {
		return vcserrors.IO("while statting extracted file "+path, err)
	}
	cache, err := fs.Cache.For(filepath.Dir(path))
	if err != nil {
		return err
	}
	stat := hashcache.Stats{Size: info.Size(), MtimeSecs: info.ModTime().Unix(), MtimeNanos: int64(info.ModTime().Nanosecond())}
	return cache.Insert(filepath.Base(path), stat, hash)
}

// LookupComparable is LookupNode followed by a conversion to the
// status-comparison node shape, for use on the filesystem side of a
// CompareWalkOp pairing against an object tree.
func (fs *FileStore) LookupComparable(path string) (status.ComparableNode, error) {
	node, err := fs.LookupNode(path)
	if err != nil {
		return status.ComparableNode{}, err
	}
	return node.Comparable(), nil
}

// ReadChildrenComparable lists a directory's children as comparable nodes.
func (fs *FileStore) ReadChildrenComparable(node status.ComparableNode) (walker.ChildMap[status.ComparableNode], error) {
	if node.FSPath == nil {
		return nil, vcserrors.New(vcserrors.CodeGeneric, "filesystem node has no path")
	}
	entries, err := os.ReadDir(*node.FSPath)
	if err != nil {
		return nil, vcserrors.IO("while reading directory "+*node.FSPath, err)
	}
	children := make(walker.ChildMap[status.ComparableNode], len(entries))
	for _, e := range entries {
		childPath := filepath.Join(*node.FSPath, e.Name())
		child, err := fs.LookupComparable(childPath)
		if err != nil {
			return nil, err
		}
		children[e.Name()] = child
	}
	return children, nil
}
