// Package hashcache implements the per-directory stat-keyed hash cache:
// a JSON sidecar file mapping a file's basename to the size/mtime/hash
// seen the last time it was hashed, so unchanged files are never reread.
package hashcache

import (
	"bytes"
	"os"
	"path/filepath"

	"lukechampine.com/blake3"

	"github.com/sleepymurph/dmv/pkg/codec/jsoncanon"
	"github.com/sleepymurph/dmv/pkg/constants"
	"github.com/sleepymurph/dmv/pkg/objectkey"
	"github.com/sleepymurph/dmv/pkg/vcserrors"
)

// Stats is the filesystem stat captured for a cache entry.
type Stats struct {
	Size       int64
	MtimeSecs  int64
	MtimeNanos int64
}

// StatFile stats path and returns its current Stats.
func StatFile(path string) (Stats, error) {
	info, err := os.Stat(path)
	if err != nil {
		return Stats{}, vcserrors.IO("while statting "+path, err)
	}
	mtime := info.ModTime()
	return Stats{
		Size:       info.Size(),
		MtimeSecs:  mtime.Unix(),
		MtimeNanos: int64(mtime.Nanosecond()),
	}, nil
}

// Matches reports whether a cached entry's stat still matches the file's
// current stat.
func (s Stats) Matches(other Stats) bool {
	return s.Size == other.Size && s.MtimeSecs == other.MtimeSecs && s.MtimeNanos == other.MtimeNanos
}

// Entry is one cached file's last-known stat plus hash.
type Entry struct {
	Size       int64         `json:"size"`
	MtimeSecs  int64         `json:"mtime_secs"`
	MtimeNanos int64         `json:"mtime_nanos"`
	Hash       objectkey.Key `json:"hash"`
}

func (e Entry) stats() Stats {
	return Stats{Size: e.Size, MtimeSecs: e.MtimeSecs, MtimeNanos: e.MtimeNanos}
}

// Cache is the sidecar file for a single directory: a map from basename
// to cache entry, checksummed with blake3 to detect a torn write.
type Cache struct {
	path        string
	entries     map[string]Entry
	lastFlushed []byte
}

type onDisk struct {
	Entries  map[string]Entry `json:"entries"`
	Checksum string           `json:"checksum"`
}

// Open reads the sidecar file at path, starting empty if absent or if its
// checksum does not match its content (a torn or corrupted write is
// treated the same as "not found": the cache rebuilds itself as files are
// rehashed).
func Open(path string) (*Cache, error) {
	entries := map[string]Entry{}
	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return nil, vcserrors.IO("while reading cache file "+path, err)
	default:
		var disk onDisk
		if err := jsoncanon.Unmarshal(data, &disk); err == nil && checksum(disk.Entries) == disk.Checksum {
			entries = disk.Entries
		}
	}
	c := &Cache{path: path, entries: entries}
	c.lastFlushed, _ = jsoncanon.Marshal(onDisk{Entries: entries, Checksum: checksum(entries)})
	return c, nil
}

func checksum(entries map[string]Entry) string {
	data, _ := jsoncanon.Marshal(entries)
	sum := blake3.Sum256(data)
	return objectkey.Key(sum[:20]).String()
}

// Lookup reports the cached hash for basename given its current stat:
// (hash, true) if an entry exists and its size and mtime match;
// (zero, false) otherwise. A stale entry and a missing entry both
// return (zero, false) and are not distinguished.
func (c *Cache) Lookup(basename string, current Stats) (objectkey.Key, bool) {
	entry, ok := c.entries[basename]
	if !ok {
		return objectkey.Key{}, false
	}
	if !entry.stats().Matches(current) {
		return objectkey.Key{}, false
	}
	return entry.Hash, true
}

// Insert records a fresh hash for basename at the given stat and flushes
// if the serialized cache changed.
func (c *Cache) Insert(basename string, stat Stats, hash objectkey.Key) error {
	c.entries[basename] = Entry{
		Size:       stat.Size,
		MtimeSecs:  stat.MtimeSecs,
		MtimeNanos: stat.MtimeNanos,
		Hash:       hash,
	}
	return c.Flush()
}

// Remove drops any entry for basename (used by cache-status --rebuild)
// and flushes.
func (c *Cache) Remove(basename string) error {
	if _, ok := c.entries[basename]; !ok {
		return nil
	}
	delete(c.entries, basename)
	return c.Flush()
}

// Flush rewrites the sidecar file if its serialized content changed since
// the last flush.
func (c *Cache) Flush() error {
	disk := onDisk{Entries: c.entries, Checksum: checksum(c.entries)}
	data, err := jsoncanon.Marshal(disk)
	if err != nil {
		return vcserrors.Wrap(vcserrors.CodeCacheSerialize, "while serializing cache", err)
	}
	if bytes.Equal(data, c.lastFlushed) {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(c.path), 0755); err != nil {
		return vcserrors.IO("while creating cache directory", err)
	}
	if err := os.WriteFile(c.path, data, 0644); err != nil {
		return vcserrors.IO("while writing cache file", err)
	}
	c.lastFlushed = data
	return nil
}

// Registry is a FileStore's in-memory collection of per-directory caches,
// opened on demand and kept for the lifetime of the process.
type Registry struct {
	caches map[string]*Cache
}

// NewRegistry creates an empty cache registry.
func NewRegistry() *Registry {
	return &Registry{caches: map[string]*Cache{}}
}

// For returns (opening if necessary) the cache for directory dir.
func (r *Registry) For(dir string) (*Cache, error) {
	if c, ok := r.caches[dir]; ok {
		return c, nil
	}
	c, err := Open(filepath.Join(dir, constants.CacheFileName))
	if err != nil {
		return nil, err
	}
	r.caches[dir] = c
	return c, nil
}

// FlushAll flushes every cache opened through this registry, logging
// (rather than failing) any individual flush error, matching the
// best-effort semantics of a drop-time flush.
func (r *Registry) FlushAll(onError func(dir string, err error)) {
	for dir, c := range r.caches {
		if err := c.Flush(); err != nil && onError != nil {
			onError(dir, err)
		}
	}
}

// Rebuild discards dir's in-memory cache, so the next For call rereads
// the sidecar file from disk. Entries on disk are not removed (the
// cache-status --rebuild command also calls Cache.Remove for that).
func (r *Registry) Rebuild(dir string) {
	delete(r.caches, dir)
}
