package objectstore

import (
	"bytes"
	"os"
	"regexp"

	"github.com/sleepymurph/dmv/pkg/codec/jsoncanon"
	"github.com/sleepymurph/dmv/pkg/objectkey"
	"github.com/sleepymurph/dmv/pkg/vcserrors"
)

// RefNamePattern is the shape a ref name must match.
var RefNamePattern = regexp.MustCompile(`^[\w/-]+$`)

// RefMap is the in-memory mapping from ref name to ObjectKey, disk-backed
// as pretty-printed JSON. Flushing is a no-op if the serialized content has
// not changed since the last flush.
type RefMap struct {
	path        string
	entries     map[string]string // name -> full hex key
	lastFlushed []byte
}

// OpenRefMap reads path, or starts empty if it does not exist yet.
func OpenRefMap(path string) (*RefMap, error) {
	entries := map[string]string{}
	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		// start empty; first flush will create the file
	case err != nil:
		return nil, vcserrors.IO("while reading ref map", err)
	default:
		if err := jsoncanon.Unmarshal(data, &entries); err != nil {
			return nil, vcserrors.Wrap(vcserrors.CodeCacheCorrupt, "while parsing ref map", err)
		}
	}
	rm := &RefMap{path: path, entries: entries}
	rm.lastFlushed, _ = jsoncanon.Marshal(entries)
	return rm, nil
}

// Get returns the hash a ref name points to, if any.
func (rm *RefMap) Get(name string) (objectkey.Key, bool) {
	hex, ok := rm.entries[name]
	if !ok {
		return objectkey.Key{}, false
	}
	key, err := objectkey.Parse(hex)
	if err != nil {
		return objectkey.Key{}, false
	}
	return key, true
}

// All returns a copy of the full ref name to key mapping.
func (rm *RefMap) All() map[string]objectkey.Key {
	out := make(map[string]objectkey.Key, len(rm.entries))
	for name, hex := range rm.entries {
		if key, err := objectkey.Parse(hex); err == nil {
			out[name] = key
		}
	}
	return out
}

// RefsFor returns every ref name currently pointing at hash.
func (rm *RefMap) RefsFor(hash objectkey.Key) []string {
	var names []string
	want := hash.String()
	for name, hex := range rm.entries {
		if hex == want {
			names = append(names, name)
		}
	}
	return names
}

// Update inserts name -> hash and flushes.
func (rm *RefMap) Update(name string, hash objectkey.Key) error {
	rm.entries[name] = hash.String()
	return rm.Flush()
}

// Flush rewrites the ref file whole if the serialized content has changed
// since the last flush.
func (rm *RefMap) Flush() error {
	data, err := jsoncanon.Marshal(rm.entries)
	if err != nil {
		return vcserrors.Wrap(vcserrors.CodeCacheSerialize, "while serializing ref map", err)
	}
	if bytes.Equal(data, rm.lastFlushed) {
		return nil
	}
	if err := os.WriteFile(rm.path, data, 0644); err != nil {
		return vcserrors.IO("while writing ref map", err)
	}
	rm.lastFlushed = data
	return nil
}
