package dag

import (
	"bufio"
	"bytes"
	"io"
	"sort"

	"golang.org/x/text/unicode/norm"

	"github.com/sleepymurph/dmv/pkg/objectkey"
	"github.com/sleepymurph/dmv/pkg/vcserrors"
)

// TreeEntry maps one path component to the object it names.
type TreeEntry struct {
	Name string
	Hash objectkey.Key
}

// Tree is a directory: a sorted mapping from name to object key. Entries
// are kept in ascending byte order of their (NFC-normalized) name so that
// two trees with the same contents always serialize identically.
type Tree struct {
	Entries []TreeEntry
}

// NewTree builds a Tree from unordered entries, normalizing each name to
// NFC (so that visually identical names from different filesystems hash the
// same way) and sorting by normalized name bytes. Duplicate names are
// rejected.
func NewTree(entries []TreeEntry) (*Tree, error) {
	normalized := make([]TreeEntry, len(entries))
	for i, e := range entries {
		normalized[i] = TreeEntry{Name: norm.NFC.String(e.Name), Hash: e.Hash}
	}
	sort.Slice(normalized, func(i, j int) bool {
		return normalized[i].Name < normalized[j].Name
	})
	for i := 1; i < len(normalized); i++ {
		if normalized[i].Name == normalized[i-1].Name {
			return nil, vcserrors.New(vcserrors.CodeBadObjectHeader,
				"duplicate tree entry name: "+normalized[i].Name)
		}
	}
	return &Tree{Entries: normalized}, nil
}

// Lookup returns the entry for name, if present.
func (t *Tree) Lookup(name string) (objectkey.Key, bool) {
	name = norm.NFC.String(name)
	for _, e := range t.Entries {
		if e.Name == name {
			return e.Hash, true
		}
	}
	return objectkey.Key{}, false
}

func (t *Tree) Type() ObjectType { return TypeTree }

func (t *Tree) ContentSize() uint64 {
	var size uint64
	for _, e := range t.Entries {
		size += uint64(len(e.Hash.Bytes())) + uint64(len(e.Name)) + 1
	}
	return size
}

func (t *Tree) EncodeContent(w io.Writer) error {
	for _, e := range t.Entries {
		if _, err := w.Write(e.Hash.Bytes()); err != nil {
			return vcserrors.IO("while writing tree entry hash", err)
		}
		if _, err := io.WriteString(w, e.Name); err != nil {
			return vcserrors.IO("while writing tree entry name", err)
		}
		if _, err := w.Write([]byte{'\n'}); err != nil {
			return vcserrors.IO("while writing tree entry terminator", err)
		}
	}
	return nil
}

func decodeTreeContent(r io.Reader, size uint64) (*Tree, error) {
	raw := make([]byte, size)
	if _, err := io.ReadFull(r, raw); err != nil {
		return nil, vcserrors.IO("while reading tree content", err)
	}
	br := bufio.NewReader(bytes.NewReader(raw))
	var entries []TreeEntry
	for {
		var hash [20]byte
		_, err := io.ReadFull(br, hash[:])
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, vcserrors.IO("while reading tree entry hash", err)
		}
		name, err := br.ReadString('\n')
		if err != nil && err != io.EOF {
			return nil, vcserrors.IO("while reading tree entry name", err)
		}
		name = trimTrailingNewline(name)
		key, kerr := objectkey.FromBytes(hash[:])
		if kerr != nil {
			return nil, kerr
		}
		entries = append(entries, TreeEntry{Name: name, Hash: key})
	}
	return &Tree{Entries: entries}, nil
}

func trimTrailingNewline(s string) string {
	if len(s) > 0 && s[len(s)-1] == '\n' {
		return s[:len(s)-1]
	}
	return s
}
