package fstransfer

import (
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/sleepymurph/dmv/pkg/constants"
	"github.com/sleepymurph/dmv/pkg/dag"
	"github.com/sleepymurph/dmv/pkg/objectkey"
	"github.com/sleepymurph/dmv/pkg/objectstore"
)

func newRepo(t *testing.T) (string, *objectstore.Store, *FsTransfer) {
	t.Helper()
	root := t.TempDir()
	store, err := objectstore.Init(filepath.Join(root, ".prototype"))
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	return root, store, New(store)
}

func storeSingleFileRoundTrip(t *testing.T, content []byte, wantType dag.ObjectType) {
	root, store, transfer := newRepo(t)

	srcPath := filepath.Join(root, "foo")
	if err := os.WriteFile(srcPath, content, 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	hash, err := transfer.HashPath(objectkey.Key{}, srcPath, nil)
	if err != nil {
		t.Fatalf("HashPath failed: %v", err)
	}

	handle, err := store.OpenObject(hash)
	if err != nil {
		t.Fatalf("OpenObject failed: %v", err)
	}
	if handle.Header().Type != wantType {
		t.Errorf("object type = %v, want %v", handle.Header().Type, wantType)
	}

	outPath := filepath.Join(root, "bar")
	if err := transfer.ExtractObject(hash, outPath, nil); err != nil {
		t.Fatalf("ExtractObject failed: %v", err)
	}
	got, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if len(got) != len(content) {
		t.Fatalf("extracted length = %d, want %d", len(got), len(content))
	}
	for i := range got {
		if got[i] != content[i] {
			t.Fatalf("extracted content differs at byte %d", i)
		}
	}
}

func TestHashPathEmptyFileIsBlob(t *testing.T) {
	storeSingleFileRoundTrip(t, nil, dag.TypeBlob)
}

func TestHashPathSmallFileIsBlob(t *testing.T) {
	storeSingleFileRoundTrip(t, []byte("foo"), dag.TypeBlob)
}

func TestHashPathLargeFileIsChunkedBlob(t *testing.T) {
	data := make([]byte, 3*constants.TargetChunkSize)
	rand.New(rand.NewSource(7)).Read(data)
	storeSingleFileRoundTrip(t, data, dag.TypeChunkedBlob)
}

func TestExtractObjectNotFoundFails(t *testing.T) {
	root, _, transfer := newRepo(t)
	missing := objectkey.Sum([]byte("12345"))
	if err := transfer.ExtractObject(missing, filepath.Join(root, "nope"), nil); err == nil {
		t.Errorf("expected extracting an unstored hash to fail")
	}
}

func TestHashPathDirectoryBuildsTree(t *testing.T) {
	root, store, transfer := newRepo(t)

	if err := os.WriteFile(filepath.Join(root, "a.txt"), []byte("aaa"), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	if err := os.Mkdir(filepath.Join(root, "sub"), 0755); err != nil {
		t.Fatalf("Mkdir failed: %v", err)
	}
	if err := os.WriteFile(filepath.Join(root, "sub", "b.txt"), []byte("bbb"), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	hash, err := transfer.HashPath(objectkey.Key{}, root, nil)
	if err != nil {
		t.Fatalf("HashPath failed: %v", err)
	}
	tree, err := store.OpenTree(hash)
	if err != nil {
		t.Fatalf("OpenTree failed: %v", err)
	}
	if _, ok := tree.Lookup("a.txt"); !ok {
		t.Errorf("expected tree to contain a.txt")
	}
	if _, ok := tree.Lookup("sub"); !ok {
		t.Errorf("expected tree to contain sub")
	}
	if _, ok := tree.Lookup(".prototype"); ok {
		t.Errorf("expected hidden repository directory to be excluded from the tree")
	}

	extractRoot := filepath.Join(t.TempDir(), "out")
	if err := transfer.ExtractObject(hash, extractRoot, nil); err != nil {
		t.Fatalf("ExtractObject failed: %v", err)
	}
	got, err := os.ReadFile(filepath.Join(extractRoot, "sub", "b.txt"))
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if string(got) != "bbb" {
		t.Errorf("extracted sub/b.txt = %q, want %q", got, "bbb")
	}
}
