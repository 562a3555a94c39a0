package filestore

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sleepymurph/dmv/pkg/objectstore"
)

func TestHashFileThenExtractFileRoundTrips(t *testing.T) {
	root := t.TempDir()
	store, err := objectstore.Init(filepath.Join(root, ".prototype"))
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}

	srcPath := filepath.Join(root, "greeting.txt")
	content := []byte("hello, working directory")
	if err := os.WriteFile(srcPath, content, 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	fs := New()
	hash, err := fs.HashFile(srcPath, store, nil)
	if err != nil {
		t.Fatalf("HashFile failed: %v", err)
	}
	if hash.IsZero() {
		t.Fatalf("expected a non-zero hash")
	}

	dstPath := filepath.Join(root, "out.txt")
	if err := fs.ExtractFile(store, hash, dstPath, nil); err != nil {
		t.Fatalf("ExtractFile failed: %v", err)
	}
	got, err := os.ReadFile(dstPath)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if string(got) != string(content) {
		t.Errorf("extracted content = %q, want %q", got, content)
	}
}

func TestHashFileUsesCacheOnSecondCall(t *testing.T) {
	root := t.TempDir()
	store, err := objectstore.Init(filepath.Join(root, ".prototype"))
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	path := filepath.Join(root, "file.txt")
	if err := os.WriteFile(path, []byte("stable content"), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	fs := New()
	first, err := fs.HashFile(path, store, nil)
	if err != nil {
		t.Fatalf("first HashFile failed: %v", err)
	}
	second, err := fs.HashFile(path, store, nil)
	if err != nil {
		t.Fatalf("second HashFile failed: %v", err)
	}
	if first != second {
		t.Errorf("expected cached hash to match: %s != %s", first, second)
	}
}

func TestLookupNodeReportsIgnoredAndCachedHash(t *testing.T) {
	root := t.TempDir()
	store, err := objectstore.Init(filepath.Join(root, ".prototype"))
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	path := filepath.Join(root, "data.bin")
	if err := os.WriteFile(path, []byte("payload"), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	fs := New()
	hash, err := fs.HashFile(path, store, nil)
	if err != nil {
		t.Fatalf("HashFile failed: %v", err)
	}

	node, err := fs.LookupNode(path)
	if err != nil {
		t.Fatalf("LookupNode failed: %v", err)
	}
	if node.Hash == nil || *node.Hash != hash {
		t.Errorf("expected LookupNode to report cached hash %s, got %v", hash, node.Hash)
	}
	if node.IsIgnored {
		t.Errorf("data.bin should not be ignored")
	}

	hiddenPath := filepath.Join(root, ".prototype")
	hiddenNode, err := fs.LookupNode(hiddenPath)
	if err != nil {
		t.Fatalf("LookupNode on hidden dir failed: %v", err)
	}
	if !hiddenNode.IsIgnored {
		t.Errorf("expected hidden directory to be ignored")
	}
}
