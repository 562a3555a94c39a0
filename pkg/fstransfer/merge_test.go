package fstransfer

import (
	"path/filepath"
	"testing"

	"github.com/sleepymurph/dmv/pkg/dag"
	"github.com/sleepymurph/dmv/pkg/objectkey"
	"github.com/sleepymurph/dmv/pkg/objectstore"
)

func storeBlob(t *testing.T, store *objectstore.Store, content string) objectkey.Key {
	t.Helper()
	key, err := store.StoreObject(&dag.Blob{Content: []byte(content)})
	if err != nil {
		t.Fatalf("StoreObject(blob) failed: %v", err)
	}
	return key
}

func storeTree(t *testing.T, store *objectstore.Store, entries map[string]objectkey.Key) objectkey.Key {
	t.Helper()
	var treeEntries []dag.TreeEntry
	for name, hash := range entries {
		treeEntries = append(treeEntries, dag.TreeEntry{Name: name, Hash: hash})
	}
	tree, err := dag.NewTree(treeEntries)
	if err != nil {
		t.Fatalf("NewTree failed: %v", err)
	}
	key, err := store.StoreObject(tree)
	if err != nil {
		t.Fatalf("StoreObject(tree) failed: %v", err)
	}
	return key
}

func TestMergeAdoptsTheOnlyChangedSide(t *testing.T) {
	store, err := objectstore.Init(filepath.Join(t.TempDir(), ".prototype"))
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}

	unchanged := storeBlob(t, store, "unchanged")
	changed := storeBlob(t, store, "changed by them")

	ancestor := storeTree(t, store, map[string]objectkey.Key{"a.txt": unchanged})
	theirs := storeTree(t, store, map[string]objectkey.Key{"a.txt": changed})
	ours := storeTree(t, store, map[string]objectkey.Key{"a.txt": unchanged})

	merged, conflicts, err := Merge(store, ancestor, theirs, ours)
	if err != nil {
		t.Fatalf("Merge failed: %v", err)
	}
	if len(conflicts) != 0 {
		t.Fatalf("expected no conflicts, got %v", conflicts)
	}

	tree, err := store.OpenTree(merged)
	if err != nil {
		t.Fatalf("OpenTree failed: %v", err)
	}
	hash, ok := tree.Lookup("a.txt")
	if !ok || hash != changed {
		t.Errorf("expected merged tree to adopt their change, got %v ok=%v", hash, ok)
	}
}

func TestMergeReportsConflictWhenBothSidesChangeDifferently(t *testing.T) {
	store, err := objectstore.Init(filepath.Join(t.TempDir(), ".prototype"))
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}

	base := storeBlob(t, store, "base")
	theirChange := storeBlob(t, store, "their change")
	ourChange := storeBlob(t, store, "our change")

	ancestor := storeTree(t, store, map[string]objectkey.Key{"a.txt": base})
	theirs := storeTree(t, store, map[string]objectkey.Key{"a.txt": theirChange})
	ours := storeTree(t, store, map[string]objectkey.Key{"a.txt": ourChange})

	_, conflicts, err := Merge(store, ancestor, theirs, ours)
	if err != nil {
		t.Fatalf("Merge failed: %v", err)
	}
	if len(conflicts) != 1 || conflicts[0].Path != "a.txt" {
		t.Fatalf("expected one conflict at a.txt, got %v", conflicts)
	}
}
