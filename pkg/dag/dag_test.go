package dag

import (
	"bytes"
	"testing"

	"github.com/sleepymurph/dmv/pkg/objectkey"
)

func TestBlobRoundTrip(t *testing.T) {
	cases := [][]byte{
		{},
		[]byte("Hello world!"),
		bytes.Repeat([]byte{7}, 4096),
	}
	for _, content := range cases {
		blob := &Blob{Content: content}
		encoded, key, err := EncodeToBytes(blob)
		if err != nil {
			t.Fatalf("EncodeToBytes failed: %v", err)
		}
		decoded, header, err := Decode(bytes.NewReader(encoded))
		if err != nil {
			t.Fatalf("Decode failed: %v", err)
		}
		if header.Type != TypeBlob {
			t.Errorf("wrong header type: %s", header.Type)
		}
		got := decoded.(*Blob)
		if !bytes.Equal(got.Content, content) {
			t.Errorf("round trip content mismatch")
		}
		if key.IsZero() {
			t.Errorf("expected non-zero key")
		}
	}
}

func TestDistinctBlobsHaveDistinctKeys(t *testing.T) {
	// The key is SHA-1 of header||content (§3, §4.1), so it depends on
	// content_size as well as the bytes: two blobs of different length
	// starting with the same bytes must not collide.
	_, k1, err := EncodeToBytes(&Blob{Content: []byte("")})
	if err != nil {
		t.Fatalf("EncodeToBytes failed: %v", err)
	}
	_, k2, err := EncodeToBytes(&Blob{Content: []byte("Hello world!")})
	if err != nil {
		t.Fatalf("EncodeToBytes failed: %v", err)
	}
	if k1 == k2 {
		t.Errorf("expected distinct keys for distinct blob content")
	}
}

func TestStoringSameContentTwiceYieldsSameKey(t *testing.T) {
	_, k1, err := EncodeToBytes(&Blob{Content: []byte("Hello world!")})
	if err != nil {
		t.Fatalf("EncodeToBytes failed: %v", err)
	}
	_, k2, err := EncodeToBytes(&Blob{Content: []byte("Hello world!")})
	if err != nil {
		t.Fatalf("EncodeToBytes failed: %v", err)
	}
	if k1 != k2 {
		t.Errorf("expected identical content to hash identically: %s != %s", k1, k2)
	}
}

func TestChunkedBlobRoundTrip(t *testing.T) {
	var zero objectkey.Key
	cb := &ChunkedBlob{
		TotalSize: 30,
		Chunks: []ChunkEntry{
			{Offset: 0, Size: 10, Hash: objectkey.Sum([]byte("a"))},
			{Offset: 10, Size: 20, Hash: zero},
		},
	}
	encoded, _, err := EncodeToBytes(cb)
	if err != nil {
		t.Fatalf("EncodeToBytes failed: %v", err)
	}
	decoded, header, err := Decode(bytes.NewReader(encoded))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if header.Type != TypeChunkedBlob {
		t.Fatalf("wrong header type: %s", header.Type)
	}
	got := decoded.(*ChunkedBlob)
	if got.TotalSize != cb.TotalSize || len(got.Chunks) != len(cb.Chunks) {
		t.Fatalf("chunked blob round trip mismatch: %+v", got)
	}
	for i := range cb.Chunks {
		if got.Chunks[i] != cb.Chunks[i] {
			t.Errorf("chunk %d mismatch: got %+v, want %+v", i, got.Chunks[i], cb.Chunks[i])
		}
	}
}

func TestTreeEntryOrder(t *testing.T) {
	h0, h1, h2 := objectkey.Sum([]byte("0")), objectkey.Sum([]byte("1")), objectkey.Sum([]byte("2"))
	tree, err := NewTree([]TreeEntry{
		{Name: "foo", Hash: h0},
		{Name: "bar", Hash: h2},
		{Name: "baz", Hash: h1},
	})
	if err != nil {
		t.Fatalf("NewTree failed: %v", err)
	}
	wantOrder := []string{"bar", "baz", "foo"}
	for i, want := range wantOrder {
		if tree.Entries[i].Name != want {
			t.Errorf("entry %d name = %s, want %s", i, tree.Entries[i].Name, want)
		}
	}

	encoded, _, err := EncodeToBytes(tree)
	if err != nil {
		t.Fatalf("EncodeToBytes failed: %v", err)
	}
	decoded, _, err := Decode(bytes.NewReader(encoded))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	got := decoded.(*Tree)
	if len(got.Entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(got.Entries))
	}
	for i, want := range wantOrder {
		if got.Entries[i].Name != want {
			t.Errorf("decoded entry %d name = %s, want %s", i, got.Entries[i].Name, want)
		}
	}
}

func TestNewTreeRejectsDuplicateNames(t *testing.T) {
	h := objectkey.Sum([]byte("x"))
	_, err := NewTree([]TreeEntry{{Name: "a", Hash: h}, {Name: "a", Hash: h}})
	if err == nil {
		t.Errorf("expected NewTree to reject duplicate names")
	}
}

func TestCommitRoundTrip(t *testing.T) {
	treeHash := objectkey.Sum([]byte("tree"))
	parent1 := objectkey.Sum([]byte("p1"))
	parent2 := objectkey.Sum([]byte("p2"))
	commit := &Commit{
		Tree:    treeHash,
		Parents: []objectkey.Key{parent1, parent2},
		Message: "a commit message\nwith a second line",
	}
	encoded, _, err := EncodeToBytes(commit)
	if err != nil {
		t.Fatalf("EncodeToBytes failed: %v", err)
	}
	decoded, header, err := Decode(bytes.NewReader(encoded))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if header.Type != TypeCommit {
		t.Fatalf("wrong header type: %s", header.Type)
	}
	got := decoded.(*Commit)
	if got.Tree != commit.Tree || got.Message != commit.Message || len(got.Parents) != 2 {
		t.Errorf("commit round trip mismatch: %+v", got)
	}
}

func TestCommitRootHasNoParents(t *testing.T) {
	commit := &Commit{Tree: objectkey.Sum([]byte("tree")), Message: "root"}
	encoded, _, err := EncodeToBytes(commit)
	if err != nil {
		t.Fatalf("EncodeToBytes failed: %v", err)
	}
	decoded, _, err := Decode(bytes.NewReader(encoded))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if got := decoded.(*Commit); len(got.Parents) != 0 {
		t.Errorf("expected no parents, got %d", len(got.Parents))
	}
}

func TestEncodeCBORDoesNotPanic(t *testing.T) {
	objects := []Object{
		&Blob{Content: []byte("x")},
		&Tree{Entries: []TreeEntry{{Name: "a", Hash: objectkey.Sum([]byte("a"))}}},
		&Commit{Tree: objectkey.Sum([]byte("t")), Message: "m"},
	}
	for _, obj := range objects {
		if _, err := EncodeCBOR(obj); err != nil {
			t.Errorf("EncodeCBOR(%T) failed: %v", obj, err)
		}
	}
}
