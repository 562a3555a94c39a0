package status

import (
	"testing"

	"github.com/sleepymurph/dmv/pkg/objectkey"
)

func hashOf(s string) *objectkey.Key {
	h := objectkey.Sum([]byte(s))
	return &h
}

func TestCompareUnchangedWhenHashesMatch(t *testing.T) {
	h := hashOf("same")
	source := &ComparableNode{Hash: h, FileSize: 4}
	target := &ComparableNode{Hash: h, FileSize: 4}
	if got := Compare(source, target); got != Unchanged {
		t.Errorf("Compare() = %v, want Unchanged", got)
	}
}

func TestCompareModifiedWhenHashesDiffer(t *testing.T) {
	source := &ComparableNode{Hash: hashOf("a"), FileSize: 1}
	target := &ComparableNode{Hash: hashOf("b"), FileSize: 1}
	if got := Compare(source, target); got != Modified {
		t.Errorf("Compare() = %v, want Modified", got)
	}
}

func TestCompareAddedAndDeleted(t *testing.T) {
	target := &ComparableNode{Hash: hashOf("x")}
	if got := Compare(nil, target); got != Added {
		t.Errorf("Compare(nil, target) = %v, want Added", got)
	}
	source := &ComparableNode{Hash: hashOf("x")}
	if got := Compare(source, nil); got != Deleted {
		t.Errorf("Compare(source, nil) = %v, want Deleted", got)
	}
}

func TestCompareIgnoredTakesPriority(t *testing.T) {
	source := &ComparableNode{Hash: hashOf("x")}
	target := &ComparableNode{Hash: hashOf("x"), IsIgnored: true}
	if got := Compare(source, target); got != Ignored {
		t.Errorf("Compare() = %v, want Ignored", got)
	}
}

func TestCompareTypeChangeAndMaybeModifiedDir(t *testing.T) {
	file := &ComparableNode{IsTree: false}
	dir := &ComparableNode{IsTree: true}
	if got := Compare(file, dir); got != TypeChange {
		t.Errorf("Compare(file, dir) = %v, want TypeChange", got)
	}
	if got := Compare(dir, dir); got != MaybeModifiedDir {
		t.Errorf("Compare(dir, dir) = %v, want MaybeModifiedDir", got)
	}
}

func TestIncludedExcludesUnchangedAndIgnoredByDefault(t *testing.T) {
	if Included(Unchanged, false) {
		t.Errorf("Unchanged should never be included")
	}
	if Included(Ignored, false) {
		t.Errorf("Ignored should be excluded without showIgnored")
	}
	if !Included(Ignored, true) {
		t.Errorf("Ignored should be included with showIgnored")
	}
	if !Included(Modified, false) {
		t.Errorf("Modified should always be included")
	}
}
