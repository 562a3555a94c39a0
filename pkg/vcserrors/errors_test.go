package vcserrors

import (
	"errors"
	"testing"
)

func TestRepoErrorChain(t *testing.T) {
	cause := errors.New("disk full")
	wrapped := Wrap(CodeIO, "while writing object", cause)

	if !errors.Is(wrapped, cause) {
		t.Errorf("expected errors.Is to find the cause")
	}
	if got := wrapped.Error(); got != "while writing object: disk full" {
		t.Errorf("unexpected message: %q", got)
	}
}

func TestIsAndCodeOf(t *testing.T) {
	err := New(CodeObjectNotFound, "no such object")
	if !Is(err, CodeObjectNotFound) {
		t.Errorf("expected Is to match CodeObjectNotFound")
	}
	if Is(err, CodeCorruptObject) {
		t.Errorf("did not expect Is to match CodeCorruptObject")
	}
	if CodeOf(err) != CodeObjectNotFound {
		t.Errorf("expected CodeOf to return CodeObjectNotFound")
	}
	if CodeOf(errors.New("plain")) != CodeGeneric {
		t.Errorf("expected CodeOf to default to CodeGeneric for plain errors")
	}
}

func TestNestedWrap(t *testing.T) {
	root := New(CodeBadObjectKey, "bad hex")
	mid := Wrap(CodeBadRevSpec, "while parsing rev", root)
	top := Wrap(CodeGeneric, "while resolving HEAD", mid)

	if CodeOf(top) != CodeGeneric {
		t.Errorf("expected top-level code to be Generic")
	}
	if !Is(top, CodeBadObjectKey) {
		t.Errorf("expected Is to walk the full chain to CodeBadObjectKey")
	}
}
