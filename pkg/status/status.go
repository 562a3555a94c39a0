// Package status implements the comparison model shared by status, commit,
// and merge: a node-agnostic view of either an object-store entry or a
// filesystem entry, and the codes produced by comparing two such views.
package status

import (
	"github.com/sleepymurph/dmv/pkg/objectkey"
)

// ComparableNode captures just what status comparison needs, regardless of
// whether it came from the object store or the filesystem.
type ComparableNode struct {
	IsTree    bool
	FileSize  uint64
	Hash      *objectkey.Key
	FSPath    *string
	IsIgnored bool
}

// Code classifies how a source node compares to a target node.
type Code int

const (
	// Unchanged means both sides exist and are known to be identical.
	Unchanged Code = iota
	// Added means the target has no counterpart on the source side.
	Added
	// Deleted means the source has no counterpart on the target side.
	Deleted
	// Modified means both sides exist but differ.
	Modified
	// Ignored means the target matches an ignore pattern.
	Ignored
	// MaybeModifiedDir means both sides are directories and a recursive
	// comparison is required to know whether anything changed.
	MaybeModifiedDir
	// TypeChange means one side is a file and the other a directory.
	TypeChange
)

func (c Code) String() string {
	switch c {
	case Unchanged:
		return "unchanged"
	case Added:
		return "added"
	case Deleted:
		return "deleted"
	case Modified:
		return "modified"
	case Ignored:
		return "ignored"
	case MaybeModifiedDir:
		return "maybe-modified"
	case TypeChange:
		return "type-change"
	default:
		return "unknown"
	}
}

// Compare classifies the relationship between a source node (nil if absent)
// and a target node (nil if absent). When target is ignored, Ignored takes
// priority over every other code.
func Compare(source, target *ComparableNode) Code {
	if target != nil && target.IsIgnored {
		return Ignored
	}
	switch {
	case source == nil && target == nil:
		return Unchanged
	case source == nil:
		return Added
	case target == nil:
		return Deleted
	case source.IsTree != target.IsTree:
		return TypeChange
	case source.IsTree && target.IsTree:
		return MaybeModifiedDir
	case source.Hash != nil && target.Hash != nil:
		if *source.Hash == *target.Hash {
			return Unchanged
		}
		return Modified
	case source.FileSize != target.FileSize:
		return Modified
	default:
		// Sizes match but at least one side lacks a cached hash: fall back
		// to rehashing rather than risk a false Unchanged.
		return Modified
	}
}

// Included reports whether a path with the given code should contribute to
// a commit or be shown in a diff. Ignored paths are excluded unless
// showIgnored is set; Unchanged paths are always excluded.
func Included(code Code, showIgnored bool) bool {
	switch code {
	case Unchanged:
		return false
	case Ignored:
		return showIgnored
	default:
		return true
	}
}
