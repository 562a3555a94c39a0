// Package walker implements the generic tree-walk coordinator that every
// user-facing traversal (status, commit, checkout, merge) is built from.
// A walk descends a tree-shaped source in ascending component-name
// order, calling a pluggable operation's hooks at each node; multi-source
// variants (Pair, Triple) descend several sources in lockstep, standing
// in "absent" for any source missing a given name. Traversal order is
// depth-first and sequential: several operations print or extract as a
// side effect of each hook, and depend on seeing children in ascending
// order.
package walker

import "sort"

// ChildMap is a name-to-node mapping, always visited in ascending key
// order regardless of the map's own iteration order.
type ChildMap[N any] map[string]N

func sortedNames[N any](m ChildMap[N]) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NodeLookup resolves a handle (e.g. an ObjectKey or filesystem path) into
// a node.
type NodeLookup[H any, N any] interface {
	LookupNode(handle H) (N, error)
}

// NodeReader returns a tree node's children. Only called on nodes for
// which the walk op has decided to descend.
type NodeReader[N any] interface {
	ReadChildren(node N) (ChildMap[N], error)
}

// WalkOp drives a single-source walk, producing a result tree typed by R.
type WalkOp[N any, R any] interface {
	ShouldDescend(path string, node N) bool
	PreDescend(path string, node N) error
	NoDescend(path string, node N) (R, error)
	PostDescend(path string, node N, children ChildMap[R]) (R, error)
}

// Walk resolves start and walks it with op, driven by lookup/reader.
func Walk[H any, N any, R any](lookup NodeLookup[H, N], reader NodeReader[N], op WalkOp[N, R], start H) (R, error) {
	var zero R
	node, err := lookup.LookupNode(start)
	if err != nil {
		return zero, err
	}
	return walkNode(reader, op, "", node)
}

func walkNode[N any, R any](reader NodeReader[N], op WalkOp[N, R], path string, node N) (R, error) {
	var zero R
	if !op.ShouldDescend(path, node) {
		return op.NoDescend(path, node)
	}
	if err := op.PreDescend(path, node); err != nil {
		return zero, err
	}
	children, err := reader.ReadChildren(node)
	if err != nil {
		return zero, err
	}
	results := ChildMap[R]{}
	for _, name := range sortedNames(children) {
		childResult, err := walkNode(reader, op, joinPath(path, name), children[name])
		if err != nil {
			return zero, err
		}
		results[name] = childResult
	}
	return op.PostDescend(path, node, results)
}

func joinPath(path, name string) string {
	if path == "" {
		return name
	}
	return path + "/" + name
}
