package walker

import "sort"

// TripleNode is the node type for a three-source lockstep walk: the
// common ancestor, "theirs", and "ours", as used by the three-way merge.
type TripleNode[A any, B any, C any] struct {
	Ancestor Optional[A]
	Theirs   Optional[B]
	Ours     Optional[C]
}

// TripleSource supplies per-side tree predicates and child listings.
type TripleSource[A any, B any, C any] interface {
	IsTreeA(a A) bool
	IsTreeB(b B) bool
	IsTreeC(c C) bool
	ChildrenA(a A) (ChildMap[A], error)
	ChildrenB(b B) (ChildMap[B], error)
	ChildrenC(c C) (ChildMap[C], error)
}

// TripleOp drives a three-source walk, producing a result tree typed by R.
type TripleOp[A any, B any, C any, R any] interface {
	ShouldDescend(path string, node TripleNode[A, B, C]) bool
	NoDescend(path string, node TripleNode[A, B, C]) (R, error)
	PostDescend(path string, node TripleNode[A, B, C], children ChildMap[R]) (R, error)
}

// WalkTriple descends three sources in lockstep, merging child names in
// ascending order and standing in None for any source missing a name.
func WalkTriple[A any, B any, C any, R any](src TripleSource[A, B, C], op TripleOp[A, B, C, R], path string, node TripleNode[A, B, C]) (R, error) {
	var zero R
	if !op.ShouldDescend(path, node) {
		return op.NoDescend(path, node)
	}

	childrenA := ChildMap[A]{}
	if node.Ancestor.Present && src.IsTreeA(node.Ancestor.Node) {
		var err error
		childrenA, err = src.ChildrenA(node.Ancestor.Node)
		if err != nil {
			return zero, err
		}
	}
	childrenB := ChildMap[B]{}
	if node.Theirs.Present && src.IsTreeB(node.Theirs.Node) {
		var err error
		childrenB, err = src.ChildrenB(node.Theirs.Node)
		if err != nil {
			return zero, err
		}
	}
	childrenC := ChildMap[C]{}
	if node.Ours.Present && src.IsTreeC(node.Ours.Node) {
		var err error
		childrenC, err = src.ChildrenC(node.Ours.Node)
		if err != nil {
			return zero, err
		}
	}

	names := unionNames3(childrenA, childrenB, childrenC)
	results := ChildMap[R]{}
	for _, name := range names {
		a, okA := childrenA[name]
		b, okB := childrenB[name]
		c, okC := childrenC[name]
		childNode := TripleNode[A, B, C]{
			Ancestor: optFrom(a, okA),
			Theirs:   optFrom(b, okB),
			Ours:     optFrom(c, okC),
		}
		r, err := WalkTriple(src, op, joinPath(path, name), childNode)
		if err != nil {
			return zero, err
		}
		results[name] = r
	}
	return op.PostDescend(path, node, results)
}

func unionNames3[A any, B any, C any](a ChildMap[A], b ChildMap[B], c ChildMap[C]) []string {
	seen := map[string]bool{}
	var names []string
	add := func(name string) {
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	for name := range a {
		add(name)
	}
	for name := range b {
		add(name)
	}
	for name := range c {
		add(name)
	}
	sort.Strings(names)
	return names
}
