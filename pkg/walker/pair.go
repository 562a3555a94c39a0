package walker

import "sort"

// PairNode is the node type for a two-source lockstep walk (e.g. an
// object tree compared against the filesystem): either side may be
// absent at a given path.
type PairNode[A any, B any] struct {
	A Optional[A]
	B Optional[B]
}

// PairSource supplies per-side tree predicates and child listings so the
// walker can descend both sources together.
type PairSource[A any, B any] interface {
	IsTreeA(a A) bool
	IsTreeB(b B) bool
	ChildrenA(a A) (ChildMap[A], error)
	ChildrenB(b B) (ChildMap[B], error)
}

// PairOp drives a two-source walk, producing a result tree typed by R.
type PairOp[A any, B any, R any] interface {
	ShouldDescend(path string, node PairNode[A, B]) bool
	NoDescend(path string, node PairNode[A, B]) (R, error)
	PostDescend(path string, node PairNode[A, B], children ChildMap[R]) (R, error)
}

// WalkPair descends two sources in lockstep starting from the already
// resolved root node of each, merging child names in ascending order and
// standing in None for any source that is missing the name at this level.
func WalkPair[A any, B any, R any](src PairSource[A, B], op PairOp[A, B, R], path string, node PairNode[A, B]) (R, error) {
	var zero R
	if !op.ShouldDescend(path, node) {
		return op.NoDescend(path, node)
	}

	childrenA := ChildMap[A]{}
	if node.A.Present && src.IsTreeA(node.A.Node) {
		var err error
		childrenA, err = src.ChildrenA(node.A.Node)
		if err != nil {
			return zero, err
		}
	}
	childrenB := ChildMap[B]{}
	if node.B.Present && src.IsTreeB(node.B.Node) {
		var err error
		childrenB, err = src.ChildrenB(node.B.Node)
		if err != nil {
			return zero, err
		}
	}

	names := unionNames(childrenA, childrenB)
	results := ChildMap[R]{}
	for _, name := range names {
		a, okA := childrenA[name]
		b, okB := childrenB[name]
		childNode := PairNode[A, B]{A: optFrom(a, okA), B: optFrom(b, okB)}
		r, err := WalkPair(src, op, joinPath(path, name), childNode)
		if err != nil {
			return zero, err
		}
		results[name] = r
	}
	return op.PostDescend(path, node, results)
}

func optFrom[N any](n N, ok bool) Optional[N] {
	if !ok {
		return None[N]()
	}
	return Some(n)
}

func unionNames[A any, B any](a ChildMap[A], b ChildMap[B]) []string {
	seen := map[string]bool{}
	var names []string
	for _, m := range []ChildMap[A]{a} {
		for name := range m {
			if !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		}
	}
	for name := range b {
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}
