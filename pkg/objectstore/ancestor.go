package objectstore

import "github.com/sleepymurph/dmv/pkg/objectkey"

// FindCommonAncestor performs synchronized breadth-first search from each
// of starts simultaneously, returning the first hash reached by every
// frontier. If the frontiers exhaust without ever intersecting, it returns
// false rather than an error (no common ancestor is not a failure).
func (s *Store) FindCommonAncestor(starts ...objectkey.Key) (objectkey.Key, bool, error) {
	if len(starts) == 0 {
		return objectkey.Key{}, false, nil
	}
	if len(starts) == 1 {
		return starts[0], true, nil
	}

	seen := make([]map[objectkey.Key]bool, len(starts))
	frontier := make([][]objectkey.Key, len(starts))
	for i, start := range starts {
		seen[i] = map[objectkey.Key]bool{start: true}
		frontier[i] = []objectkey.Key{start}
	}

	allSeenBy := func(k objectkey.Key) bool {
		for _, set := range seen {
			if !set[k] {
				return false
			}
		}
		return true
	}

	for i := range starts {
		if allSeenBy(starts[i]) {
			return starts[i], true, nil
		}
	}

	for {
		progressed := false
		for i := range frontier {
			if len(frontier[i]) == 0 {
				continue
			}
			var next []objectkey.Key
			for _, hash := range frontier[i] {
				commit, err := s.OpenCommit(hash)
				if err != nil {
					return objectkey.Key{}, false, err
				}
				for _, parent := range commit.Parents {
					if seen[i][parent] {
						continue
					}
					seen[i][parent] = true
					next = append(next, parent)
					if allSeenBy(parent) {
						return parent, true, nil
					}
				}
			}
			frontier[i] = next
			if len(next) > 0 {
				progressed = true
			}
		}
		if !progressed {
			return objectkey.Key{}, false, nil
		}
	}
}
