package objectstore

import (
	"github.com/sleepymurph/dmv/pkg/dag"
	"github.com/sleepymurph/dmv/pkg/objectkey"
)

// SortedCommit pairs a commit hash with its decoded content, in the order
// SortCommitsDepthFirst produces them: every parent before the commit that
// names it.
type SortedCommit struct {
	Hash   objectkey.Key
	Commit *dag.Commit
}

// SortCommitsDepthFirst visits each of starts and its ancestry exactly
// once, recursing into parents before appending a commit to the result,
// so a commit never appears before any of its ancestors.
func (s *Store) SortCommitsDepthFirst(starts []objectkey.Key) ([]SortedCommit, error) {
	sorter := &commitSorter{store: s, visited: map[objectkey.Key]bool{}}
	for _, start := range starts {
		if err := sorter.visit(start); err != nil {
			return nil, err
		}
	}
	return sorter.sorted, nil
}

type commitSorter struct {
	store   *Store
	visited map[objectkey.Key]bool
	sorted  []SortedCommit
}

func (cs *commitSorter) visit(hash objectkey.Key) error {
	if cs.visited[hash] {
		return nil
	}
	cs.visited[hash] = true
	commit, err := cs.store.OpenCommit(hash)
	if err != nil {
		return err
	}
	for _, parent := range commit.Parents {
		if err := cs.visit(parent); err != nil {
			return err
		}
	}
	cs.sorted = append(cs.sorted, SortedCommit{Hash: hash, Commit: commit})
	return nil
}
