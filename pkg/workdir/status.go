package workdir

import (
	"fmt"
	"io"

	"github.com/sleepymurph/dmv/pkg/fstransfer"
	"github.com/sleepymurph/dmv/pkg/objectkey"
)

// Status compares the working directory against its current parent (or
// the parent's subtree, for a subtree checkout) and prints every changed
// path, one per line, prefixed with its status code.
func (w *WorkDir) Status(out io.Writer, showIgnored bool) error {
	w.printHeader(out)

	var baseline objectkey.Key
	if head, ok := w.Head(); ok {
		baseline = head
		if w.state.value.Subtree != "" {
			if subtreeHash, found, err := w.Objects.LookupTreePath(head, w.state.value.Subtree); err != nil {
				return err
			} else if found {
				baseline = subtreeHash
			}
		}
	}

	return w.StatusAgainst(out, baseline, showIgnored)
}

// StatusAgainst compares the working directory against an arbitrary
// baseline tree (rather than the current parent), for the one-revision
// form of status.
func (w *WorkDir) StatusAgainst(out io.Writer, baseline objectkey.Key, showIgnored bool) error {
	plan, err := w.Transfer.ComparePlan(baseline, w.Path)
	if err != nil {
		return err
	}
	fstransfer.PrintTree(out, "", plan, showIgnored)
	return nil
}

func (w *WorkDir) printHeader(out io.Writer) {
	branch := "<detached head>"
	if b, ok := w.Branch(); ok {
		branch = b
	}
	fmt.Fprintf(out, "On branch %s\n", branch)
	if subtree, ok := w.Subtree(); ok {
		fmt.Fprintf(out, "Subtree: %s\n", subtree)
	}
	parents := w.Parents()
	for i, parent := range parents {
		name := fmt.Sprintf("P%d", i)
		if len(parents) == 1 {
			name = "HEAD"
		}
		message := ""
		if commit, err := w.Objects.OpenCommit(parent); err == nil {
			message = commit.Message
		}
		fmt.Fprintf(out, "%s: %s %s\n", name, parent, message)
	}
	fmt.Fprintln(out)
}

