package fstransfer

import (
	"fmt"
	"io"
	"sort"

	"github.com/sleepymurph/dmv/pkg/status"
)

// PrintTree writes one line per included node in tree, in ascending path
// order, shared by status (working directory or rev-to-rev) output.
func PrintTree(out io.Writer, path string, tree *StatusTree, showIgnored bool) {
	if tree == nil {
		return
	}
	if status.Included(tree.Status, showIgnored) && path != "" {
		fmt.Fprintf(out, "%-8s %s\n", tree.Status, path)
	}
	names := make([]string, 0, len(tree.Children))
	for name := range tree.Children {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		childPath := name
		if path != "" {
			childPath = path + "/" + name
		}
		PrintTree(out, childPath, tree.Children[name], showIgnored)
	}
}
