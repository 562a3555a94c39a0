package dag

import (
	"fmt"
	"strings"
)

// Describe renders a decoded object as a human-readable structure, used by
// `show-object` when printing a Tree or Commit (as opposed to a raw Blob,
// which prints its header line only). Supplements the distilled spec, which
// only names `-t` type-only output.
func Describe(obj Object) string {
	switch o := obj.(type) {
	case *Blob:
		return fmt.Sprintf("blob %d bytes\n", o.ContentSize())
	case *ChunkedBlob:
		var b strings.Builder
		fmt.Fprintf(&b, "chunked blob, total_size=%d, chunk_count=%d\n", o.TotalSize, len(o.Chunks))
		for _, c := range o.Chunks {
			fmt.Fprintf(&b, "  %10d %10d %s\n", c.Offset, c.Size, c.Hash)
		}
		return b.String()
	case *Tree:
		var b strings.Builder
		for _, e := range o.Entries {
			fmt.Fprintf(&b, "%s %s\n", e.Hash, e.Name)
		}
		return b.String()
	case *Commit:
		var b strings.Builder
		fmt.Fprintf(&b, "tree %s\n", o.Tree)
		for _, p := range o.Parents {
			fmt.Fprintf(&b, "parent %s\n", p)
		}
		fmt.Fprintf(&b, "\n%s\n", o.Message)
		return b.String()
	default:
		return ""
	}
}
