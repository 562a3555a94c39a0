package workdir

import (
	"fmt"
	"io"
	"strings"

	"github.com/sleepymurph/dmv/pkg/objectkey"
)

// Log writes the commit history reachable from the current parents and
// every ref, newest first, drawing the ASCII branch graph unless
// hashOnly is set (in which case it prints bare hashes, one per line).
func (w *WorkDir) Log(out io.Writer, hashOnly bool) error {
	startRefs := append([]objectkey.Key(nil), w.state.value.Parents...)
	for _, hash := range w.Objects.Refs() {
		startRefs = append(startRefs, hash)
	}
	startRefs = dedupKeys(startRefs)

	sorted, err := w.Objects.SortCommitsDepthFirst(startRefs)
	if err != nil {
		return err
	}

	if hashOnly {
		for i := len(sorted) - 1; i >= 0; i-- {
			fmt.Fprintf(out, "%s\n", sorted[i].Hash)
		}
		return nil
	}

	var slots []objectkey.Key
	for i := len(sorted) - 1; i >= 0; i-- {
		hash, commit := sorted[i].Hash, sorted[i].Commit

		if linearSearch(slots, hash) == nil {
			slots = append(slots, hash)
		}
		search := linearSearch(slots, hash)
		if len(search) != 1 {
			return fmt.Errorf("log graph: expected exactly one slot for %s, found %v", hash, search)
		}
		slot := search[0]

		printGlyphs(out, commitPat(len(slots), slot))

		refs := w.Objects.RefsFor(hash)
		for p, parentHash := range w.state.value.Parents {
			if parentHash != hash {
				continue
			}
			name := "HEAD"
			if len(w.state.value.Parents) != 1 {
				name = fmt.Sprintf("PARENT%d", p)
			}
			refs = append([]string{name}, refs...)
			break
		}
		if len(refs) == 0 {
			fmt.Fprintf(out, "%s %s\n", hash, commit.Message)
		} else {
			fmt.Fprintf(out, "%s (%s) %s\n", hash, strings.Join(refs, ", "), commit.Message)
		}

		switch len(commit.Parents) {
		case 0:
			printlnGlyphs(out, deadEndPat(len(slots), slot))
			slots = append(slots[:slot], slots[slot+1:]...)
		case 1:
			slots[slot] = commit.Parents[0]
		default:
			slots[slot] = commit.Parents[0]
			for i, parent := range commit.Parents[1:] {
				insertAt := slot + i
				slots = append(slots, objectkey.Key{})
				copy(slots[insertAt+1:], slots[insertAt:])
				slots[insertAt] = parent
				printlnGlyphs(out, expandPat(len(slots), slot))
			}
		}

		for i := 0; i < len(slots); {
			search := linearSearch(slots, slots[i])
			if len(search) == 2 {
				printlnGlyphs(out, contractPat(len(slots), search[0], search[1]))
				slots = append(slots[:search[1]], slots[search[1]+1:]...)
			} else {
				i++
			}
		}
	}
	return nil
}

func dedupKeys(keys []objectkey.Key) []objectkey.Key {
	seen := map[objectkey.Key]bool{}
	var out []objectkey.Key
	for _, k := range keys {
		if !seen[k] {
			seen[k] = true
			out = append(out, k)
		}
	}
	return out
}
