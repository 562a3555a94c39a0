package workdir

import (
	"fmt"
	"io"

	"github.com/sleepymurph/dmv/pkg/objectkey"
)

// logGlyph is one character-pair drawn in a log graph column.
type logGlyph int

const (
	glyphCommit logGlyph = iota
	glyphStraight

	glyphShiftLeft
	glyphJoin
	glyphJoinSpanStart
	glyphJoinSpanMid
	glyphJoinSpanEnd

	glyphShiftRight
	glyphExpand
)

var glyphAscii = map[logGlyph]string{
	glyphCommit:   "* ",
	glyphStraight: "| ",

	glyphShiftLeft:     " /",
	glyphJoin:          "|/",
	glyphJoinSpanStart: "|,",
	glyphJoinSpanMid:   "--",
	glyphJoinSpanEnd:   "-`",

	glyphShiftRight: " \\",
	glyphExpand:     "|\\",
}

func printGlyphs(w io.Writer, glyphs []logGlyph) {
	for _, g := range glyphs {
		fmt.Fprint(w, glyphAscii[g])
	}
}

func printlnGlyphs(w io.Writer, glyphs []logGlyph) {
	if len(glyphs) == 0 {
		return
	}
	printGlyphs(w, glyphs)
	fmt.Fprintln(w)
}

// commitPat draws the commit marker in commitSlot among slots total
// columns.
func commitPat(slots, commitSlot int) []logGlyph {
	glyphs := make([]logGlyph, slots)
	for i := range glyphs {
		if i == commitSlot {
			glyphs[i] = glyphCommit
		} else {
			glyphs[i] = glyphStraight
		}
	}
	return glyphs
}

// deadEndPat draws a column dropping out of the graph (a root commit):
// straight lines before it, a join glyph at it, and shifted lines after,
// since every later column shifts left to fill the gap.
func deadEndPat(slots, commitSlot int) []logGlyph {
	glyphs := make([]logGlyph, 0, slots-1)
	for i := 0; i < slots-1; i++ {
		switch {
		case i < commitSlot:
			glyphs = append(glyphs, glyphStraight)
		case i == commitSlot:
			glyphs = append(glyphs, glyphJoin)
		default:
			glyphs = append(glyphs, glyphShiftLeft)
		}
	}
	return glyphs
}

// expandPat draws a merge commit's extra parents branching off into new
// columns: straight lines before it, an expand glyph at it, shifted lines
// after.
func expandPat(slots, commitSlot int) []logGlyph {
	glyphs := make([]logGlyph, 0, slots-1)
	for i := 0; i < slots-1; i++ {
		switch {
		case i < commitSlot:
			glyphs = append(glyphs, glyphStraight)
		case i == commitSlot:
			glyphs = append(glyphs, glyphExpand)
		default:
			glyphs = append(glyphs, glyphShiftRight)
		}
	}
	return glyphs
}

// contractPat draws two columns converging because they now name the same
// commit: a lone join glyph if they are adjacent, or a join/span/span-end
// run if other columns sit between them.
func contractPat(slots, commitSlot, dupSlot int) []logGlyph {
	glyphs := make([]logGlyph, 0, slots-1)
	span := dupSlot > commitSlot+1
	for i := 0; i < slots-1; i++ {
		switch {
		case i < commitSlot:
			glyphs = append(glyphs, glyphStraight)
		case !span && i == commitSlot:
			glyphs = append(glyphs, glyphJoin)
		case span && i == commitSlot:
			glyphs = append(glyphs, glyphJoinSpanStart)
		case span && commitSlot+1 < i && i < dupSlot-1:
			glyphs = append(glyphs, glyphJoinSpanMid)
		case span && i == dupSlot-1:
			glyphs = append(glyphs, glyphJoinSpanEnd)
		case i >= dupSlot:
			glyphs = append(glyphs, glyphShiftLeft)
		}
	}
	return glyphs
}

// linearSearch returns every index in slots equal to target.
func linearSearch(slots []objectkey.Key, target objectkey.Key) []int {
	var found []int
	for i, s := range slots {
		if s == target {
			found = append(found, i)
		}
	}
	return found
}
