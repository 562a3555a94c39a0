// Package chunker implements the rolling-hash content-defined chunker:
// it splits an arbitrary byte stream into chunks whose boundaries depend on
// local content, so inserting bytes only shifts the boundaries near the
// insertion point.
package chunker

import (
	"github.com/sleepymurph/dmv/pkg/constants"
)

// rollingHasher tracks the arithmetic sum of the bytes currently in a
// fixed-size trailing window, updating in O(1) per byte as the window
// slides.
type rollingHasher struct {
	value      uint32
	window     []byte
	windowSize int
	pos        int
	full       bool
}

func newRollingHasher(windowSize int) *rollingHasher {
	return &rollingHasher{
		window:     make([]byte, windowSize),
		windowSize: windowSize,
	}
}

func (h *rollingHasher) reset() {
	for i := range h.window {
		h.window[i] = 0
	}
	h.pos = 0
	h.full = false
	h.value = 0
}

func (h *rollingHasher) slide(b byte) {
	outgoing := uint32(h.window[h.pos])
	incoming := uint32(b)
	h.value = h.value - outgoing + incoming
	h.window[h.pos] = b
	h.pos = (h.pos + 1) % h.windowSize
	if h.pos == 0 {
		h.full = true
	}
}

// flagger wraps a rollingHasher and flags a chunk boundary whenever the
// window is full and the accumulated value is a multiple of the target
// mask. Flagging resets the window so the next chunk starts fresh.
type flagger struct {
	hasher *rollingHasher
	mask   uint32
}

func newFlagger() *flagger {
	return &flagger{
		hasher: newRollingHasher(constants.WindowSize),
		mask:   uint32(constants.TargetMask),
	}
}

func (f *flagger) slide(b byte) {
	if f.flag() {
		f.hasher.reset()
	}
	f.hasher.slide(b)
}

func (f *flagger) flag() bool {
	return f.hasher.full && f.hasher.value%f.mask == 0
}
