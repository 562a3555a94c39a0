// Package ignore implements the small allow/deny list consulted while
// walking a working directory: a path is ignored if it matches a pattern
// exactly or if any of its components does.
package ignore

import (
	"path/filepath"
	"strings"

	"github.com/sleepymurph/dmv/pkg/constants"
)

// List is an unordered set of ignore patterns.
type List struct {
	patterns map[string]bool
}

// Empty returns a List with no patterns.
func Empty() *List {
	return &List{patterns: map[string]bool{}}
}

// Default returns a List seeded with the names a working directory always
// excludes: the hidden repository directory and its per-directory cache
// sidecar.
func Default() *List {
	l := Empty()
	l.Insert(constants.HiddenDirName)
	l.Insert(constants.CacheFileName)
	return l
}

// Insert adds pattern to the set, reporting whether it was new.
func (l *List) Insert(pattern string) bool {
	if l.patterns[pattern] {
		return false
	}
	l.patterns[pattern] = true
	return true
}

// Ignores reports whether path matches a pattern, either as a full path or
// as one of its slash-separated components.
func (l *List) Ignores(path string) bool {
	path = filepath.ToSlash(path)
	for pattern := range l.patterns {
		pattern = filepath.ToSlash(pattern)
		if trimLeadingDot(path) == trimLeadingDot(pattern) {
			return true
		}
		for _, component := range strings.Split(path, "/") {
			if component == pattern {
				return true
			}
		}
	}
	return false
}

func trimLeadingDot(p string) string {
	return strings.TrimPrefix(p, "./")
}
