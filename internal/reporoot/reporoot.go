// Package reporoot finds a repository's working root by ascending from
// the current directory until the hidden repository directory appears.
package reporoot

import (
	"os"
	"path/filepath"

	"github.com/sleepymurph/dmv/pkg/constants"
	"github.com/sleepymurph/dmv/pkg/vcserrors"
)

// Layout names the two paths that matter once a repository is found: the
// working root (where files live) and the hidden directory inside it
// (where the object store and work directory state live).
type Layout struct {
	WorkingRoot string
	HiddenDir   string
}

// Find ascends from start (typically the current working directory) until
// it finds a directory containing the hidden repository directory, or
// fails with a "not a repository" error if it reaches the filesystem root
// first.
func Find(start string) (Layout, error) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return Layout{}, vcserrors.IO("while resolving starting directory", err)
	}
	for {
		hidden := filepath.Join(dir, constants.HiddenDirName)
		if info, err := os.Stat(hidden); err == nil && info.IsDir() {
			return Layout{WorkingRoot: dir, HiddenDir: hidden}, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return Layout{}, vcserrors.New(vcserrors.CodeGeneric,
				"not a repository (or any parent up to the filesystem root): "+constants.HiddenDirName+" not found")
		}
		dir = parent
	}
}

// FindFromWD ascends from the current working directory.
func FindFromWD() (Layout, error) {
	wd, err := os.Getwd()
	if err != nil {
		return Layout{}, vcserrors.IO("while getting working directory", err)
	}
	return Find(wd)
}
