package workdir

import (
	"bytes"
	"os"
	"path/filepath"

	"github.com/sleepymurph/dmv/pkg/codec/jsoncanon"
	"github.com/sleepymurph/dmv/pkg/constants"
	"github.com/sleepymurph/dmv/pkg/objectkey"
	"github.com/sleepymurph/dmv/pkg/vcserrors"
)

// State is the persisted state of a working directory: its current
// parent commits (more than one once a merge is in progress), the branch
// it tracks (empty for a detached head), and the subtree path it was
// checked out from (empty for a full checkout).
type State struct {
	Parents []objectkey.Key `json:"parents"`
	Branch  string          `json:"branch,omitempty"`
	Subtree string          `json:"subtree,omitempty"`
}

// DefaultState is what a freshly initialized working directory starts
// with: no parents, tracking the default branch, no subtree.
func DefaultState() State {
	return State{Branch: constants.DefaultBranchName}
}

// diskState wraps State with flush-on-drop-if-unchanged persistence, the
// same pattern RefMap uses for its JSON sidecar.
type diskState struct {
	path        string
	value       State
	lastFlushed []byte
}

func statePath(workingRoot string) string {
	return filepath.Join(workingRoot, constants.HiddenDirName, constants.WorkDirStateFileName)
}

// initState starts a fresh diskState at the default value; the first
// flush always writes, since lastFlushed starts nil.
func initState(workingRoot string) *diskState {
	return &diskState{path: statePath(workingRoot), value: DefaultState()}
}

// openState reads an existing state file, or starts at the default value
// if none exists yet.
func openState(workingRoot string) (*diskState, error) {
	path := statePath(workingRoot)
	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		return &diskState{path: path, value: DefaultState()}, nil
	case err != nil:
		return nil, vcserrors.IO("while reading work directory state", err)
	}
	var value State
	if err := jsoncanon.Unmarshal(data, &value); err != nil {
		return nil, vcserrors.Wrap(vcserrors.CodeCacheCorrupt, "while parsing work directory state", err)
	}
	return &diskState{path: path, value: value, lastFlushed: data}, nil
}

func (s *diskState) flush() error {
	data, err := jsoncanon.Marshal(s.value)
	if err != nil {
		return vcserrors.Wrap(vcserrors.CodeCacheSerialize, "while serializing work directory state", err)
	}
	if bytes.Equal(data, s.lastFlushed) {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return vcserrors.IO("while preparing work directory state directory", err)
	}
	if err := os.WriteFile(s.path, data, 0644); err != nil {
		return vcserrors.IO("while writing work directory state", err)
	}
	s.lastFlushed = data
	return nil
}
