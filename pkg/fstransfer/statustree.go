// Package fstransfer wires the object store and the filesystem together
// through the walker framework: comparing a tree to a working directory,
// hashing a working directory into a tree, extracting a tree to disk, and
// three-way merging.
package fstransfer

import (
	"github.com/sleepymurph/dmv/pkg/objectkey"
	"github.com/sleepymurph/dmv/pkg/status"
)

// StatusTree is the result of comparing a source (usually a committed tree)
// to a target (usually the working directory): one node's status plus,
// recursively, its children's.
type StatusTree struct {
	Status      status.Code
	FSPath      *string
	TargetIsDir bool
	TargetSize  uint64
	TargetHash  *objectkey.Key
	Children    map[string]*StatusTree
}

// TransferSize sums the size of every included node that still needs
// hashing (no known hash yet), for sizing a progress counter.
func (t *StatusTree) TransferSize() uint64 {
	if t == nil {
		return 0
	}
	var total uint64
	if status.Included(t.Status, false) && t.TargetHash == nil && !t.TargetIsDir {
		total += t.TargetSize
	}
	for _, child := range t.Children {
		total += child.TransferSize()
	}
	return total
}

// IsModified reports whether the tree or any descendant is not Unchanged.
func (t *StatusTree) IsModified() bool {
	if t == nil {
		return false
	}
	if t.Status != status.Unchanged {
		return true
	}
	for _, child := range t.Children {
		if child.IsModified() {
			return true
		}
	}
	return false
}
