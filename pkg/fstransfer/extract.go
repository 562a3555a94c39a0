package fstransfer

import (
	"os"
	"path/filepath"

	"github.com/sleepymurph/dmv/internal/progress"
	"github.com/sleepymurph/dmv/pkg/filestore"
	"github.com/sleepymurph/dmv/pkg/objectstore"
	"github.com/sleepymurph/dmv/pkg/vcserrors"
	"github.com/sleepymurph/dmv/pkg/walker"
)

// ExtractObjectOp walks an object tree (or a single file object at the
// root) and materializes it under Root. Before descending into a
// directory, any file in its place is removed and the directory is
// created if missing.
type ExtractObjectOp struct {
	Objects *objectstore.Store
	Files   *filestore.FileStore
	Root    string
	Counter *progress.Counter
}

func (op *ExtractObjectOp) absPath(path string) string {
	return filepath.Join(op.Root, filepath.FromSlash(path))
}

func (op *ExtractObjectOp) ShouldDescend(path string, node objectstore.WalkNode) bool {
	return node.IsTree()
}

func (op *ExtractObjectOp) PreDescend(path string, node objectstore.WalkNode) error {
	dirPath := op.absPath(path)
	info, err := os.Stat(dirPath)
	if err == nil && info.IsDir() {
		return nil
	}
	if err == nil {
		if rmErr := os.Remove(dirPath); rmErr != nil {
			return vcserrors.IO("while removing file to extract directory "+dirPath, rmErr)
		}
	}
	if mkErr := os.Mkdir(dirPath, 0755); mkErr != nil {
		return vcserrors.IO("while creating directory "+dirPath, mkErr)
	}
	return nil
}

func (op *ExtractObjectOp) NoDescend(path string, node objectstore.WalkNode) (struct{}, error) {
	err := op.Files.ExtractFile(op.Objects, node.Hash, op.absPath(path), op.Counter)
	return struct{}{}, err
}

func (op *ExtractObjectOp) PostDescend(path string, node objectstore.WalkNode, children walker.ChildMap[struct{}]) (struct{}, error) {
	return struct{}{}, nil
}
