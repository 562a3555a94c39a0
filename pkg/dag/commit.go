package dag

import (
	"io"

	"github.com/sleepymurph/dmv/pkg/objectkey"
	"github.com/sleepymurph/dmv/pkg/vcserrors"
)

// Commit is a tree snapshot plus zero or more parent commits and a free-form
// message. A commit with no parents is a root commit.
type Commit struct {
	Tree    objectkey.Key
	Parents []objectkey.Key
	Message string
}

func (c *Commit) Type() ObjectType { return TypeCommit }

func (c *Commit) ContentSize() uint64 {
	return uint64(len(c.Tree.Bytes())) + 1 + uint64(len(c.Parents))*20 + uint64(len(c.Message))
}

func (c *Commit) EncodeContent(w io.Writer) error {
	if len(c.Parents) > 255 {
		return vcserrors.New(vcserrors.CodeBadObjectHeader, "commit cannot have more than 255 parents")
	}
	if _, err := w.Write(c.Tree.Bytes()); err != nil {
		return vcserrors.IO("while writing commit tree hash", err)
	}
	if _, err := w.Write([]byte{byte(len(c.Parents))}); err != nil {
		return vcserrors.IO("while writing commit parent count", err)
	}
	for _, p := range c.Parents {
		if _, err := w.Write(p.Bytes()); err != nil {
			return vcserrors.IO("while writing commit parent hash", err)
		}
	}
	if _, err := io.WriteString(w, c.Message); err != nil {
		return vcserrors.IO("while writing commit message", err)
	}
	return nil
}

func decodeCommitContent(r io.Reader, size uint64) (*Commit, error) {
	var treeHash [20]byte
	if _, err := io.ReadFull(r, treeHash[:]); err != nil {
		return nil, vcserrors.IO("while reading commit tree hash", err)
	}
	tree, err := objectkey.FromBytes(treeHash[:])
	if err != nil {
		return nil, err
	}

	var countByte [1]byte
	if _, err := io.ReadFull(r, countByte[:]); err != nil {
		return nil, vcserrors.IO("while reading commit parent count", err)
	}
	count := int(countByte[0])

	parents := make([]objectkey.Key, 0, count)
	for i := 0; i < count; i++ {
		var ph [20]byte
		if _, err := io.ReadFull(r, ph[:]); err != nil {
			return nil, vcserrors.IO("while reading commit parent hash", err)
		}
		key, err := objectkey.FromBytes(ph[:])
		if err != nil {
			return nil, err
		}
		parents = append(parents, key)
	}

	remaining := int64(size) - 20 - 1 - int64(count)*20
	if remaining < 0 {
		return nil, vcserrors.New(vcserrors.CodeBadObjectHeader, "commit content shorter than its fixed fields")
	}
	msgBuf := make([]byte, remaining)
	if _, err := io.ReadFull(r, msgBuf); err != nil {
		return nil, vcserrors.IO("while reading commit message", err)
	}

	return &Commit{Tree: tree, Parents: parents, Message: string(msgBuf)}, nil
}
