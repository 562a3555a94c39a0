// Package constants defines the hidden-directory layout and chunker tuning
// knobs used across the object store, hash cache, and CLI.
package constants

// Repository layout (§6)
const (
	// HiddenDirName is the name of the repository's hidden directory,
	// searched for by ascending from the current working directory.
	HiddenDirName = ".prototype"

	// ObjectsDirName holds one file per stored object, sharded by the
	// first two hex characters of its key.
	ObjectsDirName = "objects"

	// RefsFileName is the JSON RefMap file.
	RefsFileName = "refs"

	// WorkDirStateFileName is the JSON WorkDirState file.
	WorkDirStateFileName = "work_dir_state"

	// TmpFileName is the scratch file used for atomic object writes.
	TmpFileName = "tmp"

	// FsckDigestFileName records the blake3 digest of the most recent
	// fsck run's mismatch list, so a repeat run can recognize it is
	// reporting the same failures as last time.
	FsckDigestFileName = "fsck_digest"

	// DefaultBranchName is the branch a freshly initialized work directory
	// starts on.
	DefaultBranchName = "master"
)

// Hash cache (§4.4)
const (
	// CacheFileName is the per-directory sidecar file name.
	CacheFileName = ".prototype_cache"
)

// Rolling-hash chunker (§4.2)
const (
	// WindowSize is the number of trailing bytes whose sum is tracked.
	WindowSize = 4096

	// TargetMaskBits sets the boundary test value mod 2^TargetMaskBits == 0,
	// giving an expected chunk size of about 2^TargetMaskBits bytes.
	TargetMaskBits = 14

	// TargetMask is value mod TargetMask == 0 flags a boundary.
	TargetMask = 1 << TargetMaskBits

	// TargetChunkSize is the nominal average chunk size the mask above is
	// tuned to produce, in bytes (~15 KiB).
	TargetChunkSize = 15 * 1024
)

// Object header (§3)
const (
	// HeaderSize is 4 ASCII type bytes plus an 8-byte big-endian size.
	HeaderSize = 12

	// ObjectKeySize is the length in bytes of a SHA-1 digest.
	ObjectKeySize = 20
)

// Object type tags, exactly 4 ASCII bytes each.
const (
	TypeBlob        = "blob"
	TypeChunkedBlob = "ckbl"
	TypeTree        = "tree"
	TypeCommit      = "cmmt"
)
