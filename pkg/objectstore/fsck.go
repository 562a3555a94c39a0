package objectstore

import (
	"bytes"
	"io/fs"
	"math"
	"os"
	"path/filepath"

	"lukechampine.com/blake3"

	"github.com/sleepymurph/dmv/pkg/constants"
	"github.com/sleepymurph/dmv/pkg/dag"
	"github.com/sleepymurph/dmv/pkg/objectkey"
	"github.com/sleepymurph/dmv/pkg/vcserrors"
)

// Mismatch records an object file whose recomputed SHA-1 does not match the
// key implied by its on-disk path.
type Mismatch struct {
	Path        string
	ExpectedKey objectkey.Key
	ActualKey   objectkey.Key
}

// TypeStats accumulates per-object-kind size statistics.
type TypeStats struct {
	Count  int
	Mean   float64
	StdDev float64

	sum, sumSq float64
}

func (ts *TypeStats) add(size float64) {
	ts.Count++
	ts.sum += size
	ts.sumSq += size * size
}

func (ts *TypeStats) finalize() {
	if ts.Count == 0 {
		return
	}
	n := float64(ts.Count)
	ts.Mean = ts.sum / n
	variance := ts.sumSq/n - ts.Mean*ts.Mean
	if variance < 0 {
		variance = 0
	}
	ts.StdDev = math.Sqrt(variance)
}

// FsckReport is the result of an integrity scan: hash mismatches plus
// per-kind size statistics, and a blake3 digest of the whole mismatch list
// so that repeated runs against an unchanged repository can be recognized
// as reporting the same failures without re-diffing them structurally.
type FsckReport struct {
	Mismatches  []Mismatch
	Stats       map[dag.ObjectType]*TypeStats
	ReportDigest [32]byte
}

// Fsck iterates every object file, recomputes its SHA-1, and compares it to
// the key implied by its path, collecting mismatches rather than aborting
// on the first one. It also tabulates count/mean/stddev of content size per
// object kind.
func (s *Store) Fsck() (*FsckReport, error) {
	report := &FsckReport{Stats: map[dag.ObjectType]*TypeStats{}}
	objectsDir := filepath.Join(s.root, constants.ObjectsDirName)
	digest := blake3.New(32, nil)

	err := filepath.WalkDir(objectsDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return vcserrors.IO("while walking object store", err)
		}
		if d.IsDir() {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return vcserrors.IO("while reading object file "+path, err)
		}
		expected, err := s.keyFromPath(path)
		if err != nil {
			return err
		}
		actual := objectkey.Sum(data)
		if actual != expected {
			m := Mismatch{Path: path, ExpectedKey: expected, ActualKey: actual}
			report.Mismatches = append(report.Mismatches, m)
			digest.Write([]byte(m.Path))
			digest.Write(m.ExpectedKey.Bytes())
			digest.Write(m.ActualKey.Bytes())
			return nil
		}

		header, err := dag.DecodeHeader(bytes.NewReader(data))
		if err != nil {
			// A corrupt header on an otherwise hash-matching file is
			// already impossible (the hash covers the header), but guard
			// against it rather than panic on a malformed stats key.
			return nil
		}
		ts, ok := report.Stats[header.Type]
		if !ok {
			ts = &TypeStats{}
			report.Stats[header.Type] = ts
		}
		ts.add(float64(header.ContentSize))
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, ts := range report.Stats {
		ts.finalize()
	}
	copy(report.ReportDigest[:], digest.Sum(nil))
	return report, nil
}

func (s *Store) fsckDigestPath() string {
	return filepath.Join(s.root, constants.FsckDigestFileName)
}

// LastFsckDigest reads back the digest recorded by the previous call to
// RecordFsckDigest, and whether one has been recorded yet.
func (s *Store) LastFsckDigest() ([32]byte, bool, error) {
	var digest [32]byte
	data, err := os.ReadFile(s.fsckDigestPath())
	if os.IsNotExist(err) {
		return digest, false, nil
	}
	if err != nil {
		return digest, false, vcserrors.IO("while reading fsck digest", err)
	}
	copy(digest[:], data)
	return digest, true, nil
}

// RecordFsckDigest persists digest so a later fsck run can tell whether it
// is reporting the same mismatches as this one.
func (s *Store) RecordFsckDigest(digest [32]byte) error {
	if err := os.WriteFile(s.fsckDigestPath(), digest[:], 0644); err != nil {
		return vcserrors.IO("while writing fsck digest", err)
	}
	return nil
}
