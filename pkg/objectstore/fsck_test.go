package objectstore

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sleepymurph/dmv/pkg/constants"
	"github.com/sleepymurph/dmv/pkg/dag"
)

func TestFsckCleanRepoReportsNoMismatchesAndTabulatesStats(t *testing.T) {
	dir := t.TempDir()
	s, err := Init(dir)
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}

	if _, err := s.StoreObject(&dag.Blob{Content: []byte("hello")}); err != nil {
		t.Fatalf("StoreObject failed: %v", err)
	}
	if _, err := s.StoreObject(&dag.Blob{Content: []byte("goodbye, a longer one")}); err != nil {
		t.Fatalf("StoreObject failed: %v", err)
	}

	report, err := s.Fsck()
	if err != nil {
		t.Fatalf("Fsck failed: %v", err)
	}
	if len(report.Mismatches) != 0 {
		t.Fatalf("expected no mismatches in a clean repo, got %v", report.Mismatches)
	}
	ts, ok := report.Stats[dag.TypeBlob]
	if !ok {
		t.Fatalf("expected blob stats to be present")
	}
	if ts.Count != 2 {
		t.Errorf("got count %d, want 2", ts.Count)
	}
	if ts.Mean <= 0 {
		t.Errorf("expected a positive mean size, got %v", ts.Mean)
	}
}

func TestFsckDetectsCorruptedObject(t *testing.T) {
	dir := t.TempDir()
	s, err := Init(dir)
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}

	key, err := s.StoreObject(&dag.Blob{Content: []byte("hello")})
	if err != nil {
		t.Fatalf("StoreObject failed: %v", err)
	}

	path := s.objectPath(key)
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	data[len(data)-1] ^= 0xFF
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	report, err := s.Fsck()
	if err != nil {
		t.Fatalf("Fsck failed: %v", err)
	}
	if len(report.Mismatches) != 1 {
		t.Fatalf("expected one mismatch, got %d", len(report.Mismatches))
	}
	if report.Mismatches[0].ExpectedKey != key {
		t.Errorf("got expected key %s, want %s", report.Mismatches[0].ExpectedKey, key)
	}
}

func TestFsckDigestRoundTrips(t *testing.T) {
	dir := t.TempDir()
	s, err := Init(dir)
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}

	if _, _, err := s.LastFsckDigest(); err != nil {
		t.Fatalf("LastFsckDigest on fresh repo failed: %v", err)
	}
	if _, hadLast, err := s.LastFsckDigest(); err != nil || hadLast {
		t.Fatalf("expected no digest recorded yet, hadLast=%v err=%v", hadLast, err)
	}

	report, err := s.Fsck()
	if err != nil {
		t.Fatalf("Fsck failed: %v", err)
	}
	if err := s.RecordFsckDigest(report.ReportDigest); err != nil {
		t.Fatalf("RecordFsckDigest failed: %v", err)
	}

	got, hadLast, err := s.LastFsckDigest()
	if err != nil {
		t.Fatalf("LastFsckDigest failed: %v", err)
	}
	if !hadLast {
		t.Fatalf("expected a recorded digest")
	}
	if got != report.ReportDigest {
		t.Errorf("got digest %x, want %x", got, report.ReportDigest)
	}

	if _, err := os.Stat(filepath.Join(dir, constants.FsckDigestFileName)); err != nil {
		t.Errorf("expected digest sidecar file on disk: %v", err)
	}
}
