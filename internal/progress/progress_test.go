package progress

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func TestCounterAddAndRead(t *testing.T) {
	c := NewCounter("hashing", 100)
	c.Add(10)
	c.Add(15)

	report := c.Read()
	if report.Count != 25 {
		t.Errorf("Count = %d, want 25", report.Count)
	}
	if report.Total != 100 {
		t.Errorf("Total = %d, want 100", report.Total)
	}
	if report.Done {
		t.Errorf("expected Done false before Finish")
	}

	c.Finish()
	if got := c.Read(); !got.Done {
		t.Errorf("expected Done true after Finish")
	}
}

func TestReportStringWithKnownTotal(t *testing.T) {
	r := Report{Label: "hashing", Count: 5, Total: 10, Elapsed: time.Second}
	s := r.String()
	if !strings.Contains(s, "hashing") || !strings.Contains(s, "5/10") || !strings.Contains(s, "50.0%") {
		t.Errorf("String() = %q, missing expected fields", s)
	}
}

func TestReportStringWithUnknownTotal(t *testing.T) {
	r := Report{Label: "scanning", Count: 7, Elapsed: time.Second}
	s := r.String()
	if !strings.Contains(s, "scanning") || !strings.Contains(s, "7") {
		t.Errorf("String() = %q, missing expected fields", s)
	}
	if strings.Contains(s, "/0") {
		t.Errorf("String() = %q, should not render a total when none is set", s)
	}
}

func TestWatchStderrStopsOnFinish(t *testing.T) {
	c := NewCounter("copying", 1)
	c.Add(1)

	var buf bytes.Buffer
	done := make(chan struct{})
	go func() {
		WatchStderr(&buf, c)
		close(done)
	}()

	c.Finish()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("WatchStderr did not return after Finish")
	}

	if !strings.Contains(buf.String(), "copying") {
		t.Errorf("expected watcher output to mention the counter label, got %q", buf.String())
	}
}
