// Package progress implements the one piece of intentional concurrency in
// the system: a counter the main thread updates without locking readers,
// and a background goroutine that periodically renders it to stderr.
package progress

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// Counter is a shared progress counter: the owning goroutine calls Add;
// any number of readers may call Read concurrently without blocking the
// writer.
type Counter struct {
	label string
	total uint64

	mu    sync.RWMutex
	count uint64
	start time.Time
	done  bool
}

// NewCounter creates a counter labeled for display, with an expected total
// (0 if unknown).
func NewCounter(label string, total uint64) *Counter {
	return &Counter{label: label, total: total, start: time.Now()}
}

// Add increments the counter by delta. Only the owning goroutine should
// call this.
func (c *Counter) Add(delta uint64) {
	c.mu.Lock()
	c.count += delta
	c.mu.Unlock()
}

// Finish marks the counter complete, causing a background watcher to stop
// after its next read.
func (c *Counter) Finish() {
	c.mu.Lock()
	c.done = true
	c.mu.Unlock()
}

// Report is a point-in-time snapshot of a Counter, displayable on its own.
type Report struct {
	Label   string
	Count   uint64
	Total   uint64
	Elapsed time.Duration
	Done    bool
}

// Read takes a consistent snapshot of the counter's current state.
func (c *Counter) Read() Report {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return Report{
		Label:   c.label,
		Count:   c.count,
		Total:   c.total,
		Elapsed: time.Since(c.start),
		Done:    c.done,
	}
}

func (r Report) String() string {
	rate := float64(0)
	if secs := r.Elapsed.Seconds(); secs > 0 {
		rate = float64(r.Count) / secs
	}
	if r.Total > 0 {
		pct := float64(r.Count) * 100 / float64(r.Total)
		return fmt.Sprintf("%s: %d/%d (%.1f%%) %.0f/s", r.Label, r.Count, r.Total, pct, rate)
	}
	return fmt.Sprintf("%s: %d %.0f/s", r.Label, r.Count, rate)
}

// WatchStderr runs until c is marked done, writing a carriage-return
// status line to w roughly ten times a second. It is meant to be run in
// its own goroutine alongside the work that updates c.
func WatchStderr(w io.Writer, c *Counter) {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()
	for range ticker.C {
		report := c.Read()
		fmt.Fprintf(w, "\r\033[K%s", report)
		if report.Done {
			fmt.Fprintln(w)
			return
		}
	}
}
