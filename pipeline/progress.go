package pipeline

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// ProgressTracker reports embedding throughput to a writer while a run is
// in flight. Languages embed concurrently, so all methods are safe for
// concurrent use; a line goes out only when an interval boundary is
// crossed, to keep terminal noise down.
type ProgressTracker struct {
	mu       sync.Mutex
	writer   io.Writer
	total    int
	interval int
	done     int
	reported int
	began    time.Time
	running  bool
}

// NewProgressTracker creates a tracker that writes a progress line every
// interval completed embeddings, out of total expected.
func NewProgressTracker(writer io.Writer, total, interval int) *ProgressTracker {
	return &ProgressTracker{
		writer:   writer,
		total:    total,
		interval: interval,
	}
}

// Start resets the counters and begins timing.
// Increments before Start are discarded.
func (p *ProgressTracker) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.began = time.Now()
	p.done = 0
	p.reported = 0
	p.running = true
}

// Increment records delta completed embeddings, clamped to the expected
// total.
func (p *ProgressTracker) Increment(delta int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.running {
		return
	}
	p.done += delta
	if p.done > p.total {
		p.done = p.total
	}
	if p.done-p.reported >= p.interval {
		p.write()
		p.reported = p.done
	}
}

// Finish forces a final full-progress line and a trailing newline.
func (p *ProgressTracker) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.running {
		return
	}
	p.done = p.total
	p.write()
	fmt.Fprintln(p.writer)
}

// write emits one carriage-return progress line; callers hold the lock.
func (p *ProgressTracker) write() {
	elapsed := time.Since(p.began).Seconds()
	rate := 0.0
	if elapsed > 0 {
		rate = float64(p.done) / elapsed
	}
	pct := 0.0
	if p.total > 0 {
		pct = 100 * float64(p.done) / float64(p.total)
	}
	fmt.Fprintf(p.writer, "\rProgress: %d/%d (%.1f%%) - %.1f embeddings/s",
		p.done, p.total, pct, rate)
}
