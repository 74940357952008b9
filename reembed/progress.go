package reembed

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// ProgressTracker reports reembedding progress to a writer at a fixed
// interval. Safe for concurrent use.
type ProgressTracker struct {
	mu       sync.Mutex
	out      io.Writer
	total    int
	interval int
	done     int
	reported int
	began    time.Time
	running  bool
}

// NewProgressTracker returns a tracker over total items that reports every
// interval items. Output goes to out, typically os.Stderr.
func NewProgressTracker(out io.Writer, total, interval int) *ProgressTracker {
	return &ProgressTracker{out: out, total: total, interval: interval}
}

// Start resets the tracker and begins timing. Updates before Start are
// ignored.
func (p *ProgressTracker) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.began = time.Now()
	p.done = 0
	p.reported = 0
	p.running = true
}

// Update sets absolute progress, clamped to the total.
func (p *ProgressTracker) Update(done int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.running {
		p.advance(done)
	}
}

// Increment adds delta to the current progress, clamped to the total.
func (p *ProgressTracker) Increment(delta int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.running {
		p.advance(p.done + delta)
	}
}

// Finish forces progress to the total, prints a final report and a
// trailing newline.
func (p *ProgressTracker) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.running {
		return
	}
	p.done = p.total
	p.report()
	fmt.Fprintln(p.out)
}

// Elapsed returns the time since Start, or zero before Start.
func (p *ProgressTracker) Elapsed() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.running {
		return 0
	}
	return time.Since(p.began)
}

// advance moves progress to done and reports when the interval has been
// crossed. Caller holds p.mu.
func (p *ProgressTracker) advance(done int) {
	p.done = min(done, p.total)
	if p.done-p.reported >= p.interval {
		p.report()
		p.reported = p.done
	}
}

// report writes one progress line. Caller holds p.mu.
func (p *ProgressTracker) report() {
	rate := float64(p.done) / time.Since(p.began).Seconds()
	pct := 0.0
	if p.total > 0 {
		pct = float64(p.done) / float64(p.total) * 100.0
	}
	fmt.Fprintf(p.out, "\rProgress: %d/%d (%.1f%%) - %.1f chunks/s",
		p.done, p.total, pct, rate)
}
