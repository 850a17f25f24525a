package transfer

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// progress writes a running count of processed keys to a writer.
type progress struct {
	writer       io.Writer
	total        int
	interval     int
	current      int
	lastReported int
	startTime    time.Time
	mu           sync.Mutex
}

func newProgress(writer io.Writer, total, interval int) *progress {
	return &progress{
		writer:    writer,
		total:     total,
		interval:  max(interval, 1),
		startTime: time.Now(),
	}
}

// increment records one more processed key. Safe to call from pool workers.
func (p *progress) increment() {
	if p == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	p.current = min(p.current+1, p.total)
	if p.current-p.lastReported >= p.interval {
		p.report()
		p.lastReported = p.current
	}
}

// finish prints the final line.
func (p *progress) finish() {
	if p == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	p.report()
	fmt.Fprintln(p.writer)
}

// report must be called with the lock held.
func (p *progress) report() {
	elapsed := time.Since(p.startTime).Seconds()
	rate := 0.0
	if elapsed > 0 {
		rate = float64(p.current) / elapsed
	}

	percentage := 100.0
	if p.total > 0 {
		percentage = float64(p.current) / float64(p.total) * 100.0
	}

	fmt.Fprintf(p.writer, "\rProgress: %d/%d (%.1f%%) - %.1f blobs/s",
		p.current, p.total, percentage, rate)
}
