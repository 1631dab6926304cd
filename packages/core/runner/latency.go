package runner

import (
	"sync"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
)

const (
	minLatencyUs = 1
	maxLatencyUs = 60_000_000
)

// Latency records request durations in a histogram
type Latency struct {
	mu        sync.Mutex
	histogram *hdrhistogram.Histogram
}

// LatencySummary is a point-in-time view of the recorded durations
type LatencySummary struct {
	Count int64
	Min   time.Duration
	Mean  time.Duration
	P50   time.Duration
	P95   time.Duration
	P99   time.Duration
	Max   time.Duration
}

// NewLatency creates an empty recorder covering 1us to 60s
func NewLatency() *Latency {
	return &Latency{
		histogram: hdrhistogram.New(minLatencyUs, maxLatencyUs, 3),
	}
}

// Record adds one request duration, clamped to the histogram range
func (l *Latency) Record(d time.Duration) {
	us := d.Microseconds()
	if us < minLatencyUs {
		us = minLatencyUs
	}
	if us > maxLatencyUs {
		us = maxLatencyUs
	}

	l.mu.Lock()
	_ = l.histogram.RecordValue(us)
	l.mu.Unlock()
}

// Summary returns the current percentiles
func (l *Latency) Summary() LatencySummary {
	l.mu.Lock()
	defer l.mu.Unlock()

	h := l.histogram
	if h.TotalCount() == 0 {
		return LatencySummary{}
	}

	return LatencySummary{
		Count: h.TotalCount(),
		Min:   usToDuration(h.Min()),
		Mean:  time.Duration(h.Mean() * float64(time.Microsecond)),
		P50:   usToDuration(h.ValueAtQuantile(50)),
		P95:   usToDuration(h.ValueAtQuantile(95)),
		P99:   usToDuration(h.ValueAtQuantile(99)),
		Max:   usToDuration(h.Max()),
	}
}

func usToDuration(us int64) time.Duration {
	return time.Duration(us) * time.Microsecond
}
