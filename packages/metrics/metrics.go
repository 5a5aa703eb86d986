// Package metrics aggregates call latencies of a probe sequence.
package metrics

import (
	"sync"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
)

const (
	// minLatencyUs and maxLatencyUs bound the histogram; the upper bound
	// covers the longest per-call timeout with room to spare
	minLatencyUs = 1
	maxLatencyUs = int64(15 * time.Minute / time.Microsecond)
)

// Recorder collects call outcomes for one sequence
type Recorder struct {
	mu sync.Mutex

	calls    int64
	failures int64
	timeouts int64
	found    int64

	// Latency histogram (in microseconds for precision)
	histogram *hdrhistogram.Histogram

	startTime time.Time
	endTime   time.Time
}

// NewRecorder creates an empty Recorder
func NewRecorder() *Recorder {
	return &Recorder{
		histogram: hdrhistogram.New(minLatencyUs, maxLatencyUs, 3),
	}
}

// Start marks the beginning of the sequence
func (r *Recorder) Start() {
	r.mu.Lock()
	r.startTime = time.Now()
	r.mu.Unlock()
}

// Stop marks the end of the sequence
func (r *Recorder) Stop() {
	r.mu.Lock()
	r.endTime = time.Now()
	r.mu.Unlock()
}

// Record records one call. found is the number of items the call returned.
func (r *Recorder) Record(duration time.Duration, found int, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.calls++
	r.found += int64(found)
	if err != nil {
		r.failures++
	}

	_ = r.histogram.RecordValue(clampLatency(duration))
}

// RecordTimeout records a call that hit its timeout
func (r *Recorder) RecordTimeout(duration time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.calls++
	r.failures++
	r.timeouts++

	_ = r.histogram.RecordValue(clampLatency(duration))
}

func clampLatency(d time.Duration) int64 {
	latencyUs := d.Microseconds()
	if latencyUs < minLatencyUs {
		latencyUs = minLatencyUs
	}
	if latencyUs > maxLatencyUs {
		latencyUs = maxLatencyUs
	}
	return latencyUs
}

// Summary is the final view of a Recorder
type Summary struct {
	Duration time.Duration
	Calls    int64
	Failures int64
	Timeouts int64
	Found    int64

	P50  time.Duration
	P95  time.Duration
	P99  time.Duration
	Min  time.Duration
	Max  time.Duration
	Mean time.Duration
}

// FailureRate returns failures over calls, 0 when nothing was called
func (s Summary) FailureRate() float64 {
	if s.Calls == 0 {
		return 0
	}
	return float64(s.Failures) / float64(s.Calls)
}

// Summary returns the aggregated metrics
func (r *Recorder) Summary() Summary {
	r.mu.Lock()
	defer r.mu.Unlock()

	duration := r.endTime.Sub(r.startTime)
	if r.endTime.IsZero() {
		duration = time.Since(r.startTime)
	}
	if r.startTime.IsZero() {
		duration = 0
	}

	s := Summary{
		Duration: duration,
		Calls:    r.calls,
		Failures: r.failures,
		Timeouts: r.timeouts,
		Found:    r.found,
	}

	if r.calls == 0 {
		return s
	}

	s.P50 = usToDuration(r.histogram.ValueAtQuantile(50))
	s.P95 = usToDuration(r.histogram.ValueAtQuantile(95))
	s.P99 = usToDuration(r.histogram.ValueAtQuantile(99))
	s.Min = usToDuration(r.histogram.Min())
	s.Max = usToDuration(r.histogram.Max())
	s.Mean = usToDuration(int64(r.histogram.Mean()))
	return s
}

func usToDuration(us int64) time.Duration {
	return time.Duration(us) * time.Microsecond
}
