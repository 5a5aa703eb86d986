package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRecorder_Record(t *testing.T) {
	r := NewRecorder()
	r.Start()

	r.Record(100*time.Millisecond, 2, nil)
	r.Record(150*time.Millisecond, 0, nil)
	r.Record(50*time.Millisecond, 0, errors.New("404 - Not Found"))

	r.Stop()

	s := r.Summary()
	assert.Equal(t, int64(3), s.Calls)
	assert.Equal(t, int64(1), s.Failures)
	assert.Equal(t, int64(2), s.Found)
	assert.InDelta(t, 1.0/3.0, s.FailureRate(), 0.001)
}

func TestRecorder_RecordTimeout(t *testing.T) {
	r := NewRecorder()
	r.Start()

	r.Record(10*time.Millisecond, 1, nil)
	r.RecordTimeout(5 * time.Minute)

	r.Stop()

	s := r.Summary()
	assert.Equal(t, int64(2), s.Calls)
	assert.Equal(t, int64(1), s.Timeouts)
	assert.Equal(t, int64(1), s.Failures) // Timeouts count as failures
	assert.InDelta(t, float64(5*time.Minute), float64(s.Max), float64(time.Second))
}

func TestRecorder_Percentiles(t *testing.T) {
	r := NewRecorder()
	r.Start()

	for i := 0; i < 100; i++ {
		r.Record(time.Duration(i+1)*time.Millisecond, 1, nil)
	}

	r.Stop()

	s := r.Summary()
	assert.Equal(t, int64(100), s.Found)
	assert.InDelta(t, float64(50*time.Millisecond), float64(s.P50), float64(time.Millisecond))
	assert.InDelta(t, float64(95*time.Millisecond), float64(s.P95), float64(time.Millisecond))
	assert.InDelta(t, float64(time.Millisecond), float64(s.Min), float64(100*time.Microsecond))
	assert.InDelta(t, float64(100*time.Millisecond), float64(s.Max), float64(time.Millisecond))
	assert.True(t, s.P50 <= s.P95)
	assert.True(t, s.P95 <= s.P99)
}

func TestRecorder_Empty(t *testing.T) {
	r := NewRecorder()

	s := r.Summary()
	assert.Equal(t, int64(0), s.Calls)
	assert.Equal(t, time.Duration(0), s.Duration)
	assert.Equal(t, time.Duration(0), s.P99)
	assert.Equal(t, 0.0, s.FailureRate())
}
