package game

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type emptyView struct{}

func (emptyView) Len() int                   { return 0 }
func (emptyView) Interval() float64          { return 0.1 }
func (emptyView) Sample(k int) (Vec3, error) { return Vec3{}, ErrSampleOutOfRange }

// straightHistory drives a body along +Z at speed for the given number of fixed ticks.
func straightHistory(speed float64, ticks int) (*History, Vec3) {
	h := NewHistory(40, 0.1, Vec3{})
	var pos Vec3
	for i := 1; i <= ticks; i++ {
		pos = Vec3{0, 0, speed * float64(i) * Dt}
		h.Accumulate(Dt, pos)
	}
	return h, pos
}

// TestSampleAtZeroDelayIsLive returns the live position bit for bit.
func TestSampleAtZeroDelayIsLive(t *testing.T) {
	h, _ := straightHistory(5, 52)
	live := Vec3{0.123, 0.5, 5.2}
	assert.Equal(t, live, SampleAtDelay(h, live, h.HeadToRecord(), 0))
	assert.Equal(t, live, SampleAtDelay(h, live, h.HeadToRecord(), -1))
}

// TestSampleBeyondSpanClampsToOldest never extrapolates past the ring.
func TestSampleBeyondSpanClampsToOldest(t *testing.T) {
	h, live := straightHistory(5, 500)
	oldest, err := h.Sample(h.Len() - 1)
	require.NoError(t, err)

	assert.Equal(t, oldest, SampleAtDelay(h, live, h.HeadToRecord(), 100))
	assert.Equal(t, oldest, SampleAtDelay(h, live, h.HeadToRecord(), h.Span()+h.HeadToRecord()+0.05))
}

// TestSampleFollowsStraightPath reconstructs a uniform motion exactly at any delay inside the span.
func TestSampleFollowsStraightPath(t *testing.T) {
	h, live := straightHistory(1, 50)
	require.InDelta(t, 1.0, live[2], 1e-12)

	for d := 0.0; d <= h.Span(); d += 0.01 {
		got := SampleAtDelay(h, live, h.HeadToRecord(), d)
		assert.InDelta(t, live[2]-d, got[2], 1e-5, "delay %.2f", d)
	}
}

// TestSampleBetweenLiveAndNewestRecord interpolates over the time since the last record.
func TestSampleBetweenLiveAndNewestRecord(t *testing.T) {
	h, _ := straightHistory(1, 50)
	live := Vec3{0, 0, 1.02}
	h.Accumulate(Dt, live)
	require.InDelta(t, 0.02, h.HeadToRecord(), 1e-9)

	got := SampleAtDelay(h, live, h.HeadToRecord(), 0.01)
	assert.InDelta(t, 1.01, got[2], 1e-9)

	s0, err := h.Sample(0)
	require.NoError(t, err)
	got = SampleAtDelay(h, live, h.HeadToRecord(), h.HeadToRecord())
	assert.InDelta(t, s0[2], got[2], 1e-12)
}

// TestSampleIsContinuous has no jumps at the record and head boundaries.
func TestSampleIsContinuous(t *testing.T) {
	h, live := straightHistory(3, 73)
	live = live.Add(Vec3{0.4, 0, 0})
	head := h.HeadToRecord()

	const step = 0.001
	prev := SampleAtDelay(h, live, head, 0)
	maxJump := 0.0
	for d := step; d <= h.Span()+head+0.5; d += step {
		cur := SampleAtDelay(h, live, head, d)
		maxJump = math.Max(maxJump, cur.Sub(prev).Len())
		prev = cur
	}
	// speed 3 over 1ms is 0.003; the live offset spreads 0.4 over the head segment.
	limit := 3*step + 0.4*step/head + 1e-9
	assert.LessOrEqual(t, maxJump, limit)
}

func TestSampleEmptyViewReturnsLive(t *testing.T) {
	live := Vec3{1, 2, 3}
	assert.Equal(t, live, SampleAtDelay(emptyView{}, live, 0.05, 1))
}
