package game

import (
	"errors"
	"fmt"
	"math"
)

// ErrSampleOutOfRange is returned by History.Sample when k is not a recorded slot.
var ErrSampleOutOfRange = errors.New("history sample out of range")

// History is a fixed-capacity ring of leader positions recorded at a constant interval.
// Slot 0 is the most recent record; higher indexes are older. Samples carry no timestamp,
// so the interval must stay constant for the lifetime of the buffer (see Reset).
type History struct {
	buf      []Vec3
	head     int
	size     int
	interval float64

	residual     float64 // time accumulated but not yet converted into a record
	clock        float64
	lastRecordAt float64
}

func NewHistory(capacity int, interval float64, initial Vec3) *History {
	h := &History{}
	h.Reset(interval, capacity, initial)
	return h
}

// HistoryCapacity sizes a ring so the farthest of n followers, plus one extra gap, stays in range.
func HistoryCapacity(followers int, gap, interval float64, margin int) int {
	if followers < 0 {
		followers = 0
	}
	if interval < MinRecordInterval {
		interval = MinRecordInterval
	}
	if margin < 0 {
		margin = 0
	}
	span := float64(followers+1) * gap
	n := math.Ceil(span/interval-recordTolerance) + float64(margin)
	if !(n >= 2) {
		return 2
	}
	if n > MaxHistoryCapacity {
		return MaxHistoryCapacity
	}
	return int(n)
}

// Reset drops every sample and restarts the ring at pos. It is the only way to change the
// record interval, since old samples would otherwise be read with the wrong spacing.
func (h *History) Reset(interval float64, capacity int, pos Vec3) {
	if capacity < 2 {
		capacity = 2
	}
	if capacity > MaxHistoryCapacity {
		capacity = MaxHistoryCapacity
	}
	if !(interval >= MinRecordInterval) {
		interval = MinRecordInterval
	}
	h.buf = make([]Vec3, capacity)
	h.head = 0
	h.size = 1
	h.buf[0] = pos
	h.interval = interval
	h.residual = 0
	h.clock = 0
	h.lastRecordAt = 0
}

// Accumulate advances the recorder by dt and records pos once per whole interval reached.
// Only the consumed interval is subtracted, so overshoot carries into the next call.
func (h *History) Accumulate(dt float64, pos Vec3) int {
	if !(dt > 0) {
		return 0
	}
	h.clock += dt
	h.residual += dt
	records := 0
	for h.residual >= h.interval-recordTolerance {
		h.push(pos)
		h.residual -= h.interval
		records++
	}
	if h.residual < 0 {
		h.residual = 0
	}
	return records
}

func (h *History) push(pos Vec3) {
	h.head = (h.head + 1) % len(h.buf)
	h.buf[h.head] = pos
	if h.size < len(h.buf) {
		h.size++
	}
	h.lastRecordAt = h.clock
}

// Sample returns the position recorded k steps before the most recent record.
func (h *History) Sample(k int) (Vec3, error) {
	if k < 0 || k >= h.size {
		return Vec3{}, fmt.Errorf("sample %d of %d: %w", k, h.size, ErrSampleOutOfRange)
	}
	idx := h.head - k
	if idx < 0 {
		idx += len(h.buf)
	}
	return h.buf[idx], nil
}

func (h *History) Len() int            { return h.size }
func (h *History) Cap() int            { return len(h.buf) }
func (h *History) Interval() float64   { return h.interval }
func (h *History) Residual() float64   { return h.residual }
func (h *History) Clock() float64      { return h.clock }
func (h *History) LastRecord() float64 { return h.lastRecordAt }

// HeadToRecord is the time elapsed since the last record, never below MinHeadToRecord.
func (h *History) HeadToRecord() float64 {
	return math.Max(MinHeadToRecord, h.clock-h.lastRecordAt)
}

// Span is the time covered between the newest and oldest recorded samples.
func (h *History) Span() float64 {
	return float64(h.size-1) * h.interval
}

func (h *History) Clone() *History {
	cloned := *h
	cloned.buf = make([]Vec3, len(h.buf))
	copy(cloned.buf, h.buf)
	return &cloned
}
