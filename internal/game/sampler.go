package game

import "math"

// HistoryView is the read-only surface of a History that delay sampling needs.
type HistoryView interface {
	Len() int
	Interval() float64
	Sample(k int) (Vec3, error)
}

// SampleAtDelay reconstructs where the leader was delay seconds ago.
//
// The path is piecewise linear: from the live position back to the newest record over
// headToRecord seconds, then one segment per record interval. Delays past the oldest
// record clamp to it. The function reads view and nothing else.
func SampleAtDelay(view HistoryView, live Vec3, headToRecord, delay float64) Vec3 {
	n := view.Len()
	if n == 0 {
		return live
	}
	if !(delay > 0) {
		delay = 0
	}
	headToRecord = math.Max(headToRecord, MinHeadToRecord)

	if delay < headToRecord {
		s0, err := view.Sample(0)
		if err != nil {
			return live
		}
		return lerpVec(live, s0, delay/headToRecord)
	}

	interval := view.Interval()
	remaining := delay - headToRecord
	k := int(math.Floor(remaining / interval))
	if k >= n {
		k = n - 1
	}
	if k < 0 {
		k = 0
	}
	remaining -= float64(k) * interval

	a, b := k, k+1
	if a > n-1 {
		a = n - 1
	}
	if b > n-1 {
		b = n - 1
	}
	sa, err := view.Sample(a)
	if err != nil {
		return live
	}
	sb, err := view.Sample(b)
	if err != nil {
		sb = sa
	}
	return lerpVec(sa, sb, remaining/interval)
}
