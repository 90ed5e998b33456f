// Package scoring turns per-rep metrics into set, exercise and workout scores
// and decides the rewards a finished workout earns.
package scoring

import "math"

// RepAverager accumulates normalized per-rep values for one metric channel of
// one set. It is not safe for concurrent use; each channel gets its own instance.
type RepAverager struct {
	maxValue float64
	invert   bool
	sum      float64
	count    int
}

// NewRepAverager creates an averager for a metric whose expected ceiling is
// maxValue. With invert set, larger raw values are treated as larger penalties
// and stored as a 0..100 percentage of maxValue.
func NewRepAverager(maxValue float64, invert bool) *RepAverager {
	return &RepAverager{maxValue: maxValue, invert: invert}
}

// Add records one rep.
func (a *RepAverager) Add(value float64) {
	if math.IsNaN(value) {
		value = 0
	}
	var v float64
	if a.invert {
		if a.maxValue > 0 {
			v = clamp(max(value, 0)/a.maxValue*100, 0, 100)
		} else if value > 0 {
			v = 100
		}
	} else {
		v = clamp(value, 0, a.maxValue)
	}
	a.sum += v
	a.count++
}

// CurrentAverage returns the mean so far without resetting.
func (a *RepAverager) CurrentAverage() float64 {
	if a.count == 0 {
		return 0
	}
	return a.sum / float64(a.count)
}

// FinalizeAndGetAverage returns the mean of every value added since the last
// finalize, then resets the accumulator.
func (a *RepAverager) FinalizeAndGetAverage() float64 {
	avg := a.CurrentAverage()
	a.sum = 0
	a.count = 0
	return avg
}

// Count returns the number of reps recorded since the last finalize.
func (a *RepAverager) Count() int {
	return a.count
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
