package scoring

import (
	"math"
	"testing"
)

// TestRepAveragerClampsPlainValues verifies non-inverted values are clamped to
// 0..maxValue before averaging.
func TestRepAveragerClampsPlainValues(t *testing.T) {
	a := NewRepAverager(100, false)
	a.Add(150)
	if got := a.CurrentAverage(); got != 100 {
		t.Errorf("after Add(150): avg = %v, want 100", got)
	}

	b := NewRepAverager(100, false)
	b.Add(-10)
	if got := b.CurrentAverage(); got != 0 {
		t.Errorf("after Add(-10): avg = %v, want 0", got)
	}
}

// TestRepAveragerPeekThenFinalize verifies the peek leaves state untouched and
// the finalize resets it, so a second finalize with no new reps returns 0.
func TestRepAveragerPeekThenFinalize(t *testing.T) {
	a := NewRepAverager(100, false)
	a.Add(50)
	a.Add(70)

	if got := a.CurrentAverage(); got != 60 {
		t.Errorf("CurrentAverage() = %v, want 60", got)
	}
	if got := a.CurrentAverage(); got != 60 {
		t.Errorf("second CurrentAverage() = %v, want 60 (peek must not reset)", got)
	}
	if got := a.FinalizeAndGetAverage(); got != 60 {
		t.Errorf("FinalizeAndGetAverage() = %v, want 60", got)
	}
	if got := a.FinalizeAndGetAverage(); got != 0 {
		t.Errorf("FinalizeAndGetAverage() after reset = %v, want 0", got)
	}
	if a.Count() != 0 {
		t.Errorf("Count() after finalize = %d, want 0", a.Count())
	}
}

// TestRepAveragerInverted verifies inverted channels store a 0..100 penalty
// percentage of maxValue.
func TestRepAveragerInverted(t *testing.T) {
	cases := []struct {
		value float64
		want  float64
	}{
		{25, 50},
		{50, 100},
		{100, 100}, // capped
		{-5, 0},    // negative deviation counts as none
		{0, 0},
	}
	for _, tc := range cases {
		a := NewRepAverager(50, true)
		a.Add(tc.value)
		if got := a.FinalizeAndGetAverage(); got != tc.want {
			t.Errorf("inverted Add(%v) = %v, want %v", tc.value, got, tc.want)
		}
	}
}

// TestRepAveragerEmpty verifies an averager with no reps reports 0.
func TestRepAveragerEmpty(t *testing.T) {
	a := NewRepAverager(100, false)
	if got := a.CurrentAverage(); got != 0 {
		t.Errorf("CurrentAverage() = %v, want 0", got)
	}
	if got := a.FinalizeAndGetAverage(); got != 0 {
		t.Errorf("FinalizeAndGetAverage() = %v, want 0", got)
	}
}

// TestRepAveragerNaN verifies a NaN reading cannot poison the average.
func TestRepAveragerNaN(t *testing.T) {
	a := NewRepAverager(100, false)
	a.Add(math.NaN())
	a.Add(80)
	if got := a.FinalizeAndGetAverage(); got != 40 {
		t.Errorf("avg = %v, want 40", got)
	}
}

// TestRepAveragerROMSet covers a full set of ROM readings.
func TestRepAveragerROMSet(t *testing.T) {
	a := NewRepAverager(100, false)
	for _, v := range []float64{60, 80, 100} {
		a.Add(v)
	}
	if got := a.FinalizeAndGetAverage(); got != 80 {
		t.Errorf("romScore = %v, want 80", got)
	}
}
