package scoring

import (
	"testing"
)

// TestClassifyDefaults pins the stock tier boundaries.
func TestClassifyDefaults(t *testing.T) {
	c, err := NewClassifier(DefaultFeedbackThresholds())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cases := []struct {
		score float64
		want  Tier
	}{
		{100, TierPerfect},
		{95, TierPerfect},
		{94.9, TierExcellent},
		{85, TierExcellent},
		{70, TierGreat},
		{69.99, TierGood},
		{50, TierGood},
		{49, TierMiss},
		{0, TierMiss},
		{-10, TierMiss},
	}
	for _, tc := range cases {
		if got := c.Classify(tc.score); got != tc.want {
			t.Errorf("Classify(%v) = %v, want %v", tc.score, got, tc.want)
		}
	}
}

// TestClassifyMonotonic verifies a higher score never yields a worse tier.
func TestClassifyMonotonic(t *testing.T) {
	c, err := NewClassifier(DefaultFeedbackThresholds())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	prev := c.Classify(0)
	for s := 0.0; s <= 100; s += 0.25 {
		got := c.Classify(s)
		if got < prev {
			t.Fatalf("Classify(%v) = %v, worse than %v at a lower score", s, got, prev)
		}
		prev = got
	}
}

// TestTierMultipliers pins the display emphasis of every tier.
func TestTierMultipliers(t *testing.T) {
	want := map[Tier]float64{
		TierPerfect:   1.6,
		TierExcellent: 1.4,
		TierGreat:     1.2,
		TierGood:      1.0,
		TierMiss:      1.0,
	}
	for tier, m := range want {
		if got := tier.Multiplier(); got != m {
			t.Errorf("%v.Multiplier() = %v, want %v", tier, got, m)
		}
	}
	if TierPerfect.String() != "PERFECT" || TierMiss.String() != "MISS" {
		t.Errorf("unexpected tier names %q %q", TierPerfect, TierMiss)
	}
}

// TestNewClassifierRejectsUnordered verifies thresholds must descend strictly.
func TestNewClassifierRejectsUnordered(t *testing.T) {
	bad := []FeedbackThresholds{
		{Perfect: 90, Excellent: 90, Great: 70, Good: 50},
		{Perfect: 95, Excellent: 85, Great: 40, Good: 50},
		{},
	}
	for _, th := range bad {
		if _, err := NewClassifier(th); err == nil {
			t.Errorf("NewClassifier(%+v): expected error", th)
		}
	}
}

// TestTierTextRoundTrip verifies tiers decode from the names they encode to.
func TestTierTextRoundTrip(t *testing.T) {
	for tier := TierMiss; tier <= TierPerfect; tier++ {
		b, err := tier.MarshalText()
		if err != nil {
			t.Fatal(err)
		}
		var got Tier
		if err := got.UnmarshalText(b); err != nil {
			t.Fatalf("UnmarshalText(%s): %v", b, err)
		}
		if got != tier {
			t.Errorf("round trip of %v = %v", tier, got)
		}
	}
	var bad Tier
	if err := bad.UnmarshalText([]byte("AWESOME")); err == nil {
		t.Error("expected error for unknown tier name")
	}
}
