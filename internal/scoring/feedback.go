package scoring

import "fmt"

// Tier is a discrete feedback grade for a finalized score.
type Tier int

// Tiers in ascending order of quality.
const (
	TierMiss Tier = iota
	TierGood
	TierGreat
	TierExcellent
	TierPerfect
)

var tierNames = [...]string{"MISS", "GOOD", "GREAT", "EXCELLENT", "PERFECT"}

var tierMultipliers = [...]float64{1.0, 1.0, 1.2, 1.4, 1.6}

func (t Tier) String() string {
	if t < TierMiss || t > TierPerfect {
		return fmt.Sprintf("tier(%d)", int(t))
	}
	return tierNames[t]
}

// Multiplier is the display emphasis of the tier. It never feeds a score.
func (t Tier) Multiplier() float64 {
	if t < TierMiss || t > TierPerfect {
		return 1.0
	}
	return tierMultipliers[t]
}

// MarshalText encodes the tier name.
func (t Tier) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText decodes a tier name such as "GREAT".
func (t *Tier) UnmarshalText(b []byte) error {
	for i, name := range tierNames {
		if name == string(b) {
			*t = Tier(i)
			return nil
		}
	}
	return fmt.Errorf("unknown feedback tier %q", b)
}

// FeedbackThresholds are the lowest scores that earn each tier. Anything
// below Good is a miss.
type FeedbackThresholds struct {
	Perfect   float64 `yaml:"perfect"`
	Excellent float64 `yaml:"excellent"`
	Great     float64 `yaml:"great"`
	Good      float64 `yaml:"good"`
}

// DefaultFeedbackThresholds returns the stock tier boundaries.
func DefaultFeedbackThresholds() FeedbackThresholds {
	return FeedbackThresholds{Perfect: 95, Excellent: 85, Great: 70, Good: 50}
}

// Validate checks the thresholds are strictly descending.
func (th FeedbackThresholds) Validate() error {
	if !(th.Perfect > th.Excellent && th.Excellent > th.Great && th.Great > th.Good) {
		return fmt.Errorf("feedback thresholds must be strictly descending, got perfect=%v excellent=%v great=%v good=%v",
			th.Perfect, th.Excellent, th.Great, th.Good)
	}
	return nil
}

// Classifier maps scores to tiers.
type Classifier struct {
	th FeedbackThresholds
}

// NewClassifier returns a classifier for the given thresholds.
func NewClassifier(th FeedbackThresholds) (*Classifier, error) {
	if err := th.Validate(); err != nil {
		return nil, err
	}
	return &Classifier{th: th}, nil
}

// Classify returns the best tier whose threshold score reaches.
func (c *Classifier) Classify(score float64) Tier {
	switch {
	case score >= c.th.Perfect:
		return TierPerfect
	case score >= c.th.Excellent:
		return TierExcellent
	case score >= c.th.Great:
		return TierGreat
	case score >= c.th.Good:
		return TierGood
	default:
		return TierMiss
	}
}

// Thresholds returns the configured thresholds.
func (c *Classifier) Thresholds() FeedbackThresholds {
	return c.th
}
