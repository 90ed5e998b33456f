package scoring

import (
	"errors"
	"fmt"
	"math"

	"github.com/meltforce/repscore/internal/models"
)

// ErrAlreadyFinalized is returned when rewards were already granted for a workout.
var ErrAlreadyFinalized = errors.New("workout rewards already awarded")

// RewardConfig tunes the XP and coin payout.
type RewardConfig struct {
	// XPPerPoint is the XP earned per score point per unit of difficulty.
	XPPerPoint float64 `yaml:"xp_per_point"`
	// XPPerCoin converts XP into coins.
	XPPerCoin int `yaml:"xp_per_coin"`
	// EligibilityThreshold is the lowest overall score that earns a payout.
	EligibilityThreshold float64 `yaml:"eligibility_threshold"`
}

// DefaultRewardConfig returns the stock payout settings.
func DefaultRewardConfig() RewardConfig {
	return RewardConfig{XPPerPoint: 1.0, XPPerCoin: 10, EligibilityThreshold: 60}
}

// Validate rejects configs that would break monotonicity or divide by zero.
func (c RewardConfig) Validate() error {
	if c.XPPerPoint <= 0 {
		return fmt.Errorf("xp_per_point must be positive, got %v", c.XPPerPoint)
	}
	if c.XPPerCoin <= 0 {
		return fmt.Errorf("xp_per_coin must be positive, got %d", c.XPPerCoin)
	}
	if c.EligibilityThreshold < 0 || c.EligibilityThreshold > 100 {
		return fmt.Errorf("eligibility_threshold must be within 0..100, got %v", c.EligibilityThreshold)
	}
	return nil
}

// RewardCalculator derives XP, coins and reward eligibility.
type RewardCalculator struct {
	cfg RewardConfig
}

// NewRewardCalculator returns a calculator for cfg.
func NewRewardCalculator(cfg RewardConfig) (*RewardCalculator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &RewardCalculator{cfg: cfg}, nil
}

// Difficulty weights each exercise by 1 + its ROM factor, so high-ROM
// exercises contribute more.
func Difficulty(kinds []models.ExerciseKind) float64 {
	var d float64
	for _, k := range kinds {
		d += 1 + k.ROMFactor()
	}
	return d
}

// Summary computes the payout for a workout with the given overall score and
// exercise kinds.
func (rc *RewardCalculator) Summary(avgScore float64, kinds []models.ExerciseKind) models.WorkoutSummary {
	score := clamp(avgScore, 0, 100)
	if math.IsNaN(avgScore) {
		score = 0
	}
	xp := int(math.Round(score * rc.cfg.XPPerPoint * Difficulty(kinds)))
	return models.WorkoutSummary{
		TotalXP:    xp,
		TotalCoins: xp / rc.cfg.XPPerCoin,
		AvgScore:   avgScore,
	}
}

// Eligible reports whether a workout earns its payout.
func (rc *RewardCalculator) Eligible(avgScore float64, exerciseCount int) bool {
	return exerciseCount > 0 && avgScore >= rc.cfg.EligibilityThreshold
}

// Finalize computes the summary for w and sets RewardsAwarded. The overall
// score is taken from w. A workout that already has rewards is rejected.
func (rc *RewardCalculator) Finalize(w models.Workout, exercises []models.ExerciseWithSets) (models.Workout, models.WorkoutSummary, error) {
	if w.RewardsAwarded {
		return w, models.WorkoutSummary{}, fmt.Errorf("workout %s: %w", w.ID, ErrAlreadyFinalized)
	}
	summary := rc.SummaryFor(w, exercises)
	w.RewardsAwarded = rc.Eligible(w.OverallScore, len(exercises))
	return w, summary, nil
}

// SummaryFor computes the summary of w from its overall score and the kinds
// of its exercises. It does not look at RewardsAwarded.
func (rc *RewardCalculator) SummaryFor(w models.Workout, exercises []models.ExerciseWithSets) models.WorkoutSummary {
	kinds := make([]models.ExerciseKind, len(exercises))
	for i, e := range exercises {
		kinds[i] = e.Exercise.Type
	}
	return rc.Summary(w.OverallScore, kinds)
}

// Config returns the calculator settings.
func (rc *RewardCalculator) Config() RewardConfig {
	return rc.cfg
}
