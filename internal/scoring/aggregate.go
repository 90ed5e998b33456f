package scoring

import (
	"math"

	"github.com/meltforce/repscore/internal/models"
)

// Mean returns the arithmetic mean of values, or 0 for an empty slice.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// ExerciseScore is the unweighted mean of the sets' workout scores.
func ExerciseScore(sets []models.WorkoutSet) float64 {
	scores := make([]float64, len(sets))
	for i, s := range sets {
		scores[i] = s.WorkoutScore
	}
	return Mean(scores)
}

// NewExerciseWithSets builds the read-side aggregate. The average is rounded
// for display; use ExerciseScore for anything that feeds further aggregation.
func NewExerciseWithSets(ex models.Exercise, sets []models.WorkoutSet) models.ExerciseWithSets {
	return models.ExerciseWithSets{
		Exercise:        ex,
		Sets:            sets,
		AvgWorkoutScore: int(math.Round(ExerciseScore(sets))),
	}
}

// OverallScore is the unweighted mean of per-exercise scores.
func OverallScore(exerciseScores []float64) float64 {
	return Mean(exerciseScores)
}

// OverallScoreOf computes the workout score straight from stored exercises,
// using full-precision exercise scores rather than the rounded display value.
func OverallScoreOf(exercises []models.ExerciseWithSets) float64 {
	scores := make([]float64, len(exercises))
	for i, e := range exercises {
		scores[i] = ExerciseScore(e.Sets)
	}
	return OverallScore(scores)
}
