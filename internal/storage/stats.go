package storage

import (
	"context"
	"fmt"

	"github.com/meltforce/repscore/internal/models"
)

// DataStats holds aggregate statistics about all stored data.
type DataStats struct {
	TotalWorkouts      int64          `json:"total_workouts"`
	RewardedWorkouts   int64          `json:"rewarded_workouts"`
	TotalExercises     int64          `json:"total_exercises"`
	TotalSets          int64          `json:"total_sets"`
	TotalTemplates     int64          `json:"total_templates"`
	EarliestDate       *string        `json:"earliest_date"`
	LatestDate         *string        `json:"latest_date"`
	WorkoutsByExercise []ExerciseStat `json:"workouts_by_exercise"`
}

// ExerciseStat holds summary stats for a single exercise kind.
type ExerciseStat struct {
	Exercise models.ExerciseKind `json:"exercise"`
	Workouts int64               `json:"workouts"`
	Sets     int64               `json:"sets"`
}

// GetDataStats returns aggregate statistics for the stored data.
func (db *DB) GetDataStats(ctx context.Context) (*DataStats, error) {
	stats := &DataStats{WorkoutsByExercise: []ExerciseStat{}}

	// Workout counts and date range
	err := db.Pool.QueryRow(ctx,
		`SELECT COUNT(*), COUNT(*) FILTER (WHERE rewards_awarded), MIN(date), MAX(date)
		 FROM workouts`,
	).Scan(&stats.TotalWorkouts, &stats.RewardedWorkouts, &stats.EarliestDate, &stats.LatestDate)
	if err != nil {
		return nil, fmt.Errorf("counting workouts: %w", err)
	}

	err = db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM exercises`).Scan(&stats.TotalExercises)
	if err != nil {
		return nil, fmt.Errorf("counting exercises: %w", err)
	}

	err = db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM workout_sets`).Scan(&stats.TotalSets)
	if err != nil {
		return nil, fmt.Errorf("counting sets: %w", err)
	}

	err = db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM workout_templates`).Scan(&stats.TotalTemplates)
	if err != nil {
		return nil, fmt.Errorf("counting templates: %w", err)
	}

	// Workouts and sets by exercise kind
	rows, err := db.Pool.Query(ctx,
		`SELECT e.type, COUNT(DISTINCT e.workout_id), COUNT(s.id)
		 FROM exercises e
		 LEFT JOIN workout_sets s ON s.exercise_id = e.id
		 GROUP BY e.type
		 ORDER BY COUNT(DISTINCT e.workout_id) DESC`)
	if err != nil {
		return nil, fmt.Errorf("querying workouts by exercise: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var kind string
		var s ExerciseStat
		if err := rows.Scan(&kind, &s.Workouts, &s.Sets); err != nil {
			return nil, fmt.Errorf("scanning exercise stat: %w", err)
		}
		s.Exercise = exerciseKindOrDefault(kind)
		stats.WorkoutsByExercise = mergeExerciseStat(stats.WorkoutsByExercise, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return stats, nil
}

// mergeExerciseStat folds s into an existing entry of the same kind.
func mergeExerciseStat(list []ExerciseStat, s ExerciseStat) []ExerciseStat {
	for i := range list {
		if list[i].Exercise == s.Exercise {
			list[i].Workouts += s.Workouts
			list[i].Sets += s.Sets
			return list
		}
	}
	return append(list, s)
}
