package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/meltforce/repscore/internal/models"
	"github.com/meltforce/repscore/internal/scoring"
)

// SaveWorkoutResult writes a finished workout with its exercises and sets in
// one transaction. Workouts are insert-only: the rewards flag decided at
// finalization is never updated afterwards. Returns false if the workout
// already existed.
func (db *DB) SaveWorkoutResult(ctx context.Context, w models.Workout, exercises []models.ExerciseWithSets) (bool, error) {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	inserted, err := insertWorkout(ctx, tx, w)
	if err != nil {
		return false, err
	}
	if !inserted {
		return false, nil
	}

	var sets []models.WorkoutSet
	for i, e := range exercises {
		if _, err := insertExercise(ctx, tx, e.Exercise, i); err != nil {
			return false, err
		}
		sets = append(sets, e.Sets...)
	}
	if _, err := insertWorkoutSets(ctx, tx, sets); err != nil {
		return false, err
	}

	if err := tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("committing workout %s: %w", w.ID, err)
	}
	return true, nil
}

// InsertWorkout inserts a workout row. Returns true if inserted, false if duplicate.
func (db *DB) InsertWorkout(ctx context.Context, w models.Workout) (bool, error) {
	return insertWorkout(ctx, db.Pool, w)
}

func insertWorkout(ctx context.Context, q querier, w models.Workout) (bool, error) {
	tag, err := q.Exec(ctx,
		`INSERT INTO workouts (id, date, name, total_exercises, total_sets, overall_score, notes, rewards_awarded)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		 ON CONFLICT DO NOTHING`,
		w.ID, w.Date, w.Name, w.TotalExercises, w.TotalSets, w.OverallScore, w.Notes, w.RewardsAwarded)
	if err != nil {
		return false, fmt.Errorf("inserting workout: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// dateLayout is the stored form of workouts.date.
const dateLayout = "2006-01-02"

// QueryWorkouts retrieves workouts whose date falls in [start, end).
func (db *DB) QueryWorkouts(ctx context.Context, start, end time.Time) ([]models.Workout, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT id, date, name, total_exercises, total_sets, overall_score, notes, rewards_awarded
		 FROM workouts
		 WHERE date >= $1 AND date < $2
		 ORDER BY date DESC, created_at DESC`,
		start.Format(dateLayout), end.Format(dateLayout))
	if err != nil {
		return nil, fmt.Errorf("querying workouts: %w", err)
	}
	defer rows.Close()

	var result []models.Workout
	for rows.Next() {
		var w models.Workout
		if err := rows.Scan(&w.ID, &w.Date, &w.Name, &w.TotalExercises, &w.TotalSets,
			&w.OverallScore, &w.Notes, &w.RewardsAwarded); err != nil {
			return nil, fmt.Errorf("scanning workout: %w", err)
		}
		result = append(result, w)
	}
	return result, rows.Err()
}

// GetWorkout retrieves a single workout by ID with its exercises and sets.
func (db *DB) GetWorkout(ctx context.Context, workoutID string) (*models.WorkoutDetail, error) {
	var w models.Workout
	err := db.Pool.QueryRow(ctx,
		`SELECT id, date, name, total_exercises, total_sets, overall_score, notes, rewards_awarded
		 FROM workouts
		 WHERE id = $1`,
		workoutID).Scan(&w.ID, &w.Date, &w.Name, &w.TotalExercises, &w.TotalSets,
		&w.OverallScore, &w.Notes, &w.RewardsAwarded)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("workout %s: %w", workoutID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("querying workout: %w", err)
	}

	exercises, err := db.queryExercises(ctx, workoutID)
	if err != nil {
		return nil, err
	}
	sets, err := db.QueryWorkoutSets(ctx, workoutID)
	if err != nil {
		return nil, err
	}

	return &models.WorkoutDetail{Workout: w, Exercises: groupSets(exercises, sets)}, nil
}

// groupSets attaches each set to its exercise, keeping exercise order.
func groupSets(exercises []models.Exercise, sets []models.WorkoutSet) []models.ExerciseWithSets {
	byExercise := make(map[string][]models.WorkoutSet, len(exercises))
	for _, s := range sets {
		byExercise[s.ExerciseID] = append(byExercise[s.ExerciseID], s)
	}
	result := make([]models.ExerciseWithSets, 0, len(exercises))
	for _, e := range exercises {
		result = append(result, scoring.NewExerciseWithSets(e, byExercise[e.ID]))
	}
	return result
}
