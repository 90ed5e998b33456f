package storage

import (
	"context"
	"fmt"

	"github.com/meltforce/repscore/internal/models"
)

// InsertExercise inserts one exercise at the given position within its
// workout. Returns true if inserted, false if duplicate.
func (db *DB) InsertExercise(ctx context.Context, e models.Exercise, position int) (bool, error) {
	return insertExercise(ctx, db.Pool, e, position)
}

func insertExercise(ctx context.Context, q querier, e models.Exercise, position int) (bool, error) {
	tag, err := q.Exec(ctx,
		`INSERT INTO exercises (id, workout_id, position, type, total_sets, weight, notes)
		 VALUES ($1,$2,$3,$4,$5,$6,$7)
		 ON CONFLICT DO NOTHING`,
		e.ID, e.WorkoutID, position, e.Type.String(), e.TotalSets, e.Weight, e.Notes)
	if err != nil {
		return false, wrapInsertErr("exercise "+e.ID, err)
	}
	return tag.RowsAffected() > 0, nil
}

// queryExercises returns the exercises of a workout in performed order.
func (db *DB) queryExercises(ctx context.Context, workoutID string) ([]models.Exercise, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT id, workout_id, type, total_sets, weight, notes
		 FROM exercises
		 WHERE workout_id = $1
		 ORDER BY position ASC`,
		workoutID)
	if err != nil {
		return nil, fmt.Errorf("querying exercises: %w", err)
	}
	defer rows.Close()

	var result []models.Exercise
	for rows.Next() {
		var e models.Exercise
		var kind string
		if err := rows.Scan(&e.ID, &e.WorkoutID, &kind, &e.TotalSets, &e.Weight, &e.Notes); err != nil {
			return nil, fmt.Errorf("scanning exercise: %w", err)
		}
		e.Type = exerciseKindOrDefault(kind)
		result = append(result, e)
	}
	return result, rows.Err()
}

// exerciseKindOrDefault maps a stored type name back to its kind. Rows
// written by older clients may carry names this build no longer knows; those
// read back as bench press, matching the record decoder.
func exerciseKindOrDefault(name string) models.ExerciseKind {
	k, err := models.ParseExerciseKind(name)
	if err != nil {
		return models.BenchPress
	}
	return k
}
