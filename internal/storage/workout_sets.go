package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/meltforce/repscore/internal/models"
)

// setColumns is the number of bound parameters per workout set row.
const setColumns = 13

// InsertWorkoutSets batch-inserts completed sets. Returns count inserted.
func (db *DB) InsertWorkoutSets(ctx context.Context, sets []models.WorkoutSet) (int64, error) {
	return insertWorkoutSets(ctx, db.Pool, sets)
}

func insertWorkoutSets(ctx context.Context, q querier, sets []models.WorkoutSet) (int64, error) {
	if len(sets) == 0 {
		return 0, nil
	}

	query, args := buildSetInsert(sets)
	tag, err := q.Exec(ctx, query, args...)
	if err != nil {
		return 0, wrapInsertErr("workout sets", err)
	}
	return tag.RowsAffected(), nil
}

// buildSetInsert renders one multi-row INSERT for sets.
func buildSetInsert(sets []models.WorkoutSet) (string, []any) {
	query := `INSERT INTO workout_sets (id, exercise_id, workout_id, set_number, reps,
		rom_score, x_tilt_score, z_tilt_score, workout_score, avg_rep_time,
		vertical_accel, weight, notes) VALUES `
	args := make([]any, 0, len(sets)*setColumns)
	valueStrings := make([]string, 0, len(sets))

	for i, s := range sets {
		base := i * setColumns
		valueStrings = append(valueStrings, fmt.Sprintf(
			"($%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d)",
			base+1, base+2, base+3, base+4, base+5, base+6, base+7,
			base+8, base+9, base+10, base+11, base+12, base+13,
		))
		args = append(args, s.ID, s.ExerciseID, s.WorkoutID, s.SetNumber, s.Reps,
			s.ROMScore, s.XTiltScore, s.ZTiltScore, s.WorkoutScore, s.AvgRepTime,
			s.VerticalAccel, s.Weight, s.Notes)
	}

	return query + strings.Join(valueStrings, ",") + " ON CONFLICT DO NOTHING", args
}

// QueryWorkoutSets retrieves every set of a workout, ordered by set number.
func (db *DB) QueryWorkoutSets(ctx context.Context, workoutID string) ([]models.WorkoutSet, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT id, exercise_id, workout_id, set_number, reps,
		 rom_score, x_tilt_score, z_tilt_score, workout_score, avg_rep_time,
		 vertical_accel, weight, notes
		 FROM workout_sets
		 WHERE workout_id = $1
		 ORDER BY set_number ASC`,
		workoutID)
	if err != nil {
		return nil, fmt.Errorf("querying workout sets: %w", err)
	}
	defer rows.Close()

	var result []models.WorkoutSet
	for rows.Next() {
		var s models.WorkoutSet
		if err := rows.Scan(&s.ID, &s.ExerciseID, &s.WorkoutID, &s.SetNumber, &s.Reps,
			&s.ROMScore, &s.XTiltScore, &s.ZTiltScore, &s.WorkoutScore, &s.AvgRepTime,
			&s.VerticalAccel, &s.Weight, &s.Notes); err != nil {
			return nil, fmt.Errorf("scanning workout set: %w", err)
		}
		result = append(result, s)
	}
	return result, rows.Err()
}
