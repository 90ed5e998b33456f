package storage

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/meltforce/repscore/internal/models"
)

// ExerciseVolume holds aggregated set stats for one exercise kind within a period.
type ExerciseVolume struct {
	Exercise        models.ExerciseKind `json:"exercise"`
	Sets            int                 `json:"sets"`
	Reps            int                 `json:"reps"`
	Tonnage         float64             `json:"tonnage"`
	AvgWorkoutScore float64             `json:"avg_workout_score"`
}

// TrainingSummaryPeriod holds workout and volume data for one time period.
type TrainingSummaryPeriod struct {
	Period           string           `json:"period"`
	Workouts         int              `json:"workouts"`
	AvgOverallScore  float64          `json:"avg_overall_score"`
	RewardedWorkouts int              `json:"rewarded_workouts"`
	Exercises        []ExerciseVolume `json:"exercises"`
}

// datePattern guards the ::date cast; imported rows may carry free-form dates.
const datePattern = `^[0-9]{4}-[0-9]{2}-[0-9]{2}`

// GetTrainingSummary returns per-period workout counts and per-exercise volume
// for workouts dated in [start, end), newest period first. bucket is "week"
// or "month" (also accepted as "1 week" / "1 month").
func (db *DB) GetTrainingSummary(ctx context.Context, start, end time.Time, bucket string) ([]TrainingSummaryPeriod, error) {
	interval := truncInterval(bucket)
	startKey, endKey := start.Format(dateLayout), end.Format(dateLayout)

	// Query 1: workout counts and scores grouped by period
	workoutRows, err := db.Pool.Query(ctx,
		`SELECT date_trunc($1, left(date, 10)::date)::date AS period,
		        COUNT(*)::int,
		        COALESCE(AVG(overall_score), 0),
		        (COUNT(*) FILTER (WHERE rewards_awarded))::int
		 FROM workouts
		 WHERE date >= $2 AND date < $3 AND date ~ $4
		 GROUP BY period
		 ORDER BY period DESC`,
		interval, startKey, endKey, datePattern)
	if err != nil {
		return nil, fmt.Errorf("querying workout summary: %w", err)
	}
	defer workoutRows.Close()

	periodMap := make(map[string]*TrainingSummaryPeriod)
	var periodOrder []string

	for workoutRows.Next() {
		var periodTime time.Time
		var p TrainingSummaryPeriod
		if err := workoutRows.Scan(&periodTime, &p.Workouts, &p.AvgOverallScore, &p.RewardedWorkouts); err != nil {
			return nil, fmt.Errorf("scanning workout summary: %w", err)
		}
		p.Period = periodTime.Format(dateLayout)
		periodMap[p.Period] = &p
		periodOrder = append(periodOrder, p.Period)
	}
	if err := workoutRows.Err(); err != nil {
		return nil, err
	}

	// Query 2: set volume grouped by period and exercise kind
	volumeRows, err := db.Pool.Query(ctx,
		`SELECT date_trunc($1, left(w.date, 10)::date)::date AS period,
		        e.type,
		        COUNT(*)::int,
		        COALESCE(SUM(s.reps), 0)::int,
		        COALESCE(SUM(s.weight * s.reps), 0),
		        COALESCE(AVG(s.workout_score), 0)
		 FROM workout_sets s
		 JOIN exercises e ON e.id = s.exercise_id
		 JOIN workouts w ON w.id = s.workout_id
		 WHERE w.date >= $2 AND w.date < $3 AND w.date ~ $4
		 GROUP BY period, e.type
		 ORDER BY period DESC, COUNT(*) DESC`,
		interval, startKey, endKey, datePattern)
	if err != nil {
		return nil, fmt.Errorf("querying volume summary: %w", err)
	}
	defer volumeRows.Close()

	for volumeRows.Next() {
		var periodTime time.Time
		var kind string
		var v ExerciseVolume
		if err := volumeRows.Scan(&periodTime, &kind, &v.Sets, &v.Reps, &v.Tonnage, &v.AvgWorkoutScore); err != nil {
			return nil, fmt.Errorf("scanning volume summary: %w", err)
		}
		v.Exercise = exerciseKindOrDefault(kind)
		key := periodTime.Format(dateLayout)
		p, ok := periodMap[key]
		if !ok {
			p = &TrainingSummaryPeriod{Period: key}
			periodMap[key] = p
			periodOrder = append(periodOrder, key)
		}
		p.Exercises = mergeVolume(p.Exercises, v)
	}
	if err := volumeRows.Err(); err != nil {
		return nil, err
	}

	sort.Sort(sort.Reverse(sort.StringSlice(periodOrder)))
	result := make([]TrainingSummaryPeriod, 0, len(periodOrder))
	for _, key := range periodOrder {
		result = append(result, *periodMap[key])
	}
	return result, nil
}

// mergeVolume adds v to vols, folding it into an existing entry for the same
// kind. Two stored type names can map to one kind through the fallback.
func mergeVolume(vols []ExerciseVolume, v ExerciseVolume) []ExerciseVolume {
	for i := range vols {
		if vols[i].Exercise != v.Exercise {
			continue
		}
		cur := &vols[i]
		total := cur.Sets + v.Sets
		if total > 0 {
			cur.AvgWorkoutScore = (cur.AvgWorkoutScore*float64(cur.Sets) + v.AvgWorkoutScore*float64(v.Sets)) / float64(total)
		}
		cur.Sets = total
		cur.Reps += v.Reps
		cur.Tonnage += v.Tonnage
		return vols
	}
	return append(vols, v)
}

// truncInterval converts bucket strings like "1 month" to the interval name
// that date_trunc expects (e.g. "month", "week").
func truncInterval(bucket string) string {
	switch bucket {
	case "1 week", "week":
		return "week"
	default:
		return "month"
	}
}
