package storage

import (
	"context"
	"time"

	"github.com/meltforce/repscore/internal/models"
)

// Store is the persistence surface the HTTP API and MCP tools depend on.
// *DB implements it against PostgreSQL.
type Store interface {
	Ping(ctx context.Context) error

	InsertWorkout(ctx context.Context, w models.Workout) (bool, error)
	InsertExercise(ctx context.Context, e models.Exercise, position int) (bool, error)
	InsertWorkoutSets(ctx context.Context, sets []models.WorkoutSet) (int64, error)

	SaveWorkoutResult(ctx context.Context, w models.Workout, exercises []models.ExerciseWithSets) (bool, error)
	QueryWorkouts(ctx context.Context, start, end time.Time) ([]models.Workout, error)
	GetWorkout(ctx context.Context, workoutID string) (*models.WorkoutDetail, error)
	GetTrainingSummary(ctx context.Context, start, end time.Time, bucket string) ([]TrainingSummaryPeriod, error)

	InsertTemplate(ctx context.Context, t models.WorkoutTemplate) (bool, error)
	GetTemplate(ctx context.Context, id string) (*models.WorkoutTemplate, error)
	ListTemplates(ctx context.Context) ([]models.WorkoutTemplate, int, error)

	GetDataStats(ctx context.Context) (*DataStats, error)

	InsertImportLog(ctx context.Context, log ImportLog) (int64, error)
	UpdateImportLog(ctx context.Context, id int64, log ImportLog) error
	QueryImportLogs(ctx context.Context, limit int) ([]ImportLog, error)
}

var _ Store = (*DB)(nil)
