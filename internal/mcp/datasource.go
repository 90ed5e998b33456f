package mcp

import (
	"context"
	"time"

	"github.com/meltforce/repscore/internal/models"
	"github.com/meltforce/repscore/internal/storage"
)

// DataSource abstracts the data layer for MCP tools. Both *storage.DB (local)
// and HTTPClient (remote via REST API) satisfy this interface.
type DataSource interface {
	QueryWorkouts(ctx context.Context, start, end time.Time) ([]models.Workout, error)
	GetWorkout(ctx context.Context, id string) (*models.WorkoutDetail, error)
	ListTemplates(ctx context.Context) ([]models.WorkoutTemplate, int, error)
	GetTrainingSummary(ctx context.Context, start, end time.Time, bucket string) ([]storage.TrainingSummaryPeriod, error)
}

// Compile-time check: *storage.DB satisfies DataSource.
var _ DataSource = (*storage.DB)(nil)
