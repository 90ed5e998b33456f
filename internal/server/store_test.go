package server

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/meltforce/repscore/internal/models"
	"github.com/meltforce/repscore/internal/scoring"
	"github.com/meltforce/repscore/internal/storage"
)

// fakeStore is an in-memory storage.Store.
type fakeStore struct {
	mu         sync.Mutex
	workouts   map[string]models.Workout
	exercises  []models.Exercise
	sets       []models.WorkoutSet
	templates  map[string]models.WorkoutTemplate
	importLogs []storage.ImportLog

	// summary is returned as-is by GetTrainingSummary; summaryBucket
	// records the bucket it was asked for.
	summary       []storage.TrainingSummaryPeriod
	summaryBucket string

	// saveErr, when set, is returned by the next SaveWorkoutResult.
	saveErr error
	pingErr error
}

var _ storage.Store = (*fakeStore)(nil)

func newFakeStore() *fakeStore {
	return &fakeStore{
		workouts:  map[string]models.Workout{},
		templates: map[string]models.WorkoutTemplate{},
	}
}

func (f *fakeStore) Ping(context.Context) error { return f.pingErr }

func (f *fakeStore) InsertWorkout(_ context.Context, w models.Workout) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.workouts[w.ID]; ok {
		return false, nil
	}
	f.workouts[w.ID] = w
	return true, nil
}

func (f *fakeStore) InsertExercise(_ context.Context, e models.Exercise, _ int) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.workouts[e.WorkoutID]; !ok {
		return false, fmt.Errorf("inserting exercise: %w", storage.ErrMissingParent)
	}
	for _, x := range f.exercises {
		if x.ID == e.ID {
			return false, nil
		}
	}
	f.exercises = append(f.exercises, e)
	return true, nil
}

func (f *fakeStore) InsertWorkoutSets(_ context.Context, sets []models.WorkoutSet) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sets = append(f.sets, sets...)
	return int64(len(sets)), nil
}

func (f *fakeStore) SaveWorkoutResult(_ context.Context, w models.Workout, exercises []models.ExerciseWithSets) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		err := f.saveErr
		f.saveErr = nil
		return false, err
	}
	if _, ok := f.workouts[w.ID]; ok {
		return false, nil
	}
	f.workouts[w.ID] = w
	for _, e := range exercises {
		f.exercises = append(f.exercises, e.Exercise)
		f.sets = append(f.sets, e.Sets...)
	}
	return true, nil
}

func (f *fakeStore) QueryWorkouts(_ context.Context, start, end time.Time) ([]models.Workout, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	lo, hi := start.Format("2006-01-02"), end.Format("2006-01-02")
	var out []models.Workout
	for _, w := range f.workouts {
		if w.Date >= lo && w.Date < hi {
			out = append(out, w)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date > out[j].Date })
	return out, nil
}

func (f *fakeStore) GetWorkout(_ context.Context, id string) (*models.WorkoutDetail, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	w, ok := f.workouts[id]
	if !ok {
		return nil, fmt.Errorf("workout %s: %w", id, storage.ErrNotFound)
	}
	detail := &models.WorkoutDetail{Workout: w}
	for _, e := range f.exercises {
		if e.WorkoutID != id {
			continue
		}
		var sets []models.WorkoutSet
		for _, s := range f.sets {
			if s.ExerciseID == e.ID {
				sets = append(sets, s)
			}
		}
		detail.Exercises = append(detail.Exercises, scoring.NewExerciseWithSets(e, sets))
	}
	return detail, nil
}

func (f *fakeStore) GetTrainingSummary(_ context.Context, _, _ time.Time, bucket string) ([]storage.TrainingSummaryPeriod, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.summaryBucket = bucket
	return f.summary, nil
}

func (f *fakeStore) GetDataStats(context.Context) (*storage.DataStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	stats := &storage.DataStats{
		TotalWorkouts:      int64(len(f.workouts)),
		TotalExercises:     int64(len(f.exercises)),
		TotalSets:          int64(len(f.sets)),
		TotalTemplates:     int64(len(f.templates)),
		WorkoutsByExercise: []storage.ExerciseStat{},
	}
	for _, w := range f.workouts {
		if w.RewardsAwarded {
			stats.RewardedWorkouts++
		}
	}
	return stats, nil
}

func (f *fakeStore) InsertTemplate(_ context.Context, t models.WorkoutTemplate) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.templates[t.ID]; ok {
		return false, nil
	}
	f.templates[t.ID] = t
	return true, nil
}

func (f *fakeStore) GetTemplate(_ context.Context, id string) (*models.WorkoutTemplate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.templates[id]
	if !ok {
		return nil, fmt.Errorf("template %s: %w", id, storage.ErrNotFound)
	}
	return &t, nil
}

func (f *fakeStore) ListTemplates(context.Context) ([]models.WorkoutTemplate, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.WorkoutTemplate
	for _, t := range f.templates {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, 0, nil
}

func (f *fakeStore) InsertImportLog(_ context.Context, l storage.ImportLog) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	l.ID = int64(len(f.importLogs) + 1)
	f.importLogs = append(f.importLogs, l)
	return l.ID, nil
}

func (f *fakeStore) UpdateImportLog(_ context.Context, id int64, l storage.ImportLog) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if id < 1 || int(id) > len(f.importLogs) {
		return errors.New("no such import log")
	}
	l.ID = id
	f.importLogs[id-1] = l
	return nil
}

func (f *fakeStore) QueryImportLogs(_ context.Context, limit int) ([]storage.ImportLog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if limit > len(f.importLogs) {
		limit = len(f.importLogs)
	}
	return append([]storage.ImportLog(nil), f.importLogs[:limit]...), nil
}
