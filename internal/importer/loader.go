package importer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/google/uuid"
	"github.com/meltforce/repscore/internal/metrics"
	"github.com/meltforce/repscore/internal/models"
	"github.com/meltforce/repscore/internal/plancodec"
	"github.com/meltforce/repscore/internal/storage"
)

// setNamespace seeds deterministic IDs for exported sets that carry none, so
// importing the same export twice does not duplicate them.
var setNamespace = uuid.MustParse("6f1c0c52-7d1e-4b7a-9a55-2f5b8d6f3e10")

// Sink is where decoded records are written. *storage.DB satisfies it.
type Sink interface {
	InsertWorkout(ctx context.Context, w models.Workout) (bool, error)
	InsertExercise(ctx context.Context, e models.Exercise, position int) (bool, error)
	InsertWorkoutSets(ctx context.Context, sets []models.WorkoutSet) (int64, error)
	InsertTemplate(ctx context.Context, t models.WorkoutTemplate) (bool, error)
}

// Result counts what one document contributed.
type Result struct {
	WorkoutsReceived   int   `json:"workouts_received"`
	WorkoutsInserted   int   `json:"workouts_inserted"`
	WorkoutsDuplicated int   `json:"workouts_duplicated"`
	ExercisesInserted  int   `json:"exercises_inserted"`
	SetsInserted       int64 `json:"sets_inserted"`
	TemplatesInserted  int   `json:"templates_inserted"`
	RecordsSkipped     int   `json:"records_skipped"`
}

func (r *Result) Add(o Result) {
	r.WorkoutsReceived += o.WorkoutsReceived
	r.WorkoutsInserted += o.WorkoutsInserted
	r.WorkoutsDuplicated += o.WorkoutsDuplicated
	r.ExercisesInserted += o.ExercisesInserted
	r.SetsInserted += o.SetsInserted
	r.TemplatesInserted += o.TemplatesInserted
	r.RecordsSkipped += o.RecordsSkipped
}

// Loader decodes export documents through plancodec and writes whatever
// decodes. Records without identity are skipped and counted; children of
// workouts or exercises that were never stored are skipped the same way.
type Loader struct {
	sink   Sink
	log    *slog.Logger
	instr  *metrics.Manager
	dryRun bool
}

// NewLoader creates a Loader. With dryRun set nothing is written and every
// decodable record counts as inserted.
func NewLoader(sink Sink, log *slog.Logger, instr *metrics.Manager, dryRun bool) *Loader {
	return &Loader{sink: sink, log: log, instr: instr, dryRun: dryRun}
}

// Load writes one document. Workouts go first so exercises and sets find
// their parents.
func (l *Loader) Load(ctx context.Context, doc *Document) (Result, error) {
	var res Result

	if err := l.loadWorkouts(ctx, doc.Workouts, &res); err != nil {
		return res, err
	}
	if err := l.loadExercises(ctx, doc.Exercises, &res); err != nil {
		return res, err
	}
	if err := l.loadSets(ctx, doc.WorkoutSets, &res); err != nil {
		return res, err
	}
	if err := l.loadTemplates(ctx, doc.Templates, &res); err != nil {
		return res, err
	}
	return res, nil
}

func (l *Loader) loadWorkouts(ctx context.Context, recs []plancodec.Record, res *Result) error {
	for _, rec := range recs {
		res.WorkoutsReceived++
		w, ok := plancodec.DecodeWorkout(rec)
		if !ok {
			l.skip("workout", res)
			continue
		}
		if l.dryRun {
			res.WorkoutsInserted++
			continue
		}
		inserted, err := l.sink.InsertWorkout(ctx, w)
		if err != nil {
			return fmt.Errorf("workout %s: %w", w.ID, err)
		}
		if inserted {
			res.WorkoutsInserted++
			l.instr.CounterRecordsImported.WithLabelValues("workout", "inserted").Inc()
		} else {
			res.WorkoutsDuplicated++
			l.instr.CounterRecordsImported.WithLabelValues("workout", "duplicate").Inc()
		}
	}
	return nil
}

func (l *Loader) loadExercises(ctx context.Context, recs []plancodec.Record, res *Result) error {
	// Position is the order exercises appear in the export, per workout.
	positions := make(map[string]int)
	for _, rec := range recs {
		e, ok := plancodec.DecodeExercise(rec)
		if !ok {
			l.skip("exercise", res)
			continue
		}
		pos := positions[e.WorkoutID]
		positions[e.WorkoutID] = pos + 1

		if l.dryRun {
			res.ExercisesInserted++
			continue
		}
		inserted, err := l.sink.InsertExercise(ctx, e, pos)
		if errors.Is(err, storage.ErrMissingParent) {
			l.log.Warn("skipping exercise of unknown workout", "exercise", e.ID, "workout", e.WorkoutID)
			l.skip("exercise", res)
			continue
		}
		if err != nil {
			return err
		}
		if inserted {
			res.ExercisesInserted++
			l.instr.CounterRecordsImported.WithLabelValues("exercise", "inserted").Inc()
		}
	}
	return nil
}

func (l *Loader) loadSets(ctx context.Context, recs []plancodec.Record, res *Result) error {
	// Sets are inserted in one batch per exercise so a dangling exercise
	// reference only loses its own sets.
	var order []string
	byExercise := make(map[string][]models.WorkoutSet)
	for _, rec := range recs {
		s, ok := plancodec.DecodeWorkoutSet(rec)
		if !ok {
			l.skip("set", res)
			continue
		}
		if s.ID == "" {
			s.ID = deterministicSetID(s)
		}
		if _, seen := byExercise[s.ExerciseID]; !seen {
			order = append(order, s.ExerciseID)
		}
		byExercise[s.ExerciseID] = append(byExercise[s.ExerciseID], s)
	}

	for _, exerciseID := range order {
		sets := byExercise[exerciseID]
		if l.dryRun {
			res.SetsInserted += int64(len(sets))
			continue
		}
		inserted, err := l.sink.InsertWorkoutSets(ctx, sets)
		if errors.Is(err, storage.ErrMissingParent) {
			l.log.Warn("skipping sets of unknown exercise", "exercise", exerciseID, "sets", len(sets))
			for range sets {
				l.skip("set", res)
			}
			continue
		}
		if err != nil {
			return err
		}
		res.SetsInserted += inserted
		l.instr.CounterRecordsImported.WithLabelValues("set", "inserted").Add(float64(inserted))
	}
	return nil
}

func (l *Loader) loadTemplates(ctx context.Context, recs []plancodec.Record, res *Result) error {
	for _, rec := range recs {
		t, err := plancodec.DecodeTemplate(rec)
		if err != nil || t.ID == "" {
			l.log.Warn("skipping template", "id", rec["id"], "error", err)
			l.skip("template", res)
			continue
		}
		if l.dryRun {
			res.TemplatesInserted++
			continue
		}
		inserted, err := l.sink.InsertTemplate(ctx, t)
		if err != nil {
			return fmt.Errorf("template %s: %w", t.ID, err)
		}
		if inserted {
			res.TemplatesInserted++
			l.instr.CounterRecordsImported.WithLabelValues("template", "inserted").Inc()
		}
	}
	return nil
}

func (l *Loader) skip(kind string, res *Result) {
	res.RecordsSkipped++
	l.instr.CounterRecordsImported.WithLabelValues(kind, "skipped").Inc()
}

func deterministicSetID(s models.WorkoutSet) string {
	key := s.WorkoutID + "/" + s.ExerciseID + "/" + strconv.Itoa(s.SetNumber)
	return uuid.NewSHA1(setNamespace, []byte(key)).String()
}
