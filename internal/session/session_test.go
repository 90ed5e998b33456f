package session

import (
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/meltforce/repscore/internal/models"
	"github.com/meltforce/repscore/internal/scoring"
)

func newTestRegistry(t *testing.T, cfg Config) *Registry {
	t.Helper()
	classifier, err := scoring.NewClassifier(scoring.DefaultFeedbackThresholds())
	if err != nil {
		t.Fatal(err)
	}
	rewards, err := scoring.NewRewardCalculator(scoring.DefaultRewardConfig())
	if err != nil {
		t.Fatal(err)
	}
	reg, err := NewRegistry(cfg, classifier, rewards)
	if err != nil {
		t.Fatal(err)
	}
	return reg
}

// romOnly scores sets purely on range of motion so expected values stay simple.
func romOnly() Config {
	cfg := DefaultConfig()
	cfg.ROMWeight = 1
	return cfg
}

// TestSessionEndToEnd walks a two-exercise workout: a squat set of ROM
// 60/80/100 finalizes to 80, a bench set to 60, and the workout scores 70.
func TestSessionEndToEnd(t *testing.T) {
	reg := newTestRegistry(t, romOnly())
	plan := models.WorkoutPlan{
		{Exercise: models.Squat, Sets: 1, Weight: 100},
		{Exercise: models.BenchPress, Sets: 1, Weight: 60},
	}
	s, err := reg.Start("Leg day", plan)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	for _, rom := range []float64{60, 80, 100} {
		if _, err := s.AddRep(RepMetrics{ROM: rom}); err != nil {
			t.Fatalf("AddRep: %v", err)
		}
	}
	res, err := s.CompleteSet(0, nil)
	if err != nil {
		t.Fatalf("CompleteSet: %v", err)
	}
	if res.Set.ROMScore != 80 {
		t.Errorf("romScore = %v, want 80", res.Set.ROMScore)
	}
	if res.Set.Reps != 3 {
		t.Errorf("reps = %d, want 3 (recorded count)", res.Set.Reps)
	}
	if res.Set.Weight != 100 {
		t.Errorf("weight = %v, want 100", res.Set.Weight)
	}
	if res.Feedback != scoring.TierGreat {
		t.Errorf("feedback = %v, want GREAT", res.Feedback)
	}

	squat, err := s.CompleteExercise()
	if err != nil {
		t.Fatalf("CompleteExercise: %v", err)
	}
	if squat.AvgWorkoutScore != 80 || squat.Exercise.Type != models.Squat {
		t.Errorf("squat aggregate = %+v", squat)
	}

	s.AddRep(RepMetrics{ROM: 50})
	s.AddRep(RepMetrics{ROM: 70})
	if _, err := s.CompleteSet(2, nil); err != nil {
		t.Fatalf("CompleteSet: %v", err)
	}

	result, err := s.Finish(nil)
	if err != nil {
		t.Fatalf("Finish: %v", err)
	}
	w := result.Workout
	if w.OverallScore != 70 {
		t.Errorf("overallScore = %v, want 70", w.OverallScore)
	}
	if w.TotalExercises != 2 || w.TotalSets != 2 {
		t.Errorf("totals = %d exercises, %d sets, want 2 and 2", w.TotalExercises, w.TotalSets)
	}
	if !w.RewardsAwarded {
		t.Error("rewardsAwarded = false, want true for score 70")
	}
	if result.Summary.AvgScore != 70 {
		t.Errorf("summary avgScore = %v, want 70", result.Summary.AvgScore)
	}
	if result.Summary.TotalXP <= 0 || result.Summary.TotalCoins <= 0 {
		t.Errorf("summary = %+v, want positive payout", result.Summary)
	}
	for _, e := range result.Exercises {
		if e.Exercise.WorkoutID != w.ID {
			t.Errorf("exercise %s workoutId = %s, want %s", e.Exercise.ID, e.Exercise.WorkoutID, w.ID)
		}
		for _, set := range e.Sets {
			if set.ExerciseID != e.Exercise.ID || set.WorkoutID != w.ID {
				t.Errorf("set %s has foreign keys %s/%s", set.ID, set.ExerciseID, set.WorkoutID)
			}
		}
	}

	if _, err := s.Finish(nil); !errors.Is(err, ErrFinished) {
		t.Errorf("second Finish error = %v, want ErrFinished", err)
	}
	again, ok := s.Result()
	if !ok || again.Workout.ID != w.ID || again.Summary != result.Summary {
		t.Errorf("Result() = %+v, %v; want the finished workout", again.Workout, ok)
	}
}

// TestSessionSetScoreBlendsStability verifies tilt penalties pull the set score down.
func TestSessionSetScoreBlendsStability(t *testing.T) {
	cfg := DefaultConfig()
	// rom 80, tilt penalties 50 and 30 -> stability 60 -> 0.6*80 + 0.4*60 = 72
	got := SetScore(cfg, 80, 50, 30)
	if math.Abs(got-72) > 1e-9 {
		t.Errorf("SetScore = %v, want 72", got)
	}
	if got := SetScore(cfg, 100, 0, 0); got != 100 {
		t.Errorf("perfect SetScore = %v, want 100", got)
	}
	if got := SetScore(cfg, 0, 100, 100); got != 0 {
		t.Errorf("worst SetScore = %v, want 0", got)
	}
}

// TestSessionLiveScoresDoNotReset verifies polling the live averages leaves
// the set accumulators intact.
func TestSessionLiveScoresDoNotReset(t *testing.T) {
	reg := newTestRegistry(t, romOnly())
	s, err := reg.Start("w", models.WorkoutPlan{{Exercise: models.BicepCurl, Sets: 1}})
	if err != nil {
		t.Fatal(err)
	}
	s.AddRep(RepMetrics{ROM: 50, XTilt: 15})
	live, _ := s.AddRep(RepMetrics{ROM: 70, XTilt: 15})
	if live.Reps != 2 || live.ROMScore != 60 {
		t.Errorf("live = %+v, want 2 reps at 60", live)
	}
	if live.XTiltScore != 50 { // 15 of 30 degrees
		t.Errorf("live xTilt = %v, want 50", live.XTiltScore)
	}
	if st := s.Status(); st.Live.ROMScore != 60 {
		t.Errorf("status live rom = %v, want 60", st.Live.ROMScore)
	}
	res, err := s.CompleteSet(0, nil)
	if err != nil {
		t.Fatal(err)
	}
	if res.Set.ROMScore != 60 {
		t.Errorf("romScore = %v, want 60", res.Set.ROMScore)
	}
	if st := s.Status(); st.Live.Reps != 0 {
		t.Errorf("live reps after set = %d, want 0", st.Live.Reps)
	}
}

// TestSessionErrors covers empty sets, exhausted plans and empty plans.
func TestSessionErrors(t *testing.T) {
	reg := newTestRegistry(t, DefaultConfig())

	if _, err := reg.Start("empty", nil); !errors.Is(err, ErrEmptyPlan) {
		t.Errorf("Start(nil plan) error = %v, want ErrEmptyPlan", err)
	}

	s, err := reg.Start("one", models.WorkoutPlan{{Exercise: models.Squat, Sets: 1}})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.CompleteSet(0, nil); !errors.Is(err, ErrEmptySet) {
		t.Errorf("CompleteSet with no reps error = %v, want ErrEmptySet", err)
	}
	if _, err := s.CompleteExercise(); err != nil {
		t.Fatalf("CompleteExercise: %v", err)
	}
	if _, err := s.AddRep(RepMetrics{ROM: 10}); !errors.Is(err, ErrNoActiveExercise) {
		t.Errorf("AddRep past plan error = %v, want ErrNoActiveExercise", err)
	}
	if _, err := s.CompleteExercise(); !errors.Is(err, ErrNoActiveExercise) {
		t.Errorf("CompleteExercise past plan error = %v, want ErrNoActiveExercise", err)
	}
}

// TestSessionFinishWithoutSets verifies an untouched session finishes with a
// zero score and no rewards.
func TestSessionFinishWithoutSets(t *testing.T) {
	reg := newTestRegistry(t, DefaultConfig())
	s, err := reg.Start("skip", models.WorkoutPlan{{Exercise: models.Squat, Sets: 3}})
	if err != nil {
		t.Fatal(err)
	}
	res, err := s.Finish(nil)
	if err != nil {
		t.Fatal(err)
	}
	if res.Workout.OverallScore != 0 || res.Workout.RewardsAwarded {
		t.Errorf("workout = %+v, want zero score and no rewards", res.Workout)
	}
	if res.Summary.TotalXP != 0 {
		t.Errorf("xp = %d, want 0", res.Summary.TotalXP)
	}
}

// TestSessionResultBeforeFinish verifies no result is reported while live.
func TestSessionResultBeforeFinish(t *testing.T) {
	reg := newTestRegistry(t, DefaultConfig())
	s, err := reg.Start("live", models.WorkoutPlan{{Exercise: models.Squat, Sets: 1}})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := s.Result(); ok {
		t.Error("Result() reported a result before Finish")
	}
}

// TestRegistryConcurrentAccess verifies concurrent requests against one
// session and the registry do not race.
func TestRegistryConcurrentAccess(t *testing.T) {
	reg := newTestRegistry(t, romOnly())
	s, err := reg.Start("w", models.WorkoutPlan{{Exercise: models.Squat, Sets: 1}})
	if err != nil {
		t.Fatal(err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.AddRep(RepMetrics{ROM: 80})
			s.Status()
			reg.Get(s.ID())
		}()
	}
	wg.Wait()

	res, err := s.CompleteSet(0, nil)
	if err != nil {
		t.Fatal(err)
	}
	if res.Set.Reps != 50 || res.Set.ROMScore != 80 {
		t.Errorf("set = %+v, want 50 reps at 80", res.Set)
	}

	if !reg.Remove(s.ID()) {
		t.Error("Remove returned false for live session")
	}
	if reg.Remove(s.ID()) {
		t.Error("Remove returned true for removed session")
	}
	if reg.Len() != 0 {
		t.Errorf("Len = %d, want 0", reg.Len())
	}
}

// TestConfigValidate rejects non-positive ceilings and out-of-range weights.
func TestConfigValidate(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	cfg := DefaultConfig()
	cfg.XTiltMax = 0
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for zero tilt ceiling")
	}
	cfg = DefaultConfig()
	cfg.ROMWeight = 1.5
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for rom_weight > 1")
	}
	cfg = DefaultConfig()
	cfg.IdleTimeout = -time.Minute
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for negative idle_timeout")
	}
}

// TestRegistrySweepDropsIdleSessions verifies only sessions untouched for
// longer than the idle timeout are dropped, and Get counts as activity.
func TestRegistrySweepDropsIdleSessions(t *testing.T) {
	cfg := DefaultConfig()
	cfg.IdleTimeout = time.Hour
	reg := newTestRegistry(t, cfg)

	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	reg.now = func() time.Time { return now }

	plan := models.WorkoutPlan{{Exercise: models.Squat, Sets: 1}}
	stale, err := reg.Start("stale", plan)
	if err != nil {
		t.Fatal(err)
	}
	busy, err := reg.Start("busy", plan)
	if err != nil {
		t.Fatal(err)
	}

	now = now.Add(45 * time.Minute)
	if _, ok := reg.Get(busy.ID()); !ok {
		t.Fatal("busy session missing")
	}

	now = now.Add(30 * time.Minute)
	if n := reg.Sweep(); n != 1 {
		t.Errorf("Sweep dropped %d, want 1", n)
	}
	if _, ok := reg.Get(stale.ID()); ok {
		t.Error("stale session survived the sweep")
	}
	if _, ok := reg.Get(busy.ID()); !ok {
		t.Error("busy session was dropped")
	}
}

// TestRegistrySweepDisabled verifies a zero idle timeout keeps every session.
func TestRegistrySweepDisabled(t *testing.T) {
	cfg := DefaultConfig()
	cfg.IdleTimeout = 0
	reg := newTestRegistry(t, cfg)

	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	reg.now = func() time.Time { return now }
	if _, err := reg.Start("w", models.WorkoutPlan{{Exercise: models.Squat, Sets: 1}}); err != nil {
		t.Fatal(err)
	}
	now = now.Add(100 * time.Hour)
	if n := reg.Sweep(); n != 0 || reg.Len() != 1 {
		t.Errorf("Sweep dropped %d, Len = %d; want 0 and 1", n, reg.Len())
	}
}
