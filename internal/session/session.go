// Package session tracks live workouts: reps stream in per set, sets roll up
// into exercises, and finishing produces the scored workout and its rewards.
package session

import (
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/meltforce/repscore/internal/models"
	"github.com/meltforce/repscore/internal/scoring"
)

var (
	ErrEmptyPlan        = errors.New("workout plan has no items")
	ErrNoActiveExercise = errors.New("no exercise left in plan")
	ErrEmptySet         = errors.New("set has no reps")
	ErrFinished         = errors.New("session already finished")
)

// RepMetrics are the already-derived sensor metrics for one rep.
type RepMetrics struct {
	ROM           float64 `json:"rom"`
	XTilt         float64 `json:"xTilt"`
	ZTilt         float64 `json:"zTilt"`
	RepTime       float64 `json:"repTime"`
	VerticalAccel float64 `json:"verticalAccel"`
}

// LiveScores are the running averages of the set in progress.
type LiveScores struct {
	Reps          int          `json:"reps"`
	ROMScore      float64      `json:"romScore"`
	XTiltScore    float64      `json:"xTiltScore"`
	ZTiltScore    float64      `json:"zTiltScore"`
	WorkoutScore  float64      `json:"workoutScore"`
	AvgRepTime    float64      `json:"avgRepTime"`
	VerticalAccel float64      `json:"verticalAccel"`
	Feedback      scoring.Tier `json:"feedback"`
	Emphasis      float64      `json:"emphasis"`
}

// SetResult is a finalized set and its feedback tier.
type SetResult struct {
	Set      models.WorkoutSet `json:"set"`
	Feedback scoring.Tier      `json:"feedback"`
	Emphasis float64           `json:"emphasis"`
}

// Result is everything produced by finishing a session.
type Result struct {
	Workout   models.Workout            `json:"workout"`
	Exercises []models.ExerciseWithSets `json:"exercises"`
	Summary   models.WorkoutSummary     `json:"summary"`
}

// Status describes where a session is in its plan.
type Status struct {
	WorkoutID          string               `json:"workoutId"`
	Name               string               `json:"name"`
	Plan               models.WorkoutPlan   `json:"plan"`
	CurrentIndex       int                  `json:"currentIndex"`
	CurrentExercise    *models.ExerciseKind `json:"currentExercise,omitempty"`
	SetsDone           int                  `json:"setsDone"`
	ExercisesCompleted int                  `json:"exercisesCompleted"`
	Live               LiveScores           `json:"live"`
	Finished           bool                 `json:"finished"`
}

type channels struct {
	rom     *scoring.RepAverager
	xTilt   *scoring.RepAverager
	zTilt   *scoring.RepAverager
	repTime *scoring.RepAverager
	accel   *scoring.RepAverager
}

func newChannels(cfg Config) channels {
	return channels{
		rom:     scoring.NewRepAverager(cfg.ROMMax, false),
		xTilt:   scoring.NewRepAverager(cfg.XTiltMax, true),
		zTilt:   scoring.NewRepAverager(cfg.ZTiltMax, true),
		repTime: scoring.NewRepAverager(cfg.RepTimeMax, false),
		accel:   scoring.NewRepAverager(cfg.VerticalAccelMax, false),
	}
}

// Session is one live workout. Methods are safe for concurrent use.
type Session struct {
	mu         sync.Mutex
	cfg        Config
	classifier *scoring.Classifier
	rewards    *scoring.RewardCalculator

	workoutID string
	name      string
	date      time.Time
	plan      models.WorkoutPlan

	current  int
	exercise *models.Exercise
	sets     []models.WorkoutSet
	done     []models.ExerciseWithSets
	ch       channels
	finished bool
	result   *Result
}

func newSession(cfg Config, classifier *scoring.Classifier, rewards *scoring.RewardCalculator,
	name string, plan models.WorkoutPlan, date time.Time) (*Session, error) {
	if len(plan) == 0 {
		return nil, ErrEmptyPlan
	}
	return &Session{
		cfg:        cfg,
		classifier: classifier,
		rewards:    rewards,
		workoutID:  uuid.NewString(),
		name:       name,
		date:       date,
		plan:       append(models.WorkoutPlan(nil), plan...),
		ch:         newChannels(cfg),
	}, nil
}

// ID returns the id the finished workout will carry.
func (s *Session) ID() string {
	return s.workoutID
}

// SetScore combines the finalized channels of a set into one 0..100 score.
func SetScore(cfg Config, romScore, xTilt, zTilt float64) float64 {
	rom := romScore / cfg.ROMMax * 100
	stability := 100 - (xTilt+zTilt)/2
	score := cfg.ROMWeight*rom + (1-cfg.ROMWeight)*stability
	return math.Max(0, math.Min(100, score))
}

// AddRep feeds one rep into every channel and returns the running averages.
func (s *Session) AddRep(m RepMetrics) (LiveScores, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.finished {
		return LiveScores{}, ErrFinished
	}
	if s.current >= len(s.plan) {
		return LiveScores{}, ErrNoActiveExercise
	}
	s.ch.rom.Add(m.ROM)
	s.ch.xTilt.Add(m.XTilt)
	s.ch.zTilt.Add(m.ZTilt)
	s.ch.repTime.Add(m.RepTime)
	s.ch.accel.Add(m.VerticalAccel)
	return s.liveLocked(), nil
}

func (s *Session) liveLocked() LiveScores {
	live := LiveScores{
		Reps:          s.ch.rom.Count(),
		ROMScore:      s.ch.rom.CurrentAverage(),
		XTiltScore:    s.ch.xTilt.CurrentAverage(),
		ZTiltScore:    s.ch.zTilt.CurrentAverage(),
		AvgRepTime:    s.ch.repTime.CurrentAverage(),
		VerticalAccel: s.ch.accel.CurrentAverage(),
	}
	if live.Reps > 0 {
		live.WorkoutScore = SetScore(s.cfg, live.ROMScore, live.XTiltScore, live.ZTiltScore)
	}
	live.Feedback = s.classifier.Classify(live.WorkoutScore)
	live.Emphasis = live.Feedback.Multiplier()
	return live
}

// CompleteSet finalizes every channel into a WorkoutSet for the current
// exercise. When reps is not positive the recorded rep count is used.
func (s *Session) CompleteSet(reps int, notes *string) (SetResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.finished {
		return SetResult{}, ErrFinished
	}
	if s.current >= len(s.plan) {
		return SetResult{}, ErrNoActiveExercise
	}
	recorded := s.ch.rom.Count()
	if recorded == 0 {
		return SetResult{}, ErrEmptySet
	}
	if reps <= 0 {
		reps = recorded
	}

	ex := s.currentExerciseLocked()
	set := models.WorkoutSet{
		ID:            uuid.NewString(),
		ExerciseID:    ex.ID,
		WorkoutID:     s.workoutID,
		SetNumber:     len(s.sets) + 1,
		Reps:          reps,
		ROMScore:      s.ch.rom.FinalizeAndGetAverage(),
		XTiltScore:    s.ch.xTilt.FinalizeAndGetAverage(),
		ZTiltScore:    s.ch.zTilt.FinalizeAndGetAverage(),
		AvgRepTime:    s.ch.repTime.FinalizeAndGetAverage(),
		VerticalAccel: s.ch.accel.FinalizeAndGetAverage(),
		Weight:        ex.Weight,
		Notes:         notes,
	}
	set.WorkoutScore = SetScore(s.cfg, set.ROMScore, set.XTiltScore, set.ZTiltScore)
	s.sets = append(s.sets, set)

	tier := s.classifier.Classify(set.WorkoutScore)
	return SetResult{Set: set, Feedback: tier, Emphasis: tier.Multiplier()}, nil
}

func (s *Session) currentExerciseLocked() *models.Exercise {
	if s.exercise == nil {
		item := s.plan[s.current]
		s.exercise = &models.Exercise{
			ID:        uuid.NewString(),
			WorkoutID: s.workoutID,
			Type:      item.Exercise,
			TotalSets: item.Sets,
			Weight:    item.Weight,
		}
	}
	return s.exercise
}

// CompleteExercise closes the current exercise and moves to the next plan
// item. Reps of an unfinished set are discarded.
func (s *Session) CompleteExercise() (models.ExerciseWithSets, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.finished {
		return models.ExerciseWithSets{}, ErrFinished
	}
	if s.current >= len(s.plan) {
		return models.ExerciseWithSets{}, ErrNoActiveExercise
	}
	return s.completeExerciseLocked(), nil
}

func (s *Session) completeExerciseLocked() models.ExerciseWithSets {
	ex := *s.currentExerciseLocked()
	ex.TotalSets = len(s.sets)
	ews := scoring.NewExerciseWithSets(ex, s.sets)
	s.done = append(s.done, ews)

	s.ch = newChannels(s.cfg)
	s.exercise = nil
	s.sets = nil
	s.current++
	return ews
}

// Finish closes the session and scores the workout. An exercise with
// recorded sets is closed first; plan items never started are left out.
func (s *Session) Finish(notes *string) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.finished {
		return Result{}, ErrFinished
	}
	if len(s.sets) > 0 {
		s.completeExerciseLocked()
	}

	totalSets := 0
	for _, e := range s.done {
		totalSets += len(e.Sets)
	}
	w := models.Workout{
		ID:             s.workoutID,
		Date:           s.date.Format("2006-01-02"),
		Name:           s.name,
		TotalExercises: len(s.done),
		TotalSets:      totalSets,
		OverallScore:   scoring.OverallScoreOf(s.done),
		Notes:          notes,
	}
	w, summary, err := s.rewards.Finalize(w, s.done)
	if err != nil {
		return Result{}, fmt.Errorf("finalizing workout: %w", err)
	}
	s.finished = true
	s.result = &Result{Workout: w, Exercises: s.done, Summary: summary}

	return *s.result, nil
}

// Result returns what Finish produced, so a caller whose save failed can
// retry without scoring the workout again.
func (s *Session) Result() (Result, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.result == nil {
		return Result{}, false
	}
	return *s.result, true
}

// Status reports progress through the plan and the live set averages.
func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := Status{
		WorkoutID:          s.workoutID,
		Name:               s.name,
		Plan:               s.plan,
		CurrentIndex:       s.current,
		SetsDone:           len(s.sets),
		ExercisesCompleted: len(s.done),
		Live:               s.liveLocked(),
		Finished:           s.finished,
	}
	if s.current < len(s.plan) {
		k := s.plan[s.current].Exercise
		st.CurrentExercise = &k
	}
	return st
}
