package models

import "time"

// WorkoutPlanItem is one planned exercise: how many sets at which weight.
type WorkoutPlanItem struct {
	Exercise ExerciseKind `json:"exercise"`
	Sets     int          `json:"sets"`
	Weight   float64      `json:"weight"`
}

// WorkoutPlan is the ordered list of planned exercises. Decoding guarantees at
// least one item; direct construction does not.
type WorkoutPlan []WorkoutPlanItem

// TotalSets sums the planned sets of every item.
func (p WorkoutPlan) TotalSets() int {
	n := 0
	for _, it := range p {
		n += it.Sets
	}
	return n
}

// WorkoutTemplate is a saved, reusable plan.
type WorkoutTemplate struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	Plan      WorkoutPlan `json:"plan"`
	CreatedAt *time.Time  `json:"createdAt,omitempty"`
}

// Exercise is one exercise performed within a workout.
type Exercise struct {
	ID        string       `json:"id"`
	WorkoutID string       `json:"workoutId"`
	Type      ExerciseKind `json:"type"`
	TotalSets int          `json:"totalSets"`
	Weight    float64      `json:"weight"`
	Notes     *string      `json:"notes,omitempty"`
}

// WorkoutSet is one completed set. Score fields are nominally 0..100.
type WorkoutSet struct {
	ID            string  `json:"id"`
	ExerciseID    string  `json:"exerciseId"`
	WorkoutID     string  `json:"workoutId"`
	SetNumber     int     `json:"setNumber"`
	Reps          int     `json:"reps"`
	ROMScore      float64 `json:"romScore"`
	XTiltScore    float64 `json:"xTiltScore"`
	ZTiltScore    float64 `json:"zTiltScore"`
	WorkoutScore  float64 `json:"workoutScore"`
	AvgRepTime    float64 `json:"avgRepTime"`
	VerticalAccel float64 `json:"verticalAccel"`
	Weight        float64 `json:"weight"`
	Notes         *string `json:"notes,omitempty"`
}

// ExerciseWithSets is the read-side view of an exercise and its sets.
type ExerciseWithSets struct {
	Exercise        Exercise     `json:"exercise"`
	Sets            []WorkoutSet `json:"sets"`
	AvgWorkoutScore int          `json:"avgWorkoutScore"`
}

// Workout is one completed session.
type Workout struct {
	ID             string  `json:"id"`
	Date           string  `json:"date"`
	Name           string  `json:"name"`
	TotalExercises int     `json:"totalExercises"`
	TotalSets      int     `json:"totalSets"`
	OverallScore   float64 `json:"overallScore"`
	Notes          *string `json:"notes,omitempty"`
	RewardsAwarded bool    `json:"rewardsAwarded"`
}

// WorkoutSummary reports the rewards earned by a finalized workout.
type WorkoutSummary struct {
	TotalXP    int     `json:"totalXp"`
	TotalCoins int     `json:"totalCoins"`
	AvgScore   float64 `json:"avgScore"`
}

// WorkoutDetail is a workout with all its exercises and sets.
type WorkoutDetail struct {
	Workout   Workout            `json:"workout"`
	Exercises []ExerciseWithSets `json:"exercises"`
}
