// Package plancodec maps workout plans, templates and workout records to and
// from their loosely typed persisted form.
//
// Decoding is lenient: numbers may arrive as ints, floats or numeric strings
// and are coerced; unparseable values fall back to defaults. The only fatal
// condition is a plan that ends up with no valid items.
package plancodec

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/meltforce/repscore/internal/models"
)

// ErrNoValidPlanItems is returned when every plan item was dropped or the plan was empty.
var ErrNoValidPlanItems = errors.New("no valid plan items")

// DecodeError reports a fatal decode failure for a field.
type DecodeError struct {
	Field string
	Err   error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decoding %s: %v", e.Field, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// DecodePlan decodes a list of plan item records. Items whose exercise does
// not parse are dropped; sets are floored and held to at least 1; weight
// defaults to 0.
func DecodePlan(v any) (models.WorkoutPlan, error) {
	var plan models.WorkoutPlan
	for _, rec := range asList(v) {
		item, ok := decodePlanItem(rec)
		if !ok {
			continue
		}
		plan = append(plan, item)
	}
	if len(plan) == 0 {
		return nil, &DecodeError{Field: "plan", Err: ErrNoValidPlanItems}
	}
	return plan, nil
}

func decodePlanItem(rec Record) (models.WorkoutPlanItem, bool) {
	name, ok := rec["exercise"].(string)
	if !ok {
		return models.WorkoutPlanItem{}, false
	}
	kind, err := models.ParseExerciseKind(name)
	if err != nil {
		return models.WorkoutPlanItem{}, false
	}

	sets := 1
	if f, ok := toCount(rec["sets"]); ok {
		sets = max(int(math.Floor(f)), 1)
	}
	weight := max(floatOr(rec["weight"], 0), 0)

	return models.WorkoutPlanItem{Exercise: kind, Sets: sets, Weight: weight}, true
}

// EncodePlan produces the persisted list form of plan.
func EncodePlan(plan models.WorkoutPlan) []Record {
	out := make([]Record, len(plan))
	for i, it := range plan {
		out[i] = Record{
			"exercise": it.Exercise.String(),
			"sets":     it.Sets,
			"weight":   it.Weight,
		}
	}
	return out
}

// DecodeTemplate decodes a saved template. Id and name pass through; the
// plan must decode to at least one item.
func DecodeTemplate(rec Record) (models.WorkoutTemplate, error) {
	plan, err := DecodePlan(rec["plan"])
	if err != nil {
		return models.WorkoutTemplate{}, fmt.Errorf("template %v: %w", rec["id"], err)
	}
	return models.WorkoutTemplate{
		ID:        stringOr(rec["id"], ""),
		Name:      stringOr(rec["name"], ""),
		Plan:      plan,
		CreatedAt: optionalTime(rec["createdAt"]),
	}, nil
}

// EncodeTemplate produces the persisted form of t. CreatedAt is omitted when unset.
func EncodeTemplate(t models.WorkoutTemplate) Record {
	rec := Record{
		"id":   t.ID,
		"name": t.Name,
		"plan": EncodePlan(t.Plan),
	}
	if t.CreatedAt != nil {
		rec["createdAt"] = t.CreatedAt.UTC().Format(time.RFC3339Nano)
	}
	return rec
}

// DecodeExercise decodes an exercise record. It returns false when id or
// workoutId is missing. An unknown type falls back to bench press.
func DecodeExercise(rec Record) (models.Exercise, bool) {
	id, ok := requiredString(rec, "id")
	if !ok {
		return models.Exercise{}, false
	}
	workoutID, ok := requiredString(rec, "workoutId")
	if !ok {
		return models.Exercise{}, false
	}

	kind := models.BenchPress
	if s, ok := rec["type"].(string); ok {
		if k, err := models.ParseExerciseKind(s); err == nil {
			kind = k
		}
	}

	return models.Exercise{
		ID:        id,
		WorkoutID: workoutID,
		Type:      kind,
		TotalSets: intOr(rec["totalSets"], 0),
		Weight:    floatOr(rec["weight"], 0),
		Notes:     optionalString(rec["notes"]),
	}, true
}

// EncodeExercise produces the persisted form of e.
func EncodeExercise(e models.Exercise) Record {
	rec := Record{
		"id":        e.ID,
		"workoutId": e.WorkoutID,
		"type":      e.Type.String(),
		"totalSets": e.TotalSets,
		"weight":    e.Weight,
	}
	if e.Notes != nil {
		rec["notes"] = *e.Notes
	}
	return rec
}

// DecodeWorkoutSet decodes a set record. It returns false when workoutId or
// exerciseId is missing; every numeric field defaults to 0.
func DecodeWorkoutSet(rec Record) (models.WorkoutSet, bool) {
	workoutID, ok := requiredString(rec, "workoutId")
	if !ok {
		return models.WorkoutSet{}, false
	}
	exerciseID, ok := requiredString(rec, "exerciseId")
	if !ok {
		return models.WorkoutSet{}, false
	}

	return models.WorkoutSet{
		ID:            stringOr(rec["id"], ""),
		ExerciseID:    exerciseID,
		WorkoutID:     workoutID,
		SetNumber:     intOr(rec["setNumber"], 0),
		Reps:          intOr(rec["reps"], 0),
		ROMScore:      floatOr(rec["romScore"], 0),
		XTiltScore:    floatOr(rec["xTiltScore"], 0),
		ZTiltScore:    floatOr(rec["zTiltScore"], 0),
		WorkoutScore:  floatOr(rec["workoutScore"], 0),
		AvgRepTime:    floatOr(rec["avgRepTime"], 0),
		VerticalAccel: floatOr(rec["verticalAccel"], 0),
		Weight:        floatOr(rec["weight"], 0),
		Notes:         optionalString(rec["notes"]),
	}, true
}

// EncodeWorkoutSet produces the persisted form of s.
func EncodeWorkoutSet(s models.WorkoutSet) Record {
	rec := Record{
		"id":            s.ID,
		"exerciseId":    s.ExerciseID,
		"workoutId":     s.WorkoutID,
		"setNumber":     s.SetNumber,
		"reps":          s.Reps,
		"romScore":      s.ROMScore,
		"xTiltScore":    s.XTiltScore,
		"zTiltScore":    s.ZTiltScore,
		"workoutScore":  s.WorkoutScore,
		"avgRepTime":    s.AvgRepTime,
		"verticalAccel": s.VerticalAccel,
		"weight":        s.Weight,
	}
	if s.Notes != nil {
		rec["notes"] = *s.Notes
	}
	return rec
}

// DecodeWorkout decodes a workout record. It returns false when id is missing.
func DecodeWorkout(rec Record) (models.Workout, bool) {
	id, ok := requiredString(rec, "id")
	if !ok {
		return models.Workout{}, false
	}
	return models.Workout{
		ID:             id,
		Date:           dateString(rec["date"]),
		Name:           stringOr(rec["name"], ""),
		TotalExercises: intOr(rec["totalExercises"], 0),
		TotalSets:      intOr(rec["totalSets"], 0),
		OverallScore:   floatOr(rec["overallScore"], 0),
		Notes:          optionalString(rec["notes"]),
		RewardsAwarded: boolOr(rec["rewardsAwarded"], false),
	}, true
}

// EncodeWorkout produces the persisted form of w.
func EncodeWorkout(w models.Workout) Record {
	rec := Record{
		"id":             w.ID,
		"date":           w.Date,
		"name":           w.Name,
		"totalExercises": w.TotalExercises,
		"totalSets":      w.TotalSets,
		"overallScore":   w.OverallScore,
		"rewardsAwarded": w.RewardsAwarded,
	}
	if w.Notes != nil {
		rec["notes"] = *w.Notes
	}
	return rec
}

// MarshalPlanText renders plan as a standalone text blob, e.g. for passing a
// plan between screens.
func MarshalPlanText(plan models.WorkoutPlan) (string, error) {
	data, err := json.Marshal(EncodePlan(plan))
	if err != nil {
		return "", fmt.Errorf("encoding plan: %w", err)
	}
	return string(data), nil
}

// UnmarshalPlanText decodes a blob produced by MarshalPlanText, applying the
// same lenient item rules as DecodePlan.
func UnmarshalPlanText(text string) (models.WorkoutPlan, error) {
	var items []any
	if err := json.Unmarshal([]byte(text), &items); err != nil {
		return nil, &DecodeError{Field: "plan", Err: err}
	}
	return DecodePlan(items)
}
