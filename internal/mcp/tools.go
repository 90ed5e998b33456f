package mcp

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/meltforce/repscore/internal/models"
	"github.com/meltforce/repscore/internal/scoring"
	"github.com/meltforce/repscore/internal/storage"
)

// defaultTimeRange returns start/end defaulting to the last 7 days including
// today. Workouts are dated by calendar day and end is exclusive, so a
// date-only end is moved to the following day.
func defaultTimeRange(startStr, endStr string) (time.Time, time.Time, error) {
	var start, end time.Time
	var err error

	if endStr != "" {
		var dateOnly bool
		end, dateOnly, err = parseFlexTime(endStr)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		if dateOnly {
			end = end.AddDate(0, 0, 1)
		}
	} else {
		end = time.Now().AddDate(0, 0, 1)
	}

	if startStr != "" {
		start, _, err = parseFlexTime(startStr)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
	} else {
		start = end.AddDate(0, 0, -8)
	}

	return start, end, nil
}

func parseFlexTime(s string) (time.Time, bool, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err == nil {
		return t, false, nil
	}
	t, err = time.Parse("2006-01-02", s)
	if err == nil {
		return t, true, nil
	}
	return time.Time{}, false, err
}

// --- Tool definitions ---

var toolGetWorkouts = mcp.NewTool("get_workouts",
	mcp.WithDescription("Query finished workouts. Returns one summary per workout: date, name, exercise and set counts, overall score (0-100) and whether rewards were awarded."),
	mcp.WithString("start", mcp.Description("Start date (ISO 8601 or YYYY-MM-DD). Defaults to 7 days ago.")),
	mcp.WithString("end", mcp.Description("End date, inclusive for YYYY-MM-DD. Defaults to today.")),
	mcp.WithString("name", mcp.Description("Filter by workout name (partial match, case-insensitive)")),
	mcp.WithNumber("min_score", mcp.Description("Only return workouts with an overall score at or above this value")),
)

var toolGetWorkout = mcp.NewTool("get_workout",
	mcp.WithDescription("Get one workout with every exercise and set. Sets carry range-of-motion, tilt and combined workout scores, reps, average rep time and weight."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Workout ID")),
)

var toolGetWorkoutSummary = mcp.NewTool("get_workout_summary",
	mcp.WithDescription("Reward summary of a workout: XP, coins, average score, and the feedback tier (MISS/GOOD/GREAT/EXCELLENT/PERFECT) of each exercise."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Workout ID")),
)

var toolListTemplates = mcp.NewTool("list_templates",
	mcp.WithDescription("List saved workout templates with their planned exercises, sets and weights."),
)

var toolGetTrainingSummary = mcp.NewTool("get_training_summary",
	mcp.WithDescription("Training volume per week or month: workout count, average overall score, rewarded workouts, and per exercise the sets, reps, tonnage (weight x reps) and average set score."),
	mcp.WithString("start", mcp.Description("Start date (ISO 8601 or YYYY-MM-DD). Defaults to 6 months ago.")),
	mcp.WithString("end", mcp.Description("End date, inclusive for YYYY-MM-DD. Defaults to today.")),
	mcp.WithString("bucket", mcp.Enum("week", "month"), mcp.Description("Aggregation period. Defaults to month.")),
)

var toolClassifyScore = mcp.NewTool("classify_score",
	mcp.WithDescription("Map a 0-100 score to its feedback tier and display emphasis."),
	mcp.WithNumber("score", mcp.Required(), mcp.Description("Score to classify")),
)

// --- Tool handlers ---

func (h *handlers) getWorkouts(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	start, end, err := defaultTimeRange(req.GetString("start", ""), req.GetString("end", ""))
	if err != nil {
		return mcp.NewToolResultError("invalid date format: " + err.Error()), nil
	}

	workouts, err := h.ds.QueryWorkouts(ctx, start, end)
	if err != nil {
		h.log.Error("mcp get_workouts", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	name := strings.ToLower(req.GetString("name", ""))
	minScore := req.GetFloat("min_score", 0)
	filtered := []models.Workout{}
	for _, w := range workouts {
		if name != "" && !strings.Contains(strings.ToLower(w.Name), name) {
			continue
		}
		if w.OverallScore < minScore {
			continue
		}
		filtered = append(filtered, w)
	}

	result, err := mcp.NewToolResultJSON(filtered)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getWorkout(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError("id parameter is required"), nil
	}

	detail, err := h.ds.GetWorkout(ctx, id)
	if err != nil {
		return h.workoutError("get_workout", id, err), nil
	}

	result, err := mcp.NewToolResultJSON(detail)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

type exerciseFeedback struct {
	Exercise        models.ExerciseKind `json:"exercise"`
	Sets            int                 `json:"sets"`
	AvgWorkoutScore int                 `json:"avgWorkoutScore"`
	Feedback        scoring.Tier        `json:"feedback"`
}

type workoutSummary struct {
	WorkoutID      string                `json:"workoutId"`
	Date           string                `json:"date"`
	OverallScore   float64               `json:"overallScore"`
	RewardsAwarded bool                  `json:"rewardsAwarded"`
	Summary        models.WorkoutSummary `json:"summary"`
	Exercises      []exerciseFeedback    `json:"exercises"`
}

func (h *handlers) getWorkoutSummary(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError("id parameter is required"), nil
	}

	detail, err := h.ds.GetWorkout(ctx, id)
	if err != nil {
		return h.workoutError("get_workout_summary", id, err), nil
	}

	out := workoutSummary{
		WorkoutID:      detail.Workout.ID,
		Date:           detail.Workout.Date,
		OverallScore:   detail.Workout.OverallScore,
		RewardsAwarded: detail.Workout.RewardsAwarded,
		Summary:        h.rewards.SummaryFor(detail.Workout, detail.Exercises),
		Exercises:      make([]exerciseFeedback, len(detail.Exercises)),
	}
	for i, e := range detail.Exercises {
		out.Exercises[i] = exerciseFeedback{
			Exercise:        e.Exercise.Type,
			Sets:            len(e.Sets),
			AvgWorkoutScore: e.AvgWorkoutScore,
			Feedback:        h.classifier.Classify(float64(e.AvgWorkoutScore)),
		}
	}

	result, err := mcp.NewToolResultJSON(out)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) listTemplates(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	templates, skipped, err := h.ds.ListTemplates(ctx)
	if err != nil {
		h.log.Error("mcp list_templates", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	if skipped > 0 {
		h.log.Warn("mcp list_templates: undecodable templates skipped", "count", skipped)
	}
	if templates == nil {
		templates = []models.WorkoutTemplate{}
	}

	result, err := mcp.NewToolResultJSON(templates)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getTrainingSummary(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	startStr := req.GetString("start", "")
	start, end, err := defaultTimeRange(startStr, req.GetString("end", ""))
	if err != nil {
		return mcp.NewToolResultError("invalid date format: " + err.Error()), nil
	}
	if startStr == "" {
		start = end.AddDate(0, -6, 0)
	}

	bucket := req.GetString("bucket", "month")
	if bucket != "week" && bucket != "month" {
		return mcp.NewToolResultError("bucket must be week or month"), nil
	}

	periods, err := h.ds.GetTrainingSummary(ctx, start, end, bucket)
	if err != nil {
		h.log.Error("mcp get_training_summary", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	if periods == nil {
		periods = []storage.TrainingSummaryPeriod{}
	}

	result, err := mcp.NewToolResultJSON(periods)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) classifyScore(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	score, err := req.RequireFloat("score")
	if err != nil {
		return mcp.NewToolResultError("score parameter is required"), nil
	}

	tier := h.classifier.Classify(score)
	result, err := mcp.NewToolResultJSON(map[string]any{
		"score":    score,
		"feedback": tier,
		"emphasis": tier.Multiplier(),
	})
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) workoutError(tool, id string, err error) *mcp.CallToolResult {
	if errors.Is(err, storage.ErrNotFound) {
		return mcp.NewToolResultError("workout not found: " + id)
	}
	h.log.Error("mcp "+tool, "workout", id, "error", err)
	return mcp.NewToolResultError("query failed: " + err.Error())
}
