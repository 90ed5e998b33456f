package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/meltforce/repscore/internal/messages"
	"github.com/meltforce/repscore/internal/models"
	"github.com/meltforce/repscore/internal/storage"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Ping(r.Context()); err != nil {
		s.log.Error("health check failed", "error", err)
		s.writeError(w, http.StatusServiceUnavailable, messages.CodeStorage)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":        "ok",
		"live_sessions": s.sessions.Len(),
	})
}

func (s *Server) handleExerciseCatalog(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, models.Catalog())
}

func (s *Server) handleClassify(w http.ResponseWriter, r *http.Request) {
	score, err := strconv.ParseFloat(r.URL.Query().Get("score"), 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "score parameter must be a number"})
		return
	}
	tier := s.sessions.Classifier().Classify(score)
	writeJSON(w, http.StatusOK, map[string]any{
		"score":    score,
		"feedback": tier,
		"emphasis": tier.Multiplier(),
	})
}

func (s *Server) handleQueryWorkouts(w http.ResponseWriter, r *http.Request) {
	start, end, err := parseTimeRange(r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, messages.CodeInvalidTimeRange)
		return
	}

	workouts, err := s.store.QueryWorkouts(r.Context(), start, end)
	if err != nil {
		s.storageError(w, err, messages.CodeWorkoutNotFound)
		return
	}
	if workouts == nil {
		workouts = []models.Workout{}
	}
	writeJSON(w, http.StatusOK, workouts)
}

func (s *Server) handleGetWorkout(w http.ResponseWriter, r *http.Request) {
	detail, err := s.store.GetWorkout(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.storageError(w, err, messages.CodeWorkoutNotFound)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

// handleTrainingSummary aggregates workouts per week or month. Without a
// start it covers the last six months.
func (s *Server) handleTrainingSummary(w http.ResponseWriter, r *http.Request) {
	bucket := r.URL.Query().Get("bucket")
	if !validBucket(bucket) {
		s.writeError(w, http.StatusBadRequest, messages.CodeInvalidBucket)
		return
	}
	start, end, err := parseTimeRange(r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, messages.CodeInvalidTimeRange)
		return
	}
	if r.URL.Query().Get("start") == "" {
		start = end.AddDate(0, -6, 0)
	}

	periods, err := s.store.GetTrainingSummary(r.Context(), start, end, bucket)
	if err != nil {
		s.storageError(w, err, messages.CodeWorkoutNotFound)
		return
	}
	if periods == nil {
		periods = []storage.TrainingSummaryPeriod{}
	}
	writeJSON(w, http.StatusOK, periods)
}

func validBucket(bucket string) bool {
	switch bucket {
	case "", "week", "month", "1 week", "1 month":
		return true
	}
	return false
}

// handleWorkoutSummary recomputes the payout of a stored workout from its
// score and exercises. Whether it was actually paid is the stored flag.
func (s *Server) handleWorkoutSummary(w http.ResponseWriter, r *http.Request) {
	detail, err := s.store.GetWorkout(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.storageError(w, err, messages.CodeWorkoutNotFound)
		return
	}
	writeJSON(w, http.StatusOK, workoutSummaryResponse{
		WorkoutID:      detail.Workout.ID,
		RewardsAwarded: detail.Workout.RewardsAwarded,
		Summary:        s.sessions.Rewards().SummaryFor(detail.Workout, detail.Exercises),
	})
}

type workoutSummaryResponse struct {
	WorkoutID      string                `json:"workoutId"`
	RewardsAwarded bool                  `json:"rewardsAwarded"`
	Summary        models.WorkoutSummary `json:"summary"`
}

// storageError maps a store error to a response: ErrNotFound becomes a 404
// with notFoundCode, anything else a 500.
func (s *Server) storageError(w http.ResponseWriter, err error, notFoundCode string) {
	if errors.Is(err, storage.ErrNotFound) {
		s.writeError(w, http.StatusNotFound, notFoundCode)
		return
	}
	s.log.Error("storage error", "error", err)
	s.writeError(w, http.StatusInternalServerError, messages.CodeStorage)
}

func (s *Server) writeError(w http.ResponseWriter, status int, code string) {
	writeError(w, s.messages, status, code)
}

// writeError renders {"error": message, "code": code}.
func writeError(w http.ResponseWriter, table messages.Table, status int, code string) {
	writeJSON(w, status, map[string]string{
		"error": messages.Lookup(table, code, messages.DefaultFallback),
		"code":  code,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// parseTimeRange reads start and end as RFC 3339 or YYYY-MM-DD. Workouts
// are filtered by calendar day and end is exclusive, so a date-only end is
// moved to the following day to include it.
func parseTimeRange(r *http.Request) (start, end time.Time, err error) {
	startStr := r.URL.Query().Get("start")
	endStr := r.URL.Query().Get("end")

	if startStr == "" {
		// Default: last 7 days, including today
		end = time.Now().AddDate(0, 0, 1)
		start = end.AddDate(0, 0, -8)
		return
	}

	start, err = time.Parse(time.RFC3339, startStr)
	if err != nil {
		start, err = time.Parse("2006-01-02", startStr)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
	}

	if endStr == "" {
		end = time.Now().AddDate(0, 0, 1)
	} else {
		end, err = time.Parse(time.RFC3339, endStr)
		if err != nil {
			end, err = time.Parse("2006-01-02", endStr)
			if err != nil {
				return time.Time{}, time.Time{}, err
			}
			// End of day for date-only
			end = end.Add(24 * time.Hour)
		}
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, errors.New("end before start")
	}
	return
}
