package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/meltforce/repscore/internal/models"
	"github.com/meltforce/repscore/internal/storage"
)

// newTestServer creates an httptest server that routes requests to handler functions
// keyed by path. Verifies the HTTP client sends correct paths and query params.
func newTestServer(t *testing.T, handlers map[string]http.HandlerFunc) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h, ok := handlers[r.URL.Path]
		if !ok {
			t.Errorf("unexpected request path: %s", r.URL.Path)
			http.NotFound(w, r)
			return
		}
		h(w, r)
	}))
}

func writeTestJSON(t *testing.T, w http.ResponseWriter, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		t.Fatal(err)
	}
}

// TestQueryWorkouts verifies the HTTP client sends the time range as RFC 3339
// and parses the JSON array response.
func TestQueryWorkouts(t *testing.T) {
	ts := newTestServer(t, map[string]http.HandlerFunc{
		"/api/v1/workouts": func(w http.ResponseWriter, r *http.Request) {
			if got := r.URL.Query().Get("start"); got != "2026-01-01T00:00:00Z" {
				t.Errorf("start=%q, want 2026-01-01T00:00:00Z", got)
			}
			if got := r.URL.Query().Get("end"); got != "2026-01-08T00:00:00Z" {
				t.Errorf("end=%q, want 2026-01-08T00:00:00Z", got)
			}
			writeTestJSON(t, w, []models.Workout{
				{ID: "w1", Date: "2026-01-03", Name: "Push", OverallScore: 74, RewardsAwarded: true},
			})
		},
	})
	defer ts.Close()

	client := NewHTTPClient(ts.URL)
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 1, 8, 0, 0, 0, 0, time.UTC)

	workouts, err := client.QueryWorkouts(context.Background(), start, end)
	if err != nil {
		t.Fatal(err)
	}
	if len(workouts) != 1 {
		t.Fatalf("got %d workouts, want 1", len(workouts))
	}
	if workouts[0].OverallScore != 74 || !workouts[0].RewardsAwarded {
		t.Errorf("workout = %+v", workouts[0])
	}
}

// TestGetWorkout verifies the detail endpoint is parsed including exercise
// kinds in their canonical string form.
func TestGetWorkout(t *testing.T) {
	ts := newTestServer(t, map[string]http.HandlerFunc{
		"/api/v1/workouts/w1": func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{
				"workout": {"id":"w1","date":"2026-01-03","overallScore":81},
				"exercises": [{"exercise":{"id":"e1","workoutId":"w1","type":"seated-rows"},"sets":[],"avgWorkoutScore":81}]
			}`))
		},
	})
	defer ts.Close()

	detail, err := NewHTTPClient(ts.URL).GetWorkout(context.Background(), "w1")
	if err != nil {
		t.Fatal(err)
	}
	if len(detail.Exercises) != 1 || detail.Exercises[0].Exercise.Type != models.SeatedRows {
		t.Errorf("exercises = %+v", detail.Exercises)
	}
}

// TestGetWorkoutNotFound verifies a 404 surfaces as storage.ErrNotFound.
func TestGetWorkoutNotFound(t *testing.T) {
	ts := newTestServer(t, map[string]http.HandlerFunc{
		"/api/v1/workouts/missing": func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, `{"error":"Workout not found.","code":"workout_not_found"}`, http.StatusNotFound)
		},
	})
	defer ts.Close()

	_, err := NewHTTPClient(ts.URL).GetWorkout(context.Background(), "missing")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

// TestListTemplates verifies template parsing.
func TestListTemplates(t *testing.T) {
	ts := newTestServer(t, map[string]http.HandlerFunc{
		"/api/v1/templates": func(w http.ResponseWriter, r *http.Request) {
			writeTestJSON(t, w, []models.WorkoutTemplate{
				{ID: "t1", Name: "Legs", Plan: models.WorkoutPlan{{Exercise: models.Squat, Sets: 4, Weight: 100}}},
			})
		},
	})
	defer ts.Close()

	templates, skipped, err := NewHTTPClient(ts.URL).ListTemplates(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if skipped != 0 {
		t.Errorf("skipped = %d, want 0", skipped)
	}
	if len(templates) != 1 || templates[0].Plan[0].Exercise != models.Squat {
		t.Errorf("templates = %+v", templates)
	}
}

// TestHTTPErrorStatus verifies non-200 responses return an error.
func TestHTTPErrorStatus(t *testing.T) {
	ts := newTestServer(t, map[string]http.HandlerFunc{
		"/api/v1/workouts": func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "internal error", http.StatusInternalServerError)
		},
	})
	defer ts.Close()

	client := NewHTTPClient(ts.URL)
	_, err := client.QueryWorkouts(context.Background(), time.Now().Add(-time.Hour), time.Now())
	if err == nil {
		t.Fatal("expected error for 500 response")
	}
	if errors.Is(err, storage.ErrNotFound) {
		t.Error("500 must not be reported as ErrNotFound")
	}
}

// TestTrailingSlashBaseURL verifies that trailing slashes are stripped.
func TestTrailingSlashBaseURL(t *testing.T) {
	client := NewHTTPClient("http://example.com/")
	if client.baseURL != "http://example.com" {
		t.Errorf("baseURL=%q, want trailing slash stripped", client.baseURL)
	}
}

// TestGetTrainingSummary verifies the bucket and range are sent as query parameters.
func TestGetTrainingSummary(t *testing.T) {
	ts := newTestServer(t, map[string]http.HandlerFunc{
		"/api/v1/training/summary": func(w http.ResponseWriter, r *http.Request) {
			if got := r.URL.Query().Get("bucket"); got != "week" {
				t.Errorf("bucket=%q, want week", got)
			}
			if got := r.URL.Query().Get("start"); got != "2026-01-01T00:00:00Z" {
				t.Errorf("start=%q, want 2026-01-01T00:00:00Z", got)
			}
			writeTestJSON(t, w, []storage.TrainingSummaryPeriod{{
				Period:   "2025-12-29",
				Workouts: 2,
				Exercises: []storage.ExerciseVolume{
					{Exercise: models.LatPulldown, Sets: 4, Reps: 20, Tonnage: 2000},
				},
			}})
		},
	})
	defer ts.Close()

	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	periods, err := NewHTTPClient(ts.URL).GetTrainingSummary(context.Background(), start, start.AddDate(0, 1, 0), "week")
	if err != nil {
		t.Fatal(err)
	}
	if len(periods) != 1 || len(periods[0].Exercises) != 1 || periods[0].Exercises[0].Exercise != models.LatPulldown {
		t.Errorf("periods = %+v", periods)
	}
}
