package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/meltforce/repscore/internal/messages"
	"github.com/meltforce/repscore/internal/models"
	"github.com/meltforce/repscore/internal/plancodec"
	"github.com/meltforce/repscore/internal/scoring"
	"github.com/meltforce/repscore/internal/session"
)

type startSessionRequest struct {
	Name       string `json:"name"`
	TemplateID string `json:"templateId"`
	Plan       []any  `json:"plan"`
	PlanText   string `json:"planText"`
}

type completeSetRequest struct {
	Reps  int     `json:"reps"`
	Notes *string `json:"notes"`
}

type finishSessionRequest struct {
	Notes *string `json:"notes"`
}

// decodeBody decodes an optional JSON body; an empty body leaves v untouched.
func decodeBody(r *http.Request, v any) error {
	err := json.NewDecoder(r.Body).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

// handleStartSession opens a live workout from a stored template, an inline
// plan in record form, or a plan text blob, in that order of preference.
func (s *Server) handleStartSession(w http.ResponseWriter, r *http.Request) {
	var req startSessionRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, messages.CodeInvalidJSON)
		return
	}

	var (
		plan models.WorkoutPlan
		err  error
	)
	switch {
	case req.TemplateID != "":
		t, terr := s.store.GetTemplate(r.Context(), req.TemplateID)
		if terr != nil {
			s.storageError(w, terr, messages.CodeTemplateNotFound)
			return
		}
		plan = t.Plan
		if req.Name == "" {
			req.Name = t.Name
		}
	case req.Plan != nil:
		plan, err = plancodec.DecodePlan(req.Plan)
	default:
		plan, err = plancodec.UnmarshalPlanText(req.PlanText)
	}
	if err != nil {
		s.writeError(w, http.StatusBadRequest, messages.CodeInvalidPlan)
		return
	}

	sess, err := s.sessions.Start(req.Name, plan)
	if err != nil {
		s.sessionError(w, err)
		return
	}
	s.instr.GaugeLiveSessions.Set(float64(s.sessions.Len()))
	s.log.Info("session started", "session", sess.ID(), "exercises", len(plan))
	writeJSON(w, http.StatusCreated, sess.Status())
}

// liveSession resolves the {id} URL parameter, writing a 404 when the
// session is unknown.
func (s *Server) liveSession(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	sess, ok := s.sessions.Get(chi.URLParam(r, "id"))
	if !ok {
		s.writeError(w, http.StatusNotFound, messages.CodeSessionNotFound)
		return nil, false
	}
	return sess, true
}

func (s *Server) handleSessionStatus(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.liveSession(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, sess.Status())
}

func (s *Server) handleAddRep(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.liveSession(w, r)
	if !ok {
		return
	}
	var m session.RepMetrics
	if err := json.NewDecoder(r.Body).Decode(&m); err != nil {
		s.writeError(w, http.StatusBadRequest, messages.CodeInvalidJSON)
		return
	}
	live, err := sess.AddRep(m)
	if err != nil {
		s.sessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, live)
}

func (s *Server) handleCompleteSet(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.liveSession(w, r)
	if !ok {
		return
	}
	var req completeSetRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, messages.CodeInvalidJSON)
		return
	}
	res, err := sess.CompleteSet(req.Reps, req.Notes)
	if err != nil {
		s.sessionError(w, err)
		return
	}

	exercise := "unknown"
	if st := sess.Status(); st.CurrentExercise != nil {
		exercise = st.CurrentExercise.String()
	}
	s.instr.CounterSetsCompleted.WithLabelValues(exercise, res.Feedback.String()).Inc()
	s.instr.HistSetScore.Observe(res.Set.WorkoutScore)
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleCompleteExercise(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.liveSession(w, r)
	if !ok {
		return
	}
	ews, err := sess.CompleteExercise()
	if err != nil {
		s.sessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ews)
}

// handleFinishSession scores the workout, stores it and closes the session.
// If storing fails the session stays open with its result, so the client can
// retry without the workout being scored twice.
func (s *Server) handleFinishSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.liveSession(w, r)
	if !ok {
		return
	}
	var req finishSessionRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, messages.CodeInvalidJSON)
		return
	}

	res, err := sess.Finish(req.Notes)
	if errors.Is(err, session.ErrFinished) {
		var done bool
		res, done = sess.Result()
		if !done {
			s.sessionError(w, err)
			return
		}
	} else if err != nil {
		s.sessionError(w, err)
		return
	}

	inserted, err := s.store.SaveWorkoutResult(r.Context(), res.Workout, res.Exercises)
	if err != nil {
		s.log.Error("saving workout", "workout", res.Workout.ID, "error", err)
		s.writeError(w, http.StatusInternalServerError, messages.CodeStorage)
		return
	}
	if inserted {
		s.instr.CounterWorkoutsFinalized.Inc()
		s.instr.HistWorkoutScore.Observe(res.Workout.OverallScore)
		if res.Workout.RewardsAwarded {
			s.instr.CounterRewardsAwarded.Inc()
		}
	}

	s.sessions.Remove(sess.ID())
	s.instr.GaugeLiveSessions.Set(float64(s.sessions.Len()))
	s.log.Info("workout finished",
		"workout", res.Workout.ID,
		"score", res.Workout.OverallScore,
		"rewards", res.Workout.RewardsAwarded,
		"xp", res.Summary.TotalXP,
	)
	writeJSON(w, http.StatusOK, res)
}

// handleAbandonSession drops a live session without storing anything.
func (s *Server) handleAbandonSession(w http.ResponseWriter, r *http.Request) {
	if !s.sessions.Remove(chi.URLParam(r, "id")) {
		s.writeError(w, http.StatusNotFound, messages.CodeSessionNotFound)
		return
	}
	s.instr.GaugeLiveSessions.Set(float64(s.sessions.Len()))
	w.WriteHeader(http.StatusNoContent)
}

// sessionError maps session errors to responses.
func (s *Server) sessionError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, session.ErrEmptyPlan):
		s.writeError(w, http.StatusBadRequest, messages.CodeInvalidPlan)
	case errors.Is(err, session.ErrNoActiveExercise):
		s.writeError(w, http.StatusConflict, messages.CodeNoActiveExercise)
	case errors.Is(err, session.ErrEmptySet):
		s.writeError(w, http.StatusUnprocessableEntity, messages.CodeEmptySet)
	case errors.Is(err, session.ErrFinished):
		s.writeError(w, http.StatusConflict, messages.CodeSessionFinished)
	case errors.Is(err, scoring.ErrAlreadyFinalized):
		s.writeError(w, http.StatusConflict, messages.CodeAlreadyFinalized)
	default:
		s.log.Error("session error", "error", err)
		s.writeError(w, http.StatusInternalServerError, messages.CodeInternal)
	}
}
