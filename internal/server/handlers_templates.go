package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/meltforce/repscore/internal/messages"
	"github.com/meltforce/repscore/internal/models"
	"github.com/meltforce/repscore/internal/plancodec"
)

func (s *Server) handleListTemplates(w http.ResponseWriter, r *http.Request) {
	templates, skipped, err := s.store.ListTemplates(r.Context())
	if err != nil {
		s.storageError(w, err, messages.CodeTemplateNotFound)
		return
	}
	if skipped > 0 {
		s.log.Warn("templates with undecodable plans skipped", "count", skipped)
	}
	if templates == nil {
		templates = []models.WorkoutTemplate{}
	}
	writeJSON(w, http.StatusOK, templates)
}

func (s *Server) handleGetTemplate(w http.ResponseWriter, r *http.Request) {
	t, err := s.store.GetTemplate(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.storageError(w, err, messages.CodeTemplateNotFound)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// handleGetTemplatePlan returns the template's plan as a standalone text blob.
func (s *Server) handleGetTemplatePlan(w http.ResponseWriter, r *http.Request) {
	t, err := s.store.GetTemplate(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.storageError(w, err, messages.CodeTemplateNotFound)
		return
	}
	text, err := plancodec.MarshalPlanText(t.Plan)
	if err != nil {
		s.log.Error("encoding plan text", "template", t.ID, "error", err)
		s.writeError(w, http.StatusInternalServerError, messages.CodeInvalidPlan)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(text))
}

// handleCreateTemplate accepts a template record in the persisted shape.
// A missing id is generated and a missing createdAt is set to now.
func (s *Server) handleCreateTemplate(w http.ResponseWriter, r *http.Request) {
	var rec plancodec.Record
	if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
		s.writeError(w, http.StatusBadRequest, messages.CodeInvalidJSON)
		return
	}

	t, err := plancodec.DecodeTemplate(rec)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, messages.CodeInvalidPlan)
		return
	}
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.CreatedAt == nil {
		now := time.Now().UTC()
		t.CreatedAt = &now
	}

	inserted, err := s.store.InsertTemplate(r.Context(), t)
	if err != nil {
		s.storageError(w, err, messages.CodeTemplateNotFound)
		return
	}
	status := http.StatusCreated
	if !inserted {
		status = http.StatusOK
	}
	writeJSON(w, status, t)
}
