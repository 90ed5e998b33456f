package server

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/meltforce/repscore/internal/importer"
	"github.com/meltforce/repscore/internal/messages"
	"github.com/meltforce/repscore/internal/storage"
)

// handleIngest accepts an app export document and stores whatever decodes.
func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	doc, err := importer.ParseDocument(r.Body)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, messages.CodeInvalidJSON)
		return
	}

	result, err := s.loader.Load(r.Context(), doc)
	s.logImport("api", result, err, int(time.Since(start).Milliseconds()))
	if err != nil {
		s.log.Error("ingest error", "error", err)
		s.writeError(w, http.StatusInternalServerError, messages.CodeStorage)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.store.GetDataStats(r.Context())
	if err != nil {
		s.storageError(w, err, messages.CodeStorage)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleImportLogs(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if l := r.URL.Query().Get("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	logs, err := s.store.QueryImportLogs(r.Context(), limit)
	if err != nil {
		s.storageError(w, err, messages.CodeStorage)
		return
	}
	if logs == nil {
		logs = []storage.ImportLog{}
	}
	writeJSON(w, http.StatusOK, logs)
}

// logImport records an import operation's result to the import_logs table.
func (s *Server) logImport(source string, result importer.Result, importErr error, durationMs int) {
	status := "success"
	var errMsg *string
	if importErr != nil {
		status = "error"
		msg := importErr.Error()
		errMsg = &msg
	}

	log := storage.ImportLog{
		Source:            source,
		Status:            status,
		WorkoutsReceived:  result.WorkoutsReceived,
		WorkoutsInserted:  result.WorkoutsInserted,
		ExercisesInserted: result.ExercisesInserted,
		SetsInserted:      result.SetsInserted,
		TemplatesInserted: result.TemplatesInserted,
		RecordsSkipped:    result.RecordsSkipped,
		DurationMs:        &durationMs,
		ErrorMessage:      errMsg,
	}

	ctx, cancel := contextWithTimeout()
	defer cancel()

	if _, err := s.store.InsertImportLog(ctx, log); err != nil {
		s.log.Error("failed to log import", "source", source, "error", err)
	}
}

// contextWithTimeout returns a background context with a 5-second timeout for import logging.
func contextWithTimeout() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 5*time.Second) //nolint:mnd
}
