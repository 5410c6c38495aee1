package web

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/kofiadu/staffsync/internal/logging"
	"github.com/kofiadu/staffsync/internal/repository"
	"github.com/kofiadu/staffsync/internal/workbook"
)

// handleImport accepts a multipart spreadsheet upload for one tenant, runs
// the reconciliation engine synchronously, and returns the import report.
// Row-level failures are part of the report, not HTTP errors; only
// catastrophic conditions (bad tenant, unreadable file) produce error
// statuses.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	tenantID, err := uuid.Parse(chi.URLParam(r, "tenantID"))
	if err != nil {
		s.respondError(w, r, errBadRequest("invalid tenant id"), http.StatusBadRequest)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Import.MaxFileSize)
	if err := r.ParseMultipartForm(s.cfg.Import.MaxFileSize); err != nil {
		s.respondError(w, r, errBadRequest("file exceeds size limit or form is malformed"), http.StatusRequestEntityTooLarge)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		s.respondError(w, r, errBadRequest(`multipart field "file" is required`), http.StatusBadRequest)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		s.respondError(w, r, err, http.StatusBadRequest)
		return
	}

	logger := logging.WithFields(r.Context(),
		"tenant_id", tenantID,
		"file", header.Filename,
		"bytes", len(data),
	)
	logger.Info("import started")

	ctx, cancel := context.WithTimeout(r.Context(), s.cfg.Import.Timeout)
	defer cancel()

	report, err := s.engine.Import(ctx, tenantID, header.Filename, data)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrTenantNotFound):
			s.respondError(w, r, err, http.StatusNotFound)
		case errors.Is(err, workbook.ErrEmptyFile):
			s.respondError(w, r, err, http.StatusUnprocessableEntity)
		default:
			s.respondError(w, r, err, http.StatusInternalServerError)
		}
		return
	}

	logger.Info("import completed",
		"inserted", report.SuccessfulInserts,
		"failed", report.FailedInserts,
	)
	respondJSON(w, http.StatusOK, report)
}

// handleGetImport returns a persisted import audit record.
func (s *Server) handleGetImport(w http.ResponseWriter, r *http.Request) {
	importID, err := uuid.Parse(chi.URLParam(r, "importID"))
	if err != nil {
		s.respondError(w, r, errBadRequest("invalid import id"), http.StatusBadRequest)
		return
	}

	fileName, report, failures, err := s.audits.GetImport(r.Context(), s.db, importID)
	if err != nil {
		s.respondError(w, r, err, http.StatusNotFound)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"id":         importID,
		"fileName":   fileName,
		"report":     json.RawMessage(report),
		"failedRows": json.RawMessage(failures),
	})
}

// handleSummarySocket upgrades the connection and subscribes it to the
// tenant's dashboard summary feed.
func (s *Server) handleSummarySocket(w http.ResponseWriter, r *http.Request) {
	tenantID, err := uuid.Parse(chi.URLParam(r, "tenantID"))
	if err != nil {
		s.respondError(w, r, errBadRequest("invalid tenant id"), http.StatusBadRequest)
		return
	}

	if err := s.hub.Subscribe(w, r, tenantID); err != nil {
		logging.FromContext(r.Context()).Warn("websocket upgrade failed",
			"tenant_id", tenantID,
			"error", err,
		)
	}
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
