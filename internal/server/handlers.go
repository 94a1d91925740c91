package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/oncallops/triage/internal/parser"
)

// maxBodyBytes caps webhook payload size; monitoring payloads are
// small and anything past this is abuse or misconfiguration.
const maxBodyBytes = 1 << 20

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// handleAlert ingests one webhook payload. The optional {format} path
// segment names a source explicitly; without it the format is
// auto-detected.
func (s *Server) handleAlert(w http.ResponseWriter, r *http.Request) {
	format := chi.URLParam(r, "format")
	if format == "" {
		format = parser.FormatAuto
	}

	raw, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1))
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read request body")
		return
	}
	if len(raw) > maxBodyBytes {
		writeError(w, http.StatusRequestEntityTooLarge, "payload too large")
		return
	}

	outcome, err := s.processor.Process(r.Context(), raw, format)
	if err != nil {
		status := statusFor(err)
		s.log.Warn().
			Err(err).
			Str("format", format).
			Str("request_id", middleware.GetReqID(r.Context())).
			Int("status", status).
			Msg("alert rejected")
		writeError(w, status, err.Error())
		return
	}

	s.log.Info().
		Str("source", string(outcome.Alert.Source)).
		Str("alert_id", outcome.Alert.ID).
		Str("action", string(outcome.Action)).
		Int("issue", outcome.IssueNumber).
		Str("request_id", middleware.GetReqID(r.Context())).
		Msg("alert processed")
	writeJSON(w, http.StatusAccepted, outcome)
}

// statusFor maps pipeline errors onto HTTP statuses. Payload problems
// are the sender's fault; everything else is ours.
func statusFor(err error) int {
	var syntaxErr *json.SyntaxError
	switch {
	case errors.Is(err, parser.ErrUnknownFormat),
		errors.Is(err, parser.ErrFormatMismatch),
		errors.Is(err, parser.ErrEmptyEnvelope),
		errors.As(err, &syntaxErr):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
