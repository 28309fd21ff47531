package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/profiler/internal/generator"
	"github.com/MikeSquared-Agency/profiler/internal/processor"
	"github.com/MikeSquared-Agency/profiler/internal/reddit"
	"github.com/MikeSquared-Agency/profiler/internal/store"
)

// PersonaRequest is the body of POST /api/v1/personas. Either field
// identifies the user; username wins when both are set.
type PersonaRequest struct {
	Username   string `json:"username"`
	ProfileURL string `json:"profile_url"`
}

const maxBodyBytes = 1 << 20

func decodeJSON(r *http.Request, v any) error {
	return json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(v)
}

// createPersona handles POST /api/v1/personas
func (s *Server) createPersona(w http.ResponseWriter, r *http.Request) {
	var req PersonaRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	username := strings.TrimSpace(req.Username)
	if username == "" && req.ProfileURL != "" {
		if !reddit.ValidateProfileURL(req.ProfileURL) {
			writeError(w, http.StatusBadRequest, "invalid reddit profile url")
			return
		}
		u, err := reddit.ExtractUsername(req.ProfileURL)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		username = u
	}
	if username == "" {
		writeError(w, http.StatusBadRequest, "username or profile_url is required")
		return
	}

	res, err := s.runner.Run(r.Context(), username, processor.RunOptions{
		RequestID: middleware.GetReqID(r.Context()),
	})
	if err != nil {
		status := statusFor(err)
		s.logger.Error("persona request failed", "username", username, "status", status, "error", err)
		writeError(w, status, err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, res)
}

// getPersona handles GET /api/v1/personas/{id}
func (s *Server) getPersona(w http.ResponseWriter, r *http.Request) {
	if s.reports == nil {
		writeError(w, http.StatusServiceUnavailable, "report store not configured")
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid report id")
		return
	}

	rep, err := s.reports.GetReport(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "report not found")
		return
	}
	if err != nil {
		s.logger.Error("get report failed", "report_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "get report failed")
		return
	}

	writeJSON(w, http.StatusOK, rep)
}

// listPersonas handles GET /api/v1/personas?username=x&limit=n
func (s *Server) listPersonas(w http.ResponseWriter, r *http.Request) {
	if s.reports == nil {
		writeError(w, http.StatusServiceUnavailable, "report store not configured")
		return
	}

	username := strings.TrimSpace(r.URL.Query().Get("username"))
	if username == "" {
		writeError(w, http.StatusBadRequest, "username is required")
		return
	}

	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}

	reports, err := s.reports.ListReports(r.Context(), username, limit)
	if err != nil {
		s.logger.Error("list reports failed", "username", username, "error", err)
		writeError(w, http.StatusInternalServerError, "list reports failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"reports": reports,
		"count":   len(reports),
	})
}

// statusFor maps pipeline errors to HTTP status codes.
func statusFor(err error) int {
	var fe *reddit.FetchError
	var ge *generator.GenerationError
	switch {
	case reddit.IsNotFound(err):
		return http.StatusNotFound
	case errors.As(err, &fe), errors.As(err, &ge):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
