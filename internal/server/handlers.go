package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"atsresume/internal/apperr"
	"atsresume/internal/core"

	"github.com/go-chi/chi/v5"
)

// HealthResponse reports per-dependency health for /health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// StatusResponse reports process uptime for /api/status.
type StatusResponse struct {
	Uptime string `json:"uptime"`
}

var serverStartTime = time.Now()

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	checks := map[string]string{"database": "ok"}

	if err := s.db.Ping(r.Context()); err != nil {
		checks["database"] = "error"
		s.respondJSON(w, http.StatusServiceUnavailable, HealthResponse{Status: "unhealthy", Checks: checks})
		return
	}

	s.respondJSON(w, http.StatusOK, HealthResponse{Status: "ok", Checks: checks})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, StatusResponse{Uptime: time.Since(serverStartTime).String()})
}

// ingestResponse mirrors the fields a caller needs to check ingestion
// outcome without exposing the full resume row.
type ingestResponse struct {
	ResumeID       int64   `json:"resume_id"`
	Status         string  `json:"status"`
	Mastercategory *string `json:"mastercategory,omitempty"`
	Category       *string `json:"category,omitempty"`
	CandidateName  *string `json:"candidate_name,omitempty"`
}

// handleIngest handles POST /api/ingest, a multipart upload of a single
// resume file under the "file" form field.
func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	maxBytes := int64(s.config.MaxUploadMB) * 1024 * 1024
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)

	if err := r.ParseMultipartForm(maxBytes); err != nil {
		s.respondError(w, http.StatusBadRequest, "request too large or malformed: "+err.Error())
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "missing \"file\" form field: "+err.Error())
		return
	}
	defer file.Close()

	fileBytes, err := io.ReadAll(file)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, "reading upload: "+err.Error())
		return
	}

	modules := r.FormValue("modules")
	if modules == "" {
		modules = "all"
	}

	resume, err := s.orch.Ingest(r.Context(), fileBytes, header.Filename, modules)
	if err != nil {
		status := httpStatusForIngestError(err)
		if resume != nil {
			s.respondJSON(w, status, ingestResponse{ResumeID: resume.ID, Status: resume.Status})
			return
		}
		s.respondError(w, status, err.Error())
		return
	}

	s.respondJSON(w, http.StatusOK, ingestResponse{
		ResumeID:       resume.ID,
		Status:         resume.Status,
		Mastercategory: mastercategoryString(resume.Mastercategory),
		Category:       resume.Category,
		CandidateName:  resume.CandidateName,
	})
}

func mastercategoryString(mc *core.Mastercategory) *string {
	if mc == nil {
		return nil
	}
	s := string(*mc)
	return &s
}

func httpStatusForIngestError(err error) int {
	var inputErr *apperr.InputError
	if errors.As(err, &inputErr) {
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

// searchRequest is the JSON body accepted by POST /api/search.
type searchRequest struct {
	Query          string  `json:"query"`
	UserID         *string `json:"user_id,omitempty"`
	Mastercategory *string `json:"mastercategory,omitempty"`
	Category       *string `json:"category,omitempty"`
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "malformed request body: "+err.Error())
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		s.respondError(w, http.StatusBadRequest, "query must not be empty")
		return
	}

	var mastercategory *core.Mastercategory
	if req.Mastercategory != nil {
		mc := core.Mastercategory(strings.ToUpper(*req.Mastercategory))
		mastercategory = &mc
	}

	results, err := s.engine.Search(r.Context(), req.Query, req.UserID, mastercategory, req.Category)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]any{"results": results})
}

// retryRequest is the JSON body accepted by POST /api/retry/{id}.
type retryRequest struct {
	SearchPaths []string `json:"search_paths"`
	Modules     string   `json:"modules"`
}

func (s *Server) handleRetry(w http.ResponseWriter, r *http.Request) {
	idParam := chi.URLParam(r, "id")
	resumeID, err := strconv.ParseInt(idParam, 10, 64)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid resume id: "+idParam)
		return
	}

	var req retryRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.respondError(w, http.StatusBadRequest, "malformed request body: "+err.Error())
			return
		}
	}
	if req.Modules == "" {
		req.Modules = "all"
	}

	resume, err := s.orch.Retry(r.Context(), resumeID, req.SearchPaths, req.Modules)
	if err != nil {
		s.respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	s.respondJSON(w, http.StatusOK, ingestResponse{
		ResumeID:       resume.ID,
		Status:         resume.Status,
		Mastercategory: mastercategoryString(resume.Mastercategory),
		Category:       resume.Category,
		CandidateName:  resume.CandidateName,
	})
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Error().Err(err).Msg("failed to encode JSON response")
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
