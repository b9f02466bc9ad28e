package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/theduardomaciel/projeto-ia/internal/db"
	"github.com/theduardomaciel/projeto-ia/internal/pipeline"
	"github.com/theduardomaciel/projeto-ia/internal/schemas"
	"github.com/theduardomaciel/projeto-ia/internal/types"
)

// Multipart field names of POST /api/analyze
const (
	FieldResumes       = "resumes"
	FieldJobText       = "job_text"
	FieldJobFile       = "job_file"
	FieldStructuredJob = "structured_job"
	FieldExplain       = "explain"
)

// memory kept by ParseMultipartForm before spilling to disk
const multipartMemory = 8 << 20

// AnalyzeResponse is the body of a successful analysis
type AnalyzeResponse struct {
	AnalysisID        uuid.UUID                 `json:"analysis_id"`
	JobTitle          string                    `json:"job_title"`
	Data              []types.CandidateResult   `json:"data"`
	Failures          []types.InputFailure      `json:"failures,omitempty"`
	Requirements      types.RequirementsSummary `json:"requirements_summary"`
	LLMProvider       string                    `json:"llm_provider,omitempty"`
	ProcessingSeconds float64                   `json:"processing_seconds"`
	Persisted         bool                      `json:"persisted"`
}

// SkillsResponse lists the skills the dictionary recognizes
type SkillsResponse struct {
	HardSkills []string `json:"hard_skills"`
	SoftSkills []string `json:"soft_skills"`
}

func (s *Server) handleRoot(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{
		"name":   "recruiter",
		"status": "online",
		"health": "/api/health",
	})
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"status":       "healthy",
		"llm_provider": s.provider,
		"persistence":  s.store != nil,
	})
}

func (s *Server) handleSkills(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, SkillsResponse{
		HardSkills: nonNil(s.skills.HardTerms()),
		SoftSkills: nonNil(s.skills.SoftTerms()),
	})
}

func nonNil(v []string) []string {
	if v == nil {
		return []string{}
	}
	return v
}

// handleAnalyze runs an analysis over the uploaded resumes and returns the ranking
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	in, err := s.parseAnalyzeRequest(w, r)
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}

	s.logger.Info("analysis requested", "resumes", len(in.Resumes))
	result, err := s.analyzer.Analyze(r.Context(), in)
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, s.finish(r, result))
}

// finish persists the result when a store is configured and builds the response
func (s *Server) finish(r *http.Request, result *types.AnalysisResult) AnalyzeResponse {
	persisted := false
	if s.store != nil {
		if err := s.store.SaveAnalysis(r.Context(), result); err != nil {
			s.logger.Warn("failed to persist analysis", "analysis_id", result.ID, "error", err)
		} else {
			persisted = true
		}
	}

	title := ""
	if result.Job != nil {
		title = result.Job.Title
	}
	return AnalyzeResponse{
		AnalysisID:        result.ID,
		JobTitle:          title,
		Data:              result.Results(),
		Failures:          result.Failures,
		Requirements:      result.Summary,
		LLMProvider:       result.LLMProvider,
		ProcessingSeconds: result.ProcessingSeconds,
		Persisted:         persisted,
	}
}

// parseAnalyzeRequest reads the multipart form into a pipeline input. The
// job comes from structured_job, job_file or job_text, in that order.
func (s *Server) parseAnalyzeRequest(w http.ResponseWriter, r *http.Request) (pipeline.Input, error) {
	var in pipeline.Input
	if !strings.Contains(r.Header.Get("Content-Type"), "multipart/form-data") {
		return in, &RequestError{Message: "content-type must be multipart/form-data"}
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadMB<<20)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return in, err
		}
		if strings.Contains(strings.ToLower(err.Error()), "too large") {
			return in, &http.MaxBytesError{Limit: s.cfg.MaxUploadMB << 20}
		}
		return in, &RequestError{Message: fmt.Sprintf("invalid multipart form: %v", err)}
	}

	headers := r.MultipartForm.File[FieldResumes]
	if len(headers) == 0 {
		return in, &RequestError{Field: FieldResumes, Message: "Nenhum currículo fornecido"}
	}
	for _, h := range headers {
		data, err := readUpload(h)
		if err != nil {
			return in, &RequestError{Field: FieldResumes, Message: fmt.Sprintf("failed to read %s: %v", h.Filename, err)}
		}
		in.Resumes = append(in.Resumes, pipeline.Document{Name: h.Filename, Data: data})
	}

	switch {
	case r.FormValue(FieldStructuredJob) != "":
		raw := []byte(r.FormValue(FieldStructuredJob))
		if err := schemas.Validate(schemas.StructuredJobSchema, raw); err != nil {
			return in, &RequestError{Field: FieldStructuredJob, Message: strings.TrimSpace(err.Error())}
		}
		var job types.StructuredJob
		if err := json.Unmarshal(raw, &job); err != nil {
			return in, &RequestError{Field: FieldStructuredJob, Message: fmt.Sprintf("JSON inválido: %v", err)}
		}
		in.StructuredJob = &job
	case len(r.MultipartForm.File[FieldJobFile]) > 0:
		data, err := readUpload(r.MultipartForm.File[FieldJobFile][0])
		if err != nil {
			return in, &RequestError{Field: FieldJobFile, Message: err.Error()}
		}
		in.JobText = string(data)
	default:
		in.JobText = r.FormValue(FieldJobText)
	}
	if in.StructuredJob == nil && strings.TrimSpace(in.JobText) == "" {
		return in, &RequestError{Message: "Forneça job_text, job_file ou structured_job com a descrição da vaga"}
	}

	if v := r.FormValue(FieldExplain); v != "" {
		explain, err := strconv.ParseBool(v)
		if err != nil {
			return in, &RequestError{Field: FieldExplain, Message: "must be a boolean"}
		}
		in.SkipExplanations = !explain
	}
	return in, nil
}

func readUpload(h *multipart.FileHeader) ([]byte, error) {
	f, err := h.Open()
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	return io.ReadAll(f)
}

func (s *Server) handleListAnalyses(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.errorResponse(w, r, ErrPersistenceDisabled)
		return
	}

	limit := db.DefaultListLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			s.errorResponse(w, r, &RequestError{Field: "limit", Message: "must be a positive integer"})
			return
		}
		limit = n
	}

	analyses, err := s.store.ListAnalyses(r.Context(), limit)
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}
	if analyses == nil {
		analyses = []db.AnalysisSummary{}
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{"analyses": analyses, "count": len(analyses)})
}

func (s *Server) handleGetAnalysis(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.errorResponse(w, r, ErrPersistenceDisabled)
		return
	}

	idStr := chi.URLParam(r, "id")
	id, err := uuid.Parse(idStr)
	if err != nil {
		s.errorResponse(w, r, &RequestError{Field: "id", Message: "invalid analysis ID"})
		return
	}

	stored, err := s.store.GetAnalysis(r.Context(), id)
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}
	if stored == nil {
		s.errorResponse(w, r, &NotFoundError{Resource: "analysis", ID: idStr})
		return
	}
	s.jsonResponse(w, http.StatusOK, stored)
}
