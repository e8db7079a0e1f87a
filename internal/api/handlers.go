// Coursematch - Hybrid Course Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/coursematch

package api

import (
	"bytes"
	_ "embed"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/tomtom215/coursematch/internal/catalog"
	"github.com/tomtom215/coursematch/internal/service"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

// predictDefaultTopK is the top_k of /api/predict when inputs omit it.
const predictDefaultTopK = 3

// Client-facing messages of the HTTP layer.
const (
	msgNoJSON           = "No JSON data provided"
	msgInvalidJSON      = "Invalid JSON body"
	msgInputsRequired   = "'inputs' field is required"
	msgBodyTooLarge     = "Request body too large"
	msgNotFound         = "Endpoint not found"
	msgMethodNotAllowed = "Method not allowed"
)

//go:embed index.html
var indexHTML []byte

// Handler serves the HTTP endpoints over the recommendation facade.
type Handler struct {
	svc    *service.Service
	logger zerolog.Logger
}

// NewHandler creates a Handler.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewHandler(svc *service.Service, logger zerolog.Logger) *Handler {
	return &Handler{
		svc:    svc,
		logger: logger.With().Str("component", "api").Logger(),
	}
}

// RecommendRequest is the body of POST /recommend.
type RecommendRequest struct {
	Prompt string `json:"prompt" example:"I want to learn machine learning"`
	// Query is accepted as an alias of Prompt.
	Query           string          `json:"query,omitempty"`
	TopK            json.RawMessage `json:"top_k,omitempty" swaggertype:"integer" example:"5"`
	UserPreferences map[string]any  `json:"user_preferences,omitempty"`
}

// PredictRequest is the body of POST /api/predict.
type PredictRequest struct {
	Inputs *PredictInputs `json:"inputs"`
	// Params is accepted and ignored.
	Params map[string]any `json:"params,omitempty"`
}

// PredictInputs are the ranking inputs of /api/predict.
type PredictInputs struct {
	Prompt          string          `json:"prompt"`
	TopK            json.RawMessage `json:"top_k,omitempty" swaggertype:"integer" example:"3"`
	UserPreferences map[string]any  `json:"user_preferences,omitempty"`
}

// PredictResponse wraps the result of /api/predict.
type PredictResponse struct {
	Success bool              `json:"success"`
	Result  *service.Response `json:"result,omitempty"`
	Error   string            `json:"error,omitempty"`
}

// CoursesResponse is the body of GET /courses.
type CoursesResponse struct {
	Courses   []catalog.Course `json:"courses"`
	Total     int              `json:"total"`
	Timestamp time.Time        `json:"timestamp"`
}

// Recommend handles course recommendation requests.
//
// @Summary Recommend courses
// @Description Ranks the catalog against a free-text prompt using hybrid semantic and keyword retrieval followed by reranking. Scores are integers in [0,100].
// @Tags Recommend
// @Accept json
// @Produce json
// @Param request body RecommendRequest true "Prompt, result count (1-20, default 5) and optional preferences"
// @Success 200 {object} service.Response "Ranked recommendations"
// @Failure 400 {object} ErrorResponse "Missing prompt, invalid top_k or malformed JSON"
// @Failure 404 {object} ErrorResponse "No recommendations found"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /recommend [post]
func (h *Handler) Recommend(w http.ResponseWriter, r *http.Request) {
	body, ok := h.readBody(w, r)
	if !ok {
		return
	}

	var req RecommendRequest
	if status, msg := decodeObject(body, &req); status != 0 {
		respondError(w, r, status, msg, nil)
		return
	}

	topK, ok := parseTopK(req.TopK)
	if !ok {
		respondError(w, r, http.StatusBadRequest, h.svc.InvalidTopK().Message, nil)
		return
	}
	prompt := req.Prompt
	if prompt == "" {
		prompt = req.Query
	}

	resp, err := h.svc.Recommend(r.Context(), service.Request{
		Query:           prompt,
		TopK:            topK,
		UserPreferences: req.UserPreferences,
	})
	if err != nil {
		respondError(w, r, statusFor(service.KindOf(err)), service.MessageOf(err), err)
		return
	}
	respondJSON(w, r, http.StatusOK, resp)
}

// Predict is the model-serving style entry point.
//
// @Summary Predict recommendations
// @Description Wraps the recommendation pipeline in a {success, result} envelope. top_k defaults to 3.
// @Tags Recommend
// @Accept json
// @Produce json
// @Param request body PredictRequest true "Inputs with prompt and top_k"
// @Success 200 {object} PredictResponse "Ranked recommendations"
// @Failure 400 {object} PredictResponse "Malformed JSON or invalid input"
// @Failure 404 {object} PredictResponse "No recommendations found"
// @Failure 422 {object} ErrorResponse "inputs missing"
// @Failure 500 {object} PredictResponse "Internal server error"
// @Router /api/predict [post]
func (h *Handler) Predict(w http.ResponseWriter, r *http.Request) {
	body, ok := h.readBody(w, r)
	if !ok {
		return
	}

	trimmed := bytes.TrimSpace(body)
	var req PredictRequest
	if len(trimmed) == 0 || trimmed[0] != '{' || json.Unmarshal(trimmed, &req) != nil {
		respondError(w, r, http.StatusBadRequest, msgInvalidJSON, nil)
		return
	}
	if req.Inputs == nil {
		respondError(w, r, http.StatusUnprocessableEntity, msgInputsRequired, nil)
		return
	}

	topK, ok := parseTopK(req.Inputs.TopK)
	if !ok {
		respondJSON(w, r, http.StatusBadRequest, PredictResponse{Error: h.svc.InvalidTopK().Message})
		return
	}
	if topK == nil {
		def := predictDefaultTopK
		topK = &def
	}

	resp, err := h.svc.Recommend(r.Context(), service.Request{
		Query:           req.Inputs.Prompt,
		TopK:            topK,
		UserPreferences: req.Inputs.UserPreferences,
	})
	if err != nil {
		status := statusFor(service.KindOf(err))
		if status >= http.StatusInternalServerError {
			h.logger.Error().Err(err).Msg("Predict failed")
		}
		respondJSON(w, r, status, PredictResponse{Error: service.MessageOf(err)})
		return
	}
	respondJSON(w, r, http.StatusOK, PredictResponse{Success: true, Result: resp})
}

// Health reports readiness.
//
// @Summary Health check
// @Description Returns healthy once an index snapshot is installed, otherwise starting with 503.
// @Tags Health
// @Produce json
// @Success 200 {object} service.Health
// @Failure 503 {object} service.Health
// @Router /health [get]
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	health := h.svc.Health()
	status := http.StatusOK
	if health.Status != service.StatusHealthy {
		status = http.StatusServiceUnavailable
	}
	respondJSON(w, r, status, health)
}

// Courses lists the catalog.
//
// @Summary List courses
// @Description Returns every course of the active catalog.
// @Tags Catalog
// @Produce json
// @Success 200 {object} CoursesResponse
// @Failure 500 {object} ErrorResponse "Unable to load courses"
// @Router /courses [get]
func (h *Handler) Courses(w http.ResponseWriter, r *http.Request) {
	courses, err := h.svc.Courses()
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, service.MessageOf(err), err)
		return
	}
	respondJSON(w, r, http.StatusOK, CoursesResponse{
		Courses:   courses,
		Total:     len(courses),
		Timestamp: time.Now().UTC(),
	})
}

// Stats reports engine counters and the active snapshot.
//
// @Summary Engine statistics
// @Tags Health
// @Produce json
// @Success 200 {object} recommend.Stats
// @Router /api/stats [get]
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, r, http.StatusOK, h.svc.Stats())
}

// Index serves the demo page.
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Content-Security-Policy", "default-src 'self'; script-src 'unsafe-inline' 'self'; style-src 'unsafe-inline' 'self'")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(indexHTML); err != nil {
		h.logger.Debug().Err(err).Msg("Failed to write index page")
	}
}

// NotFound answers unknown routes.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	respondError(w, r, http.StatusNotFound, msgNotFound, nil)
}

// MethodNotAllowed answers known routes called with the wrong method.
func (h *Handler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	respondError(w, r, http.StatusMethodNotAllowed, msgMethodNotAllowed, nil)
}

func (h *Handler) readBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(w, r, http.StatusRequestEntityTooLarge, msgBodyTooLarge, nil)
			return nil, false
		}
		respondError(w, r, http.StatusBadRequest, msgInvalidJSON, err)
		return nil, false
	}
	return body, true
}

// decodeObject decodes a JSON object body into dst. It returns a zero
// status on success. Empty bodies, null and {} count as no data.
func decodeObject(body []byte, dst any) (int, string) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return http.StatusBadRequest, msgNoJSON
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &fields); err != nil {
		return http.StatusBadRequest, msgInvalidJSON
	}
	if len(fields) == 0 {
		return http.StatusBadRequest, msgNoJSON
	}
	if err := json.Unmarshal(trimmed, dst); err != nil {
		return http.StatusBadRequest, msgInvalidJSON
	}
	return 0, ""
}

// parseTopK accepts only a JSON integer. Absent or null yields nil.
func parseTopK(raw json.RawMessage) (*int, bool) {
	s := string(bytes.TrimSpace(raw))
	if s == "" || s == "null" {
		return nil, true
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return nil, false
	}
	return &v, true
}
