// Package chi exposes the generation and retrieval services over HTTP.
package chi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/docly-ai/texforge/internal/domain"
	"github.com/docly-ai/texforge/internal/domain/retrieval/query"
	"github.com/docly-ai/texforge/internal/dsf"
	generateuc "github.com/docly-ai/texforge/internal/usecase/generate"
	retrievaluc "github.com/docly-ai/texforge/internal/usecase/retrieval"
)

// Server holds the HTTP handlers for the public API.
type Server struct {
	generate  *generateuc.Service
	retrieval *retrievaluc.Service
	ready     func(r *http.Request) error
	logger    *zap.Logger
}

// NewServer creates an HTTP API server. ready is probed by GET /healthz;
// a nil ready always reports healthy.
func NewServer(
	generate *generateuc.Service,
	retrieval *retrievaluc.Service,
	ready func(r *http.Request) error,
	logger *zap.Logger,
) *Server {
	return &Server{
		generate:  generate,
		retrieval: retrieval,
		ready:     ready,
		logger:    logger,
	}
}

// Routes mounts the API on a router.
func (s *Server) Routes(r chi.Router) {
	r.Post("/v1/generate", s.handleGenerate)
	r.Post("/v1/search", s.handleSearch)
	r.Get("/healthz", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
}

type generateRequest struct {
	Request  string    `json:"request"`
	Form     *dsf.Form `json:"form,omitempty"`
	DocType  string    `json:"doc_type,omitempty"`
	Keywords []string  `json:"keywords,omitempty"`
	TopK     int       `json:"top_k,omitempty"`
	Template string    `json:"template,omitempty"`
	Strict   bool      `json:"strict,omitempty"`
}

type generateResponse struct {
	ID         string   `json:"id"`
	Latex      string   `json:"latex"`
	ExampleIDs []string `json:"example_ids"`
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "Invalid request body: "+err.Error())
		return
	}

	out, err := s.generate.Generate(r.Context(), generateuc.Request{
		UserRequest: req.Request,
		Form:        req.Form,
		DocType:     req.DocType,
		Keywords:    req.Keywords,
		TopK:        req.TopK,
		Template:    req.Template,
		Strict:      req.Strict,
	})
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, generateResponse{
		ID:         out.ID,
		Latex:      out.Tex,
		ExampleIDs: out.ExampleIDs,
	})
}

type searchRequest struct {
	Query    string   `json:"query"`
	DocType  string   `json:"doc_type,omitempty"`
	Keywords []string `json:"keywords,omitempty"`
	TopK     int      `json:"top_k,omitempty"`
}

type searchHit struct {
	ID      string  `json:"id"`
	DocType string  `json:"doc_type"`
	Prompt  string  `json:"prompt"`
	Score   float64 `json:"score"`
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "Invalid request body: "+err.Error())
		return
	}

	q, err := query.New(req.Query, req.DocType, req.Keywords, req.TopK)
	if err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
		return
	}

	results, err := s.retrieval.Retrieve(r.Context(), q)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	hits := make([]searchHit, 0, len(results))
	for _, res := range results {
		rec := res.Record()
		hits = append(hits, searchHit{
			ID:      rec.ID,
			DocType: rec.DocType,
			Prompt:  rec.UserPrompt,
			Score:   res.Score(),
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": hits})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	httpStatus := http.StatusOK
	if s.ready != nil {
		if err := s.ready(r); err != nil {
			status = "unavailable"
			httpStatus = http.StatusServiceUnavailable
			s.logger.Warn("Health check failed", zap.Error(err))
		}
	}
	writeJSON(w, httpStatus, map[string]string{"status": status})
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrEmptyRequest):
		writeError(w, http.StatusBadRequest, "empty_request", err.Error())
	case errors.Is(err, domain.ErrTemplateNotFound):
		writeError(w, http.StatusBadRequest, "template_not_found", err.Error())
	case errors.Is(err, domain.ErrStrictValidation):
		writeError(w, http.StatusUnprocessableEntity, "strict_validation_failed", err.Error())
	case errors.Is(err, domain.ErrIndexNotFound):
		writeError(w, http.StatusServiceUnavailable, "index_not_found", err.Error())
	case errors.Is(err, domain.ErrCorpusDesync):
		writeError(w, http.StatusInternalServerError, "corpus_desync", err.Error())
	case errors.Is(err, domain.ErrEmbeddingProviderError):
		writeError(w, http.StatusBadGateway, "embedding_provider_error", err.Error())
	case errors.Is(err, domain.ErrGenerationFailed):
		writeError(w, http.StatusBadGateway, "generation_failed", err.Error())
	default:
		s.logger.Error("Unhandled error", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal_error", "Internal server error")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Code: code, Message: message})
}
