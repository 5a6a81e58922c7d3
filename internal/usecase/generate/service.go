// Package generate sequences the full document generation pipeline:
// retrieve examples, build the prompt, call the model, sanitize, enforce the
// template, substitute placeholders, and validate the strict-mode contract.
package generate

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/docly-ai/texforge/internal/domain"
	"github.com/docly-ai/texforge/internal/domain/retrieval/query"
	"github.com/docly-ai/texforge/internal/dsf"
	"github.com/docly-ai/texforge/internal/latex/placeholder"
	"github.com/docly-ai/texforge/internal/latex/sanitize"
	"github.com/docly-ai/texforge/internal/latex/template"
	"github.com/docly-ai/texforge/internal/logger"
	"github.com/docly-ai/texforge/internal/prompt"
)

// Request is one generation request.
type Request struct {
	UserRequest string
	Form        *dsf.Form // overrides UserRequest when set
	DocType     string
	Keywords    []string
	TopK        int
	Template    string // template name; "" generates without a template
	Strict      bool
}

// Output is the assembled generation result.
type Output struct {
	ID         string
	Tex        string
	ExampleIDs []string
}

// Service is the pipeline controller.
type Service struct {
	retriever    Retriever
	generator    Generator
	templates    *template.Registry
	placeholders map[string]string
}

// New creates a generation service.
func New(retriever Retriever, generator Generator, templates *template.Registry, placeholders map[string]string) *Service {
	return &Service{
		retriever:    retriever,
		generator:    generator,
		templates:    templates,
		placeholders: placeholders,
	}
}

// Generate runs the pipeline for one request.
func (s *Service) Generate(ctx context.Context, req Request) (Output, error) {
	userRequest := req.UserRequest
	if req.Form != nil {
		userRequest = req.Form.ToPrompt()
	}
	if strings.TrimSpace(userRequest) == "" {
		return Output{}, domain.ErrEmptyRequest
	}

	id := uuid.NewString()
	log := logger.FromContext(ctx).With(zap.String("generation_id", id))

	// Resolve the template before spending a model round trip on a request
	// that cannot be assembled.
	var tmpl template.Template
	templateProvided := req.Template != ""
	if templateProvided {
		var err error
		tmpl, err = s.templates.Get(req.Template)
		if err != nil {
			return Output{}, err
		}
	}

	q, err := query.New(userRequest, req.DocType, req.Keywords, req.TopK)
	if err != nil {
		return Output{}, fmt.Errorf("build query: %w", err)
	}

	examples, err := s.retriever.Retrieve(ctx, q)
	if err != nil {
		return Output{}, fmt.Errorf("retrieve examples: %w", err)
	}
	exampleIDs := make([]string, len(examples))
	for i := range examples {
		exampleIDs[i] = examples[i].Record().ID
	}
	log.Info("Retrieved examples", zap.Strings("ids", exampleIDs))

	p := prompt.Build(userRequest, examples, templateProvided)

	gen, err := s.generator.Generate(ctx, p)
	if err != nil {
		return Output{}, fmt.Errorf("generate latex: %w", err)
	}

	body := sanitize.Clean(gen.Text)

	if req.Strict && templateProvided && containsPreambleTokens(body) {
		// The enforcer repairs the leak; the final declaration count check
		// below remains the fatal gate.
		log.Warn("Sanitized body still carries preamble tokens; merging via template enforcement")
	}

	final := body
	if templateProvided {
		final = tmpl.Enforce(body)
	}

	if req.Strict {
		if err := template.ValidateStrict(final, templateProvided); err != nil {
			return Output{}, err
		}
	}

	final = placeholder.Fill(final, s.placeholders)

	log.Info("Generation completed",
		zap.String("template", req.Template),
		zap.Bool("strict", req.Strict),
		zap.Int("output_bytes", len(final)),
	)

	return Output{ID: id, Tex: final, ExampleIDs: exampleIDs}, nil
}

// preambleTokens are the structural tokens a body-only generation must not
// contain.
var preambleTokens = []string{
	`\documentclass`,
	`\usepackage`,
	`\begin{document}`,
	`\end{document}`,
	`\newcommand`,
	`\title`,
	`\author`,
}

func containsPreambleTokens(text string) bool {
	for _, tok := range preambleTokens {
		if strings.Contains(text, tok) {
			return true
		}
	}
	return false
}
