package generate

import (
	"context"

	"github.com/docly-ai/texforge/internal/domain"
	"github.com/docly-ai/texforge/internal/domain/retrieval/query"
	"github.com/docly-ai/texforge/internal/domain/retrieval/result"
)

// Retriever returns the most relevant authored examples for a query.
type Retriever interface {
	Retrieve(ctx context.Context, q query.Query) ([]result.Result, error)
}

// Generator produces raw text from a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (domain.GenerationResult, error)
}
