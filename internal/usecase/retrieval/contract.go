package retrieval

import (
	"context"

	"github.com/docly-ai/texforge/internal/domain"
)

// CorpusReader is the read-only corpus contract for retrieval.
type CorpusReader interface {
	Records() []domain.Record
	Vector(id string) ([]float32, bool)
	Len() int
}

// Embedder vectorizes the query text.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}
