// Package build produces the persisted corpus index from a source dataset.
// Rebuilding is a one-shot batch operation; callers must not run it
// concurrently with queries against the same persisted files.
package build

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/docly-ai/texforge/internal/domain"
	"github.com/docly-ai/texforge/internal/logger"
	"github.com/docly-ai/texforge/internal/repository/corpus"
)

// maxAPIBatchSize bounds embedding inputs per API request.
const maxAPIBatchSize = 128

// Service builds and persists the corpus index.
type Service struct {
	embedder domain.Embedder
}

// New creates a build service. When embedder also implements
// domain.BatchEmbedder, records are embedded in batches.
func New(embedder domain.Embedder) *Service {
	return &Service{embedder: embedder}
}

// Build embeds every record and writes the vector and metadata files.
func (s *Service) Build(ctx context.Context, records []domain.Record, vectorsPath, metaPath string) error {
	if len(records) == 0 {
		return fmt.Errorf("no records to index")
	}

	log := logger.FromContext(ctx)
	log.Info("Embedding corpus", zap.Int("records", len(records)))

	texts := make([]string, len(records))
	for i, rec := range records {
		texts[i] = rec.EmbedText()
	}

	vectors, err := s.embedAll(ctx, texts)
	if err != nil {
		return fmt.Errorf("embed corpus: %w", err)
	}

	store, err := corpus.New(records, vectors)
	if err != nil {
		return fmt.Errorf("assemble corpus: %w", err)
	}

	if err := store.Save(vectorsPath, metaPath); err != nil {
		return fmt.Errorf("persist corpus: %w", err)
	}

	log.Info("Corpus index built",
		zap.Int("records", store.Len()),
		zap.Int("dimensions", store.Dim()),
		zap.String("vectors_path", vectorsPath),
		zap.String("meta_path", metaPath),
	)
	return nil
}

func (s *Service) embedAll(ctx context.Context, texts []string) ([][]float32, error) {
	batcher, ok := s.embedder.(domain.BatchEmbedder)
	if !ok {
		res, err := domain.BatchFallback(ctx, s.embedder, texts)
		if err != nil {
			return nil, err
		}
		return res.Embeddings, nil
	}

	vectors := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += maxAPIBatchSize {
		end := start + maxAPIBatchSize
		if end > len(texts) {
			end = len(texts)
		}
		res, err := batcher.BatchEmbed(ctx, texts[start:end])
		if err != nil {
			return nil, fmt.Errorf("batch [%d:%d]: %w", start, end, err)
		}
		vectors = append(vectors, res.Embeddings...)
	}
	return vectors, nil
}
