package retrieval

import (
	"context"

	"github.com/docly-ai/texforge/internal/domain"
)

// mockCorpus implements CorpusReader over in-memory slices.
type mockCorpus struct {
	records []domain.Record
	vectors map[string][]float32
}

func newMockCorpus(records []domain.Record, vectors [][]float32) *mockCorpus {
	keyed := make(map[string][]float32, len(records))
	for i, rec := range records {
		keyed[rec.ID] = vectors[i]
	}
	return &mockCorpus{records: records, vectors: keyed}
}

func (m *mockCorpus) Records() []domain.Record { return m.records }

func (m *mockCorpus) Vector(id string) ([]float32, bool) {
	v, ok := m.vectors[id]
	return v, ok
}

func (m *mockCorpus) Len() int { return len(m.records) }

type mockEmbedder struct {
	result domain.EmbeddingResult
	err    error
}

func (m *mockEmbedder) Embed(_ context.Context, _ string) (domain.EmbeddingResult, error) {
	return m.result, m.err
}
