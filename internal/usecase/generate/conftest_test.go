package generate

import (
	"context"

	"github.com/docly-ai/texforge/internal/domain"
	"github.com/docly-ai/texforge/internal/domain/retrieval/query"
	"github.com/docly-ai/texforge/internal/domain/retrieval/result"
)

type mockRetriever struct {
	results   []result.Result
	err       error
	lastQuery query.Query
	calls     int
}

func (m *mockRetriever) Retrieve(_ context.Context, q query.Query) ([]result.Result, error) {
	m.calls++
	m.lastQuery = q
	return m.results, m.err
}

type mockGenerator struct {
	text       string
	err        error
	lastPrompt string
	calls      int
}

func (m *mockGenerator) Generate(_ context.Context, prompt string) (domain.GenerationResult, error) {
	m.calls++
	m.lastPrompt = prompt
	if m.err != nil {
		return domain.GenerationResult{}, m.err
	}
	return domain.GenerationResult{Text: m.text}, nil
}

func exampleResults() []result.Result {
	return []result.Result{
		result.New(domain.NewRecord("doc1", "essay", []string{"rivers"},
			"an essay about rivers", `\section{Rivers}`, "", ""), 0.9),
	}
}
