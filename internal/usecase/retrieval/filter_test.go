package retrieval

import (
	"testing"

	"github.com/docly-ai/texforge/internal/domain"
	"github.com/docly-ai/texforge/internal/domain/retrieval/query"
)

func filterRecords() []domain.Record {
	return []domain.Record{
		domain.NewRecord("doc1", "assignment", []string{"mathematics", "algebra"}, "p", "l", "", ""),
		domain.NewRecord("doc2", "essay", []string{"rivers"}, "p", "l", "", ""),
		domain.NewRecord("doc3", "math_assignment", []string{"geometry"}, "p", "l", "", ""),
		domain.NewRecord("doc4", "report", []string{"physics"}, "p", "l", "", ""),
	}
}

func mustQuery(t *testing.T, docType string, keywords []string) query.Query {
	t.Helper()
	q, err := query.New("text", docType, keywords, 3)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	return q
}

func TestFilterCandidates_NoFilters(t *testing.T) {
	candidates, applied := filterCandidates(filterRecords(), mustQuery(t, "", nil))
	if applied {
		t.Fatal("expected applied=false without filters")
	}
	if len(candidates) != 4 {
		t.Fatalf("expected full corpus, got %v", candidates)
	}
}

func TestFilterCandidates_DocTypeSubstring(t *testing.T) {
	// "assignment" matches both "assignment" and "math_assignment".
	candidates, applied := filterCandidates(filterRecords(), mustQuery(t, "assignment", nil))
	if !applied {
		t.Fatal("expected applied=true")
	}
	if len(candidates) != 2 || candidates[0] != 0 || candidates[1] != 2 {
		t.Fatalf("unexpected candidates: %v", candidates)
	}
}

func TestFilterCandidates_KeywordSubstring(t *testing.T) {
	// Query keyword must be a substring of a record keyword, not the reverse.
	candidates, applied := filterCandidates(filterRecords(), mustQuery(t, "", []string{"math"}))
	if !applied {
		t.Fatal("expected applied=true")
	}
	if len(candidates) != 1 || candidates[0] != 0 {
		t.Fatalf("unexpected candidates: %v", candidates)
	}
}

func TestFilterCandidates_BothFiltersAnd(t *testing.T) {
	candidates, _ := filterCandidates(filterRecords(), mustQuery(t, "assignment", []string{"geometry"}))
	if len(candidates) != 1 || candidates[0] != 2 {
		t.Fatalf("unexpected candidates: %v", candidates)
	}
}

func TestFilterCandidates_FallbackOnZeroMatches(t *testing.T) {
	candidates, applied := filterCandidates(filterRecords(), mustQuery(t, "exam", nil))
	if applied {
		t.Fatal("expected applied=false after fallback")
	}
	if len(candidates) != 4 {
		t.Fatalf("expected full corpus fallback, got %v", candidates)
	}
}
