package retrieval

import (
	"strings"

	"github.com/docly-ai/texforge/internal/domain"
	"github.com/docly-ai/texforge/internal/domain/retrieval/query"
)

// filterCandidates narrows the corpus by fuzzy metadata matching and returns
// candidate indices in corpus order. The filter is advisory: when it would
// leave zero candidates, it is discarded entirely and the full corpus is used
// with applied=false, so retrieval never comes back empty on a non-empty
// corpus.
func filterCandidates(records []domain.Record, q query.Query) (candidates []int, applied bool) {
	if !q.HasFilters() {
		return allIndices(records), false
	}

	for i, rec := range records {
		if q.DocType() != "" && !strings.Contains(rec.DocType, q.DocType()) {
			continue
		}
		if len(q.Keywords()) > 0 && !anyKeywordMatch(q.Keywords(), rec.Keywords) {
			continue
		}
		candidates = append(candidates, i)
	}

	if len(candidates) == 0 {
		return allIndices(records), false
	}
	return candidates, true
}

// anyKeywordMatch reports whether any query keyword is a substring of any
// record keyword. Matching is directional: query-in-record.
func anyKeywordMatch(queryKeywords, recordKeywords []string) bool {
	for _, qk := range queryKeywords {
		for _, rk := range recordKeywords {
			if strings.Contains(rk, qk) {
				return true
			}
		}
	}
	return false
}

func allIndices(records []domain.Record) []int {
	indices := make([]int, len(records))
	for i := range records {
		indices[i] = i
	}
	return indices
}
