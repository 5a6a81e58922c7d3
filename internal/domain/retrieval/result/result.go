package result

import "github.com/docly-ai/texforge/internal/domain"

// Result is a single retrieval hit: a corpus record plus its final blended
// score.
type Result struct {
	record domain.Record
	score  float64
}

// New creates a retrieval result.
func New(record domain.Record, score float64) Result {
	return Result{record: record, score: score}
}

// Record returns the retrieved corpus record.
func (r *Result) Record() domain.Record { return r.record }

// Score returns the final blended relevance score.
func (r *Result) Score() float64 { return r.score }
