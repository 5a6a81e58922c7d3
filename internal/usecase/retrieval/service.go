package retrieval

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/docly-ai/texforge/internal/domain"
	"github.com/docly-ai/texforge/internal/domain/retrieval/query"
	"github.com/docly-ai/texforge/internal/domain/retrieval/result"
	"github.com/docly-ai/texforge/internal/index"
	"github.com/docly-ai/texforge/internal/logger"
)

// Scoring weights: semantic similarity stays dominant, metadata hits break
// close ties.
const (
	similarityWeight = 0.8
	bonusWeight      = 0.2
	docTypeBonus     = 0.5
	keywordPairBonus = 0.1
)

// Service retrieves the most relevant authored documents for a query by
// blending embedding similarity with a fuzzy metadata bonus.
type Service struct {
	corpus CorpusReader
	embed  Embedder
}

// New creates a retrieval service.
func New(corpus CorpusReader, embed Embedder) *Service {
	return &Service{corpus: corpus, embed: embed}
}

// Retrieve runs the hybrid pipeline: fuzzy filter, ephemeral nearest-neighbor
// search over the candidates, weighted rerank. Results are sorted by final
// score descending; exact ties keep corpus order.
func (s *Service) Retrieve(ctx context.Context, q query.Query) ([]result.Result, error) {
	records := s.corpus.Records()
	if len(records) == 0 {
		return nil, nil
	}

	candidates, applied := filterCandidates(records, q)

	k := q.TopK()
	if k > len(candidates) {
		k = len(candidates)
	}

	embRes, err := s.embed.Embed(ctx, q.Text())
	if err != nil {
		return nil, fmt.Errorf("vectorize query: %w", err)
	}

	vectors := make([][]float32, len(candidates))
	for i, ci := range candidates {
		vec, ok := s.corpus.Vector(records[ci].ID)
		if !ok {
			return nil, fmt.Errorf("%w: no vector for record %q", domain.ErrCorpusDesync, records[ci].ID)
		}
		vectors[i] = vec
	}

	// The index lives only for this query; the persistent store stays
	// read-only.
	flat, err := index.NewFlat(vectors)
	if err != nil {
		return nil, fmt.Errorf("build candidate index: %w", err)
	}
	hits, err := flat.Search(embRes.Embedding, k)
	if err != nil {
		return nil, fmt.Errorf("search candidates: %w", err)
	}

	type scored struct {
		corpusIdx int
		score     float64
	}
	ranked := make([]scored, len(hits))
	for i, h := range hits {
		corpusIdx := candidates[h.Pos]
		similarity := 1.0 / (1.0 + h.Distance)
		bonus := metadataBonus(records[corpusIdx], q, applied)
		ranked[i] = scored{
			corpusIdx: corpusIdx,
			score:     similarityWeight*similarity + bonusWeight*bonus,
		}
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].score != ranked[j].score {
			return ranked[i].score > ranked[j].score
		}
		return ranked[i].corpusIdx < ranked[j].corpusIdx
	})

	results := make([]result.Result, len(ranked))
	ids := make([]string, len(ranked))
	for i, r := range ranked {
		results[i] = result.New(records[r.corpusIdx], r.score)
		ids[i] = records[r.corpusIdx].ID
	}

	logger.FromContext(ctx).Debug("Retrieval completed",
		zap.Int("candidates", len(candidates)),
		zap.Bool("filter_applied", applied),
		zap.Strings("ids", ids),
	)

	return results, nil
}

// metadataBonus computes the fuzzy metadata bonus for one candidate. When the
// fallback discarded the filter, no filter was actually applied and the bonus
// degrades to zero even for records that structurally match.
func metadataBonus(rec domain.Record, q query.Query, applied bool) float64 {
	if !applied {
		return 0
	}

	var bonus float64
	if q.DocType() != "" && strings.Contains(rec.DocType, q.DocType()) {
		bonus += docTypeBonus
	}
	// Keyword pairs count with multiplicity: one query keyword matching two
	// record keywords counts twice, and vice versa.
	for _, qk := range q.Keywords() {
		for _, rk := range rec.Keywords {
			if strings.Contains(rk, qk) {
				bonus += keywordPairBonus
			}
		}
	}
	return bonus
}
