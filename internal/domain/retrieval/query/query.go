package query

import (
	"fmt"
	"strings"
)

// Retrieval parameter limits.
const (
	// MaxTextLength is the maximum allowed query text length.
	MaxTextLength = 4096
	DefaultTopK   = 3
	MaxTopK       = 50
)

// Query is a validated retrieval request: free text plus optional fuzzy
// metadata constraints.
type Query struct {
	text     string
	docType  string
	keywords []string
	topK     int
}

// New validates and normalizes retrieval parameters. The doc type filter and
// keywords are lower-cased and trimmed; empty keywords are dropped.
// Defaults: topK=3.
func New(text, docType string, keywords []string, topK int) (Query, error) {
	if text == "" {
		return Query{}, fmt.Errorf("query text is required")
	}
	if len(text) > MaxTextLength {
		return Query{}, fmt.Errorf("query text too long (max %d chars)", MaxTextLength)
	}
	if topK <= 0 {
		topK = DefaultTopK
	}
	if topK > MaxTopK {
		topK = MaxTopK
	}

	normalized := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw != "" {
			normalized = append(normalized, kw)
		}
	}

	return Query{
		text:     text,
		docType:  strings.ToLower(strings.TrimSpace(docType)),
		keywords: normalized,
		topK:     topK,
	}, nil
}

// Text returns the free-text query.
func (q Query) Text() string { return q.text }

// DocType returns the normalized document type filter ("" when absent).
func (q Query) DocType() string { return q.docType }

// Keywords returns the normalized keyword filters.
func (q Query) Keywords() []string { return q.keywords }

// TopK returns the requested result count.
func (q Query) TopK() int { return q.topK }

// HasFilters reports whether any metadata constraint was supplied.
func (q Query) HasFilters() bool {
	return q.docType != "" || len(q.keywords) > 0
}
