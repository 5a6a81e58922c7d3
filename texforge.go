// Package texforge is the embedded SDK: it loads a built corpus index and
// runs retrieval and generation in-process, without the HTTP server.
//
//	client, _ := texforge.New("data/index.vec", "data/meta.json",
//	    texforge.WithEmbedder(emb),
//	    texforge.WithGenerator(gen),
//	)
//	defer client.Close()
//	out, _ := client.Generate(ctx, texforge.GenerateRequest{
//	    Request:  "a two page lab report on pendulum motion",
//	    Template: "article_minimal",
//	})
package texforge

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/docly-ai/texforge/internal/db"
	dbRedis "github.com/docly-ai/texforge/internal/db/redis"
	"github.com/docly-ai/texforge/internal/domain"
	"github.com/docly-ai/texforge/internal/domain/retrieval/query"
	ltemplate "github.com/docly-ai/texforge/internal/latex/template"
	"github.com/docly-ai/texforge/internal/metrics"
	"github.com/docly-ai/texforge/internal/repository/corpus"
	"github.com/docly-ai/texforge/internal/repository/embcache"
	generateuc "github.com/docly-ai/texforge/internal/usecase/generate"
	retrievaluc "github.com/docly-ai/texforge/internal/usecase/retrieval"
)

const defaultReadinessTimeout = 10 * time.Second

// Embedder turns text into a vector. Implementations wrap whatever provider
// the caller uses; the built index and the query embedder must agree on the
// model.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Generator produces raw model output for a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Client is the texforge SDK entry point.
type Client struct {
	store     db.Store // nil without a cache
	retrieval *retrievaluc.Service
	generate  *generateuc.Service
}

// New loads the persisted index and wires the pipeline.
func New(vectorsPath, metaPath string, opts ...Option) (*Client, error) {
	cfg := &clientConfig{}
	for _, o := range opts {
		o.apply(cfg)
	}

	if cfg.embedder == nil {
		return nil, errors.New("texforge: embedder required (use WithEmbedder)")
	}

	corp, err := corpus.Load(vectorsPath, metaPath)
	if err != nil {
		return nil, fmt.Errorf("texforge: load index: %w", err)
	}

	var store db.Store
	if len(cfg.cacheAddrs) > 0 {
		s, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.cacheAddrs,
			Password: cfg.cachePassword,
		})
		if err != nil {
			return nil, fmt.Errorf("texforge: create cache store: %w", err)
		}
		if err := s.WaitForReady(context.Background(), defaultReadinessTimeout); err != nil {
			s.Close()
			return nil, fmt.Errorf("texforge: cache not ready: %w", err)
		}
		store = s
	}

	var emb domain.Embedder = &embedderAdapter{inner: cfg.embedder}
	if store != nil {
		emb = embcache.New(emb, store, cfg.cacheKeyPrefix, metrics.EmbeddingCacheTotal, zap.NewNop())
	}

	extra := make(map[string]ltemplate.Template, len(cfg.templates))
	for name, t := range cfg.templates {
		extra[name] = ltemplate.New(name, t.Preamble, t.Postamble)
	}

	retrieval := retrievaluc.New(corp, emb)

	// The generate service exists only when a generator was configured;
	// a Search-only client leaves it nil.
	var generate *generateuc.Service
	if cfg.generator != nil {
		gen := &generatorAdapter{inner: cfg.generator}
		generate = generateuc.New(retrieval, gen, ltemplate.NewRegistry(extra), cfg.placeholders)
	}

	return &Client{
		store:     store,
		retrieval: retrieval,
		generate:  generate,
	}, nil
}

// Close releases cache connections.
func (c *Client) Close() {
	if c.store != nil {
		c.store.Close()
	}
}

// GenerateRequest describes one document to produce.
type GenerateRequest struct {
	Request  string   // free-form description of the document
	DocType  string   // optional retrieval filter
	Keywords []string // optional retrieval filter
	TopK     int      // examples to retrieve; 0 uses the default
	Template string   // template name; "" generates without one
	Strict   bool     // fail unless the output is a single complete document
}

// GenerateResult is the finished document.
type GenerateResult struct {
	ID         string
	Latex      string
	ExampleIDs []string
}

// Generate runs the full pipeline: retrieve, prompt, sanitize, enforce.
func (c *Client) Generate(ctx context.Context, req GenerateRequest) (GenerateResult, error) {
	if c.generate == nil {
		return GenerateResult{}, errors.New("texforge: generator required (use WithGenerator)")
	}
	out, err := c.generate.Generate(ctx, generateuc.Request{
		UserRequest: req.Request,
		DocType:     req.DocType,
		Keywords:    req.Keywords,
		TopK:        req.TopK,
		Template:    req.Template,
		Strict:      req.Strict,
	})
	if err != nil {
		return GenerateResult{}, err
	}
	return GenerateResult{ID: out.ID, Latex: out.Tex, ExampleIDs: out.ExampleIDs}, nil
}

// SearchHit is one retrieved corpus example.
type SearchHit struct {
	ID      string
	DocType string
	Prompt  string
	Latex   string
	Score   float64
}

// Search retrieves the examples the generator would use for a request.
func (c *Client) Search(ctx context.Context, text, docType string, keywords []string, topK int) ([]SearchHit, error) {
	q, err := query.New(text, docType, keywords, topK)
	if err != nil {
		return nil, err
	}
	results, err := c.retrieval.Retrieve(ctx, q)
	if err != nil {
		return nil, err
	}
	hits := make([]SearchHit, 0, len(results))
	for _, res := range results {
		rec := res.Record()
		hits = append(hits, SearchHit{
			ID:      rec.ID,
			DocType: rec.DocType,
			Prompt:  rec.UserPrompt,
			Latex:   rec.LatexOutput,
			Score:   res.Score(),
		})
	}
	return hits, nil
}

// embedderAdapter adapts the public Embedder to the domain interface.
type embedderAdapter struct {
	inner Embedder
}

func (a *embedderAdapter) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	vec, err := a.inner.Embed(ctx, text)
	if err != nil {
		return domain.EmbeddingResult{}, err
	}
	return domain.EmbeddingResult{Embedding: vec}, nil
}

// generatorAdapter adapts the public Generator to the domain interface.
type generatorAdapter struct {
	inner Generator
}

func (a *generatorAdapter) Generate(ctx context.Context, prompt string) (domain.GenerationResult, error) {
	text, err := a.inner.Generate(ctx, prompt)
	if err != nil {
		return domain.GenerationResult{}, err
	}
	return domain.GenerationResult{Text: text}, nil
}
