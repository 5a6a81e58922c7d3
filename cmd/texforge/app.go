package main

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/docly-ai/texforge/internal/config"
	"github.com/docly-ai/texforge/internal/db"
	dbRedis "github.com/docly-ai/texforge/internal/db/redis"
	"github.com/docly-ai/texforge/internal/domain"
	logpkg "github.com/docly-ai/texforge/internal/logger"
	ltemplate "github.com/docly-ai/texforge/internal/latex/template"
	"github.com/docly-ai/texforge/internal/metrics"
	"github.com/docly-ai/texforge/internal/repository/corpus"
	"github.com/docly-ai/texforge/internal/repository/embcache"
	openaiTransport "github.com/docly-ai/texforge/internal/transport/openai"
	generateuc "github.com/docly-ai/texforge/internal/usecase/generate"
	retrievaluc "github.com/docly-ai/texforge/internal/usecase/retrieval"
)

const cacheReadinessTimeout = 10 * time.Second

// app holds the shared wiring behind every CLI command.
type app struct {
	cfg    config.Config
	logger *zap.Logger
	store  db.Store // nil when the embedding cache is not configured
}

// newApp loads configuration, creates the logger, registers metrics and
// connects the optional embedding cache.
func newApp(ctx context.Context) (*app, error) {
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}

	metrics.Register()

	a := &app{cfg: cfg, logger: logger}

	if len(cfg.Cache.Addrs) > 0 {
		store, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Cache.Addrs,
			Password: cfg.Cache.Password,
		})
		if err != nil {
			return nil, fmt.Errorf("create cache store: %w", err)
		}
		if err := store.WaitForReady(ctx, cacheReadinessTimeout); err != nil {
			store.Close()
			return nil, fmt.Errorf("cache not ready: %w", err)
		}
		a.store = store
		logger.Info("Connected to embedding cache", zap.Strings("addrs", cfg.Cache.Addrs))
	}

	return a, nil
}

func (a *app) close() {
	if a.store != nil {
		a.store.Close()
	}
	_ = a.logger.Sync()
}

// embedder assembles the decorator chain: OpenAI -> Cached -> Instruction.
func (a *app) embedder() domain.Embedder {
	base := openaiTransport.NewEmbedder(&openaiTransport.EmbedderConfig{
		APIKey:     a.cfg.Embedding.APIKey,
		BaseURL:    a.cfg.Embedding.BaseURL,
		Model:      a.cfg.Embedding.Model,
		Dimensions: a.cfg.Embedding.Dimensions,
		Logger:     a.logger,
	})

	var embedder domain.Embedder = base
	if a.store != nil {
		embedder = embcache.New(base, a.store, a.cfg.Cache.KeyPrefix, metrics.EmbeddingCacheTotal, a.logger)
	}

	if instr := a.cfg.Embedding.Instruction; instr != "" {
		return domain.NewInstructionEmbedder(embedder, instr)
	}
	return embedder
}

func (a *app) generator() *openaiTransport.Generator {
	return openaiTransport.NewGenerator(&openaiTransport.GeneratorConfig{
		APIKey:      a.cfg.LLM.APIKey,
		BaseURL:     a.cfg.LLM.BaseURL,
		Model:       a.cfg.LLM.Model,
		MaxTokens:   a.cfg.LLM.MaxTokens,
		Temperature: a.cfg.LLM.Temperature,
		TimeoutSec:  a.cfg.LLM.TimeoutSec,
		MaxRetries:  a.cfg.LLM.MaxRetries,
		Logger:      a.logger,
	})
}

// loadCorpus reads the persisted index from disk.
func (a *app) loadCorpus() (*corpus.Store, error) {
	store, err := corpus.Load(a.cfg.Index.VectorsPath, a.cfg.Index.MetaPath)
	if err != nil {
		return nil, fmt.Errorf("load corpus index: %w", err)
	}
	a.logger.Info("Corpus index loaded",
		zap.Int("records", store.Len()),
		zap.Int("dimensions", store.Dim()),
	)
	return store, nil
}

// templates merges config-supplied templates over the built-in registry.
func (a *app) templates() *ltemplate.Registry {
	extra := make(map[string]ltemplate.Template, len(a.cfg.Templates))
	for name, tc := range a.cfg.Templates {
		extra[name] = ltemplate.New(name, tc.Preamble, tc.Postamble)
	}
	return ltemplate.NewRegistry(extra)
}

// generateService wires the full generation pipeline.
func (a *app) generateService() (*generateuc.Service, *retrievaluc.Service, error) {
	store, err := a.loadCorpus()
	if err != nil {
		return nil, nil, err
	}

	retrieval := retrievaluc.New(store, a.embedder())
	generate := generateuc.New(retrieval, a.generator(), a.templates(), a.cfg.Placeholders)
	return generate, retrieval, nil
}
