package embcache

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/docly-ai/texforge/internal/db"
	"github.com/docly-ai/texforge/internal/domain"
)

func TestEmbed_CacheMiss(t *testing.T) {
	inner := &mockEmbedder{result: domain.EmbeddingResult{
		Embedding:    []float32{0.1, 0.2, 0.3},
		PromptTokens: 10,
		TotalTokens:  10,
	}}
	ce, ms := newTestCachedEmbedder(t, inner)
	ctx := context.Background()

	ms.getFn = func(_ context.Context, _ string) ([]byte, error) {
		return nil, db.ErrKeyNotFound
	}

	var setCalled bool
	ms.setFn = func(_ context.Context, _ string, _ []byte) error {
		setCalled = true
		return nil
	}

	result, err := ce.Embed(ctx, "test text")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Embedding) != 3 || result.Embedding[0] != 0.1 {
		t.Fatalf("unexpected vector: %v", result.Embedding)
	}
	if result.TotalTokens != 10 {
		t.Fatalf("expected TotalTokens=10, got %d", result.TotalTokens)
	}
	if !setCalled {
		t.Fatal("expected SET to be called for cache put")
	}
}

func TestEmbed_CacheHit(t *testing.T) {
	inner := &mockEmbedder{result: domain.EmbeddingResult{
		Embedding: []float32{0.1, 0.2, 0.3},
	}}
	ce, ms := newTestCachedEmbedder(t, inner)
	ctx := context.Background()

	cached := vectorToCacheBytes([]float32{0.4, 0.5, 0.6})
	ms.getFn = func(_ context.Context, _ string) ([]byte, error) {
		return cached, nil
	}

	result, err := ce.Embed(ctx, "test text")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Embedding) != 3 || result.Embedding[0] != 0.4 {
		t.Fatalf("expected cached vector, got: %v", result.Embedding)
	}
	if result.TotalTokens != 0 {
		t.Fatalf("expected TotalTokens=0 on cache hit, got %d", result.TotalTokens)
	}
	if inner.calls != 0 {
		t.Fatalf("expected 0 inner calls on cache hit, got %d", inner.calls)
	}
}

func TestEmbed_InnerError(t *testing.T) {
	inner := &mockEmbedder{err: errors.New("provider down")}
	ce, ms := newTestCachedEmbedder(t, inner)

	ms.getFn = func(_ context.Context, _ string) ([]byte, error) {
		return nil, db.ErrKeyNotFound
	}

	if _, err := ce.Embed(context.Background(), "test text"); err == nil {
		t.Fatal("expected error from inner embedder")
	}
}

func TestEmbed_CorruptCacheEntryFallsThrough(t *testing.T) {
	inner := &mockEmbedder{result: domain.EmbeddingResult{Embedding: []float32{0.7}}}
	ce, ms := newTestCachedEmbedder(t, inner)

	// 3 bytes: not a multiple of 4, unparseable.
	ms.getFn = func(_ context.Context, _ string) ([]byte, error) {
		return []byte{1, 2, 3}, nil
	}

	result, err := ce.Embed(context.Background(), "test text")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Embedding) != 1 || result.Embedding[0] != 0.7 {
		t.Fatalf("expected inner result after corrupt cache entry, got %v", result.Embedding)
	}
	if inner.calls != 1 {
		t.Fatalf("expected inner call, got %d", inner.calls)
	}
}

func TestEmbed_SetFailureIsNonFatal(t *testing.T) {
	inner := &mockEmbedder{result: domain.EmbeddingResult{Embedding: []float32{0.7}}}
	ce, ms := newTestCachedEmbedder(t, inner)

	ms.setFn = func(_ context.Context, _ string, _ []byte) error {
		return errors.New("store down")
	}

	if _, err := ce.Embed(context.Background(), "test text"); err != nil {
		t.Fatalf("cache put failure must not fail the embed: %v", err)
	}
}

func TestCacheKey_IncludesPrefix(t *testing.T) {
	ce, _ := newTestCachedEmbedder(t, &mockEmbedder{})

	key := ce.cacheKey("text")
	if !strings.HasPrefix(key, "texforge:emb_cache:") {
		t.Fatalf("unexpected key layout: %s", key)
	}
	if key == ce.cacheKey("other text") {
		t.Fatal("different texts must hash to different keys")
	}
}

func TestVectorCacheBytes_Roundtrip(t *testing.T) {
	in := []float32{0.25, -1.5, 3}
	out, err := bytesToVector(vectorToCacheBytes(in))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 3 || out[0] != 0.25 || out[1] != -1.5 || out[2] != 3 {
		t.Fatalf("roundtrip mismatch: %v", out)
	}
}
