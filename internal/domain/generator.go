package domain

import "context"

// Generator is the text generation contract. Implementations block until the
// model round trip completes or ctx is done.
type Generator interface {
	Generate(ctx context.Context, prompt string) (GenerationResult, error)
}

// GenerationResult carries the raw generated text and token usage.
type GenerationResult struct {
	Text             string
	PromptTokens     int
	CompletionTokens int
}
