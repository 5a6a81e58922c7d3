package domain

import "errors"

var (
	// ErrIndexNotFound signals a missing persisted index or metadata file.
	ErrIndexNotFound = errors.New("index not found")
	// ErrCorpusDesync signals a metadata entry whose vector cannot be resolved.
	ErrCorpusDesync = errors.New("corpus metadata and vector store out of sync")
	// ErrTemplateNotFound signals an unknown template name.
	ErrTemplateNotFound = errors.New("template not found")
	// ErrEmptyRequest signals a generate call with neither free text nor a DSF.
	ErrEmptyRequest = errors.New("empty request")
	// ErrStrictValidation signals a strict-mode structural contract violation.
	ErrStrictValidation = errors.New("strict validation failed")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrGenerationFailed signals a text generation provider failure.
	ErrGenerationFailed = errors.New("generation failed")
)
