// Package provider implements embedding generation backends.
package provider

import (
	"context"
	"errors"
	"fmt"
)

// ErrUnsupportedOperation indicates the provider does not support the operation.
var ErrUnsupportedOperation = errors.New("operation not supported by this provider")

// EmbeddingRequest holds the texts to embed.
type EmbeddingRequest struct {
	texts []string
}

// NewEmbeddingRequest creates an EmbeddingRequest.
func NewEmbeddingRequest(texts []string) EmbeddingRequest {
	t := make([]string, len(texts))
	copy(t, texts)
	return EmbeddingRequest{texts: t}
}

// Texts returns the texts to embed.
func (r EmbeddingRequest) Texts() []string { return r.texts }

// EmbeddingResponse holds generated embedding vectors in request order.
type EmbeddingResponse struct {
	embeddings [][]float32
	usage      Usage
}

// NewEmbeddingResponse creates an EmbeddingResponse.
func NewEmbeddingResponse(embeddings [][]float32, usage Usage) EmbeddingResponse {
	return EmbeddingResponse{embeddings: embeddings, usage: usage}
}

// Embeddings returns the embedding vectors.
func (r EmbeddingResponse) Embeddings() [][]float32 { return r.embeddings }

// Usage returns token usage for the call.
func (r EmbeddingResponse) Usage() Usage { return r.usage }

// Usage holds token accounting for a provider call.
type Usage struct {
	promptTokens int
	totalTokens  int
}

// NewUsage creates a Usage.
func NewUsage(promptTokens, totalTokens int) Usage {
	return Usage{promptTokens: promptTokens, totalTokens: totalTokens}
}

// PromptTokens returns the prompt token count.
func (u Usage) PromptTokens() int { return u.promptTokens }

// TotalTokens returns the total token count.
func (u Usage) TotalTokens() int { return u.totalTokens }

// Embedder generates embeddings for batches of texts.
type Embedder interface {
	// Embed generates embeddings for the given texts. The number of texts
	// must not exceed Capacity().
	Embed(ctx context.Context, req EmbeddingRequest) (EmbeddingResponse, error)

	// Capacity returns the maximum number of texts per Embed call.
	Capacity() int

	// Close releases provider resources.
	Close() error
}

// ProviderError wraps a provider failure with operation context.
type ProviderError struct {
	operation  string
	statusCode int
	message    string
	err        error
}

// NewProviderError creates a ProviderError.
func NewProviderError(operation string, statusCode int, message string, err error) *ProviderError {
	return &ProviderError{
		operation:  operation,
		statusCode: statusCode,
		message:    message,
		err:        err,
	}
}

// Operation returns the operation that failed.
func (e *ProviderError) Operation() string { return e.operation }

// StatusCode returns the HTTP status code, or 0 if not applicable.
func (e *ProviderError) StatusCode() int { return e.statusCode }

// Error implements error.
func (e *ProviderError) Error() string {
	if e.statusCode > 0 {
		return fmt.Sprintf("provider %s failed (status %d): %s", e.operation, e.statusCode, e.message)
	}
	return fmt.Sprintf("provider %s failed: %s", e.operation, e.message)
}

// Unwrap returns the underlying error.
func (e *ProviderError) Unwrap() error { return e.err }
