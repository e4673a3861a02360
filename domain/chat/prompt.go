// Package chat builds the message structures fed to the inference runtime.
package chat

import (
	"fmt"
	"strings"

	"github.com/ragline/ragline/domain/document"
)

// Message roles.
const (
	RoleSystem = "system"
	RoleUser   = "user"
)

// Prompt construction limits.
const (
	// MaxContextChunks is the number of retrieved chunks included in a
	// grounded prompt.
	MaxContextChunks = 6

	// MaxExcerptChars is the length each chunk excerpt is truncated to.
	MaxExcerptChars = 700
)

// FallbackAnswer is returned when the runtime produces no usable text.
// Callers never receive an empty success response.
const FallbackAnswer = "I could not generate an answer from the selected model."

const plainSystemPrompt = "You are a helpful, smart, and friendly AI assistant."

const groundedSystemPrompt = "You are a helpful local assistant.\n" +
	"Answer ONLY from the provided context.\n" +
	"If the context is insufficient, say it clearly.\n" +
	"When you use information, cite source markers like [S1], [S2]."

// Message is one entry of a chat exchange.
type Message struct {
	role    string
	content string
}

// NewMessage creates a Message.
func NewMessage(role, content string) Message {
	return Message{role: role, content: content}
}

// Role returns the message role.
func (m Message) Role() string { return m.role }

// Content returns the message content.
func (m Message) Content() string { return m.content }

// BuildMessages constructs the exchange for a question. Without retrieved
// chunks it is a plain assistant exchange; with chunks it is a grounded
// exchange carrying at most MaxContextChunks numbered source excerpts.
func BuildMessages(question string, ranked []document.ScoredChunk) []Message {
	if len(ranked) == 0 {
		return []Message{
			NewMessage(RoleSystem, plainSystemPrompt),
			NewMessage(RoleUser, question),
		}
	}

	limited := ranked
	if len(limited) > MaxContextChunks {
		limited = limited[:MaxContextChunks]
	}

	lines := make([]string, 0, len(limited))
	for i, chunk := range limited {
		lines = append(lines, fmt.Sprintf("[S%d] %s", i+1, Excerpt(chunk.Content(), MaxExcerptChars)))
	}

	userPrompt := fmt.Sprintf("Context:\n%s\n\nQuestion:\n%s", strings.Join(lines, "\n\n"), question)

	return []Message{
		NewMessage(RoleSystem, groundedSystemPrompt),
		NewMessage(RoleUser, userPrompt),
	}
}

// Excerpt collapses all whitespace runs in s to single spaces and truncates
// the result to limit characters, appending an ellipsis when truncated. The
// limit counts characters, not bytes, so multi-byte text is never cut
// mid-rune.
func Excerpt(s string, limit int) string {
	normalized := strings.Join(strings.Fields(s), " ")
	if limit <= 0 {
		return normalized
	}
	runes := []rune(normalized)
	if len(runes) <= limit {
		return normalized
	}
	return string(runes[:limit]) + "..."
}

// GenerationError wraps a runtime inference failure with the model file that
// produced it. Inference failures are deterministic for a given input and
// model, so they are never retried.
type GenerationError struct {
	modelFile string
	err       error
}

// NewGenerationError creates a GenerationError.
func NewGenerationError(modelFile string, err error) *GenerationError {
	return &GenerationError{modelFile: modelFile, err: err}
}

// ModelFile returns the name of the model file that failed.
func (e *GenerationError) ModelFile() string { return e.modelFile }

// Error implements error.
func (e *GenerationError) Error() string {
	return fmt.Sprintf("inference failed with %q: %v", e.modelFile, e.err)
}

// Unwrap returns the underlying runtime error.
func (e *GenerationError) Unwrap() error { return e.err }
