// Package chunking provides fixed-size sliding-window text chunking for
// retrieval indexing.
package chunking

import (
	"fmt"
	"strings"
)

// ChunkParams configures the chunking algorithm.
type ChunkParams struct {
	Size    int
	Overlap int
}

// DefaultChunkParams returns the defaults used for document indexing.
func DefaultChunkParams() ChunkParams {
	return ChunkParams{
		Size:    800,
		Overlap: 150,
	}
}

// Chunk represents a single text window with its character offset in the
// original content.
type Chunk struct {
	content string
	offset  int
}

// Content returns the chunk text, trimmed of surrounding whitespace.
func (c Chunk) Content() string { return c.content }

// Offset returns the character offset of this window in the original content.
func (c Chunk) Offset() int { return c.offset }

// TextChunks holds the result of splitting content into overlapping windows.
type TextChunks struct {
	chunks []Chunk
}

// NewTextChunks splits content into windows of Size characters advancing by
// Size-Overlap each step. Size and Overlap are measured in runes (Unicode
// code points), as is the returned Chunk.Offset. Each window is trimmed of
// surrounding whitespace and dropped if nothing remains; a short trailing
// window is kept so no text at the end of the content is lost.
func NewTextChunks(content string, params ChunkParams) (TextChunks, error) {
	if params.Size <= 0 {
		return TextChunks{}, fmt.Errorf("size (%d) must be positive", params.Size)
	}
	if params.Overlap < 0 || params.Overlap >= params.Size {
		return TextChunks{}, fmt.Errorf("overlap (%d) must be non-negative and less than size (%d)", params.Overlap, params.Size)
	}

	runes := []rune(content)
	if len(runes) == 0 {
		return TextChunks{}, nil
	}

	step := params.Size - params.Overlap
	var chunks []Chunk
	for start := 0; start < len(runes); start += step {
		end := min(start+params.Size, len(runes))
		window := strings.TrimSpace(string(runes[start:end]))
		if window != "" {
			chunks = append(chunks, Chunk{content: window, offset: start})
		}
		// Once a window reaches the end of the content the remainder is
		// already covered; further windows would only repeat its tail.
		if start+params.Size >= len(runes) {
			break
		}
	}

	return TextChunks{chunks: chunks}, nil
}

// All returns all chunks.
func (t TextChunks) All() []Chunk { return t.chunks }
