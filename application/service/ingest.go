// Package service provides application layer services that orchestrate
// domain operations.
package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ragline/ragline/domain/document"
	"github.com/ragline/ragline/infrastructure/chunking"
)

// IngestService turns raw document bytes into deduplicated, embedded chunks.
type IngestService struct {
	store    document.Store
	parser   document.Parser
	embedder document.Embedder
	params   chunking.ChunkParams
	logger   *slog.Logger
}

// NewIngestService creates an IngestService.
func NewIngestService(
	store document.Store,
	parser document.Parser,
	embedder document.Embedder,
	params chunking.ChunkParams,
	logger *slog.Logger,
) *IngestService {
	if logger == nil {
		logger = slog.Default()
	}
	return &IngestService{
		store:    store,
		parser:   parser,
		embedder: embedder,
		params:   params,
		logger:   logger,
	}
}

// Ingest parses, chunks, embeds, and persists one document. The content hash
// is checked before any parsing so re-ingesting a known file costs one
// database lookup. Pages without extractable text are skipped; a document
// with no text at all fails with document.ErrEmptyDocument.
func (s *IngestService) Ingest(ctx context.Context, title string, data []byte) (document.IngestOutcome, error) {
	return s.IngestWithHash(ctx, title, data, "")
}

// IngestWithHash is Ingest with a caller-supplied content hash, for callers
// that already hashed the bytes. The hash is trimmed and lowercased; an empty
// hash is computed from the data.
func (s *IngestService) IngestWithHash(ctx context.Context, title string, data []byte, contentHash string) (document.IngestOutcome, error) {
	contentHash = strings.ToLower(strings.TrimSpace(contentHash))
	if contentHash == "" {
		sum := sha256.Sum256(data)
		contentHash = hex.EncodeToString(sum[:])
	}

	existing, err := s.store.FindByHash(ctx, contentHash)
	if err == nil {
		s.logger.Info("document already ingested", "title", title, "content_hash", contentHash)
		return document.NewIngestOutcome(existing, 0, true), nil
	}
	if !errors.Is(err, document.ErrDocumentNotFound) {
		return document.IngestOutcome{}, err
	}

	pages, err := s.parser.Parse(ctx, data)
	if err != nil {
		return document.IngestOutcome{}, fmt.Errorf("parse document: %w", err)
	}

	storedDim, err := s.store.Dimension(ctx)
	if err != nil {
		return document.IngestOutcome{}, err
	}

	var chunks []document.EmbeddedChunk
	for _, page := range pages {
		if page.Text() == "" {
			continue
		}

		textChunks, err := chunking.NewTextChunks(page.Text(), s.params)
		if err != nil {
			return document.IngestOutcome{}, fmt.Errorf("chunk page %d: %w", page.Page(), err)
		}

		for _, chunk := range textChunks.All() {
			vector, err := s.embedder.Embed(ctx, chunk.Content())
			if err != nil {
				return document.IngestOutcome{}, fmt.Errorf("embed chunk (page %d): %w", page.Page(), err)
			}
			if storedDim == 0 {
				storedDim = len(vector)
			} else if len(vector) != storedDim {
				return document.IngestOutcome{}, fmt.Errorf(
					"%w: got %d, store holds %d-dimensional vectors",
					document.ErrDimensionMismatch, len(vector), storedDim,
				)
			}
			chunks = append(chunks, document.NewEmbeddedChunk(page.Page(), chunk.Content(), vector))
		}
	}

	if len(chunks) == 0 {
		return document.IngestOutcome{}, document.ErrEmptyDocument
	}

	outcome, err := s.store.Insert(ctx, title, contentHash, chunks)
	if err != nil {
		return document.IngestOutcome{}, err
	}

	s.logger.Info("document ingested",
		"title", title,
		"document_id", outcome.Document().ID(),
		"chunks", outcome.ChunksInserted(),
		"already_exists", outcome.AlreadyExists(),
	)
	return outcome, nil
}
