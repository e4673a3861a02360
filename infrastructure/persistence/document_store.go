package persistence

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ragline/ragline/domain/document"
	"github.com/ragline/ragline/internal/database"
	"gorm.io/gorm"
)

// DocumentStore implements document.Store on top of GORM.
type DocumentStore struct {
	db     database.Database
	logger *slog.Logger
}

// NewDocumentStore creates a DocumentStore.
func NewDocumentStore(db database.Database, logger *slog.Logger) *DocumentStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &DocumentStore{db: db, logger: logger}
}

// FindByHash returns the document with the given content hash.
func (s *DocumentStore) FindByHash(ctx context.Context, contentHash string) (document.Document, error) {
	var model DocumentModel
	err := s.db.Session(ctx).Where("content_hash = ?", contentHash).First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return document.Document{}, document.ErrDocumentNotFound
	}
	if err != nil {
		return document.Document{}, fmt.Errorf("find document by hash: %w", err)
	}
	return toDomainDocument(model), nil
}

// Insert writes a document with all of its chunks and vectors in one
// transaction. When another writer lands the same content hash first, the
// unique index rejects this insert and the winner's document is returned
// with AlreadyExists set.
func (s *DocumentStore) Insert(ctx context.Context, title, contentHash string, chunks []document.EmbeddedChunk) (document.IngestOutcome, error) {
	var docModel DocumentModel

	err := database.WithTransaction(ctx, s.db, func(tx *gorm.DB) error {
		docModel = DocumentModel{
			Title:       title,
			ContentHash: contentHash,
			CreatedAt:   time.Now().UTC(),
		}
		if err := tx.Create(&docModel).Error; err != nil {
			return err
		}

		for _, chunk := range chunks {
			chunkModel := ChunkModel{
				DocumentID: docModel.ID,
				Page:       chunk.Page(),
				Content:    chunk.Content(),
			}
			if err := tx.Create(&chunkModel).Error; err != nil {
				return err
			}

			vec := chunk.Vector()
			embModel := EmbeddingModel{
				ChunkID: chunkModel.ID,
				Vector:  Vector(vec),
				Dim:     len(vec),
			}
			if err := tx.Create(&embModel).Error; err != nil {
				return err
			}
		}
		return nil
	})

	if errors.Is(err, gorm.ErrDuplicatedKey) {
		existing, findErr := s.FindByHash(ctx, contentHash)
		if findErr != nil {
			return document.IngestOutcome{}, fmt.Errorf("find duplicate document: %w", findErr)
		}
		s.logger.Debug("duplicate document insert lost race", "content_hash", contentHash)
		return document.NewIngestOutcome(existing, 0, true), nil
	}
	if err != nil {
		return document.IngestOutcome{}, fmt.Errorf("insert document: %w", err)
	}

	return document.NewIngestOutcome(toDomainDocument(docModel), len(chunks), false), nil
}

// candidateRow is the flat join row scanned by Candidates.
type candidateRow struct {
	ChunkID    int64  `gorm:"column:chunk_id"`
	DocumentID int64  `gorm:"column:document_id"`
	Page       int    `gorm:"column:page"`
	Title      string `gorm:"column:title"`
	Content    string `gorm:"column:content"`
	Vector     Vector `gorm:"column:vector"`
}

// Candidates loads every stored chunk joined with its vector and document
// title, optionally restricted to the given document ids.
func (s *DocumentStore) Candidates(ctx context.Context, documentIDs []int64) ([]document.Candidate, error) {
	query := s.db.Session(ctx).
		Table("chunks").
		Select("chunks.id AS chunk_id, chunks.document_id, chunks.page, documents.title, chunks.content, embeddings.vector").
		Joins("JOIN documents ON documents.id = chunks.document_id").
		Joins("JOIN embeddings ON embeddings.chunk_id = chunks.id").
		Order("chunks.id")

	if len(documentIDs) > 0 {
		query = query.Where("chunks.document_id IN ?", documentIDs)
	}

	var rows []candidateRow
	if err := query.Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("load candidates: %w", err)
	}

	candidates := make([]document.Candidate, 0, len(rows))
	for _, r := range rows {
		candidates = append(candidates, document.NewCandidate(
			r.ChunkID, r.DocumentID, r.Page, r.Title, r.Content, r.Vector,
		))
	}
	return candidates, nil
}

// Dimension returns the dimensionality of stored vectors, or 0 when the
// store holds no embeddings.
func (s *DocumentStore) Dimension(ctx context.Context) (int, error) {
	var model EmbeddingModel
	err := s.db.Session(ctx).Select("dim").Order("chunk_id").First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read embedding dimension: %w", err)
	}
	return model.Dim, nil
}

// List returns all documents ordered by creation time, newest first.
func (s *DocumentStore) List(ctx context.Context) ([]document.Document, error) {
	var models []DocumentModel
	if err := s.db.Session(ctx).Order("created_at DESC, id DESC").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	docs := make([]document.Document, len(models))
	for i, m := range models {
		docs[i] = toDomainDocument(m)
	}
	return docs, nil
}

// Delete removes a document; chunks and embeddings cascade.
func (s *DocumentStore) Delete(ctx context.Context, id int64) error {
	result := s.db.Session(ctx).Delete(&DocumentModel{}, id)
	if result.Error != nil {
		return fmt.Errorf("delete document: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return document.ErrDocumentNotFound
	}
	return nil
}

func toDomainDocument(m DocumentModel) document.Document {
	return document.NewDocument(m.ID, m.Title, m.ContentHash, m.CreatedAt)
}
