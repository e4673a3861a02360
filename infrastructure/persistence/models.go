package persistence

import "time"

// DocumentModel is the GORM model for ingested documents.
type DocumentModel struct {
	ID          int64     `gorm:"column:id;primaryKey;autoIncrement"`
	Title       string    `gorm:"column:title;not null"`
	ContentHash string    `gorm:"column:content_hash;uniqueIndex;not null"`
	CreatedAt   time.Time `gorm:"column:created_at"`
}

// TableName returns the database table name.
func (DocumentModel) TableName() string { return "documents" }

// ChunkModel is the GORM model for document text chunks.
type ChunkModel struct {
	ID         int64         `gorm:"column:id;primaryKey;autoIncrement"`
	DocumentID int64         `gorm:"column:document_id;index;not null"`
	Page       int           `gorm:"column:page;not null"`
	Content    string        `gorm:"column:content;not null"`
	Document   DocumentModel `gorm:"foreignKey:DocumentID;constraint:OnDelete:CASCADE"`
}

// TableName returns the database table name.
func (ChunkModel) TableName() string { return "chunks" }

// EmbeddingModel is the GORM model for chunk embedding vectors, keyed by the
// chunk they belong to (one vector per chunk). Vectors are stored as
// little-endian float32 BLOBs; Dim is denormalized so dimension checks never
// decode a vector.
type EmbeddingModel struct {
	ChunkID int64      `gorm:"column:chunk_id;primaryKey;autoIncrement:false"`
	Vector  Vector     `gorm:"column:vector;type:blob;not null"`
	Dim     int        `gorm:"column:dim;not null"`
	Chunk   ChunkModel `gorm:"foreignKey:ChunkID;constraint:OnDelete:CASCADE"`
}

// TableName returns the database table name.
func (EmbeddingModel) TableName() string { return "embeddings" }
