// Package document defines the core entities of the retrieval pipeline:
// documents, their chunks, and chunk embeddings.
package document

import "time"

// Document represents an ingested source file. Documents are immutable after
// creation; the content hash uniquely identifies the ingested byte stream.
type Document struct {
	id          int64
	title       string
	contentHash string
	createdAt   time.Time
}

// NewDocument creates a Document.
func NewDocument(id int64, title, contentHash string, createdAt time.Time) Document {
	return Document{
		id:          id,
		title:       title,
		contentHash: contentHash,
		createdAt:   createdAt,
	}
}

// ID returns the document identifier.
func (d Document) ID() int64 { return d.id }

// Title returns the document title.
func (d Document) Title() string { return d.title }

// ContentHash returns the lowercase hex SHA-256 of the ingested bytes, or
// empty when unknown.
func (d Document) ContentHash() string { return d.contentHash }

// CreatedAt returns the creation timestamp.
func (d Document) CreatedAt() time.Time { return d.createdAt }

// PageText is one page of extracted text, as produced by a Parser.
type PageText struct {
	page int
	text string
}

// NewPageText creates a PageText.
func NewPageText(page int, text string) PageText {
	return PageText{page: page, text: text}
}

// Page returns the 1-based page number.
func (p PageText) Page() int { return p.page }

// Text returns the extracted text.
func (p PageText) Text() string { return p.text }

// EmbeddedChunk is a chunk of document text paired with its embedding vector,
// ready for persistence. The chunk and its vector are written atomically.
type EmbeddedChunk struct {
	page    int
	content string
	vector  []float32
}

// NewEmbeddedChunk creates an EmbeddedChunk.
func NewEmbeddedChunk(page int, content string, vector []float32) EmbeddedChunk {
	vec := make([]float32, len(vector))
	copy(vec, vector)
	return EmbeddedChunk{page: page, content: content, vector: vec}
}

// Page returns the page the chunk was extracted from (0 if unknown).
func (c EmbeddedChunk) Page() int { return c.page }

// Content returns the chunk text.
func (c EmbeddedChunk) Content() string { return c.content }

// Vector returns the embedding vector (copy).
func (c EmbeddedChunk) Vector() []float32 {
	vec := make([]float32, len(c.vector))
	copy(vec, c.vector)
	return vec
}

// Candidate is a stored chunk loaded for similarity ranking, joined with its
// document title and embedding vector.
type Candidate struct {
	chunkID    int64
	documentID int64
	page       int
	title      string
	content    string
	vector     []float32
}

// NewCandidate creates a Candidate.
func NewCandidate(chunkID, documentID int64, page int, title, content string, vector []float32) Candidate {
	vec := make([]float32, len(vector))
	copy(vec, vector)
	return Candidate{
		chunkID:    chunkID,
		documentID: documentID,
		page:       page,
		title:      title,
		content:    content,
		vector:     vec,
	}
}

// ChunkID returns the chunk identifier.
func (c Candidate) ChunkID() int64 { return c.chunkID }

// DocumentID returns the owning document identifier.
func (c Candidate) DocumentID() int64 { return c.documentID }

// Page returns the source page number.
func (c Candidate) Page() int { return c.page }

// Title returns the owning document title.
func (c Candidate) Title() string { return c.title }

// Content returns the chunk text.
func (c Candidate) Content() string { return c.content }

// Vector returns the stored embedding vector. The returned slice must not be
// mutated; candidates are read in bulk on every query and copying each vector
// would double the scan's allocation cost.
func (c Candidate) Vector() []float32 { return c.vector }

// ScoredChunk is a Candidate ranked against a query.
type ScoredChunk struct {
	chunkID    int64
	documentID int64
	page       int
	title      string
	content    string
	score      float64
}

// NewScoredChunk creates a ScoredChunk.
func NewScoredChunk(c Candidate, score float64) ScoredChunk {
	return ScoredChunk{
		chunkID:    c.chunkID,
		documentID: c.documentID,
		page:       c.page,
		title:      c.title,
		content:    c.content,
		score:      score,
	}
}

// ChunkID returns the chunk identifier.
func (s ScoredChunk) ChunkID() int64 { return s.chunkID }

// DocumentID returns the owning document identifier.
func (s ScoredChunk) DocumentID() int64 { return s.documentID }

// Page returns the source page number.
func (s ScoredChunk) Page() int { return s.page }

// Title returns the owning document title.
func (s ScoredChunk) Title() string { return s.title }

// Content returns the chunk text.
func (s ScoredChunk) Content() string { return s.content }

// Score returns the cosine similarity against the query.
func (s ScoredChunk) Score() float64 { return s.score }
