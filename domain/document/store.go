package document

import "context"

// IngestOutcome reports the result of persisting one document.
type IngestOutcome struct {
	document       Document
	chunksInserted int
	alreadyExists  bool
}

// NewIngestOutcome creates an IngestOutcome.
func NewIngestOutcome(doc Document, chunksInserted int, alreadyExists bool) IngestOutcome {
	return IngestOutcome{
		document:       doc,
		chunksInserted: chunksInserted,
		alreadyExists:  alreadyExists,
	}
}

// Document returns the created or pre-existing document.
func (o IngestOutcome) Document() Document { return o.document }

// ChunksInserted returns the number of chunks written (0 on duplicate).
func (o IngestOutcome) ChunksInserted() int { return o.chunksInserted }

// AlreadyExists reports whether a document with the same content hash was
// already present.
func (o IngestOutcome) AlreadyExists() bool { return o.alreadyExists }

// Store persists documents with their chunks and embeddings.
type Store interface {
	// FindByHash returns the document with the given content hash, or
	// ErrDocumentNotFound.
	FindByHash(ctx context.Context, contentHash string) (Document, error)

	// Insert writes a document with all of its embedded chunks in one
	// transaction. A concurrent insert of the same content hash must not
	// surface as an error: the losing writer receives the winner's document
	// with AlreadyExists set.
	Insert(ctx context.Context, title, contentHash string, chunks []EmbeddedChunk) (IngestOutcome, error)

	// Candidates loads every stored chunk joined with its vector and document
	// title, optionally restricted to the given document ids.
	Candidates(ctx context.Context, documentIDs []int64) ([]Candidate, error)

	// Dimension returns the dimensionality of stored vectors, or 0 when the
	// store is empty.
	Dimension(ctx context.Context) (int, error)

	// List returns all documents, newest first.
	List(ctx context.Context) ([]Document, error)

	// Delete removes a document and everything derived from it, or returns
	// ErrDocumentNotFound.
	Delete(ctx context.Context, id int64) error
}

// Parser converts a raw document byte stream into ordered page texts.
// Pages with empty text may be returned and are filtered by the caller.
type Parser interface {
	Parse(ctx context.Context, data []byte) ([]PageText, error)
}

// Embedder maps a text string to a fixed-dimension float32 vector.
// Implementations initialize lazily, once per process.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}
