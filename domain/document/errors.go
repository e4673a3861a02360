package document

import "errors"

// ErrEmptyDocument indicates a parsed document yielded no extractable text.
// The file must be replaced by the user; retrying cannot succeed.
var ErrEmptyDocument = errors.New("no extractable text found in document")

// ErrDocumentNotFound indicates no document matches the lookup.
var ErrDocumentNotFound = errors.New("document not found")

// ErrDimensionMismatch indicates an embedding vector's dimensionality
// conflicts with the vectors already stored. This is a configuration error:
// ranking mixed-dimension vectors would silently produce garbage.
var ErrDimensionMismatch = errors.New("embedding dimension mismatch")
