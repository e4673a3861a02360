// Package dto defines the request and response bodies of the v1 API.
package dto

import "time"

// DocumentResponse represents one ingested document.
type DocumentResponse struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	ContentHash string    `json:"content_hash"`
	CreatedAt   time.Time `json:"created_at"`
}

// DocumentListResponse represents a page of documents.
type DocumentListResponse struct {
	Documents []DocumentResponse `json:"documents"`
	Total     int                `json:"total"`
}

// UploadResult represents one successfully processed upload.
type UploadResult struct {
	FileName       string `json:"file_name"`
	DocumentID     int64  `json:"document_id"`
	ChunksInserted int    `json:"chunks_inserted"`
	AlreadyExists  bool   `json:"already_exists"`
}

// UploadFailure represents one upload that could not be processed.
type UploadFailure struct {
	FileName string `json:"file_name"`
	Error    string `json:"error"`
}

// UploadResponse represents the outcome of a batch upload. A batch is
// processed file by file, so results and errors can both be non-empty.
type UploadResponse struct {
	Results []UploadResult  `json:"results"`
	Errors  []UploadFailure `json:"errors"`
}
