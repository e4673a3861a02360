package v1

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/ragline/ragline"
	"github.com/ragline/ragline/infrastructure/api/middleware"
	"github.com/ragline/ragline/infrastructure/api/v1/dto"
	"golang.org/x/sync/errgroup"
)

// maxUploadMemory bounds the multipart form buffer; larger parts spill to disk.
const maxUploadMemory = 32 << 20

// uploadParallelism caps concurrent ingestions within one batch upload.
const uploadParallelism = 4

// DocumentsRouter handles document API endpoints.
type DocumentsRouter struct {
	client *ragline.Client
	logger *slog.Logger
}

// NewDocumentsRouter creates a new DocumentsRouter.
func NewDocumentsRouter(client *ragline.Client) *DocumentsRouter {
	return &DocumentsRouter{
		client: client,
		logger: client.Logger(),
	}
}

// Routes returns the chi router for document endpoints.
func (r *DocumentsRouter) Routes() chi.Router {
	router := chi.NewRouter()

	router.Get("/", r.List)
	router.Post("/", r.Upload)
	router.Delete("/{id}", r.Delete)

	return router
}

// List handles GET /api/v1/documents.
func (r *DocumentsRouter) List(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()
	pagination := ParsePagination(req)

	docs, err := r.client.Store().List(ctx)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	total := len(docs)
	start := pagination.Offset()
	if start > total {
		start = total
	}
	end := start + pagination.Limit()
	if end > total {
		end = total
	}

	page := make([]dto.DocumentResponse, 0, end-start)
	for _, doc := range docs[start:end] {
		page = append(page, dto.DocumentResponse{
			ID:          doc.ID(),
			Title:       doc.Title(),
			ContentHash: doc.ContentHash(),
			CreatedAt:   doc.CreatedAt(),
		})
	}

	middleware.WriteJSON(w, http.StatusOK, dto.DocumentListResponse{
		Documents: page,
		Total:     total,
	})
}

// Upload handles POST /api/v1/documents. It accepts one or more PDF files
// in the "files" multipart field and processes them independently, so a
// single bad file does not fail the whole batch.
func (r *DocumentsRouter) Upload(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()

	if err := req.ParseMultipartForm(maxUploadMemory); err != nil {
		middleware.WriteError(w, req, middleware.NewAPIError(http.StatusBadRequest, "invalid multipart form", err), r.logger)
		return
	}
	defer func() { _ = req.MultipartForm.RemoveAll() }()

	files := req.MultipartForm.File["files"]
	if len(files) == 0 {
		middleware.WriteError(w, req, middleware.NewAPIError(http.StatusBadRequest, "no files provided", nil), r.logger)
		return
	}

	var (
		mu       sync.Mutex
		results  []dto.UploadResult
		failures []dto.UploadFailure
	)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(uploadParallelism)
	for _, header := range files {
		g.Go(func() error {
			name := filepath.Base(header.Filename)

			result, err := r.ingestOne(ctx, name, header)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failures = append(failures, dto.UploadFailure{FileName: name, Error: err.Error()})
				return nil
			}
			results = append(results, *result)
			return nil
		})
	}
	// Goroutines report per-file failures instead of returning errors, so
	// Wait only synchronizes.
	_ = g.Wait()

	status := http.StatusCreated
	if len(results) == 0 {
		status = http.StatusUnprocessableEntity
	}
	middleware.WriteJSON(w, status, dto.UploadResponse{
		Results: results,
		Errors:  failures,
	})
}

func (r *DocumentsRouter) ingestOne(ctx context.Context, name string, header *multipart.FileHeader) (*dto.UploadResult, error) {
	file, err := header.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	defer func() { _ = file.Close() }()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}

	outcome, err := r.client.Ingest.Ingest(ctx, name, data)
	if err != nil {
		return nil, err
	}

	if !outcome.AlreadyExists() {
		r.archiveUpload(name, data)
	}

	return &dto.UploadResult{
		FileName:       name,
		DocumentID:     outcome.Document().ID(),
		ChunksInserted: outcome.ChunksInserted(),
		AlreadyExists:  outcome.AlreadyExists(),
	}, nil
}

// archiveUpload keeps a timestamped copy of the original file. Archival is
// best effort, a failure never fails the ingestion itself.
func (r *DocumentsRouter) archiveUpload(name string, data []byte) {
	cfg := r.client.Config()
	if err := cfg.EnsureUploadDir(); err != nil {
		r.logger.Warn("upload archive unavailable", "error", err)
		return
	}
	archived := fmt.Sprintf("%s_%s", time.Now().UTC().Format("20060102T150405"), name)
	path := filepath.Join(cfg.UploadDir(), archived)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		r.logger.Warn("failed to archive upload", "path", path, "error", err)
	}
}

// Delete handles DELETE /api/v1/documents/{id}. Chunks and embeddings are
// removed with the document.
func (r *DocumentsRouter) Delete(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()

	id, err := strconv.ParseInt(chi.URLParam(req, "id"), 10, 64)
	if err != nil {
		middleware.WriteError(w, req, middleware.NewAPIError(http.StatusBadRequest, "invalid document id", err), r.logger)
		return
	}

	if err := r.client.Store().Delete(ctx, id); err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
