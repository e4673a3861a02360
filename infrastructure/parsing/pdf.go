// Package parsing extracts page text from PDF byte streams.
package parsing

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/klippa-app/go-pdfium"
	"github.com/klippa-app/go-pdfium/requests"
	"github.com/klippa-app/go-pdfium/webassembly"

	"github.com/ragline/ragline/domain/document"
)

const instanceTimeout = 30 * time.Second

// PDFParser implements document.Parser using the pdfium library compiled to
// WebAssembly, so no native pdfium installation is required.
type PDFParser struct {
	pool   pdfium.Pool
	logger *slog.Logger
}

// NewPDFParser initializes the pdfium WebAssembly runtime. The runtime is
// expensive to start, so one parser should be created per process and closed
// on shutdown.
func NewPDFParser(logger *slog.Logger) (*PDFParser, error) {
	if logger == nil {
		logger = slog.Default()
	}

	pool, err := webassembly.Init(webassembly.Config{
		MinIdle:  1,
		MaxIdle:  1,
		MaxTotal: 1,
	})
	if err != nil {
		return nil, fmt.Errorf("init pdfium runtime: %w", err)
	}

	return &PDFParser{pool: pool, logger: logger}, nil
}

// Parse extracts the text of every page in order. Pages without extractable
// text are returned with empty text; the caller decides whether to keep them.
func (p *PDFParser) Parse(ctx context.Context, data []byte) ([]document.PageText, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	instance, err := p.pool.GetInstance(instanceTimeout)
	if err != nil {
		return nil, fmt.Errorf("acquire pdfium instance: %w", err)
	}
	defer func() {
		if err := instance.Close(); err != nil {
			p.logger.Warn("close pdfium instance", "error", err)
		}
	}()

	doc, err := instance.OpenDocument(&requests.OpenDocument{File: &data})
	if err != nil {
		return nil, fmt.Errorf("open pdf document: %w", err)
	}
	defer func() {
		_, err := instance.FPDF_CloseDocument(&requests.FPDF_CloseDocument{Document: doc.Document})
		if err != nil {
			p.logger.Warn("close pdf document", "error", err)
		}
	}()

	pageCount, err := instance.FPDF_GetPageCount(&requests.FPDF_GetPageCount{Document: doc.Document})
	if err != nil {
		return nil, fmt.Errorf("get page count: %w", err)
	}

	pages := make([]document.PageText, 0, pageCount.PageCount)
	for i := 0; i < pageCount.PageCount; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		text, err := instance.GetPageText(&requests.GetPageText{
			Page: requests.Page{
				ByIndex: &requests.PageByIndex{
					Document: doc.Document,
					Index:    i,
				},
			},
		})
		if err != nil {
			return nil, fmt.Errorf("extract text from page %d: %w", i+1, err)
		}

		pages = append(pages, document.NewPageText(i+1, strings.TrimSpace(text.Text)))
	}

	return pages, nil
}

// Close shuts down the pdfium runtime.
func (p *PDFParser) Close() error {
	return p.pool.Close()
}
