package extract

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/ledongthuc/pdf"

	"github.com/joseph-ayodele/pdf-classifier/internal/common"
)

// PDFExtractor pulls plain text out of PDF files with ledongthuc/pdf
// (pure Go, no CGO). Extraction is best-effort: unreadable pages are skipped
// and reported as warnings rather than failing the document.
type PDFExtractor struct {
	log *slog.Logger
}

func NewPDFExtractor(logger *slog.Logger) *PDFExtractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &PDFExtractor{log: logger}
}

func (e *PDFExtractor) Extract(ctx context.Context, path string) (TextExtractionResult, error) {
	start := time.Now()

	f, r, err := pdf.Open(path)
	if err != nil {
		return TextExtractionResult{}, common.ExtractionError(fmt.Sprintf("open pdf %s", path), err)
	}
	defer func(f *os.File) {
		if cerr := f.Close(); cerr != nil {
			e.log.Warn("extract.pdf.close_error", "path", path, "error", cerr)
		}
	}(f)

	var text strings.Builder
	var warnings []string
	pages := r.NumPage()
	for i := 1; i <= pages; i++ {
		if err := ctx.Err(); err != nil {
			return TextExtractionResult{}, err
		}
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("page %d: %v", i, err))
			continue
		}
		pageText = strings.TrimSpace(pageText)
		if pageText == "" {
			continue
		}
		if text.Len() > 0 {
			text.WriteString("\n\n")
		}
		text.WriteString(pageText)
	}

	res := TextExtractionResult{
		Text:     strings.TrimSpace(text.String()),
		Pages:    pages,
		Method:   "pdf-text",
		Duration: time.Since(start),
		Warnings: warnings,
	}

	e.log.Info("extract.pdf.ok",
		"path", path,
		"pages", pages,
		"chars", len(res.Text),
		"warnings", len(warnings),
		"elapsed_ms", res.Duration.Milliseconds(),
	)
	return res, nil
}
