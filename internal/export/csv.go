package export

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"sync"

	"github.com/joseph-ayodele/pdf-classifier/internal/record"
)

// Header is the fixed column order of the report. Downstream consumers rely
// on it; do not reorder.
var Header = []string{"file_name", "root_folder", "documentType", "DocDate", "InvestmentName", "isDocTypeCorrect"}

// Row is one report line: a processed file (or its error placeholder).
type Row struct {
	FileName   string
	RootFolder string
	record.Extraction
}

// ErrorRow builds the placeholder row for a file that failed: the error
// message lands in the date column so the report stays fixed-width.
func ErrorRow(fileName, rootFolder string, err error) Row {
	return Row{
		FileName:   fileName,
		RootFolder: rootFolder,
		Extraction: record.Extraction{
			DocumentType: "ERROR",
			DocDate:      err.Error(),
		},
	}
}

// Report writes the CSV incrementally, flushing after every row, so partial
// progress survives a crash mid-batch. Appends are serialized, so
// a Report is safe to share across workers. Rows are also retained in memory
// for the optional XLSX mirror.
type Report struct {
	mu   sync.Mutex
	f    *os.File
	w    *csv.Writer
	rows []Row
	log  *slog.Logger
}

// NewReport truncates path and writes the header row.
func NewReport(path string, logger *slog.Logger) (*Report, error) {
	if logger == nil {
		logger = slog.Default()
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create report %s: %w", path, err)
	}
	w := csv.NewWriter(f)
	if err := w.Write(Header); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("write header: %w", err)
	}
	w.Flush()
	return &Report{f: f, w: w, log: logger}, nil
}

func (r *Report) Append(row Row) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	fields := []string{
		row.FileName,
		row.RootFolder,
		row.DocumentType,
		row.DocDate,
		row.InvestmentName,
		strconv.FormatBool(row.IsDocTypeCorrect),
	}
	if err := r.w.Write(fields); err != nil {
		return fmt.Errorf("write row: %w", err)
	}
	r.w.Flush()
	if err := r.w.Error(); err != nil {
		return fmt.Errorf("flush row: %w", err)
	}
	r.rows = append(r.rows, row)
	return nil
}

// Rows returns a copy of everything appended so far.
func (r *Report) Rows() []Row {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Row, len(r.rows))
	copy(out, r.rows)
	return out
}

func (r *Report) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.w.Flush()
	if err := r.w.Error(); err != nil {
		_ = r.f.Close()
		return err
	}
	return r.f.Close()
}
