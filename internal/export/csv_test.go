package export

import (
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/joseph-ayodele/pdf-classifier/internal/record"
)

func readAll(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	return rows
}

func TestReportWritesHeaderAndRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "result.csv")
	rep, err := NewReport(path, nil)
	if err != nil {
		t.Fatalf("NewReport: %v", err)
	}

	err = rep.Append(Row{
		FileName:   "sample.pdf",
		RootFolder: "NDA",
		Extraction: record.Extraction{
			DocumentType:     "NDA",
			DocDate:          "07/28/2024",
			InvestmentName:   "Acme Partners, L.P.",
			IsDocTypeCorrect: true,
		},
	})
	if err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := rep.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	rows := readAll(t, path)
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	wantHeader := []string{"file_name", "root_folder", "documentType", "DocDate", "InvestmentName", "isDocTypeCorrect"}
	for i, h := range wantHeader {
		if rows[0][i] != h {
			t.Errorf("header[%d] = %q, want %q", i, rows[0][i], h)
		}
	}
	want := []string{"sample.pdf", "NDA", "NDA", "07/28/2024", "Acme Partners, L.P.", "true"}
	for i, v := range want {
		if rows[1][i] != v {
			t.Errorf("row[%d] = %q, want %q", i, rows[1][i], v)
		}
	}
}

func TestReportTruncatesExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "result.csv")
	if err := os.WriteFile(path, []byte("stale,content\n1,2\n3,4\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	rep, err := NewReport(path, nil)
	if err != nil {
		t.Fatalf("NewReport: %v", err)
	}
	if err := rep.Close(); err != nil {
		t.Fatal(err)
	}

	rows := readAll(t, path)
	if len(rows) != 1 {
		t.Errorf("got %d rows, want header only", len(rows))
	}
}

func TestReportFlushesPerRow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "result.csv")
	rep, err := NewReport(path, nil)
	if err != nil {
		t.Fatalf("NewReport: %v", err)
	}
	defer rep.Close()

	_ = rep.Append(Row{FileName: "a.pdf", RootFolder: "NDA"})

	// Before Close: the row must already be on disk.
	rows := readAll(t, path)
	if len(rows) != 2 {
		t.Errorf("got %d rows before Close, want 2 (incremental flush)", len(rows))
	}
}

func TestErrorRow(t *testing.T) {
	row := ErrorRow("bad.pdf", "NDA", errors.New("extraction failed"))
	if row.DocumentType != "ERROR" {
		t.Errorf("documentType = %q, want ERROR", row.DocumentType)
	}
	if row.DocDate != "extraction failed" {
		t.Errorf("docDate = %q, want the error message", row.DocDate)
	}
	if row.InvestmentName != "" || row.IsDocTypeCorrect {
		t.Errorf("unexpected fields: %+v", row)
	}
}

func TestRowsCopies(t *testing.T) {
	path := filepath.Join(t.TempDir(), "result.csv")
	rep, err := NewReport(path, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer rep.Close()

	_ = rep.Append(Row{FileName: "a.pdf"})
	rows := rep.Rows()
	rows[0].FileName = "mutated"
	if rep.Rows()[0].FileName != "a.pdf" {
		t.Error("Rows() must return a copy")
	}
}
