package batch

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/joseph-ayodele/pdf-classifier/internal/common"
	"github.com/joseph-ayodele/pdf-classifier/internal/export"
	"github.com/joseph-ayodele/pdf-classifier/internal/extract"
	"github.com/joseph-ayodele/pdf-classifier/internal/llm"
	"github.com/joseph-ayodele/pdf-classifier/internal/tokens"
)

// stubExtractor serves canned text keyed by base file name, standing in for
// real PDF parsing.
type stubExtractor struct {
	texts map[string]string
	errs  map[string]error
}

func (s stubExtractor) Extract(_ context.Context, path string) (extract.TextExtractionResult, error) {
	base := filepath.Base(path)
	if err, ok := s.errs[base]; ok {
		return extract.TextExtractionResult{}, err
	}
	return extract.TextExtractionResult{Text: s.texts[base], Pages: 1, Method: "pdf-text"}, nil
}

func chatReply(t *testing.T, content string) []byte {
	t.Helper()
	b, err := json.Marshal(map[string]any{
		"choices": []map[string]any{
			{"message": map[string]any{"content": content}},
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	return b
}

// newChatServer answers per user-message markers: any marker found in the
// chunk text picks its reply; "SERVERFAIL" triggers a 500.
func newChatServer(t *testing.T, replies map[string]string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		user := req.Messages[len(req.Messages)-1].Content
		if strings.Contains(user, "SERVERFAIL") {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte("boom"))
			return
		}
		for marker, reply := range replies {
			if strings.Contains(user, marker) {
				_, _ = w.Write(chatReply(t, reply))
				return
			}
		}
		_, _ = w.Write(chatReply(t, `{"documentType": "", "DocDate": "", "InvestmentName": ""}`))
	}))
}

func testConfig(baseURL string) *common.Config {
	return &common.Config{
		APIKey:         "sk-test",
		APIBase:        baseURL,
		Model:          "test-model",
		MaxTokens:      common.DefaultMaxTokens,
		ReservedTokens: common.DefaultReservedTokens,
	}
}

func newTestPipeline(cfg *common.Config, ex extract.TextExtractor) *Pipeline {
	client := llm.NewClient(llm.Config{APIKey: cfg.APIKey, BaseURL: cfg.APIBase, Model: cfg.Model}, nil)
	return NewPipeline(ex, client, tokens.NewHeuristic(), "Classify the document.", cfg, nil)
}

func mkTree(t *testing.T, files ...string) string {
	t.Helper()
	root := t.TempDir()
	for _, f := range files {
		path := filepath.Join(root, filepath.FromSlash(f))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte("%PDF-1.4 stub"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return root
}

func readCSV(t *testing.T, path string) map[string][]string {
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
	byFile := map[string][]string{}
	for _, row := range rows[1:] {
		byFile[row[0]] = row
	}
	return byFile
}

func TestRunEndToEnd(t *testing.T) {
	srv := newChatServer(t, map[string]string{
		"GOODDOC": `{"documentType": "NDA", "DocDate": "2024-07-28", "InvestmentName": "Acme Partners, l.p."}`,
		"MISCDOC": `{"documentType": "Other", "DocDate": "", "InvestmentName": ""}`,
	})
	defer srv.Close()

	root := mkTree(t,
		"NDA/good.pdf",
		"NDA/misclassified.pdf",
		"Contract/broken.pdf",
		"Contract/flaky.pdf",
		"Contract/notes.txt", // ignored: wrong extension
	)

	ex := stubExtractor{
		texts: map[string]string{
			"good.pdf":          "GOODDOC: the parties agree to keep this confidential.",
			"misclassified.pdf": "MISCDOC: something that fooled the model.",
			"flaky.pdf":         "SERVERFAIL: this one upsets the provider.",
		},
		errs: map[string]error{
			"broken.pdf": common.ExtractionError("unreadable pdf", errors.New("bad xref")),
		},
	}

	cfg := testConfig(srv.URL)
	reportPath := filepath.Join(t.TempDir(), "result.csv")
	report, err := export.NewReport(reportPath, nil)
	if err != nil {
		t.Fatal(err)
	}

	runner := NewRunner(newTestPipeline(cfg, ex), report, nil)
	stats, err := runner.Run(context.Background(), root)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if err := report.Close(); err != nil {
		t.Fatal(err)
	}

	if stats.Matched != 4 {
		t.Errorf("matched = %d, want 4", stats.Matched)
	}
	if stats.Processed != 2 || stats.Failed != 2 {
		t.Errorf("processed/failed = %d/%d, want 2/2", stats.Processed, stats.Failed)
	}
	if stats.Correct != 1 {
		t.Errorf("correct = %d, want 1", stats.Correct)
	}

	rows := readCSV(t, reportPath)
	if len(rows) != 4 {
		t.Fatalf("got %d data rows, want 4", len(rows))
	}

	good := rows["good.pdf"]
	if good[2] != "NDA" || good[5] != "true" {
		t.Errorf("good.pdf row = %v", good)
	}
	if good[3] != "07/28/2024" {
		t.Errorf("good.pdf date = %q, want normalized 07/28/2024", good[3])
	}
	if good[4] != "Acme Partners, L.P." {
		t.Errorf("good.pdf name = %q, want canonical suffix", good[4])
	}

	mis := rows["misclassified.pdf"]
	if mis[2] != "Other" || mis[5] != "false" {
		t.Errorf("misclassified.pdf row = %v", mis)
	}

	for _, name := range []string{"broken.pdf", "flaky.pdf"} {
		row := rows[name]
		if row[2] != "ERROR" {
			t.Errorf("%s documentType = %q, want ERROR", name, row[2])
		}
		if row[3] == "" {
			t.Errorf("%s should carry the error message in the date column", name)
		}
		if row[5] != "false" {
			t.Errorf("%s match flag = %q, want false", name, row[5])
		}
	}

	if _, ok := rows["notes.txt"]; ok {
		t.Error("non-pdf file must not be processed")
	}
}

func TestRunFailsFastOnImpossibleBudget(t *testing.T) {
	cfg := testConfig("http://unused")
	cfg.MaxTokens = 10
	cfg.ReservedTokens = 10

	root := mkTree(t, "NDA/doc.pdf")
	report, err := export.NewReport(filepath.Join(t.TempDir(), "result.csv"), nil)
	if err != nil {
		t.Fatal(err)
	}
	defer report.Close()

	runner := NewRunner(newTestPipeline(cfg, stubExtractor{}), report, nil)
	_, err = runner.Run(context.Background(), root)
	if !errors.Is(err, common.ErrConfig) {
		t.Errorf("want config error, got %v", err)
	}
}

func TestRunWithWorkersMatchesSerialOutput(t *testing.T) {
	srv := newChatServer(t, map[string]string{
		"DOC": `{"documentType": "NDA", "DocDate": "07/28/2024", "InvestmentName": "Acme"}`,
	})
	defer srv.Close()

	var files []string
	texts := map[string]string{}
	for i := 0; i < 8; i++ {
		name := fmt.Sprintf("doc%d.pdf", i)
		files = append(files, "NDA/"+name)
		texts[name] = fmt.Sprintf("DOC number %d", i)
	}
	root := mkTree(t, files...)

	cfg := testConfig(srv.URL)
	reportPath := filepath.Join(t.TempDir(), "result.csv")
	report, err := export.NewReport(reportPath, nil)
	if err != nil {
		t.Fatal(err)
	}

	runner := NewRunner(newTestPipeline(cfg, stubExtractor{texts: texts}), report, nil, WithWorkers(4))
	stats, err := runner.Run(context.Background(), root)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if err := report.Close(); err != nil {
		t.Fatal(err)
	}

	if stats.Processed != 8 || stats.Failed != 0 {
		t.Errorf("processed/failed = %d/%d, want 8/0", stats.Processed, stats.Failed)
	}
	rows := readCSV(t, reportPath)
	if len(rows) != 8 {
		t.Fatalf("got %d rows, want 8", len(rows))
	}
	for name, row := range rows {
		if row[2] != "NDA" || row[5] != "true" {
			t.Errorf("%s row = %v", name, row)
		}
	}
}
