package export

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"
)

// WriteXLSX mirrors the report rows into an XLSX workbook for reviewers who
// live in spreadsheets. The column set matches the CSV exactly.
func WriteXLSX(path string, rows []Row, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	start := time.Now()

	f := excelize.NewFile()
	const sheet = "Results"
	if index, _ := f.GetSheetIndex(sheet); index == -1 {
		if _, err := f.NewSheet(sheet); err != nil {
			return err
		}
	}
	activeIndex, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(activeIndex)
	if defIdx, _ := f.GetSheetIndex("Sheet1"); defIdx != -1 {
		_ = f.DeleteSheet("Sheet1")
	}

	for i, h := range Header {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	for rowIdx, r := range rows {
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, rowIdx+2)
			_ = f.SetCellValue(sheet, cell, v)
		}
		write(1, r.FileName)
		write(2, r.RootFolder)
		write(3, r.DocumentType)
		write(4, r.DocDate)
		write(5, r.InvestmentName)
		write(6, r.IsDocTypeCorrect)
	}

	// Widen a few columns
	_ = f.SetColWidth(sheet, "A", "A", 36) // file name
	_ = f.SetColWidth(sheet, "B", "C", 22) // folder, type
	_ = f.SetColWidth(sheet, "D", "D", 16) // date
	_ = f.SetColWidth(sheet, "E", "E", 32) // investment name
	_ = f.SetColWidth(sheet, "F", "F", 14) // match flag

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("xlsx write: %w", err)
	}

	logger.Info("export.xlsx.ok",
		"path", path,
		"rows", len(rows),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return nil
}
