package constants

import (
	"path/filepath"
	"strings"
)

// DefaultScanDir is the root directory batch mode scans for labeled PDFs.
const DefaultScanDir = "pdfs"

// DefaultReportFile is the CSV report written by batch mode.
const DefaultReportFile = "result.csv"

// AllowedExtensions holds the file extensions the batch walker matches.
var AllowedExtensions = map[string]struct{}{
	"pdf": {},
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// IsAllowedExt reports whether ext (with or without dot, any case) is a
// document format the batch processes.
func IsAllowedExt(ext string) bool {
	_, ok := AllowedExtensions[NormalizeExt(ext)]
	return ok
}

// IsHidden checks if a file or directory is hidden (starts with '.').
func IsHidden(path string) bool {
	return strings.HasPrefix(filepath.Base(path), ".")
}
