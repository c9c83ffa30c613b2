package record

// Extraction is the structured result of analyzing one chunk or one merged
// document. All fields are always present (zero values, never absent) so the
// report writer can assume fixed columns.
type Extraction struct {
	DocumentType     string `json:"documentType"`
	DocDate          string `json:"DocDate"`
	InvestmentName   string `json:"InvestmentName"`
	IsDocTypeCorrect bool   `json:"isDocTypeCorrect"`
}

// Job is one file to process. ExpectedType is the name of the immediate
// parent directory under the scan root and serves as ground truth for the
// isDocTypeCorrect flag. RootFolder carries the same value for reporting.
type Job struct {
	Path         string
	ExpectedType string
	RootFolder   string
}
