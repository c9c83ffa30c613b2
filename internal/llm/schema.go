package llm

import "github.com/joseph-ayodele/pdf-classifier/internal/common"

// BuildExtractionJSONSchema returns the JSON-Schema (draft 2020-12 subset)
// an extraction reply is expected to match. Extra keys are tolerated: models
// routinely add commentary fields, and the decoder ignores them anyway.
func BuildExtractionJSONSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"documentType":   map[string]any{"type": "string"},
			"DocDate":        map[string]any{"type": "string"},
			"InvestmentName": map[string]any{"type": "string"},
		},
		"required": []string{"documentType"},
	}
}

// ValidateExtractionJSON checks a strictly-parsed reply against the schema.
// A mismatch is advisory (logged by the caller), never fatal.
func ValidateExtractionJSON(data []byte) error {
	return common.ValidateJSONAgainstSchema(BuildExtractionJSONSchema(), data)
}
