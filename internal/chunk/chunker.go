// Package chunk splits extracted document text into bounded pieces that fit
// an LLM context window, preserving paragraph order.
package chunk

import (
	"strings"

	"github.com/joseph-ayodele/pdf-classifier/internal/common"
)

// charsPerToken is the character-length proxy used while accumulating lines:
// budget in tokens maps to budget*charsPerToken characters.
const charsPerToken = 4

// Chunk is one bounded slice of a document. Index is 1-based and Total is
// the chunk count for the whole document, so prompts can say "part i of N".
type Chunk struct {
	Index   int
	Total   int
	Content string
}

// Budget computes the token budget left for document text once the system
// prompt and the reply reservation are accounted for. A non-positive budget
// is a configuration error: the prompt alone fills the context window.
func Budget(maxTokens, promptTokens, reservedTokens int) (int, error) {
	budget := maxTokens - promptTokens - reservedTokens
	if budget <= 0 {
		return 0, common.ConfigError(
			"prompt and reserved tokens leave no room for document text", nil)
	}
	return budget, nil
}

// Split divides text into ordered chunks whose estimated size stays within
// maxTokensPerChunk. Lines (or paragraphs, when the text uses blank-line
// separation) are atomic: a single line longer than the budget is kept whole
// rather than cut mid-sentence. Under-budget input yields exactly one chunk
// equal to the trimmed text.
func Split(text string, maxTokensPerChunk int) []Chunk {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	sep := "\n"
	if strings.Contains(text, "\n\n") {
		sep = "\n\n"
	}
	maxChars := maxTokensPerChunk * charsPerToken

	var contents []string
	var current strings.Builder
	for _, line := range strings.Split(text, sep) {
		add := len(line)
		if current.Len() > 0 {
			add += len(sep)
		}
		if current.Len() > 0 && current.Len()+add > maxChars {
			contents = append(contents, current.String())
			current.Reset()
		}
		if current.Len() > 0 {
			current.WriteString(sep)
		}
		current.WriteString(line)
	}
	if current.Len() > 0 {
		contents = append(contents, current.String())
	}

	chunks := make([]Chunk, len(contents))
	for i, c := range contents {
		chunks[i] = Chunk{Index: i + 1, Total: len(contents), Content: c}
	}
	return chunks
}

// Truncate cuts text to roughly maxTokens and trims back to the last full
// paragraph boundary so a single-chunk run does not end mid-sentence. Used
// when chunking is disabled.
func Truncate(text string, maxTokens int) string {
	text = strings.TrimSpace(text)
	maxChars := maxTokens * charsPerToken
	if len(text) <= maxChars {
		return text
	}
	cut := text[:maxChars]
	if idx := strings.LastIndex(cut, "\n\n"); idx > 0 {
		return strings.TrimSpace(cut[:idx])
	}
	if idx := strings.LastIndex(cut, "\n"); idx > 0 {
		return strings.TrimSpace(cut[:idx])
	}
	return cut
}
