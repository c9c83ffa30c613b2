// Package tokens estimates how many LLM tokens a piece of text will cost.
// Two interchangeable strategies exist: a cheap character/word heuristic and
// an exact count using the model's real tokenizer.
package tokens

import (
	"strings"
	"unicode"
)

// Estimator returns a token count for text. Implementations must return 0
// for the empty string and must not wildly under-count long CJK text.
type Estimator interface {
	Estimate(text string) int
}

// Heuristic approximates token counts without a tokenizer: each CJK
// ideograph costs 2 units, each whitespace-delimited word with latin
// alphanumerics costs 1, and every other non-alphanumeric character costs
// 0.25. The sum is truncated toward zero.
type Heuristic struct{}

func NewHeuristic() Heuristic { return Heuristic{} }

func (Heuristic) Estimate(text string) int {
	total := 0.0
	for _, field := range strings.Fields(text) {
		hasWord := false
		for _, r := range field {
			switch {
			case isCJK(r):
				total += 2
			case unicode.IsLetter(r) || unicode.IsDigit(r):
				hasWord = true
			default:
				total += 0.25
			}
		}
		if hasWord {
			total++
		}
	}
	return int(total)
}

func isCJK(r rune) bool {
	return unicode.Is(unicode.Han, r) ||
		(r >= 0x3040 && r <= 0x30FF) || // hiragana, katakana
		(r >= 0xAC00 && r <= 0xD7AF) // hangul syllables
}
