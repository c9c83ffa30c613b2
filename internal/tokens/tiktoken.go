package tokens

import (
	"log/slog"

	"github.com/pkoukk/tiktoken-go"
)

// fallbackEncoding covers models tiktoken-go does not recognize.
const fallbackEncoding = "cl100k_base"

// Exact counts tokens with the tokenizer associated with a model.
type Exact struct {
	enc *tiktoken.Tiktoken
}

// NewExact builds an exact estimator for model, falling back to a generic
// byte-pair encoding when the model is unrecognized.
func NewExact(model string) (*Exact, error) {
	enc, err := tiktoken.EncodingForModel(model)
	if err != nil {
		enc, err = tiktoken.GetEncoding(fallbackEncoding)
		if err != nil {
			return nil, err
		}
	}
	return &Exact{enc: enc}, nil
}

func (e *Exact) Estimate(text string) int {
	if text == "" {
		return 0
	}
	return len(e.enc.Encode(text, nil, nil))
}

// ForModel picks the exact tokenizer for model when its encoding can be
// loaded, and the heuristic otherwise (tiktoken-go fetches encoding data
// lazily, so offline runs fall back cleanly).
func ForModel(model string, logger *slog.Logger) Estimator {
	if logger == nil {
		logger = slog.Default()
	}
	exact, err := NewExact(model)
	if err != nil {
		logger.Warn("tokens.exact_unavailable", "model", model, "error", err)
		return NewHeuristic()
	}
	return exact
}
