package llm

import (
	"encoding/json"
	"log/slog"
	"regexp"
	"strings"

	"github.com/joseph-ayodele/pdf-classifier/internal/record"
)

// repairRule is one targeted pattern substitution applied to a raw reply
// before strict parsing. Rules are ordered and each is independently
// testable; keep them narrow so a fix for one malformation cannot mangle an
// already-valid document.
type repairRule struct {
	name    string
	pattern *regexp.Regexp
	replace string
}

var repairRules = []repairRule{
	// Some models double every quote when they escape incorrectly:
	// {"documentType": ""NDA""}. Collapse a doubled quote that touches
	// content, leaving genuine empty-string values ("" after a colon) alone.
	{
		name:    "doubled-quote-after-content",
		pattern: regexp.MustCompile(`([^:\s,{\[])""`),
		replace: `$1"`,
	},
	{
		name:    "doubled-quote-before-content",
		pattern: regexp.MustCompile(`""([^\s,}\]:])`),
		replace: `"$1`,
	},
	// Trailing comma before a closing brace or bracket.
	{
		name:    "trailing-comma",
		pattern: regexp.MustCompile(`,\s*([}\]])`),
		replace: `$1`,
	},
	// A corporate suffix whose punctuation closed the quoted name early:
	// "InvestmentName": "Acme Partners", L.P." -> drop the premature quote.
	{
		name:    "corporate-suffix-quote",
		pattern: regexp.MustCompile(`("InvestmentName"\s*:\s*"[^"]*)"(\s*,\s*(?:L\.P\.|LP|Inc\.|LLC|Ltd\.|Limited|Corp\.|Corporation))`),
		replace: `$1$2`,
	},
	// A date whose year was split into its own quoted segment:
	// "DocDate": "July 28, "2024"" or "DocDate": "07/28/"2024"".
	{
		name:    "split-year-date",
		pattern: regexp.MustCompile(`("DocDate"\s*:\s*"[^"]*?)"\s*,?\s*"?(\d{4})"`),
		replace: `$1$2"`,
	},
}

// Field scrapers for the terminal fallback: each field is pulled
// independently so one mangled value cannot hide the others.
var (
	reScrapeType = regexp.MustCompile(`(?i)"documentType"\s*:\s*"([^"]*)"`)
	reScrapeDate = regexp.MustCompile(`(?i)"DocDate"\s*:\s*"([^"]*)"`)
	reScrapeName = regexp.MustCompile(`(?i)"InvestmentName"\s*:\s*"([^"]*)"`)
)

// Repair turns a raw model reply into an Extraction. It never fails: when
// strict JSON parsing is impossible even after the repair rules, it degrades
// to scraping fields out of the partially repaired text, defaulting anything
// unfound to the empty string. The boolean reports whether the strict path
// succeeded; false means the result came from the degraded scrape.
func Repair(raw string, logger *slog.Logger) (record.Extraction, bool) {
	if logger == nil {
		logger = slog.Default()
	}

	cleaned := stripFences(strings.TrimSpace(raw))
	cleaned = stripControlChars(cleaned)
	for _, rule := range repairRules {
		fixed := rule.pattern.ReplaceAllString(cleaned, rule.replace)
		if fixed != cleaned {
			logger.Debug("llm.repair.rule_applied", "rule", rule.name)
			cleaned = fixed
		}
	}

	var out record.Extraction
	if err := json.Unmarshal([]byte(cleaned), &out); err == nil {
		if vErr := ValidateExtractionJSON([]byte(cleaned)); vErr != nil {
			logger.Warn("llm.repair.schema_mismatch", "error", vErr)
		}
		out.IsDocTypeCorrect = false // orchestrator decides this, never the model
		return out, true
	}

	logger.Warn("llm.repair.parse_degraded", "reply_len", len(raw))
	return scrapeFields(cleaned), false
}

// stripFences removes a leading ```json (or bare ```) marker and a trailing
// fence when the model wrapped its reply in a markdown code block.
func stripFences(s string) string {
	if strings.HasPrefix(s, "```json") {
		s = s[len("```json"):]
	} else if strings.HasPrefix(s, "```") {
		s = s[len("```"):]
	}
	if strings.HasSuffix(s, "```") {
		s = s[:len(s)-len("```")]
	}
	return strings.TrimSpace(s)
}

// stripControlChars drops control characters other than newline and tab,
// which some providers leak into string values.
func stripControlChars(s string) string {
	return strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if r < 0x20 || r == 0x7f {
			return -1
		}
		return r
	}, s)
}

// scrapeFields is the terminal fallback: pull each field independently via
// pattern matching. It always produces a complete record.
func scrapeFields(s string) record.Extraction {
	var out record.Extraction
	if m := reScrapeType.FindStringSubmatch(s); m != nil {
		out.DocumentType = m[1]
	}
	if m := reScrapeDate.FindStringSubmatch(s); m != nil {
		out.DocDate = m[1]
	}
	if m := reScrapeName.FindStringSubmatch(s); m != nil {
		out.InvestmentName = m[1]
	}
	return out
}
