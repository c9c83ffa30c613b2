package record

import "time"

// Merge combines the per-chunk extractions of one document into a single
// record:
//
//   - DocumentType: most frequent non-empty value, ties broken by
//     first-encountered order.
//   - DocDate: chronologically latest of the values that parse as
//     MM/DD/YYYY; unparseable dates are excluded from the comparison.
//   - InvestmentName: longest non-empty value, ties broken by frequency,
//     then first-encountered order.
//
// IsDocTypeCorrect is left false; the orchestrator recomputes it against the
// expected label after the merge.
func Merge(recs []Extraction) Extraction {
	switch len(recs) {
	case 0:
		return Extraction{}
	case 1:
		return recs[0]
	}

	return Extraction{
		DocumentType:   modalValue(recs),
		DocDate:        latestDate(recs),
		InvestmentName: longestName(recs),
	}
}

func modalValue(recs []Extraction) string {
	counts := map[string]int{}
	var order []string
	for _, r := range recs {
		v := r.DocumentType
		if v == "" {
			continue
		}
		if counts[v] == 0 {
			order = append(order, v)
		}
		counts[v]++
	}
	best := ""
	for _, v := range order {
		if best == "" || counts[v] > counts[best] {
			best = v
		}
	}
	return best
}

func latestDate(recs []Extraction) string {
	var best string
	var bestTime time.Time
	for _, r := range recs {
		t, err := time.Parse("01/02/2006", r.DocDate)
		if err != nil {
			continue
		}
		if best == "" || t.After(bestTime) {
			best, bestTime = r.DocDate, t
		}
	}
	return best
}

func longestName(recs []Extraction) string {
	counts := map[string]int{}
	var order []string
	for _, r := range recs {
		v := r.InvestmentName
		if v == "" {
			continue
		}
		if counts[v] == 0 {
			order = append(order, v)
		}
		counts[v]++
	}
	best := ""
	for _, v := range order {
		switch {
		case best == "":
			best = v
		case len(v) > len(best):
			best = v
		case len(v) == len(best) && counts[v] > counts[best]:
			best = v
		}
	}
	return best
}
