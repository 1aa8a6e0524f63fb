package fields

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	numberSep       = `\s*[:\-\.]?\s*`
	segmentedCode   = `[A-Za-z0-9]+(?:\s*[/\-]\s*[A-Za-z0-9]+)+`
	genericCode     = `[A-Za-z0-9][A-Za-z0-9\-\/]{2,}`
	invoiceNoLabel  = `(?:tax\s*)?invoice\s*(?:no\.?|number|#|num)`
	invNoLabel      = `inv\.?\s*no\.?`
	billNoLabel     = `bill\s*(?:no\.?|number|#)`
	documentNoLabel = `document\s*(?:no\.?|number)`
	referenceLabel  = `ref(?:erence)?\s*(?:no\.?|number)`
)

var numberRules = MustCompile(
	Rule{Name: "invoice_no_segmented", Label: invoiceNoLabel, Sep: numberSep, Value: segmentedCode},
	Rule{Name: "inv_no_segmented", Label: invNoLabel, Sep: numberSep, Value: segmentedCode},
	Rule{Name: "bill_no_segmented", Label: billNoLabel, Sep: numberSep, Value: segmentedCode},
	Rule{Name: "invoice_no", Label: invoiceNoLabel, Sep: numberSep, Value: genericCode},
	Rule{Name: "inv_no", Label: invNoLabel, Sep: numberSep, Value: genericCode},
	Rule{Name: "bill_no", Label: billNoLabel, Sep: numberSep, Value: genericCode},
	Rule{Name: "document_no", Label: documentNoLabel, Sep: numberSep, Value: genericCode},
	Rule{Name: "reference_no", Label: referenceLabel, Sep: numberSep, Value: genericCode},
)

// Heuristic strategy names recorded when no labelled rule matched.
const (
	StrategySingleCandidate = "fallback_single"
	StrategyNearestInvoice  = "fallback_nearest_invoice"
	StrategyLongest         = "fallback_longest"
)

var (
	whitespaceRun  = regexp.MustCompile(`\s+`)
	spacedSep      = regexp.MustCompile(`\s*([/\-])\s*`)
	codeCandidate  = regexp.MustCompile(`\b[A-Za-z]*\d{5,}[A-Za-z0-9\-\/]*\b`)
	invoiceKeyword = regexp.MustCompile(`(?i)invoice`)
)

// InvoiceNumber extracts the invoice number, falling back to a scan for
// invoice-code shaped tokens when no labelled rule matches.
func InvoiceNumber(v Views) FieldValue {
	if raw, rule, ok := numberRules.FirstMatch(v.Text); ok && raw != "" {
		n := strings.TrimSpace(whitespaceRun.ReplaceAllString(raw, " "))
		n = spacedSep.ReplaceAllString(n, "$1")
		if n != "" {
			return found(n, rule)
		}
	}
	return numberFallback(v.OneLine)
}

func numberFallback(line string) FieldValue {
	candidates := codeCandidate.FindAllString(line, -1)
	switch len(candidates) {
	case 0:
		return FieldValue{}
	case 1:
		return found(candidates[0], StrategySingleCandidate)
	}

	anchors := runeOffsets(line, invoiceKeyword.FindAllStringIndex(line, -1))
	if len(anchors) == 0 {
		longest := candidates[0]
		for _, c := range candidates[1:] {
			if utf8.RuneCountInString(c) > utf8.RuneCountInString(longest) {
				longest = c
			}
		}
		return found(longest, StrategyLongest)
	}

	best, bestDist := "", -1
	for _, c := range candidates {
		for _, pos := range literalOffsets(line, c) {
			d := nearest(pos, anchors)
			if bestDist < 0 || d < bestDist {
				best, bestDist = c, d
			}
		}
	}
	return found(best, StrategyNearestInvoice)
}

// literalOffsets returns the rune offsets of every non-overlapping occurrence of sub.
func literalOffsets(s, sub string) []int {
	var byteOffsets [][]int
	for start := 0; start <= len(s); {
		i := strings.Index(s[start:], sub)
		if i < 0 {
			break
		}
		at := start + i
		byteOffsets = append(byteOffsets, []int{at, at + len(sub)})
		start = at + len(sub)
	}
	return runeOffsets(s, byteOffsets)
}

func runeOffsets(s string, byteIdx [][]int) []int {
	out := make([]int, 0, len(byteIdx))
	for _, loc := range byteIdx {
		out = append(out, utf8.RuneCountInString(s[:loc[0]]))
	}
	return out
}

func nearest(pos int, anchors []int) int {
	best := -1
	for _, a := range anchors {
		d := pos - a
		if d < 0 {
			d = -d
		}
		if best < 0 || d < best {
			best = d
		}
	}
	return best
}
