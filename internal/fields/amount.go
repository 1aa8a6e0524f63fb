package fields

import (
	"regexp"
	"strconv"
	"strings"
)

const (
	currency    = `(?:₹|rs\.?|inr)`
	amountShape = `[0-9][0-9,]*(?:\.\d{1,2})?`

	// anything on the same line, then an optional currency marker
	laterSep = `\b.*?` + currency + `?\s*`
)

var totalRules = MustCompile(
	Rule{Name: "grand_total", Label: `grand\s*total`, Sep: laterSep, Value: amountShape},
	Rule{Name: "invoice_total", Label: `invoice\s*total`, Sep: laterSep, Value: amountShape},
	Rule{Name: "total_amount", Label: `total\s*(?:amount|payable)?`, Sep: laterSep, Value: amountShape},
	Rule{Name: "amount_due", Label: `amount\s*due`, Sep: laterSep, Value: amountShape},
	Rule{Name: "balance_due", Label: `balance\s*due`, Sep: laterSep, Value: amountShape},
	Rule{Name: "net_amount", Label: `net\s*amount`, Sep: laterSep, Value: amountShape},
	Rule{Name: "total_adjacent_currency", Label: `total`, Sep: `\b\s*` + currency + `?\s*`, Value: amountShape},
	Rule{Name: "total_later_currency", Label: `total`, Sep: `\b.*?` + currency + `\s*`, Value: amountShape},
)

// StrategyCurrencyMax marks a total chosen as the largest currency-prefixed amount.
const StrategyCurrencyMax = "fallback_currency_max"

var (
	currencyAmount = regexp.MustCompile(`(?im)(?:₹|\brs\.?|\binr)\s*(` + amountShape + `)\b`)
	notAmountChar  = regexp.MustCompile(`[^0-9.]`)
)

// TotalAmount extracts the invoice total. Without a labelled match it takes the
// numeric maximum of every currency-prefixed amount in the text.
func TotalAmount(v Views) AmountValue {
	raw, strategy, ok := totalRules.FirstMatch(v.Text)
	if !ok || raw == "" {
		raw, strategy = largestCurrencyAmount(v.Text)
	}
	if raw == "" {
		return AmountValue{}
	}
	raw = strings.TrimSpace(strings.ReplaceAll(raw, ",", ""))
	return AmountValue{Value: SafeParseAmount(raw), Raw: raw, Strategy: strategy}
}

func largestCurrencyAmount(text string) (string, string) {
	var best string
	var bestVal float64
	for _, m := range currencyAmount.FindAllStringSubmatch(text, -1) {
		f := SafeParseAmount(m[1])
		if f == nil {
			continue
		}
		if best == "" || *f > bestVal {
			best, bestVal = m[1], *f
		}
	}
	if best == "" {
		return "", ""
	}
	return best, StrategyCurrencyMax
}

// SafeParseAmount keeps only digits and decimal points. When several points
// remain the first is the decimal separator and later groups are appended to
// the fraction ("1.234.56" -> 1.23456). Empty or unparseable input yields nil.
func SafeParseAmount(s string) *float64 {
	cleaned := notAmountChar.ReplaceAllString(s, "")
	if cleaned == "" {
		return nil
	}
	if parts := strings.Split(cleaned, "."); len(parts) > 2 {
		cleaned = parts[0] + "." + strings.Join(parts[1:], "")
	}
	f, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return nil
	}
	return &f
}
