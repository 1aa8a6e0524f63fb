package fields

const idSep = `\b\s*[:\-]?\s*`

var idRules = MustCompile(
	Rule{Name: "invoice_id", Label: `invoice\s*id`, Sep: idSep, Value: genericCode},
	Rule{Name: "irn", Label: `irn`, Sep: idSep, Value: `[0-9a-f]{64}`},
	Rule{Name: "ack_no", Label: `(?:ack(?:nowledg(?:e)?ment)?\s*no\.?|ack\s*no\.?)`, Sep: idSep, Value: `[A-Za-z0-9\-\/]{4,}`},
	Rule{Name: "uuid", Label: `(?:uuid|unique\s*id)`, Sep: idSep, Value: `[A-Za-z0-9\-]{8,}`},
)

// InvoiceID targets the compliance identifiers (IRN, acknowledgement number,
// UUID) that sit next to the invoice number on e-invoices. No fallback.
func InvoiceID(v Views) FieldValue {
	if id, rule, ok := idRules.FirstMatch(v.Text); ok && id != "" {
		return found(id, rule)
	}
	return FieldValue{}
}
