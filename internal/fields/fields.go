package fields

// Fields holds the four extracted values for one document.
type Fields struct {
	InvoiceNumber FieldValue
	InvoiceDate   FieldValue
	InvoiceID     FieldValue
	TotalAmount   AmountValue
}

// Extract runs every field extractor over the same normalized views. It keeps
// no state between calls.
func Extract(raw string) Fields {
	v := NewViews(raw)
	return Fields{
		InvoiceNumber: InvoiceNumber(v),
		InvoiceDate:   InvoiceDate(v),
		InvoiceID:     InvoiceID(v),
		TotalAmount:   TotalAmount(v),
	}
}
