package fields

const (
	dateSep     = `\b\s*[:\-]?\s*`
	monthName   = `(?:Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Sept|Oct|Nov|Dec)[a-z]*`
	isoDate     = `\d{4}[\/\-\.\s]\d{1,2}[\/\-\.\s]\d{1,2}`
	regionDate  = `\d{1,2}[\/\-\.\s]\d{1,2}[\/\-\.\s]\d{2,4}`
	textDate    = `\d{1,2}\s*` + monthName + `\s*\d{2,4}`
	textDateSep = `\d{1,2}\s*[-\/\.]\s*` + monthName + `\s*[-\/\.]\s*\d{2,4}`

	issueDateLabel = `(?:invoice\s*date|date\s*of\s*issue|dated)`
	ackDateLabel   = `(?:ack\s*date)`
	dateLabel      = `date`
)

var dateRules = MustCompile(
	Rule{Name: "invoice_date_iso", Label: issueDateLabel, Sep: dateSep, Value: isoDate},
	Rule{Name: "invoice_date_numeric", Label: issueDateLabel, Sep: dateSep, Value: regionDate},
	Rule{Name: "invoice_date_month", Label: issueDateLabel, Sep: dateSep, Value: textDate},
	Rule{Name: "invoice_date_month_sep", Label: issueDateLabel, Sep: dateSep, Value: textDateSep},
	Rule{Name: "ack_date", Label: ackDateLabel, Sep: dateSep, Value: textDateSep},
	Rule{Name: "date_iso", Label: dateLabel, Sep: dateSep, Value: isoDate},
	Rule{Name: "date_numeric", Label: dateLabel, Sep: dateSep, Value: regionDate},
	Rule{Name: "date_month", Label: dateLabel, Sep: dateSep, Value: textDate},
	Rule{Name: "date_month_sep", Label: dateLabel, Sep: dateSep, Value: textDateSep},
)

// InvoiceDate returns the date exactly as written; it is not parsed or checked.
func InvoiceDate(v Views) FieldValue {
	if d, rule, ok := dateRules.FirstMatch(v.Text); ok && d != "" {
		return found(d, rule)
	}
	return FieldValue{}
}
