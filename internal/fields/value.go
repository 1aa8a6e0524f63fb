package fields

// FieldValue is a nullable string with the rule or heuristic that produced it.
type FieldValue struct {
	Value    *string
	Strategy string
}

func found(v, strategy string) FieldValue {
	return FieldValue{Value: &v, Strategy: strategy}
}

// String returns the value or "" when absent.
func (f FieldValue) String() string {
	if f.Value == nil {
		return ""
	}
	return *f.Value
}

// AmountValue is a nullable amount with the raw matched token.
type AmountValue struct {
	Value    *float64
	Raw      string
	Strategy string
}
