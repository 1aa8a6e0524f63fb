package invoice

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/joseph-ayodele/invoice-extractor/constants"
)

var recordSchema = map[string]any{
	"type": "object",
	"required": []string{
		"invoice_number", "invoice_date", "invoice_id",
		"total_amount", "source_file", "extraction_method",
	},
	"additionalProperties": false,
	"properties": map[string]any{
		"invoice_number": map[string]any{"type": []string{"string", "null"}},
		"invoice_date":   map[string]any{"type": []string{"string", "null"}},
		"invoice_id":     map[string]any{"type": []string{"string", "null"}},
		"total_amount":   map[string]any{"type": []string{"number", "null"}, "minimum": 0},
		"source_file":    map[string]any{"type": "string", "minLength": 1},
		"extraction_method": map[string]any{
			"type": "string",
			"enum": []string{constants.BackendTextLayerA, constants.BackendTextLayerB, constants.BackendOCR},
		},
	},
}

var compiledSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	b, err := json.Marshal(recordSchema)
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("invoice_record.json", bytes.NewReader(b)); err != nil {
		return nil, fmt.Errorf("add schema: %w", err)
	}
	return compiler.Compile("invoice_record.json")
})

// Validate checks the record's JSON form against the record schema.
func Validate(rec Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}
	return ValidateJSON(data)
}

// ValidateJSON checks an encoded record, such as a previously written .invoice.json.
func ValidateJSON(data []byte) error {
	schema, err := compiledSchema()
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal record: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("record does not match schema: %w", err)
	}
	return nil
}
