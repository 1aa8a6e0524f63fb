package fields

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewViews(t *testing.T) {
	v := NewViews("Invoice \t No:\t\tA1\n\nTotal   5")
	assert.Equal(t, "Invoice No: A1\n\nTotal 5", v.Text)
	assert.Equal(t, "Invoice No: A1 Total 5", v.OneLine)
}

func TestNewViews_SpaceSeparators(t *testing.T) {
	v := NewViews("Invoice\u00a0No:\u2002\u00a0A1\nTotal\u202f5")
	assert.Equal(t, "Invoice No: A1\nTotal 5", v.Text)
	assert.Equal(t, "Invoice No: A1 Total 5", v.OneLine)
}

func TestLabelRules_NonBreakingSpace(t *testing.T) {
	text := "Invoice\u00a0No:\u00a0ZX-99887\nInvoice\u00a0Date:\u00a012/03/2024\nGrand\u00a0Total:\u00a0\u20b9\u00a01,250.00"
	f := Extract(text)

	require.NotNil(t, f.InvoiceNumber.Value)
	assert.Equal(t, "ZX-99887", *f.InvoiceNumber.Value)
	assert.NotContains(t, f.InvoiceNumber.Strategy, "fallback")

	require.NotNil(t, f.InvoiceDate.Value)
	assert.Equal(t, "12/03/2024", *f.InvoiceDate.Value)

	require.NotNil(t, f.TotalAmount.Value)
	assert.InDelta(t, 1250.0, *f.TotalAmount.Value, 1e-9)
}

func TestFirstMatch(t *testing.T) {
	rs := MustCompile(
		Rule{Name: "strict", Label: `code`, Sep: `\s*:\s*`, Value: `\d{4}`},
		Rule{Name: "loose", Label: `code`, Sep: `\s*:?\s*`, Value: `\w+`},
	)
	require.Len(t, rs.rules, 2)

	v, rule, ok := rs.FirstMatch("CODE: 1234")
	require.True(t, ok)
	assert.Equal(t, "1234", v)
	assert.Equal(t, "strict", rule)

	v, rule, ok = rs.FirstMatch("code abc")
	require.True(t, ok)
	assert.Equal(t, "abc", v)
	assert.Equal(t, "loose", rule)

	_, _, ok = rs.FirstMatch("nothing here")
	assert.False(t, ok)
}

func TestFirstGroup_FallsBackToWholeMatch(t *testing.T) {
	assert.Equal(t, "whole", firstGroup([]string{"whole", ""}))
	assert.Equal(t, "b", firstGroup([]string{"whole", "", "b"}))
}

func TestInvoiceNumber(t *testing.T) {
	cases := []struct {
		name     string
		text     string
		want     string
		strategy string
	}{
		{"segmented", "Tax Invoice\nInvoice No: INV/2024/001\n", "INV/2024/001", "invoice_no_segmented"},
		{"spaces around separators", "Invoice No : INV / 2024 - 001", "INV/2024-001", "invoice_no_segmented"},
		{"generic code", "Invoice Number: A12345", "A12345", "invoice_no"},
		{"hash label", "INVOICE # 98765", "98765", "invoice_no"},
		{"inv no", "Inv. No. GT-55", "GT-55", "inv_no_segmented"},
		{"bill number", "Bill Number: B778", "B778", "bill_no"},
		{"reference is last resort", "Ref No: R-0091", "R-0091", "reference_no"},
		{"single fallback candidate", "Receipt P24251106 issued", "P24251106", StrategySingleCandidate},
		{"nearest to keyword", "Order 12345678 placed. Invoice P24251106 attached", "P24251106", StrategyNearestInvoice},
		{"longest without keyword", "Order 12345 batch 1234567890", "1234567890", StrategyLongest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := InvoiceNumber(NewViews(tc.text))
			require.NotNil(t, got.Value)
			assert.Equal(t, tc.want, *got.Value)
			assert.Equal(t, tc.strategy, got.Strategy)
		})
	}
}

func TestInvoiceNumber_None(t *testing.T) {
	got := InvoiceNumber(NewViews("Thank you for your business"))
	assert.Nil(t, got.Value)
	assert.Empty(t, got.String())
}

func TestInvoiceNumber_NearestUsesEveryOccurrence(t *testing.T) {
	// 11111 appears twice; its second occurrence sits right after the keyword
	text := "22222 then 11111 then 33333 and invoice 11111"
	got := InvoiceNumber(NewViews(text))
	require.NotNil(t, got.Value)
	assert.Equal(t, "11111", *got.Value)
}

func TestInvoiceDate(t *testing.T) {
	cases := []struct {
		name     string
		text     string
		want     string
		strategy string
	}{
		{"numeric", "Invoice Date: 12/03/2024", "12/03/2024", "invoice_date_numeric"},
		{"iso", "Date of issue 2024-03-12", "2024-03-12", "invoice_date_iso"},
		{"textual month", "Dated 5 March 2024", "5 March 2024", "invoice_date_month"},
		{"textual month with separators", "Invoice Date: 07-Jan-24", "07-Jan-24", "invoice_date_month_sep"},
		{"ack date", "Ack Date : 07-Jan-24", "07-Jan-24", "ack_date"},
		{"bare date label", "Date: 2024.01.31", "2024.01.31", "date_iso"},
		{"issue label beats bare label", "Date: 01/01/2020\nInvoice Date: 02/02/2021", "02/02/2021", "invoice_date_numeric"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := InvoiceDate(NewViews(tc.text))
			require.NotNil(t, got.Value)
			assert.Equal(t, tc.want, *got.Value)
			assert.Equal(t, tc.strategy, got.Strategy)
		})
	}

	assert.Nil(t, InvoiceDate(NewViews("Due on receipt")).Value)
}

func TestInvoiceID(t *testing.T) {
	irn := strings.Repeat("a1b2c3d4", 8)
	cases := []struct {
		name     string
		text     string
		want     string
		strategy string
	}{
		{"invoice id", "Invoice ID: ABC-123", "ABC-123", "invoice_id"},
		{"irn", "IRN: " + irn, irn, "irn"},
		{"ack no", "Ack No: 112410012345678", "112410012345678", "ack_no"},
		{"acknowledgement no", "Acknowledgement No 4455", "4455", "ack_no"},
		{"uuid", "UUID: 123e4567-e89b-12d3", "123e4567-e89b-12d3", "uuid"},
		{"irn outranks ack", "Ack No: 99999\nIRN: " + irn, irn, "irn"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := InvoiceID(NewViews(tc.text))
			require.NotNil(t, got.Value)
			assert.Equal(t, tc.want, *got.Value)
			assert.Equal(t, tc.strategy, got.Strategy)
		})
	}

	assert.Nil(t, InvoiceID(NewViews("Invoice No: 12345")).Value)
}

func TestTotalAmount(t *testing.T) {
	cases := []struct {
		name     string
		text     string
		want     float64
		raw      string
		strategy string
	}{
		{"grand total with rupee", "Grand Total: ₹ 1,234.50", 1234.5, "1234.50", "grand_total"},
		{"total amount rs", "Total Amount Rs. 2,000", 2000, "2000", "total_amount"},
		{"amount due", "Amount Due 75.25", 75.25, "75.25", "amount_due"},
		{"labelled total wins over larger amounts", "Amount ₹500 ... Total ₹1200", 1200, "1200", "total_amount"},
		{"currency fallback picks maximum", "Paid ₹500 and ₹1,200 later\nrs. 300 tip", 1200, "1200", StrategyCurrencyMax},
		{"unmatched label falls back", "Total: N/A\nPaid INR 800", 800, "800", StrategyCurrencyMax},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := TotalAmount(NewViews(tc.text))
			require.NotNil(t, got.Value)
			assert.InDelta(t, tc.want, *got.Value, 1e-9)
			assert.Equal(t, tc.raw, got.Raw)
			assert.Equal(t, tc.strategy, got.Strategy)
		})
	}

	none := TotalAmount(NewViews("no money mentioned"))
	assert.Nil(t, none.Value)
	assert.Empty(t, none.Raw)
}

func TestSafeParseAmount(t *testing.T) {
	cases := []struct {
		in   string
		want *float64
	}{
		{"1,234.56", ptr(1234.56)},
		{"1.234.56", ptr(1.23456)},
		{"₹ 99", ptr(99)},
		{"", nil},
		{"abc", nil},
		{".", nil},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			got := SafeParseAmount(tc.in)
			if tc.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.InDelta(t, *tc.want, *got, 1e-9)
		})
	}
}

func TestExtract_Idempotent(t *testing.T) {
	text := "TAX INVOICE\nInvoice No: INV/2024/001\nInvoice Date: 01-Apr-2024\nIRN: " +
		strings.Repeat("0f", 32) + "\nGrand Total ₹ 10,500.00\n"

	first := Extract(text)
	second := Extract(text)
	assert.Equal(t, first, second)

	require.NotNil(t, first.InvoiceNumber.Value)
	assert.Equal(t, "INV/2024/001", *first.InvoiceNumber.Value)
	require.NotNil(t, first.InvoiceDate.Value)
	assert.Equal(t, "01-Apr-2024", *first.InvoiceDate.Value)
	require.NotNil(t, first.InvoiceID.Value)
	assert.Equal(t, strings.Repeat("0f", 32), *first.InvoiceID.Value)
	require.NotNil(t, first.TotalAmount.Value)
	assert.InDelta(t, 10500.0, *first.TotalAmount.Value, 1e-9)
}

func TestExtract_EmptyText(t *testing.T) {
	f := Extract("")
	assert.Nil(t, f.InvoiceNumber.Value)
	assert.Nil(t, f.InvoiceDate.Value)
	assert.Nil(t, f.InvoiceID.Value)
	assert.Nil(t, f.TotalAmount.Value)
}

func ptr(f float64) *float64 { return &f }
