// src/models/invoice_test.go
package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInvoiceNumberString(t *testing.T) {
	tests := []struct {
		name   string
		number InvoiceNumber
		want   string
	}{
		{"typical", InvoiceNumber{Year: 2025, Sequence: 263}, "T250263"},
		{"first of year", InvoiceNumber{Year: 2026, Sequence: 1}, "T260001"},
		{"sequence wider than padding", InvoiceNumber{Year: 2025, Sequence: 12345}, "T2512345"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.number.String())
		})
	}
}

func TestParseInvoiceNumber(t *testing.T) {
	tests := []struct {
		input    string
		want     InvoiceNumber
		wantOK   bool
	}{
		{"T250263", InvoiceNumber{Year: 2025, Sequence: 263}, true},
		{"T250050", InvoiceNumber{Year: 2025, Sequence: 50}, true},
		{"T260001", InvoiceNumber{Year: 2026, Sequence: 1}, true},
		// Legacy 4-digit-year encodings seen in older history records.
		{"T2025026", InvoiceNumber{Year: 2025, Sequence: 26}, true},
		{"T20250264", InvoiceNumber{Year: 2025, Sequence: 264}, true},
		{"", InvoiceNumber{}, false},
		{"T", InvoiceNumber{}, false},
		{"T25", InvoiceNumber{}, false},
		{"F250263", InvoiceNumber{}, false},
		{"T25026X", InvoiceNumber{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := ParseInvoiceNumber(tt.input)
			require.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestParseInvoiceNumberRoundTrip(t *testing.T) {
	original := InvoiceNumber{Year: 2025, Sequence: 264}
	parsed, ok := ParseInvoiceNumber(original.String())
	require.True(t, ok)
	assert.Equal(t, original, parsed)
}
