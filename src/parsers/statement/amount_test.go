// src/parsers/statement/amount_test.go
package statement

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/catearacil/facturas/src/models"
)

func TestCleanAmount(t *testing.T) {
	tests := []struct {
		name string
		cell models.Cell
		want string
	}{
		{"number passes through", models.NumberCell(decimal.RequireFromString("123.45")), "123.45"},
		{"decimal comma", models.TextCell("45,30"), "45.3"},
		{"negative decimal comma", models.TextCell("-45,30"), "-45.3"},
		{"plain period", models.TextCell("300.00"), "300"},
		{"currency symbol stripped", models.TextCell("300,00 €"), "300"},
		{"comma reads as decimal separator", models.TextCell("1,234"), "1.234"},
		{"pure text", models.TextCell("sin importe"), "0"},
		{"both separators unparsable", models.TextCell("1.234,56"), "0"},
		{"empty cell", models.EmptyCell(), "0"},
		{"date cell", models.DateCell(time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)), "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CleanAmount(tt.cell)
			assert.Equal(t, tt.want, got.String())
		})
	}
}
