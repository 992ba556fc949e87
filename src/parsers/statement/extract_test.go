// src/parsers/statement/extract_test.go
package statement

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/catearacil/facturas/src/models"
)

func TestProcessGridClassifiesRows(t *testing.T) {
	rows := [][]string{
		{"Fecha Operación", "Concepto", "Importe"},
		{"15/01/2025", "TRANSFERENCIA RECIBIDA", "300,00"},
		{"16/01/2025", "RECIBO LUZ", "-45,30"},
		{"17/01/2025", "AJUSTE", "0,00"},
		{"", "", ""},
		{"20/01/2025", "PAGO CLIENTE", "640,00"},
	}

	transactions, excluded, info, err := ProcessGrid(gridFromStrings(rows))
	require.NoError(t, err)

	require.Len(t, transactions, 2)
	assert.Equal(t, "15/01/2025", transactions[0].Date)
	assert.Equal(t, "TRANSFERENCIA RECIBIDA", transactions[0].Description)
	assert.Equal(t, "300", transactions[0].Amount.String())
	assert.Equal(t, "PAGO CLIENTE", transactions[1].Description)

	require.Len(t, excluded, 2)
	assert.Equal(t, models.ReasonExpenseOrZero, excluded[0].Reason)
	assert.Equal(t, "-45.3", excluded[0].Amount.String())
	assert.Equal(t, models.ReasonZeroAmount, excluded[1].Reason)

	// The fully empty row is not counted at all.
	assert.Equal(t, 4, info.TotalRows)
	assert.Equal(t, 2, info.IncludedCount)
	assert.Equal(t, 2, info.ExcludedCount)
}

func TestProcessGridHeaderNotOnFirstRow(t *testing.T) {
	rows := [][]string{
		{"Banco Santander"},
		{""},
		{"Fecha Operación", "Concepto", "Importe"},
		{"15/01/2025", "TRANSFERENCIA", "300,00"},
	}

	transactions, _, _, err := ProcessGrid(gridFromStrings(rows))
	require.NoError(t, err)
	require.Len(t, transactions, 1)
	assert.Equal(t, "TRANSFERENCIA", transactions[0].Description)
}

func TestProcessGridUnresolvableColumns(t *testing.T) {
	rows := [][]string{
		{"a", "b", "c"},
		{"x", "y", "z"},
	}

	_, _, _, err := ProcessGrid(gridFromStrings(rows))
	require.Error(t, err)

	var mappingErr *MappingError
	require.True(t, errors.As(err, &mappingErr))
	assert.NotEmpty(t, mappingErr.Missing)
	assert.Contains(t, err.Error(), "columns not found")
}

func TestProcessGridEmpty(t *testing.T) {
	_, _, _, err := ProcessGrid(nil)
	assert.Error(t, err)
}

func TestExtractRaggedRow(t *testing.T) {
	grid := gridFromStrings([][]string{
		{"Fecha Operación", "Concepto", "Importe"},
		{"15/01/2025", "FILA CORTA"},
		{"16/01/2025", "FILA COMPLETA", "200,00"},
	})
	mapping := models.ColumnMapping{DateColumn: 0, DescriptionColumn: 1, AmountColumn: 2}

	transactions, excluded, _ := Extract(grid, 0, mapping)
	require.Len(t, transactions, 1)
	require.Len(t, excluded, 1)
	assert.Contains(t, excluded[0].Reason, "error processing")
	assert.Equal(t, "FILA CORTA", excluded[0].Description)
}

func TestExtractScrambledMapping(t *testing.T) {
	grid := gridFromStrings([][]string{
		{"Importe", "Fecha Operación", "Concepto"},
		{"300,00", "15/01/2025", "TRANSFERENCIA"},
	})
	mapping := models.ColumnMapping{DateColumn: 1, DescriptionColumn: 2, AmountColumn: 0}

	transactions, _, _ := Extract(grid, 0, mapping)
	require.Len(t, transactions, 1)
	assert.Equal(t, "15/01/2025", transactions[0].Date)
	assert.Equal(t, "TRANSFERENCIA", transactions[0].Description)
	assert.Equal(t, "300", transactions[0].Amount.String())
}
