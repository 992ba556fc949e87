// src/parsers/statement/extract.go
package statement

import (
	"fmt"
	"strings"

	"github.com/catearacil/facturas/src/models"
)

// MappingError is the input-shape failure raised when the column roles
// cannot all be resolved. It enumerates what was and was not found so the
// user can fix the file instead of guessing.
type MappingError struct {
	Missing     []string
	Resolved    map[string]int
	ColumnNames []string
}

func (e *MappingError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "columns not found: %s", strings.Join(e.Missing, ", "))
	b.WriteString("; columns present in the file: ")
	if len(e.ColumnNames) == 0 {
		b.WriteString("(none)")
	} else {
		b.WriteString(strings.Join(e.ColumnNames, ", "))
	}
	if len(e.Resolved) > 0 {
		b.WriteString("; columns identified:")
		for _, role := range []string{"date", "description", "amount"} {
			if idx, ok := e.Resolved[role]; ok {
				fmt.Fprintf(&b, " %s=%d", role, idx)
			}
		}
	}
	return b.String()
}

// Extract applies a complete column mapping to every data row of the grid
// and classifies each row as an included transaction (strictly positive
// amount) or an excluded one with a stated reason. A single bad row never
// aborts the batch.
func Extract(grid models.RawGrid, headerRow int, mapping models.ColumnMapping) ([]models.Transaction, []models.ExcludedTransaction, models.ExtractionInfo) {
	var (
		transactions []models.Transaction
		excluded     []models.ExcludedTransaction
	)

	dataStart := headerRow + 1
	totalRows := 0
	for rowIdx := dataStart; rowIdx < len(grid); rowIdx++ {
		row := grid.Row(rowIdx)
		if rowEmpty(row) {
			continue
		}
		totalRows++

		date := formatDate(grid.CellAt(rowIdx, mapping.DateColumn))
		description := grid.CellAt(rowIdx, mapping.DescriptionColumn).DisplayString()

		// A ragged row that does not reach the amount column cannot be
		// classified; record it and move on.
		if mapping.AmountColumn >= len(row) {
			excluded = append(excluded, models.ExcludedTransaction{
				Date:        date,
				Description: description,
				Reason:      fmt.Sprintf("error processing: row %d has %d cells, amount column is %d", rowIdx+1, len(row), mapping.AmountColumn+1),
			})
			continue
		}

		amount := CleanAmount(row[mapping.AmountColumn])
		switch {
		case amount.IsPositive():
			transactions = append(transactions, models.Transaction{
				Date:        date,
				Description: description,
				Amount:      amount,
			})
		case amount.IsNegative():
			excluded = append(excluded, models.ExcludedTransaction{
				Date:        date,
				Description: description,
				Amount:      amount,
				Reason:      models.ReasonExpenseOrZero,
			})
		default:
			excluded = append(excluded, models.ExcludedTransaction{
				Date:        date,
				Description: description,
				Amount:      amount,
				Reason:      models.ReasonZeroAmount,
			})
		}
	}

	info := models.ExtractionInfo{
		TotalRows:     totalRows,
		IncludedCount: len(transactions),
		ExcludedCount: len(excluded),
		Mapping:       mapping,
	}
	return transactions, excluded, info
}

// ProcessGrid runs the whole ingestion front: locate the header, resolve
// columns, and extract transactions. When no header row is found it falls
// back to treating the first row as the header and leans on content
// inference; an incomplete mapping after that is an input-shape error.
func ProcessGrid(grid models.RawGrid) ([]models.Transaction, []models.ExcludedTransaction, models.ExtractionInfo, error) {
	if len(grid) == 0 {
		return nil, nil, models.ExtractionInfo{}, fmt.Errorf("spreadsheet contains no rows")
	}

	headerRow, found := LocateHeader(grid, DefaultMaxScanRows)
	if !found {
		headerRow = 0
	}

	mapping := ResolveColumns(grid, headerRow)
	if !mapping.Complete() {
		return nil, nil, models.ExtractionInfo{Mapping: mapping}, &MappingError{
			Missing:     mapping.Missing(),
			Resolved:    mapping.Resolved(),
			ColumnNames: headerNames(grid, headerRow),
		}
	}

	transactions, excludedTxs, info := Extract(grid, headerRow, mapping)
	return transactions, excludedTxs, info, nil
}

func headerNames(grid models.RawGrid, headerRow int) []string {
	var names []string
	for _, cell := range grid.Row(headerRow) {
		names = append(names, cell.DisplayString())
	}
	return names
}

func formatDate(cell models.Cell) string {
	// DisplayString already renders native temporal cells as day/month/year.
	return cell.DisplayString()
}

func rowEmpty(row []models.Cell) bool {
	for _, cell := range row {
		if !cell.IsEmpty() {
			return false
		}
	}
	return true
}
