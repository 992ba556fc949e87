// src/parsers/statement/reader.go
package statement

import (
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/catearacil/facturas/src/models"
)

// plainNumberPattern accepts values that are nothing but digits, separators
// and a sign. Anything else stays text and is left to the amount-cleaning
// rule further down the pipeline.
var plainNumberPattern = regexp.MustCompile(`^[-+]?[0-9][0-9.,]*$`)

// dateLayouts are the cell formats excelize renders temporal values into,
// plus the textual date shapes seen in exported statements.
var dateLayouts = []string{
	"02/01/2006",
	"2/1/2006",
	"02-01-2006",
	"2006-01-02",
	"01-02-06",
	"1/2/06",
}

// ReadGrid reads the first sheet of an XLSX workbook into a typed cell grid.
// No header detection happens here; the grid is handed to schema inference
// as-is.
func ReadGrid(r io.Reader) (models.RawGrid, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open spreadsheet: %w", err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, fmt.Errorf("spreadsheet has no sheets")
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows from sheet %q: %w", sheetName, err)
	}

	grid := make(models.RawGrid, 0, len(rows))
	for _, row := range rows {
		cells := make([]models.Cell, 0, len(row))
		for _, raw := range row {
			cells = append(cells, SniffCell(raw))
		}
		grid = append(grid, cells)
	}
	return grid, nil
}

// SniffCell classifies one raw cell value into the typed cell union.
// Dates are recognized before numbers so that formats like "01-02-06" do not
// get swallowed by the numeric branch.
func SniffCell(raw string) models.Cell {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return models.EmptyCell()
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, trimmed); err == nil {
			return models.DateCell(t)
		}
	}

	if plainNumberPattern.MatchString(trimmed) {
		// European decimal comma is a supported numeric encoding at the
		// ingestion boundary. Values with both separators ("1.234,56") fail
		// this parse and remain text.
		normalized := trimmed
		if strings.Count(trimmed, ",") == 1 && !strings.Contains(trimmed, ".") {
			normalized = strings.Replace(trimmed, ",", ".", 1)
		}
		if d, err := decimal.NewFromString(normalized); err == nil {
			return models.NumberCell(d)
		}
	}

	return models.TextCell(trimmed)
}
