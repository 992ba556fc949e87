// src/parsers/statement/header.go
package statement

import (
	"strings"

	"github.com/catearacil/facturas/src/models"
)

// DefaultMaxScanRows bounds the header search. Bank exports put the header
// somewhere in the first screenful; scanning further only finds data rows
// that happen to contain keyword-like text.
const DefaultMaxScanRows = 20

// Keyword sets for recognizing a header row. Matching is substring-based on
// lower-cased, trimmed cell text, so "Fecha Operación" hits both the date
// and (via "valor") nothing else.
var (
	dateKeywords        = []string{"fecha", "operación", "operacion", "valor", "date"}
	descriptionKeywords = []string{"concepto", "descripción", "descripcion", "detalle", "motivo"}
	amountKeywords      = []string{"importe", "cantidad", "monto", "valor", "euros", "eur"}
)

// LocateHeader scans at most maxScanRows rows from the top of the grid and
// returns the index of the first row that looks like a column header: a row
// where at least two of the three semantic roles (date, description, amount)
// have a keyword match. The second return value is false when no row in
// range qualifies.
func LocateHeader(grid models.RawGrid, maxScanRows int) (int, bool) {
	if maxScanRows <= 0 || maxScanRows > len(grid) {
		maxScanRows = len(grid)
	}

	for rowIdx := 0; rowIdx < maxScanRows; rowIdx++ {
		row := grid.Row(rowIdx)
		if len(row) == 0 {
			continue
		}

		var values []string
		for _, cell := range row {
			values = append(values, strings.ToLower(strings.TrimSpace(cell.DisplayString())))
		}

		dateHits := countKeywordHits(values, dateKeywords)
		descHits := countKeywordHits(values, descriptionKeywords)
		amountHits := countKeywordHits(values, amountKeywords)

		rolesMatched := 0
		for _, hits := range []int{dateHits, descHits, amountHits} {
			if hits > 0 {
				rolesMatched++
			}
		}
		if rolesMatched >= 2 {
			return rowIdx, true
		}
	}
	return 0, false
}

func countKeywordHits(values []string, keywords []string) int {
	hits := 0
	for _, v := range values {
		if v == "" {
			continue
		}
		for _, kw := range keywords {
			if strings.Contains(v, kw) {
				hits++
			}
		}
	}
	return hits
}
