// src/parsers/statement/amount.go
package statement

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/catearacil/facturas/src/models"
)

// amountJunkPattern strips everything that is not a digit, comma, period or
// minus sign before parsing, so "1.234,56 €" survives currency suffixes.
var amountJunkPattern = regexp.MustCompile(`[^\d,.\-]`)

// CleanAmount converts a cell to a monetary amount. Numeric cells pass
// through unchanged. Text cells are stripped of non-numeric characters, any
// comma is treated as a decimal separator (European convention; a value like
// "1,234" deliberately reads as 1.234), and the remainder parsed as a
// decimal. Anything unparsable, including date cells, yields zero — the
// extractor classifies such rows as excluded rather than failing.
func CleanAmount(cell models.Cell) decimal.Decimal {
	switch cell.Kind {
	case models.CellNumber:
		return cell.Number
	case models.CellText:
		cleaned := amountJunkPattern.ReplaceAllString(cell.Text, "")
		cleaned = strings.ReplaceAll(cleaned, ",", ".")
		d, err := decimal.NewFromString(cleaned)
		if err != nil {
			return decimal.Zero
		}
		return d
	default:
		return decimal.Zero
	}
}
