// src/models/statement.go
package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// CellKind discriminates the typed cell union produced by the spreadsheet
// reader. Keeping the ingestion boundary typed makes the downstream cleaning
// and inference logic total: every branch handles every kind.
type CellKind int

const (
	CellEmpty CellKind = iota
	CellText
	CellNumber
	CellDate
)

// Cell is a single spreadsheet cell after ingestion. Exactly one of the
// value fields is meaningful, selected by Kind.
type Cell struct {
	Kind   CellKind
	Text   string
	Number decimal.Decimal
	Date   time.Time
}

// EmptyCell returns the zero-value empty cell.
func EmptyCell() Cell { return Cell{Kind: CellEmpty} }

// TextCell wraps a string value.
func TextCell(s string) Cell { return Cell{Kind: CellText, Text: s} }

// NumberCell wraps a numeric value.
func NumberCell(d decimal.Decimal) Cell { return Cell{Kind: CellNumber, Number: d} }

// DateCell wraps a native temporal value.
func DateCell(t time.Time) Cell { return Cell{Kind: CellDate, Date: t} }

// IsEmpty reports whether the cell carries no usable value.
func (c Cell) IsEmpty() bool {
	return c.Kind == CellEmpty || (c.Kind == CellText && c.Text == "")
}

// DisplayString renders the cell the way it would appear to a user.
// Dates are formatted as day/month/year, matching bank statement conventions.
func (c Cell) DisplayString() string {
	switch c.Kind {
	case CellText:
		return c.Text
	case CellNumber:
		return c.Number.String()
	case CellDate:
		return c.Date.Format("02/01/2006")
	default:
		return ""
	}
}

// RawGrid is the rectangular cell grid produced by the spreadsheet reader.
// It has no inherent header; schema inference locates one.
type RawGrid [][]Cell

// Row returns the row at index i, or nil when out of range. Spreadsheets
// frequently produce ragged grids, so callers must not index directly.
func (g RawGrid) Row(i int) []Cell {
	if i < 0 || i >= len(g) {
		return nil
	}
	return g[i]
}

// CellAt returns the cell at (row, col), degrading to an empty cell when the
// coordinates fall outside the (possibly ragged) grid.
func (g RawGrid) CellAt(row, col int) Cell {
	r := g.Row(row)
	if col < 0 || col >= len(r) {
		return EmptyCell()
	}
	return r[col]
}

// ColumnUnresolved marks a semantic role with no known column.
const ColumnUnresolved = -1

// ColumnMapping maps the three semantic roles of a statement to concrete
// column indexes of the grid's header row. ColumnUnresolved means the role
// could not be tied to any column.
type ColumnMapping struct {
	DateColumn        int `json:"dateColumn"`
	DescriptionColumn int `json:"descriptionColumn"`
	AmountColumn      int `json:"amountColumn"`
}

// NewColumnMapping returns a mapping with every role unresolved.
func NewColumnMapping() ColumnMapping {
	return ColumnMapping{
		DateColumn:        ColumnUnresolved,
		DescriptionColumn: ColumnUnresolved,
		AmountColumn:      ColumnUnresolved,
	}
}

// Complete reports whether all three roles are resolved. Extraction cannot
// proceed on a partial mapping.
func (m ColumnMapping) Complete() bool {
	return m.DateColumn != ColumnUnresolved &&
		m.DescriptionColumn != ColumnUnresolved &&
		m.AmountColumn != ColumnUnresolved
}

// Missing lists the role names still unresolved, in stable order.
func (m ColumnMapping) Missing() []string {
	var missing []string
	if m.DateColumn == ColumnUnresolved {
		missing = append(missing, "date")
	}
	if m.DescriptionColumn == ColumnUnresolved {
		missing = append(missing, "description")
	}
	if m.AmountColumn == ColumnUnresolved {
		missing = append(missing, "amount")
	}
	return missing
}

// Resolved lists the resolved role names with their column indexes.
func (m ColumnMapping) Resolved() map[string]int {
	resolved := make(map[string]int)
	if m.DateColumn != ColumnUnresolved {
		resolved["date"] = m.DateColumn
	}
	if m.DescriptionColumn != ColumnUnresolved {
		resolved["description"] = m.DescriptionColumn
	}
	if m.AmountColumn != ColumnUnresolved {
		resolved["amount"] = m.AmountColumn
	}
	return resolved
}

// Transaction is one credit row of the statement after extraction.
// The amount is the taxable base (tax-exclusive) and is always positive.
// Instances are immutable once created.
type Transaction struct {
	Date        string          `json:"date"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
}

// Excluded-row reasons. These surface verbatim in the excluded report.
const (
	ReasonExpenseOrZero = "expense or zero amount"
	ReasonZeroAmount    = "zero amount"
)

// ExcludedTransaction is a statement row that did not become a Transaction,
// tagged with the reason. Purely informational; never aborts a batch.
type ExcludedTransaction struct {
	Date        string          `json:"date"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Reason      string          `json:"reason"`
}

// ExtractionInfo summarizes one extraction pass over a grid.
type ExtractionInfo struct {
	TotalRows     int           `json:"totalRows"`
	IncludedCount int           `json:"includedCount"`
	ExcludedCount int           `json:"excludedCount"`
	Mapping       ColumnMapping `json:"mapping"`
}
