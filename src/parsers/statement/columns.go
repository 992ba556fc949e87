// src/parsers/statement/columns.go
package statement

import (
	"regexp"
	"strings"

	"github.com/catearacil/facturas/src/models"
)

// columnResolver is one strategy for tying semantic roles to columns. Each
// resolver fills in whatever roles it can and leaves the rest unresolved;
// resolvers run in order until the mapping is complete. New heuristics slot
// in by appending to defaultResolvers.
type columnResolver interface {
	Name() string
	Resolve(grid models.RawGrid, headerRow int, m models.ColumnMapping) models.ColumnMapping
}

var defaultResolvers = []columnResolver{
	headerNameResolver{},
	contentInferenceResolver{},
}

// ResolveColumns maps the date, description and amount roles to column
// indexes using the resolver chain: exact header-name matching first,
// content-based inference for whatever is left. Roles still unresolved after
// the chain stay unresolved; the caller decides how to report that.
func ResolveColumns(grid models.RawGrid, headerRow int) models.ColumnMapping {
	m := models.NewColumnMapping()
	for _, resolver := range defaultResolvers {
		if m.Complete() {
			break
		}
		m = resolver.Resolve(grid, headerRow, m)
	}
	return m
}

// headerNameResolver matches header cell names against per-role priority
// lists. The first list entry that matches any column wins the role, so
// "fecha operación" beats a bare "fecha" appearing earlier in the sheet.
type headerNameResolver struct{}

func (headerNameResolver) Name() string { return "header-name" }

// Exact-match priority lists per role, most specific first.
var (
	datePriorityNames = []string{"fecha operación", "fecha operacion", "fechaoperación", "fechaoperacion"}
	descExactNames    = []string{"concepto"}
	descAltNames      = []string{"descripción", "descripcion", "detalle", "descrip"}
	amountExactNames  = []string{"importe"}
	amountAltNames    = []string{"cantidad", "monto", "valor", "amount"}
)

func (headerNameResolver) Resolve(grid models.RawGrid, headerRow int, m models.ColumnMapping) models.ColumnMapping {
	header := grid.Row(headerRow)
	names := make([]string, len(header))
	for i, cell := range header {
		names[i] = strings.ToLower(strings.TrimSpace(cell.DisplayString()))
	}

	if m.DateColumn == models.ColumnUnresolved {
		if idx, ok := findExact(names, datePriorityNames); ok {
			m.DateColumn = idx
		} else if idx, ok := findContaining(names, "fecha"); ok {
			// Generic fallback: the first column mentioning "fecha" at all,
			// typically "Fecha Valor" when "Fecha Operación" is absent.
			m.DateColumn = idx
		}
	}

	if m.DescriptionColumn == models.ColumnUnresolved {
		if idx, ok := findExact(names, descExactNames); ok {
			m.DescriptionColumn = idx
		} else if idx, ok := findExact(names, descAltNames); ok {
			m.DescriptionColumn = idx
		}
	}

	if m.AmountColumn == models.ColumnUnresolved {
		if idx, ok := findExact(names, amountExactNames); ok {
			m.AmountColumn = idx
		} else if idx, ok := findExact(names, amountAltNames); ok {
			m.AmountColumn = idx
		}
	}

	return m
}

// findExact returns the index of the first column whose name equals any of
// the candidates, honoring candidate priority over column order.
func findExact(names []string, candidates []string) (int, bool) {
	for _, candidate := range candidates {
		for i, name := range names {
			if name == candidate {
				return i, true
			}
		}
	}
	return 0, false
}

func findContaining(names []string, substr string) (int, bool) {
	for i, name := range names {
		if strings.Contains(name, substr) {
			return i, true
		}
	}
	return 0, false
}

// contentInferenceResolver inspects a sample of data rows when header names
// gave nothing, which happens with unlabeled exports ("Unnamed" columns).
type contentInferenceResolver struct{}

func (contentInferenceResolver) Name() string { return "content-inference" }

// contentSampleRows caps how many data rows the inference looks at.
const contentSampleRows = 10

var textualDatePattern = regexp.MustCompile(`^\d{1,2}[/-]\d{1,2}[/-]\d{2,4}$|^\d{4}[/-]\d{1,2}[/-]\d{1,2}$`)

// numericJunkPattern matches strings made only of digits, whitespace and
// number punctuation; those do not count as descriptive text.
var numericJunkPattern = regexp.MustCompile(`^[\d\s,.\-]+$`)

func (contentInferenceResolver) Resolve(grid models.RawGrid, headerRow int, m models.ColumnMapping) models.ColumnMapping {
	dataStart := headerRow + 1
	if dataStart >= len(grid) {
		return m // no data rows, nothing to sample
	}
	sampleEnd := dataStart + contentSampleRows
	if sampleEnd > len(grid) {
		sampleEnd = len(grid)
	}
	columnCount := widestRow(grid, dataStart, sampleEnd)

	// Date and amount claim columns first; description explicitly excludes
	// whatever they claimed, since free text is the loosest signal.
	if m.DateColumn == models.ColumnUnresolved {
		for col := 0; col < columnCount; col++ {
			if col == m.AmountColumn || col == m.DescriptionColumn {
				continue
			}
			if sampleMatches(grid, dataStart, sampleEnd, col, isDateLike, 50) {
				m.DateColumn = col
				break
			}
		}
	}

	if m.AmountColumn == models.ColumnUnresolved {
		for col := 0; col < columnCount; col++ {
			if col == m.DateColumn || col == m.DescriptionColumn {
				continue
			}
			if sampleMatches(grid, dataStart, sampleEnd, col, isAmountLike, 50) {
				m.AmountColumn = col
				break
			}
		}
	}

	if m.DescriptionColumn == models.ColumnUnresolved {
		for col := 0; col < columnCount; col++ {
			if col == m.DateColumn || col == m.AmountColumn {
				continue
			}
			if sampleMatches(grid, dataStart, sampleEnd, col, isDescriptionLike, 30) {
				m.DescriptionColumn = col
				break
			}
		}
	}

	return m
}

// sampleMatches reports whether at least thresholdPct percent of the
// non-empty sampled cells in the column satisfy the predicate.
func sampleMatches(grid models.RawGrid, from, to, col int, predicate func(models.Cell) bool, thresholdPct int) bool {
	nonEmpty, matched := 0, 0
	for row := from; row < to; row++ {
		cell := grid.CellAt(row, col)
		if cell.IsEmpty() {
			continue
		}
		nonEmpty++
		if predicate(cell) {
			matched++
		}
	}
	if nonEmpty == 0 {
		return false
	}
	return matched*100 >= nonEmpty*thresholdPct
}

func isDateLike(cell models.Cell) bool {
	if cell.Kind == models.CellDate {
		return true
	}
	return textualDatePattern.MatchString(strings.TrimSpace(cell.DisplayString()))
}

func isAmountLike(cell models.Cell) bool {
	return !CleanAmount(cell).IsZero()
}

func isDescriptionLike(cell models.Cell) bool {
	if cell.Kind != models.CellText {
		return false
	}
	text := cell.Text
	return len(text) > 5 && !numericJunkPattern.MatchString(text)
}

func widestRow(grid models.RawGrid, from, to int) int {
	widest := 0
	for row := from; row < to; row++ {
		if n := len(grid.Row(row)); n > widest {
			widest = n
		}
	}
	return widest
}
