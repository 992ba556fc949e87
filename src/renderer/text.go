// src/renderer/text.go
package renderer

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/catearacil/facturas/src/config"
	"github.com/catearacil/facturas/src/models"
)

// TextRenderer writes each numbered invoice as a plain-text document in the
// output directory. It is the simplest implementation of the renderer
// collaborator; a PDF layout can replace it without touching the pipeline.
type TextRenderer struct {
	outputDir string
}

// NewTextRenderer creates the renderer; the output directory is created on
// first use.
func NewTextRenderer(outputDir string) *TextRenderer {
	return &TextRenderer{outputDir: outputDir}
}

// Render writes the invoice document and returns the issued-invoice record
// for the history.
func (r *TextRenderer) Render(draft models.InvoiceDraft, number string) (models.IssuedInvoice, error) {
	if err := os.MkdirAll(r.outputDir, 0o755); err != nil {
		return models.IssuedInvoice{}, fmt.Errorf("creating output directory: %w", err)
	}

	filename := fmt.Sprintf("FAC-%s.txt", number)
	path := filepath.Join(r.outputDir, filename)

	taxAmount := draft.TaxInclusiveTotal.Sub(draft.TaxableBase)

	var b strings.Builder
	b.WriteString("FACTURA SIMPLIFICADA\n\n")
	fmt.Fprintf(&b, "Número #  %s\n", number)
	fmt.Fprintf(&b, "Fecha     %s\n\n", draft.Date)
	if config.Cfg.CompanyName != "" {
		fmt.Fprintf(&b, "%s\n", config.Cfg.CompanyName)
	}
	if config.Cfg.CompanyAddress != "" {
		fmt.Fprintf(&b, "%s\n", config.Cfg.CompanyAddress)
	}
	if config.Cfg.CompanyTaxID != "" {
		fmt.Fprintf(&b, "CIF: %s\n", config.Cfg.CompanyTaxID)
	}
	if config.Cfg.CompanyPhone != "" {
		fmt.Fprintf(&b, "Tel: %s\n", config.Cfg.CompanyPhone)
	}
	if config.Cfg.CompanyEmail != "" {
		fmt.Fprintf(&b, "Email: %s\n", config.Cfg.CompanyEmail)
	}
	b.WriteString("\n")

	fmt.Fprintf(&b, "CONCEPTO: %s", draft.Description)
	if draft.TotalParts > 1 {
		fmt.Fprintf(&b, " (parte %d de %d)", draft.PartNumber, draft.TotalParts)
	}
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "BASE IMPONIBLE: %s€\n", FormatCurrency(draft.TaxableBase))
	fmt.Fprintf(&b, "IVA:            %s€\n", FormatCurrency(taxAmount))
	fmt.Fprintf(&b, "TOTAL:          %s€\n", FormatCurrency(draft.TaxInclusiveTotal))

	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return models.IssuedInvoice{}, fmt.Errorf("writing invoice %s: %w", number, err)
	}

	return models.IssuedInvoice{
		Number:   number,
		Date:     draft.Date,
		Base:     draft.TaxableBase,
		Total:    draft.TaxInclusiveTotal,
		Filename: filename,
	}, nil
}

// FormatCurrency renders an amount in European format: period as thousands
// separator, comma as decimal separator ("1.234,56").
func FormatCurrency(d decimal.Decimal) string {
	fixed := d.StringFixed(2)

	negative := strings.HasPrefix(fixed, "-")
	fixed = strings.TrimPrefix(fixed, "-")

	parts := strings.SplitN(fixed, ".", 2)
	intPart, fracPart := parts[0], parts[1]

	var grouped []string
	for len(intPart) > 3 {
		grouped = append([]string{intPart[len(intPart)-3:]}, grouped...)
		intPart = intPart[:len(intPart)-3]
	}
	grouped = append([]string{intPart}, grouped...)

	result := strings.Join(grouped, ".") + "," + fracPart
	if negative {
		result = "-" + result
	}
	return result
}
