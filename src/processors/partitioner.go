// src/processors/partitioner.go
package processors

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/catearacil/facturas/src/logger"
	"github.com/catearacil/facturas/src/models"
)

// Partitioner splits transactions into invoice drafts so that no draft's
// tax-inclusive total exceeds the configured ceiling. The ceiling bounds the
// total with tax, not the taxable base.
type Partitioner struct {
	ceiling     decimal.Decimal
	taxRate     decimal.Decimal
	onePlusRate decimal.Decimal
}

// NewPartitioner validates the billing configuration up front: a ceiling
// that is not strictly positive or a negative tax rate is rejected here, not
// discovered mid-batch.
func NewPartitioner(ceiling, taxRate decimal.Decimal) (*Partitioner, error) {
	if !ceiling.IsPositive() {
		return nil, fmt.Errorf("invoice ceiling must be positive, got %s", ceiling)
	}
	if taxRate.IsNegative() {
		return nil, fmt.Errorf("tax rate must not be negative, got %s", taxRate)
	}
	return &Partitioner{
		ceiling:     ceiling,
		taxRate:     taxRate,
		onePlusRate: decimal.NewFromInt(1).Add(taxRate),
	}, nil
}

// Partition converts one transaction into one or more invoice drafts.
//
// The transaction amount is the taxable base; its tax-inclusive total is
// base × (1 + rate). Under the ceiling, the single draft carries the
// original values untouched. Over it, the total is split into n even parts
// rounded to 2 decimals, except the last part, which takes the exact
// remainder — so the parts always sum back to the original total and only
// the last part absorbs rounding residue. Each part's taxable base is then
// derived from its own total; splitting the base directly would let tax
// push a part past the ceiling.
func (p *Partitioner) Partition(tx models.Transaction) []models.InvoiceDraft {
	total := tx.Amount.Mul(p.onePlusRate)

	if total.LessThanOrEqual(p.ceiling) {
		return []models.InvoiceDraft{{
			Date:              tx.Date,
			Description:       tx.Description,
			TaxableBase:       tx.Amount,
			TaxInclusiveTotal: total,
			PartNumber:        1,
			TotalParts:        1,
		}}
	}

	// n = ceil(total / ceiling), via integer quotient plus remainder check
	// rather than floating accumulation.
	quo, rem := total.QuoRem(p.ceiling, 0)
	n := int(quo.IntPart())
	if !rem.IsZero() {
		n++
	}

	nDec := decimal.NewFromInt(int64(n))
	share := total.Div(nDec).Round(2)
	lastShare := total.Sub(share.Mul(nDec.Sub(decimal.NewFromInt(1))))

	drafts := make([]models.InvoiceDraft, 0, n)
	for i := 1; i <= n; i++ {
		partTotal := share
		if i == n {
			partTotal = lastShare
		}
		drafts = append(drafts, models.InvoiceDraft{
			Date:              tx.Date,
			Description:       tx.Description,
			TaxableBase:       partTotal.Div(p.onePlusRate).Round(2),
			TaxInclusiveTotal: partTotal,
			PartNumber:        i,
			TotalParts:        n,
		})
	}
	return drafts
}

// ProcessTransactions partitions every transaction and collects an audit
// SplitRecord for each one that produced more than one draft.
func (p *Partitioner) ProcessTransactions(txs []models.Transaction) ([]models.InvoiceDraft, []models.SplitRecord) {
	var (
		drafts []models.InvoiceDraft
		splits []models.SplitRecord
	)
	for _, tx := range txs {
		parts := p.Partition(tx)
		drafts = append(drafts, parts...)
		if len(parts) > 1 {
			logger.L.Info("Transaction split into multiple invoices",
				"description", tx.Description, "parts", len(parts), "base", tx.Amount)
			splits = append(splits, models.SplitRecord{
				Date:           tx.Date,
				Description:    tx.Description,
				OriginalTotal:  tx.Amount.Mul(p.onePlusRate),
				InvoiceCount:   len(parts),
				CeilingApplied: p.ceiling,
			})
		}
	}
	return drafts, splits
}
