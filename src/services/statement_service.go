// src/services/statement_service.go
package services

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/shopspring/decimal"

	"github.com/catearacil/facturas/src/config"
	"github.com/catearacil/facturas/src/logger"
	"github.com/catearacil/facturas/src/models"
	"github.com/catearacil/facturas/src/parsers/statement"
	"github.com/catearacil/facturas/src/processors"
)

type statementServiceImpl struct {
	store     HistoryStore
	sequencer *processors.Sequencer
	renderer  Renderer
	onAppend  func() // cache invalidation hook, may be nil
}

// NewStatementService wires the pipeline: extraction, partitioning,
// numbering and rendering, with one history record appended per run.
// onAppend, when non-nil, runs after a successful append (the history
// service uses it to drop cached aggregates).
func NewStatementService(store HistoryStore, sequencer *processors.Sequencer, renderer Renderer, onAppend func()) StatementService {
	return &statementServiceImpl{
		store:     store,
		sequencer: sequencer,
		renderer:  renderer,
		onAppend:  onAppend,
	}
}

// ProcessStatement runs the full pipeline for one uploaded spreadsheet.
//
// The flow is strictly sequential: read grid, infer schema, extract
// transactions, partition against the ceiling, reserve a number block,
// render, append history. Row-level problems end up in the excluded report;
// only input-shape and configuration problems fail the run.
func (s *statementServiceImpl) ProcessStatement(fileReader io.Reader, filename string, opts RunOptions) (*ProcessResult, error) {
	taxRate := config.Cfg.TaxRate
	if opts.TaxRate != nil {
		taxRate = *opts.TaxRate
	}
	ceiling := config.Cfg.InvoiceCeiling
	if opts.Ceiling != nil {
		ceiling = *opts.Ceiling
	}

	partitioner, err := processors.NewPartitioner(ceiling, taxRate)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBillingConfig, err)
	}

	grid, err := statement.ReadGrid(fileReader)
	if err != nil {
		logger.L.Warn("Spreadsheet could not be read", "filename", filename, "error", err)
		return nil, fmt.Errorf("%w: %v", ErrSpreadsheetUnreadable, err)
	}

	transactions, excluded, info, err := statement.ProcessGrid(grid)
	if err != nil {
		var mappingErr *statement.MappingError
		if errors.As(err, &mappingErr) {
			logger.L.Warn("Column resolution failed", "filename", filename,
				"missing", mappingErr.Missing, "columns", mappingErr.ColumnNames)
			return nil, fmt.Errorf("%w: %v", ErrColumnsUnresolved, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrSpreadsheetUnreadable, err)
	}

	logger.L.Info("Statement extracted", "filename", filename,
		"rows", info.TotalRows, "included", info.IncludedCount, "excluded", info.ExcludedCount)

	result := &ProcessResult{
		Info:        info,
		Excluded:    excluded,
		TotalBase:   decimal.Zero,
		TotalTax:    decimal.Zero,
		TotalAmount: decimal.Zero,
	}
	if len(transactions) == 0 {
		// Nothing to invoice; the excluded report is the whole outcome.
		return result, nil
	}

	// Rows with no description get the configured placeholder concept
	// before any draft or report is produced from them.
	for i := range transactions {
		if transactions[i].Description == "" {
			transactions[i].Description = config.Cfg.InvoiceConcept
		}
	}

	drafts, splits := partitioner.ProcessTransactions(transactions)
	result.Splits = splits

	year := s.batchYear()
	start, err := s.sequencer.Reserve(year, len(drafts))
	if err != nil {
		return nil, fmt.Errorf("reserving invoice numbers: %w", err)
	}
	logger.L.Info("Invoice numbers reserved", "year", year, "start", start, "count", len(drafts))

	issued := make([]models.IssuedInvoice, 0, len(drafts))
	for i, draft := range drafts {
		number := models.InvoiceNumber{Year: year, Sequence: start + i}
		inv, err := s.renderer.Render(draft, number.String())
		if err != nil {
			return nil, fmt.Errorf("%w: invoice %s: %v", ErrRenderingFailed, number, err)
		}
		issued = append(issued, inv)

		result.TotalBase = result.TotalBase.Add(draft.TaxableBase)
		result.TotalAmount = result.TotalAmount.Add(draft.TaxInclusiveTotal)
	}
	result.TotalTax = result.TotalAmount.Sub(result.TotalBase)
	result.Invoices = issued

	now := time.Now()
	record := models.HistoryRecord{
		Timestamp:    now,
		Date:         now.Format("2006-01-02"),
		Month:        now.Format("2006-01"),
		InvoiceCount: len(issued),
		TotalBase:    result.TotalBase,
		TotalTax:     result.TotalTax,
		TotalAmount:  result.TotalAmount,
		TaxRate:      taxRate,
		Invoices:     issued,
		Excluded:     excluded,
		Splits:       splits,
	}
	id, err := s.store.Append(record)
	if err != nil {
		// The invoices are already rendered; losing the history write must
		// not fail the run, but numbering continuity now depends on the
		// in-process reservation alone.
		logger.L.Error("Failed to append history record", "error", err)
	} else {
		result.HistoryID = id
		if s.onAppend != nil {
			s.onAppend()
		}
	}

	return result, nil
}

// batchYear picks the numbering year for a new batch: the last year with
// issued invoices, defaulting to the current calendar year when no history
// exists at all.
func (s *statementServiceImpl) batchYear() int {
	year, ok, err := s.sequencer.LastYearWithInvoices()
	if err != nil || !ok {
		if err != nil {
			logger.L.Warn("Could not determine last invoiced year, using current year", "error", err)
		}
		return time.Now().Year()
	}
	return year
}
