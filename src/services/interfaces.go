// src/services/interfaces.go
package services

import (
	"errors"
	"io"

	"github.com/shopspring/decimal"

	"github.com/catearacil/facturas/src/models"
)

// HistoryStore is the persistence collaborator for processing history. The
// core reads it for numbering continuity and appends one record per run; it
// never reads its own writes transactionally.
type HistoryStore interface {
	Append(record models.HistoryRecord) (int64, error)
	ListAll() ([]models.HistoryRecord, error)
	Delete(id int64) (bool, error)
	// DeleteByPeriod removes every record of a calendar month ("2006-01")
	// and returns how many were removed.
	DeleteByPeriod(month string) (int, error)
}

// Renderer is the document collaborator: it turns a numbered draft into a
// persisted document and reports what it issued. Layout is entirely the
// renderer's business.
type Renderer interface {
	Render(draft models.InvoiceDraft, number string) (models.IssuedInvoice, error)
}

// Common service errors.
var (
	ErrSpreadsheetUnreadable = errors.New("spreadsheet could not be read")
	ErrColumnsUnresolved     = errors.New("statement columns could not be resolved")
	ErrInvalidBillingConfig  = errors.New("invalid billing configuration")
	ErrRenderingFailed       = errors.New("invoice rendering failed")
)

// RunOptions carries per-request overrides of the billing configuration.
// Nil fields mean "use the configured default". Overrides are validated and
// threaded as values; global configuration is never mutated.
type RunOptions struct {
	TaxRate *decimal.Decimal
	Ceiling *decimal.Decimal
}

// ProcessResult is the outcome of one statement run.
type ProcessResult struct {
	Info        models.ExtractionInfo        `json:"info"`
	Excluded    []models.ExcludedTransaction `json:"excluded"`
	Splits      []models.SplitRecord         `json:"splits"`
	Invoices    []models.IssuedInvoice       `json:"invoices"`
	TotalBase   decimal.Decimal              `json:"totalBase"`
	TotalTax    decimal.Decimal              `json:"totalTax"`
	TotalAmount decimal.Decimal              `json:"totalAmount"`
	HistoryID   int64                        `json:"historyId,omitempty"`
}

// StatementService runs the whole pipeline for one uploaded statement.
type StatementService interface {
	ProcessStatement(fileReader io.Reader, filename string, opts RunOptions) (*ProcessResult, error)
}

// NumberingStatus is the read-only view of numbering continuity exposed to
// callers.
type NumberingStatus struct {
	LastYear     int  `json:"lastYear"`
	HasHistory   bool `json:"hasHistory"`
	LastSequence int  `json:"lastSequence"`
	NextSequence int  `json:"nextSequence"`
}

// HistoryService serves the processing history and numbering status.
type HistoryService interface {
	ListRecords() ([]models.HistoryRecord, error)
	MonthSummaries() ([]models.MonthSummary, error)
	DeleteRecord(id int64) (bool, error)
	DeleteMonth(month string) (int, error)
	NumberingStatus() (NumberingStatus, error)
	InvalidateCache()
}
