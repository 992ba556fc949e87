// src/models/invoice.go
package models

import (
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// InvoiceDraft is one invoice to be rendered. A transaction whose
// tax-inclusive total exceeds the ceiling produces several drafts; the sum
// of their TaxInclusiveTotal values equals the original total exactly, with
// any rounding residue absorbed by the last part.
type InvoiceDraft struct {
	Date              string          `json:"date"`
	Description       string          `json:"description"`
	TaxableBase       decimal.Decimal `json:"taxableBase"`
	TaxInclusiveTotal decimal.Decimal `json:"taxInclusiveTotal"`
	PartNumber        int             `json:"partNumber"`
	TotalParts        int             `json:"totalParts"`
}

// SplitRecord is the audit entry for a transaction that was partitioned into
// more than one draft.
type SplitRecord struct {
	Date           string          `json:"date"`
	Description    string          `json:"description"`
	OriginalTotal  decimal.Decimal `json:"originalTotal"`
	InvoiceCount   int             `json:"invoiceCount"`
	CeilingApplied decimal.Decimal `json:"ceilingApplied"`
}

// InvoiceNumber is a year-scoped sequential invoice identifier.
type InvoiceNumber struct {
	Year     int `json:"year"`
	Sequence int `json:"sequence"`
}

// String renders the canonical textual code: "T" + 2-digit year + 4-digit
// zero-padded sequence, e.g. {2025, 263} -> "T250263".
func (n InvoiceNumber) String() string {
	return fmt.Sprintf("T%02d%04d", n.Year%100, n.Sequence)
}

var (
	fourDigitYearPattern = regexp.MustCompile(`^T(\d{4})(\d+)$`)
	twoDigitYearPattern  = regexp.MustCompile(`^T(\d{2})(\d{4,})$`)
)

// ParseInvoiceNumber extracts year and sequence from a historical invoice
// number, tolerating both encodings seen in history: the canonical
// "T{yy}{seq:04d}" and a legacy "T{yyyy}{seq}" with a 4-digit year.
// A 4-digit year is only accepted in 2000..2099; anything else would be an
// ambiguous read of the 2-digit form (e.g. "T250264" is {2025, 264}, not
// {2502, 64}).
func ParseInvoiceNumber(s string) (InvoiceNumber, bool) {
	if m := fourDigitYearPattern.FindStringSubmatch(s); m != nil {
		year, _ := strconv.Atoi(m[1])
		if year >= 2000 && year < 2100 {
			seq, err := strconv.Atoi(m[2])
			if err == nil && seq > 0 {
				return InvoiceNumber{Year: year, Sequence: seq}, true
			}
		}
	}
	if m := twoDigitYearPattern.FindStringSubmatch(s); m != nil {
		yy, _ := strconv.Atoi(m[1])
		seq, err := strconv.Atoi(m[2])
		if err == nil && seq > 0 {
			return InvoiceNumber{Year: 2000 + yy, Sequence: seq}, true
		}
	}
	return InvoiceNumber{}, false
}

// IssuedInvoice records one rendered invoice inside a history record.
type IssuedInvoice struct {
	Number   string          `json:"number"`
	Date     string          `json:"date"`
	Base     decimal.Decimal `json:"base"`
	Total    decimal.Decimal `json:"total"`
	Filename string          `json:"filename"`
}

// HistoryRecord is one processing run as persisted by the history store.
// The numbering sequencer reads these back to continue numbering; everything
// else is reporting data.
type HistoryRecord struct {
	ID           int64                 `json:"id"`
	Timestamp    time.Time             `json:"timestamp"`
	Date         string                `json:"date"`
	Month        string                `json:"month"`
	InvoiceCount int                   `json:"invoiceCount"`
	TotalBase    decimal.Decimal       `json:"totalBase"`
	TotalTax     decimal.Decimal       `json:"totalTax"`
	TotalAmount  decimal.Decimal       `json:"totalAmount"`
	TaxRate      decimal.Decimal       `json:"taxRate"`
	Invoices     []IssuedInvoice       `json:"invoices"`
	Excluded     []ExcludedTransaction `json:"excluded,omitempty"`
	Splits       []SplitRecord         `json:"splits,omitempty"`
}

// MonthSummary aggregates the history records of one calendar month.
type MonthSummary struct {
	Month           string          `json:"month"`
	ProcessingCount int             `json:"processingCount"`
	TotalInvoices   int             `json:"totalInvoices"`
	TotalBase       decimal.Decimal `json:"totalBase"`
	TotalTax        decimal.Decimal `json:"totalTax"`
	TotalAmount     decimal.Decimal `json:"totalAmount"`
	Records         []HistoryRecord `json:"records"`
}
