// src/processors/numbering.go
package processors

import (
	"fmt"
	"sync"

	"github.com/catearacil/facturas/src/logger"
	"github.com/catearacil/facturas/src/models"
)

// HistoryReader is the read side of the history collaborator that numbering
// continuity depends on.
type HistoryReader interface {
	ListAll() ([]models.HistoryRecord, error)
}

// Sequencer computes gapless, year-scoped invoice numbers from persisted
// history, with a static per-year fallback table for years the history does
// not cover.
//
// Reserve is serialized through a mutex and tracks an in-process high-water
// mark per year, so two overlapping runs cannot both read stale history and
// issue the same numbers. This does not protect against a second process
// writing the same store concurrently.
type Sequencer struct {
	mu       sync.Mutex
	history  HistoryReader
	fallback map[int]int // year -> last used sequence, from configuration
	reserved map[int]int // year -> highest sequence handed out this process
}

// NewSequencer builds a sequencer over the given history reader. The
// fallback table may be nil.
func NewSequencer(history HistoryReader, fallback map[int]int) *Sequencer {
	if fallback == nil {
		fallback = make(map[int]int)
	}
	return &Sequencer{
		history:  history,
		fallback: fallback,
		reserved: make(map[int]int),
	}
}

// LastUsedNumber returns the highest sequence observed for the given year
// across every invoice number in history, tolerating both historical number
// encodings. When history has nothing for the year, the static fallback
// table answers; failing that, zero.
func (s *Sequencer) LastUsedNumber(year int) (int, error) {
	records, err := s.history.ListAll()
	if err != nil {
		return 0, fmt.Errorf("reading invoice history: %w", err)
	}

	last := 0
	for _, record := range records {
		for _, inv := range record.Invoices {
			num, ok := models.ParseInvoiceNumber(inv.Number)
			if !ok {
				logger.L.Warn("Unrecognized invoice number in history, skipping", "number", inv.Number)
				continue
			}
			if num.Year == year && num.Sequence > last {
				last = num.Sequence
			}
		}
	}
	if last == 0 {
		if fromTable, ok := s.fallback[year]; ok {
			return fromTable, nil
		}
	}
	return last, nil
}

// LastYearWithInvoices returns the year of the invoice carrying the globally
// largest sequence in history; ties go to the most recent year. With an
// empty history it falls back to the largest year in the static table. The
// boolean is false when neither source knows of any invoice.
func (s *Sequencer) LastYearWithInvoices() (int, bool, error) {
	records, err := s.history.ListAll()
	if err != nil {
		return 0, false, fmt.Errorf("reading invoice history: %w", err)
	}

	bestSeq, bestYear := 0, 0
	for _, record := range records {
		for _, inv := range record.Invoices {
			num, ok := models.ParseInvoiceNumber(inv.Number)
			if !ok {
				continue
			}
			if num.Sequence > bestSeq || (num.Sequence == bestSeq && num.Year > bestYear) {
				bestSeq, bestYear = num.Sequence, num.Year
			}
		}
	}
	if bestYear != 0 {
		return bestYear, true, nil
	}

	for year := range s.fallback {
		if year > bestYear {
			bestYear = year
		}
	}
	return bestYear, bestYear != 0, nil
}

// Reserve hands out a contiguous block of `count` sequence numbers for the
// year and returns the first one. The reservation survives in memory until
// the corresponding history record is appended, closing the window where a
// concurrent run could compute the same start from stale history.
func (s *Sequencer) Reserve(year, count int) (int, error) {
	if count <= 0 {
		return 0, fmt.Errorf("reserve count must be positive, got %d", count)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	last, err := s.LastUsedNumber(year)
	if err != nil {
		return 0, err
	}
	if inFlight := s.reserved[year]; inFlight > last {
		last = inFlight
	}

	start := last + 1
	s.reserved[year] = last + count
	return start, nil
}
