// src/services/history_service.go
package services

import (
	"sort"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/shopspring/decimal"

	"github.com/catearacil/facturas/src/logger"
	"github.com/catearacil/facturas/src/models"
	"github.com/catearacil/facturas/src/processors"
)

const (
	ckMonthSummaries       = "agg_month_summaries"
	DefaultCacheExpiration = 15 * time.Minute
	CacheCleanupInterval   = 30 * time.Minute
)

type historyServiceImpl struct {
	store      HistoryStore
	sequencer  *processors.Sequencer
	reportCache *cache.Cache
}

// NewHistoryService serves the processing history, aggregating per-month
// summaries behind a short-lived cache.
func NewHistoryService(store HistoryStore, sequencer *processors.Sequencer, reportCache *cache.Cache) HistoryService {
	return &historyServiceImpl{
		store:      store,
		sequencer:  sequencer,
		reportCache: reportCache,
	}
}

// InvalidateCache drops cached aggregates. Called after every append or
// delete so summaries never serve stale totals.
func (s *historyServiceImpl) InvalidateCache() {
	s.reportCache.Delete(ckMonthSummaries)
}

func (s *historyServiceImpl) ListRecords() ([]models.HistoryRecord, error) {
	records, err := s.store.ListAll()
	if err != nil {
		return nil, err
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].Timestamp.After(records[j].Timestamp)
	})
	return records, nil
}

func (s *historyServiceImpl) MonthSummaries() ([]models.MonthSummary, error) {
	if cached, found := s.reportCache.Get(ckMonthSummaries); found {
		if summaries, ok := cached.([]models.MonthSummary); ok {
			return summaries, nil
		}
	}

	records, err := s.ListRecords()
	if err != nil {
		return nil, err
	}

	byMonth := make(map[string]*models.MonthSummary)
	for _, record := range records {
		summary, ok := byMonth[record.Month]
		if !ok {
			summary = &models.MonthSummary{
				Month:       record.Month,
				TotalBase:   decimal.Zero,
				TotalTax:    decimal.Zero,
				TotalAmount: decimal.Zero,
			}
			byMonth[record.Month] = summary
		}
		summary.ProcessingCount++
		summary.TotalInvoices += record.InvoiceCount
		summary.TotalBase = summary.TotalBase.Add(record.TotalBase)
		summary.TotalTax = summary.TotalTax.Add(record.TotalTax)
		summary.TotalAmount = summary.TotalAmount.Add(record.TotalAmount)
		summary.Records = append(summary.Records, record)
	}

	summaries := make([]models.MonthSummary, 0, len(byMonth))
	for _, summary := range byMonth {
		summaries = append(summaries, *summary)
	}
	// Most recent month first; records within a month are already newest
	// first from ListRecords.
	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].Month > summaries[j].Month
	})

	s.reportCache.Set(ckMonthSummaries, summaries, cache.DefaultExpiration)
	return summaries, nil
}

func (s *historyServiceImpl) DeleteRecord(id int64) (bool, error) {
	deleted, err := s.store.Delete(id)
	if err != nil {
		return false, err
	}
	if deleted {
		logger.L.Info("History record deleted", "id", id)
		s.InvalidateCache()
	}
	return deleted, nil
}

func (s *historyServiceImpl) DeleteMonth(month string) (int, error) {
	count, err := s.store.DeleteByPeriod(month)
	if err != nil {
		return 0, err
	}
	if count > 0 {
		logger.L.Info("History month deleted", "month", month, "records", count)
		s.InvalidateCache()
	}
	return count, nil
}

func (s *historyServiceImpl) NumberingStatus() (NumberingStatus, error) {
	year, ok, err := s.sequencer.LastYearWithInvoices()
	if err != nil {
		return NumberingStatus{}, err
	}
	if !ok {
		year = time.Now().Year()
	}
	last, err := s.sequencer.LastUsedNumber(year)
	if err != nil {
		return NumberingStatus{}, err
	}
	return NumberingStatus{
		LastYear:     year,
		HasHistory:   ok,
		LastSequence: last,
		NextSequence: last + 1,
	}, nil
}
