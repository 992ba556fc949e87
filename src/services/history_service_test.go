// src/services/history_service_test.go
package services

import (
	"testing"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/catearacil/facturas/src/models"
	"github.com/catearacil/facturas/src/processors"
)

func seedRecord(month string, day int, numbers ...string) models.HistoryRecord {
	rec := models.HistoryRecord{
		Timestamp:    time.Date(2025, 1, day, 12, 0, 0, 0, time.UTC),
		Date:         time.Date(2025, 1, day, 0, 0, 0, 0, time.UTC).Format("2006-01-02"),
		Month:        month,
		InvoiceCount: len(numbers),
		TotalBase:    decimal.RequireFromString("100.00"),
		TotalTax:     decimal.RequireFromString("21.00"),
		TotalAmount:  decimal.RequireFromString("121.00"),
		TaxRate:      decimal.RequireFromString("0.21"),
	}
	for _, n := range numbers {
		rec.Invoices = append(rec.Invoices, models.IssuedInvoice{Number: n})
	}
	return rec
}

func newHistoryService(t *testing.T, store HistoryStore) HistoryService {
	t.Helper()
	sequencer := processors.NewSequencer(store, nil)
	return NewHistoryService(store, sequencer, cache.New(DefaultCacheExpiration, CacheCleanupInterval))
}

func TestListRecordsNewestFirst(t *testing.T) {
	store := &memStore{}
	_, err := store.Append(seedRecord("2025-01", 10, "T250001"))
	require.NoError(t, err)
	_, err = store.Append(seedRecord("2025-01", 20, "T250002"))
	require.NoError(t, err)

	svc := newHistoryService(t, store)
	records, err := svc.ListRecords()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.True(t, records[0].Timestamp.After(records[1].Timestamp))
}

func TestMonthSummaries(t *testing.T) {
	store := &memStore{}
	_, err := store.Append(seedRecord("2025-01", 10, "T250001", "T250002"))
	require.NoError(t, err)
	_, err = store.Append(seedRecord("2025-01", 20, "T250003"))
	require.NoError(t, err)
	_, err = store.Append(seedRecord("2025-02", 25, "T250004"))
	require.NoError(t, err)

	svc := newHistoryService(t, store)
	summaries, err := svc.MonthSummaries()
	require.NoError(t, err)
	require.Len(t, summaries, 2)

	// Most recent month first.
	assert.Equal(t, "2025-02", summaries[0].Month)

	january := summaries[1]
	assert.Equal(t, 2, january.ProcessingCount)
	assert.Equal(t, 3, january.TotalInvoices)
	assert.True(t, january.TotalBase.Equal(decimal.RequireFromString("200.00")))
	assert.True(t, january.TotalAmount.Equal(decimal.RequireFromString("242.00")))
	assert.Len(t, january.Records, 2)
}

func TestMonthSummariesCacheInvalidation(t *testing.T) {
	store := &memStore{}
	id, err := store.Append(seedRecord("2025-01", 10, "T250001"))
	require.NoError(t, err)

	svc := newHistoryService(t, store)
	summaries, err := svc.MonthSummaries()
	require.NoError(t, err)
	require.Len(t, summaries, 1)

	// A cached aggregate does not see the delete until invalidation runs,
	// and DeleteRecord invalidates.
	deleted, err := svc.DeleteRecord(id)
	require.NoError(t, err)
	require.True(t, deleted)

	summaries, err = svc.MonthSummaries()
	require.NoError(t, err)
	assert.Empty(t, summaries)
}

func TestDeleteMonth(t *testing.T) {
	store := &memStore{}
	_, err := store.Append(seedRecord("2025-01", 10, "T250001"))
	require.NoError(t, err)
	_, err = store.Append(seedRecord("2025-02", 5, "T250002"))
	require.NoError(t, err)

	svc := newHistoryService(t, store)
	count, err := svc.DeleteMonth("2025-01")
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	records, err := svc.ListRecords()
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "2025-02", records[0].Month)
}

func TestNumberingStatus(t *testing.T) {
	store := &memStore{}
	_, err := store.Append(seedRecord("2025-01", 10, "T250050", "T250263"))
	require.NoError(t, err)

	svc := newHistoryService(t, store)
	status, err := svc.NumberingStatus()
	require.NoError(t, err)
	assert.True(t, status.HasHistory)
	assert.Equal(t, 2025, status.LastYear)
	assert.Equal(t, 263, status.LastSequence)
	assert.Equal(t, 264, status.NextSequence)
}

func TestNumberingStatusEmptyHistory(t *testing.T) {
	svc := newHistoryService(t, &memStore{})
	status, err := svc.NumberingStatus()
	require.NoError(t, err)
	assert.False(t, status.HasHistory)
	assert.Equal(t, time.Now().Year(), status.LastYear)
	assert.Zero(t, status.LastSequence)
	assert.Equal(t, 1, status.NextSequence)
}
