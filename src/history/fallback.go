// src/history/fallback.go
package history

import (
	"github.com/catearacil/facturas/src/logger"
	"github.com/catearacil/facturas/src/models"
)

// Store is the collaborator contract both backends satisfy. It mirrors
// services.HistoryStore; declared here too so this package stands alone.
type Store interface {
	Append(record models.HistoryRecord) (int64, error)
	ListAll() ([]models.HistoryRecord, error)
	Delete(id int64) (bool, error)
	DeleteByPeriod(month string) (int, error)
}

// FallbackStore tries the primary backend and degrades to the secondary when
// the primary fails, without surfacing an error to the caller. Appends go to
// both: the secondary is kept as close to the primary as possible, because a
// divergent secondary would silently break numbering continuity the moment
// a fallback read happens.
type FallbackStore struct {
	primary   Store
	secondary Store
}

// NewFallbackStore composes the two backends.
func NewFallbackStore(primary, secondary Store) *FallbackStore {
	return &FallbackStore{primary: primary, secondary: secondary}
}

func (s *FallbackStore) Append(record models.HistoryRecord) (int64, error) {
	id, primaryErr := s.primary.Append(record)
	if primaryErr == nil {
		record.ID = id
		if _, err := s.secondary.Append(record); err != nil {
			logger.L.Warn("Secondary history store append failed", "error", err)
		}
		return id, nil
	}

	logger.L.Error("Primary history store append failed, falling back", "error", primaryErr)
	return s.secondary.Append(record)
}

func (s *FallbackStore) ListAll() ([]models.HistoryRecord, error) {
	records, primaryErr := s.primary.ListAll()
	if primaryErr == nil {
		return records, nil
	}
	logger.L.Error("Primary history store read failed, falling back", "error", primaryErr)
	return s.secondary.ListAll()
}

func (s *FallbackStore) Delete(id int64) (bool, error) {
	deleted, primaryErr := s.primary.Delete(id)
	if primaryErr != nil {
		logger.L.Error("Primary history store delete failed, falling back", "id", id, "error", primaryErr)
		return s.secondary.Delete(id)
	}
	if _, err := s.secondary.Delete(id); err != nil {
		logger.L.Warn("Secondary history store delete failed", "id", id, "error", err)
	}
	return deleted, nil
}

func (s *FallbackStore) DeleteByPeriod(month string) (int, error) {
	count, primaryErr := s.primary.DeleteByPeriod(month)
	if primaryErr != nil {
		logger.L.Error("Primary history store period delete failed, falling back", "month", month, "error", primaryErr)
		return s.secondary.DeleteByPeriod(month)
	}
	if _, err := s.secondary.DeleteByPeriod(month); err != nil {
		logger.L.Warn("Secondary history store period delete failed", "month", month, "error", err)
	}
	return count, nil
}
