// src/history/jsonfile.go
package history

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/catearacil/facturas/src/models"
)

// JSONFileStore is the flat-file history backend: the whole history lives in
// one JSON array on disk. It exists as the secondary store behind the
// database and as a zero-dependency option for local runs.
type JSONFileStore struct {
	mu   sync.Mutex
	path string
}

// NewJSONFileStore creates the store; the file and its directory are created
// lazily on the first append.
func NewJSONFileStore(path string) *JSONFileStore {
	return &JSONFileStore{path: path}
}

func (s *JSONFileStore) Append(record models.HistoryRecord) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.load()
	if err != nil {
		return 0, err
	}

	// A preset ID (mirrored from the primary store) is kept. Otherwise IDs
	// continue from the highest seen, not len+1, so deleting a record never
	// causes an ID to be reissued.
	if record.ID == 0 {
		var maxID int64
		for _, r := range records {
			if r.ID > maxID {
				maxID = r.ID
			}
		}
		record.ID = maxID + 1
	}
	records = append(records, record)

	if err := s.save(records); err != nil {
		return 0, err
	}
	return record.ID, nil
}

func (s *JSONFileStore) ListAll() ([]models.HistoryRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

func (s *JSONFileStore) Delete(id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.load()
	if err != nil {
		return false, err
	}
	kept := records[:0]
	deleted := false
	for _, r := range records {
		if r.ID == id {
			deleted = true
			continue
		}
		kept = append(kept, r)
	}
	if !deleted {
		return false, nil
	}
	return true, s.save(kept)
}

func (s *JSONFileStore) DeleteByPeriod(month string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.load()
	if err != nil {
		return 0, err
	}
	kept := records[:0]
	removed := 0
	for _, r := range records {
		if r.Month == month {
			removed++
			continue
		}
		kept = append(kept, r)
	}
	if removed == 0 {
		return 0, nil
	}
	return removed, s.save(kept)
}

func (s *JSONFileStore) load() ([]models.HistoryRecord, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading history file %s: %w", s.path, err)
	}
	if len(data) == 0 {
		return nil, nil
	}
	var records []models.HistoryRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parsing history file %s: %w", s.path, err)
	}
	return records, nil
}

func (s *JSONFileStore) save(records []models.HistoryRecord) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("creating history directory: %w", err)
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding history: %w", err)
	}
	// Write-then-rename keeps the file readable if the process dies mid-write.
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing history file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replacing history file: %w", err)
	}
	return nil
}
