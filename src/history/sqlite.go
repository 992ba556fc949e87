// src/history/sqlite.go
package history

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/catearacil/facturas/src/models"
)

// SQLiteStore is the primary history backend, persisting one row per
// processing run in the invoice_history table (schema under db/migrations).
// Monetary columns are stored as text to avoid float drift.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore wraps an initialized database handle.
func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

func (s *SQLiteStore) Append(record models.HistoryRecord) (int64, error) {
	invoicesJSON, err := json.Marshal(record.Invoices)
	if err != nil {
		return 0, fmt.Errorf("marshaling invoices: %w", err)
	}
	excludedJSON, err := json.Marshal(record.Excluded)
	if err != nil {
		return 0, fmt.Errorf("marshaling excluded transactions: %w", err)
	}
	splitsJSON, err := json.Marshal(record.Splits)
	if err != nil {
		return 0, fmt.Errorf("marshaling split records: %w", err)
	}

	res, err := s.db.Exec(`
		INSERT INTO invoice_history
			(timestamp, date, month, invoice_count, total_base, total_tax, total_amount, tax_rate, invoices, excluded, splits)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		record.Timestamp.Format(time.RFC3339),
		record.Date,
		record.Month,
		record.InvoiceCount,
		record.TotalBase.String(),
		record.TotalTax.String(),
		record.TotalAmount.String(),
		record.TaxRate.String(),
		string(invoicesJSON),
		string(excludedJSON),
		string(splitsJSON),
	)
	if err != nil {
		return 0, fmt.Errorf("inserting history record: %w", err)
	}
	return res.LastInsertId()
}

func (s *SQLiteStore) ListAll() ([]models.HistoryRecord, error) {
	rows, err := s.db.Query(`
		SELECT id, timestamp, date, month, invoice_count, total_base, total_tax, total_amount, tax_rate, invoices, excluded, splits
		FROM invoice_history
		ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("querying history records: %w", err)
	}
	defer rows.Close()

	var records []models.HistoryRecord
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

func (s *SQLiteStore) Delete(id int64) (bool, error) {
	res, err := s.db.Exec(`DELETE FROM invoice_history WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("deleting history record %d: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func (s *SQLiteStore) DeleteByPeriod(month string) (int, error) {
	res, err := s.db.Exec(`DELETE FROM invoice_history WHERE month = ?`, month)
	if err != nil {
		return 0, fmt.Errorf("deleting history month %s: %w", month, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(affected), nil
}

func scanRecord(rows *sql.Rows) (models.HistoryRecord, error) {
	var (
		record                                    models.HistoryRecord
		timestamp                                 string
		totalBase, totalTax, totalAmount, taxRate string
		invoicesJSON, excludedJSON, splitsJSON    sql.NullString
	)
	if err := rows.Scan(
		&record.ID, &timestamp, &record.Date, &record.Month, &record.InvoiceCount,
		&totalBase, &totalTax, &totalAmount, &taxRate,
		&invoicesJSON, &excludedJSON, &splitsJSON,
	); err != nil {
		return record, fmt.Errorf("scanning history record: %w", err)
	}

	ts, err := time.Parse(time.RFC3339, timestamp)
	if err != nil {
		return record, fmt.Errorf("parsing history timestamp %q: %w", timestamp, err)
	}
	record.Timestamp = ts

	if record.TotalBase, err = decimal.NewFromString(totalBase); err != nil {
		return record, fmt.Errorf("parsing total_base %q: %w", totalBase, err)
	}
	if record.TotalTax, err = decimal.NewFromString(totalTax); err != nil {
		return record, fmt.Errorf("parsing total_tax %q: %w", totalTax, err)
	}
	if record.TotalAmount, err = decimal.NewFromString(totalAmount); err != nil {
		return record, fmt.Errorf("parsing total_amount %q: %w", totalAmount, err)
	}
	if record.TaxRate, err = decimal.NewFromString(taxRate); err != nil {
		return record, fmt.Errorf("parsing tax_rate %q: %w", taxRate, err)
	}

	if invoicesJSON.Valid && invoicesJSON.String != "" {
		if err := json.Unmarshal([]byte(invoicesJSON.String), &record.Invoices); err != nil {
			return record, fmt.Errorf("unmarshaling invoices for record %d: %w", record.ID, err)
		}
	}
	if excludedJSON.Valid && excludedJSON.String != "" {
		if err := json.Unmarshal([]byte(excludedJSON.String), &record.Excluded); err != nil {
			return record, fmt.Errorf("unmarshaling excluded for record %d: %w", record.ID, err)
		}
	}
	if splitsJSON.Valid && splitsJSON.String != "" {
		if err := json.Unmarshal([]byte(splitsJSON.String), &record.Splits); err != nil {
			return record, fmt.Errorf("unmarshaling splits for record %d: %w", record.ID, err)
		}
	}
	return record, nil
}
