// Package repository persists client records. The primary store is the
// spreadsheet; SQLite serves as local fallback and as the source for
// exports when the spreadsheet is unreachable.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"valgop/internal/models"
)

const schema = `
CREATE TABLE IF NOT EXISTS client_records (
	code           TEXT PRIMARY KEY,
	registered_at  TIMESTAMP NOT NULL,
	client_name    TEXT NOT NULL,
	phone          TEXT NOT NULL,
	email          TEXT NOT NULL,
	resource_label TEXT NOT NULL,
	date           TEXT NOT NULL,
	time           TEXT NOT NULL,
	service_label  TEXT NOT NULL,
	status         TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_client_records_status ON client_records(status);
`

// SQLiteRecordStore keeps a local copy of the client log.
type SQLiteRecordStore struct {
	db *sql.DB
}

func NewSQLiteRecordStore(path string) (*SQLiteRecordStore, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite at %s: %w", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &SQLiteRecordStore{db: db}, nil
}

func (s *SQLiteRecordStore) Close() error {
	return s.db.Close()
}

// Append upserts a record by reservation code. Re-appending the same
// code after a spreadsheet failover must not error.
func (s *SQLiteRecordStore) Append(ctx context.Context, rec models.ClientRecord) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO client_records
			(code, registered_at, client_name, phone, email, resource_label, date, time, service_label, status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(code) DO UPDATE SET status = excluded.status`,
		rec.Code, rec.RegisteredAt, rec.ClientName, rec.Phone, rec.Email,
		rec.ResourceLabel, rec.Date, rec.Time, rec.ServiceLabel, rec.Status,
	)
	if err != nil {
		return fmt.Errorf("insert record %s: %w", rec.Code, err)
	}
	return nil
}

func (s *SQLiteRecordStore) UpdateStatus(ctx context.Context, code, status string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE client_records SET status = ? WHERE code = ?`, status, code)
	if err != nil {
		return fmt.Errorf("update record %s: %w", code, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("record %q: %w", code, models.ErrNotFound)
	}
	return nil
}

func (s *SQLiteRecordStore) FindByCode(ctx context.Context, code string) (*models.ClientRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT code, registered_at, client_name, phone, email, resource_label, date, time, service_label, status
		FROM client_records WHERE code = ?`, code)

	var rec models.ClientRecord
	var registered time.Time
	err := row.Scan(&rec.Code, &registered, &rec.ClientName, &rec.Phone, &rec.Email,
		&rec.ResourceLabel, &rec.Date, &rec.Time, &rec.ServiceLabel, &rec.Status)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("record %q: %w", code, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("scan record %s: %w", code, err)
	}
	rec.RegisteredAt = registered
	return &rec, nil
}

// ListAll returns every record ordered by registration time, for export.
func (s *SQLiteRecordStore) ListAll(ctx context.Context) ([]models.ClientRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT code, registered_at, client_name, phone, email, resource_label, date, time, service_label, status
		FROM client_records ORDER BY registered_at`)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	defer rows.Close()

	var out []models.ClientRecord
	for rows.Next() {
		var rec models.ClientRecord
		if err := rows.Scan(&rec.Code, &rec.RegisteredAt, &rec.ClientName, &rec.Phone, &rec.Email,
			&rec.ResourceLabel, &rec.Date, &rec.Time, &rec.ServiceLabel, &rec.Status); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
