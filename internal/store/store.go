package store

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"

	_ "modernc.org/sqlite"

	"crime_pipeline/incident"
	"crime_pipeline/internal/config"
)

// Source tags recorded with each batch so callers can view one origin at a
// time without breaking the canonical schema.
const (
	SourcePDF         = "pdf"
	SourceCompetition = "competition"
)

// Store persists the unified record set in SQLite. Records are append-only:
// saving is an idempotent union keyed on the full canonical attribute
// tuple, and nothing ever edits a row in place.
type Store struct {
	db *sql.DB
}

func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS records (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            dedupe_key TEXT UNIQUE NOT NULL,
            source TEXT NOT NULL,
            dates TIMESTAMP NULL,
            category TEXT NULL,
            severity INTEGER NOT NULL DEFAULT 0,
            descript TEXT NULL,
            day_of_week TEXT NULL,
            pd_district TEXT NULL,
            resolution TEXT NULL,
            address TEXT NULL,
            latitude TEXT NULL,
            longitude TEXT NULL,
            created_at TIMESTAMP
        );`,
		`CREATE INDEX IF NOT EXISTS idx_records_source ON records(source);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// SaveBatch unions a normalized batch into the store. Exact duplicates of
// rows already present (from any earlier batch or the same one) are
// silently dropped, so saving the same batch twice changes nothing.
// Returns the number of rows actually added.
func (s *Store) SaveBatch(ctx context.Context, source string, records []incident.Record) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `INSERT OR IGNORE INTO records
        (dedupe_key, source, dates, category, severity, descript, day_of_week, pd_district, resolution, address, latitude, longitude, created_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	added := 0
	now := config.Now()
	for _, r := range records {
		res, err := stmt.ExecContext(ctx, dedupeKey(r), source,
			r.Dates, r.Category, r.Severity, r.Descript, r.DayOfWeek,
			r.PdDistrict, r.Resolution, r.Address, r.Latitude, r.Longitude, now)
		if err != nil {
			return added, err
		}
		if n, err := res.RowsAffected(); err == nil {
			added += int(n)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return added, nil
}

// LoadRecords returns the unified record set in first-seen order. An empty
// source loads every origin.
func (s *Store) LoadRecords(ctx context.Context, source string) ([]incident.Record, error) {
	query := `SELECT dates, category, severity, descript, day_of_week, pd_district, resolution, address, latitude, longitude FROM records`
	var args []any
	if source != "" {
		query += ` WHERE source = ?`
		args = append(args, source)
	}
	query += ` ORDER BY id ASC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []incident.Record
	for rows.Next() {
		var r incident.Record
		var dates sql.NullTime
		var category, descript, dayOfWeek, district, resolution, address, lat, lon sql.NullString
		if err := rows.Scan(&dates, &category, &r.Severity, &descript, &dayOfWeek, &district, &resolution, &address, &lat, &lon); err != nil {
			return nil, err
		}
		if dates.Valid {
			r.Dates = &dates.Time
		}
		r.Category = strPtr(category)
		r.Descript = strPtr(descript)
		r.DayOfWeek = strPtr(dayOfWeek)
		r.PdDistrict = strPtr(district)
		r.Resolution = strPtr(resolution)
		r.Address = strPtr(address)
		r.Latitude = strPtr(lat)
		r.Longitude = strPtr(lon)
		records = append(records, r)
	}
	return records, rows.Err()
}

// CountRecords reports the unified store size, optionally per source.
func (s *Store) CountRecords(ctx context.Context, source string) (int64, error) {
	query := `SELECT COUNT(*) FROM records`
	var args []any
	if source != "" {
		query += ` WHERE source = ?`
		args = append(args, source)
	}
	var n int64
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// Health returns err if the DB is not reachable.
func (s *Store) Health(ctx context.Context) error {
	var v int
	if err := s.db.QueryRowContext(ctx, `SELECT 1`).Scan(&v); err != nil {
		return fmt.Errorf("db health: %w", err)
	}
	return nil
}

func dedupeKey(r incident.Record) string {
	h := sha256.Sum256([]byte(r.DedupeKey()))
	return hex.EncodeToString(h[:])
}

func strPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	return &ns.String
}
