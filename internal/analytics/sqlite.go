// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package analytics

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/hubeduai/tutor-tui/internal/nav"
)

// =============================================================================
// SQLITE STORE
// =============================================================================

const schema = `
CREATE TABLE IF NOT EXISTS nav_records (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	module_id TEXT NOT NULL,
	kind TEXT NOT NULL,
	timestamp INTEGER NOT NULL,
	user_role TEXT NOT NULL DEFAULT '',
	school_plan TEXT NOT NULL DEFAULT '',
	session_duration_ms INTEGER NOT NULL DEFAULT 0
);
`

// SQLiteStore persists navigation records to a local SQLite database,
// trimming to the nav.MaxRecords newest entries on every append.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (creating if needed) the analytics database.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create analytics directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open analytics database: %w", err)
	}

	// SQLite only supports one writer at a time
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set journal mode: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Append inserts a record and trims the table to the retention bound.
func (s *SQLiteStore) Append(rec nav.Record) error {
	_, err := s.db.Exec(
		`INSERT INTO nav_records (module_id, kind, timestamp, user_role, school_plan, session_duration_ms)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		rec.ModuleID.String(),
		string(rec.Kind),
		rec.Timestamp.UnixMilli(),
		rec.UserRole,
		rec.SchoolPlan,
		rec.SessionDurationMs,
	)
	if err != nil {
		return fmt.Errorf("failed to append record: %w", err)
	}

	_, err = s.db.Exec(
		`DELETE FROM nav_records WHERE id NOT IN
		 (SELECT id FROM nav_records ORDER BY id DESC LIMIT ?)`,
		nav.MaxRecords,
	)
	if err != nil {
		return fmt.Errorf("failed to trim records: %w", err)
	}
	return nil
}

// Recent returns up to n most recent records, oldest first.
func (s *SQLiteStore) Recent(n int) ([]nav.Record, error) {
	rows, err := s.db.Query(
		`SELECT module_id, kind, timestamp, user_role, school_plan, session_duration_ms
		 FROM (SELECT * FROM nav_records ORDER BY id DESC LIMIT ?)
		 ORDER BY id ASC`,
		n,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query records: %w", err)
	}
	defer rows.Close()

	var records []nav.Record
	for rows.Next() {
		var rec nav.Record
		var moduleID, kind string
		var ts int64
		if err := rows.Scan(&moduleID, &kind, &ts, &rec.UserRole, &rec.SchoolPlan, &rec.SessionDurationMs); err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		rec.ModuleID = nav.ModuleID(moduleID)
		rec.Kind = nav.EventKind(kind)
		rec.Timestamp = time.UnixMilli(ts)
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
