// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store persists the conversion history: one row per converted
// file plus the diagnostics and labels that conversion produced.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/tyx/pkg/types"
)

// defaultRecent is the number of records Recent returns for a
// non-positive limit.
const defaultRecent = 20

// Store manages the history SQLite database.
type Store struct {
	db *sql.DB
}

// Open opens or creates the history database at path, creating its parent
// directory and the schema when missing.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating history directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS conversions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			source_path TEXT NOT NULL,
			direction TEXT NOT NULL,
			source_hash TEXT NOT NULL,
			output_path TEXT NOT NULL,
			output_hash TEXT NOT NULL,
			diagnostics INTEGER NOT NULL,
			converted_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_conversions_source ON conversions(source_path, direction)`,
		`CREATE TABLE IF NOT EXISTS diagnostics (
			conversion_id INTEGER NOT NULL REFERENCES conversions(id) ON DELETE CASCADE,
			kind TEXT NOT NULL,
			message TEXT NOT NULL,
			range_from INTEGER NOT NULL,
			range_to INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_diagnostics_conversion ON diagnostics(conversion_id)`,
		`CREATE TABLE IF NOT EXISTS labels (
			conversion_id INTEGER NOT NULL REFERENCES conversions(id) ON DELETE CASCADE,
			label TEXT NOT NULL,
			kind TEXT NOT NULL,
			title TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_labels_conversion ON labels(conversion_id)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Record inserts a conversion with its diagnostics and labels in one
// transaction and sets rec.ID.
func (s *Store) Record(ctx context.Context, rec *types.ConversionRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	at := rec.ConvertedAt
	if at.IsZero() {
		at = time.Now().UTC()
		rec.ConvertedAt = at
	}
	res, err := tx.ExecContext(ctx,
		`INSERT INTO conversions (source_path, direction, source_hash, output_path, output_hash, diagnostics, converted_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.SourcePath, string(rec.Direction), rec.SourceHash, rec.OutputPath, rec.OutputHash,
		rec.Diagnostics, at.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("inserting conversion %s: %w", rec.SourcePath, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading conversion id: %w", err)
	}

	diagStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO diagnostics (conversion_id, kind, message, range_from, range_to) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing diagnostic insert: %w", err)
	}
	defer diagStmt.Close()
	for _, d := range rec.Issues {
		if _, err := diagStmt.ExecContext(ctx, id, d.Kind, d.Message, d.From, d.To); err != nil {
			return fmt.Errorf("inserting diagnostic: %w", err)
		}
	}

	labelStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO labels (conversion_id, label, kind, title) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing label insert: %w", err)
	}
	defer labelStmt.Close()
	for _, l := range rec.Labels {
		if _, err := labelStmt.ExecContext(ctx, id, l.Label, l.Kind, l.Title); err != nil {
			return fmt.Errorf("inserting label %s: %w", l.Label, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing conversion: %w", err)
	}
	rec.ID = id
	return nil
}

const selectConversion = `SELECT id, source_path, direction, source_hash, output_path, output_hash, diagnostics, converted_at
	FROM conversions`

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (*types.ConversionRecord, error) {
	var (
		rec types.ConversionRecord
		dir string
		at  string
	)
	if err := row.Scan(&rec.ID, &rec.SourcePath, &dir, &rec.SourceHash,
		&rec.OutputPath, &rec.OutputHash, &rec.Diagnostics, &at); err != nil {
		return nil, err
	}
	rec.Direction = types.Direction(dir)
	t, err := time.Parse(time.RFC3339Nano, at)
	if err != nil {
		return nil, fmt.Errorf("parsing conversion time %q: %w", at, err)
	}
	rec.ConvertedAt = t
	return &rec, nil
}

// Latest returns the most recent conversion of sourcePath in direction
// dir, or nil when there is none.
func (s *Store) Latest(ctx context.Context, sourcePath string, dir types.Direction) (*types.ConversionRecord, error) {
	row := s.db.QueryRowContext(ctx,
		selectConversion+` WHERE source_path = ? AND direction = ? ORDER BY id DESC LIMIT 1`,
		sourcePath, string(dir))
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying latest conversion: %w", err)
	}
	return rec, nil
}

// Recent returns up to limit conversions, newest first, without their
// diagnostics and labels.
func (s *Store) Recent(ctx context.Context, limit int) ([]types.ConversionRecord, error) {
	if limit <= 0 {
		limit = defaultRecent
	}
	rows, err := s.db.QueryContext(ctx, selectConversion+` ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying conversions: %w", err)
	}
	defer rows.Close()

	var out []types.ConversionRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning conversion: %w", err)
		}
		out = append(out, *rec)
	}
	return out, rows.Err()
}

// Diagnostics returns the stored diagnostics of one conversion in
// insertion order.
func (s *Store) Diagnostics(ctx context.Context, conversionID int64) ([]types.DiagnosticRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT kind, message, range_from, range_to FROM diagnostics WHERE conversion_id = ? ORDER BY rowid`,
		conversionID)
	if err != nil {
		return nil, fmt.Errorf("querying diagnostics: %w", err)
	}
	defer rows.Close()

	var out []types.DiagnosticRecord
	for rows.Next() {
		var d types.DiagnosticRecord
		if err := rows.Scan(&d.Kind, &d.Message, &d.From, &d.To); err != nil {
			return nil, fmt.Errorf("scanning diagnostic: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// Labels returns the labels recorded for one conversion in insertion
// order.
func (s *Store) Labels(ctx context.Context, conversionID int64) ([]types.LabelRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT label, kind, COALESCE(title, '') FROM labels WHERE conversion_id = ? ORDER BY rowid`,
		conversionID)
	if err != nil {
		return nil, fmt.Errorf("querying labels: %w", err)
	}
	defer rows.Close()

	var out []types.LabelRecord
	for rows.Next() {
		var l types.LabelRecord
		if err := rows.Scan(&l.Label, &l.Kind, &l.Title); err != nil {
			return nil, fmt.Errorf("scanning label: %w", err)
		}
		out = append(out, l)
	}
	return out, rows.Err()
}
