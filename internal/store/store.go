// Package store records corpus builds in a sqlite manifest: which documents
// were normalized, how their lines were classified, what diagnostics they
// raised and which split each episode landed in.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ppiankov/scriptcorpus/internal/model"

	_ "modernc.org/sqlite"
)

const createRunsTableSQL = `
CREATE TABLE IF NOT EXISTS runs (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	started_at_utc TEXT NOT NULL,
	duration_ms INTEGER NOT NULL,
	strict INTEGER NOT NULL,
	episodes INTEGER NOT NULL,
	test_episodes INTEGER NOT NULL,
	valid_episodes INTEGER NOT NULL,
	train_episodes INTEGER NOT NULL,
	cache_hits INTEGER NOT NULL,
	diagnostics INTEGER NOT NULL
)`

const createDocumentsTableSQL = `
CREATE TABLE IF NOT EXISTS documents (
	run_id INTEGER NOT NULL,
	doc_index INTEGER NOT NULL,
	doc_id TEXT NOT NULL,
	output_path TEXT NOT NULL,
	split TEXT NOT NULL,
	raw_lines INTEGER NOT NULL,
	empty_lines INTEGER NOT NULL,
	character_lines INTEGER NOT NULL,
	exposition_lines INTEGER NOT NULL,
	dropped_lines INTEGER NOT NULL,
	tokens INTEGER NOT NULL,
	markers INTEGER NOT NULL,
	cached INTEGER NOT NULL,
	PRIMARY KEY (run_id, doc_index)
)`

const createDiagnosticsTableSQL = `
CREATE TABLE IF NOT EXISTS diagnostics (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id INTEGER NOT NULL,
	doc_id TEXT NOT NULL,
	line_no INTEGER NOT NULL,
	kind TEXT NOT NULL,
	line TEXT NOT NULL,
	message TEXT NOT NULL
)`

var createIndexesSQL = []string{
	`CREATE INDEX IF NOT EXISTS idx_documents_split ON documents(run_id, split)`,
	`CREATE INDEX IF NOT EXISTS idx_diagnostics_kind ON diagnostics(run_id, kind)`,
}

const insertRunSQL = `
INSERT INTO runs (
	started_at_utc, duration_ms, strict, episodes,
	test_episodes, valid_episodes, train_episodes, cache_hits, diagnostics
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

const insertDocumentSQL = `
INSERT INTO documents (
	run_id, doc_index, doc_id, output_path, split, raw_lines, empty_lines,
	character_lines, exposition_lines, dropped_lines, tokens, markers, cached
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

const insertDiagnosticSQL = `
INSERT INTO diagnostics (run_id, doc_id, line_no, kind, line, message)
VALUES (?, ?, ?, ?, ?, ?)`

// Store is a sqlite-backed run manifest
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the manifest at path and ensures the schema.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("manifest path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create manifest dir: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open manifest: %w", err)
	}
	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) migrate() error {
	stmts := []string{createRunsTableSQL, createDocumentsTableSQL, createDiagnosticsTableSQL}
	stmts = append(stmts, createIndexesSQL...)
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("migrate manifest: %w", err)
		}
	}
	return nil
}

// Close closes the underlying database
func (s *Store) Close() error {
	return s.db.Close()
}

// RecordRun stores a run report in one transaction and returns the run id.
func (s *Store) RecordRun(ctx context.Context, report *model.RunReport) (runID int64, err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx, insertRunSQL,
		report.StartedAt.UTC().Format(time.RFC3339Nano),
		report.Duration.Milliseconds(),
		boolToInt(report.Strict),
		report.Splits.Episodes,
		report.Splits.Test,
		report.Splits.Valid,
		report.Splits.Train,
		report.CacheHits,
		report.Diagnostics,
	)
	if err != nil {
		return 0, fmt.Errorf("insert run: %w", err)
	}
	runID, err = res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("run id: %w", err)
	}

	docStmt, err := tx.PrepareContext(ctx, insertDocumentSQL)
	if err != nil {
		return 0, fmt.Errorf("prepare document insert: %w", err)
	}
	defer func() { _ = docStmt.Close() }()

	diagStmt, err := tx.PrepareContext(ctx, insertDiagnosticSQL)
	if err != nil {
		return 0, fmt.Errorf("prepare diagnostic insert: %w", err)
	}
	defer func() { _ = diagStmt.Close() }()

	for i, d := range report.Documents {
		if _, err := docStmt.ExecContext(ctx,
			runID, i, d.ID, d.OutputPath, d.Split,
			d.Stats.Raw, d.Stats.Empty, d.Stats.Character, d.Stats.Exposition, d.Stats.Dropped,
			d.Stats.Tokens, d.Stats.Markers,
			boolToInt(d.Cached),
		); err != nil {
			return 0, fmt.Errorf("insert document %s: %w", d.ID, err)
		}
		for _, diag := range d.Diagnostics {
			if _, err := diagStmt.ExecContext(ctx, runID, d.ID, diag.LineNo, string(diag.Kind), diag.Line, diag.Message); err != nil {
				return 0, fmt.Errorf("insert diagnostic %s: %w", d.ID, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return runID, nil
}

// DocumentSplit is one row of a run's split assignment
type DocumentSplit struct {
	DocID  string
	Split  string
	Tokens int
}

// Splits returns the split assignment of a run's documents in document order.
func (s *Store) Splits(ctx context.Context, runID int64) ([]DocumentSplit, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT doc_id, split, tokens FROM documents WHERE run_id = ? ORDER BY doc_index`, runID)
	if err != nil {
		return nil, fmt.Errorf("query splits: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []DocumentSplit
	for rows.Next() {
		var ds DocumentSplit
		if err := rows.Scan(&ds.DocID, &ds.Split, &ds.Tokens); err != nil {
			return nil, fmt.Errorf("scan split: %w", err)
		}
		out = append(out, ds)
	}
	return out, rows.Err()
}

// DiagnosticCounts returns the number of diagnostics of each kind in a run.
func (s *Store) DiagnosticCounts(ctx context.Context, runID int64) (map[model.DiagnosticKind]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT kind, COUNT(*) FROM diagnostics WHERE run_id = ? GROUP BY kind`, runID)
	if err != nil {
		return nil, fmt.Errorf("query diagnostics: %w", err)
	}
	defer func() { _ = rows.Close() }()

	counts := make(map[model.DiagnosticKind]int)
	for rows.Next() {
		var kind string
		var n int
		if err := rows.Scan(&kind, &n); err != nil {
			return nil, fmt.Errorf("scan diagnostic count: %w", err)
		}
		counts[model.DiagnosticKind(kind)] = n
	}
	return counts, rows.Err()
}

// LatestRunID returns the id of the most recent run, or 0 when there is none.
func (s *Store) LatestRunID(ctx context.Context) (int64, error) {
	var id sql.NullInt64
	if err := s.db.QueryRowContext(ctx, `SELECT MAX(id) FROM runs`).Scan(&id); err != nil {
		return 0, fmt.Errorf("query latest run: %w", err)
	}
	return id.Int64, nil
}

// HasRun reports whether a run with the given id was recorded.
func (s *Store) HasRun(ctx context.Context, runID int64) (bool, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM runs WHERE id = ?`, runID).Scan(&n); err != nil {
		return false, fmt.Errorf("query run %d: %w", runID, err)
	}
	return n > 0, nil
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}
