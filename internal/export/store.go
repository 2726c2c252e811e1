// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package export writes harvest reports for downstream use: YAML, JSON, and
// Excel files, and a SQLite database that accumulates one row set per run.
package export

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/pubmed-affiliations/pkg/types"
)

// ErrRunNotFound is returned by LoadReport for an unknown run id.
var ErrRunNotFound = errors.New("run not found")

// Store manages the report SQLite database.
type Store struct {
	db *sql.DB
}

// OpenStore opens or creates the database at path and creates the schema
// if it does not exist.
func OpenStore(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on")
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
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			term TEXT NOT NULL,
			keywords TEXT,
			started_at TEXT,
			finished_at TEXT,
			ids_collected INTEGER,
			articles_fetched INTEGER,
			articles_accepted INTEGER,
			articles_rejected INTEGER
		)`,
		`CREATE TABLE IF NOT EXISTS authors (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			name TEXT NOT NULL,
			UNIQUE(run_id, name)
		)`,
		`CREATE TABLE IF NOT EXISTS affiliations (
			author_id INTEGER NOT NULL REFERENCES authors(id) ON DELETE CASCADE,
			affiliation TEXT NOT NULL,
			PRIMARY KEY(author_id, affiliation)
		)`,
		`CREATE TABLE IF NOT EXISTS titles (
			author_id INTEGER NOT NULL REFERENCES authors(id) ON DELETE CASCADE,
			title TEXT NOT NULL,
			PRIMARY KEY(author_id, title)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_authors_name ON authors(name)`,
		`CREATE INDEX IF NOT EXISTS idx_affiliations_affiliation ON affiliations(affiliation)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// SaveReport stores report under its RunID, replacing an earlier save of
// the same run.
func (s *Store) SaveReport(ctx context.Context, report *types.Report) error {
	if report.RunID == "" {
		return fmt.Errorf("report has no run id")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, report.RunID); err != nil {
		return fmt.Errorf("deleting previous run: %w", err)
	}

	keywordsJSON, _ := json.Marshal(report.Keywords)
	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, term, keywords, started_at, finished_at,
			ids_collected, articles_fetched, articles_accepted, articles_rejected)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		report.RunID, report.Term, string(keywordsJSON),
		formatTime(report.StartedAt), formatTime(report.FinishedAt),
		report.Stats.IDsCollected, report.Stats.ArticlesFetched,
		report.Stats.ArticlesAccepted, report.Stats.ArticlesRejected,
	)
	if err != nil {
		return fmt.Errorf("inserting run: %w", err)
	}

	affStmt, err := tx.PrepareContext(ctx,
		`INSERT OR IGNORE INTO affiliations (author_id, affiliation) VALUES (?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing affiliation insert: %w", err)
	}
	defer affStmt.Close()

	titleStmt, err := tx.PrepareContext(ctx,
		`INSERT OR IGNORE INTO titles (author_id, title) VALUES (?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing title insert: %w", err)
	}
	defer titleStmt.Close()

	for _, a := range report.Authors {
		res, err := tx.ExecContext(ctx,
			`INSERT INTO authors (run_id, name) VALUES (?, ?)`, report.RunID, a.Name)
		if err != nil {
			return fmt.Errorf("inserting author %s: %w", a.Name, err)
		}
		authorID, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("reading author id: %w", err)
		}
		for _, aff := range a.Affiliations {
			if _, err := affStmt.ExecContext(ctx, authorID, aff); err != nil {
				return fmt.Errorf("inserting affiliation for %s: %w", a.Name, err)
			}
		}
		for _, title := range a.Titles {
			if _, err := titleStmt.ExecContext(ctx, authorID, title); err != nil {
				return fmt.Errorf("inserting title for %s: %w", a.Name, err)
			}
		}
	}

	return tx.Commit()
}

// LoadReport reads a stored run back. Authors, affiliations, and titles
// come back sorted; Stats.Authors is the number of authors.
func (s *Store) LoadReport(ctx context.Context, runID string) (*types.Report, error) {
	var (
		r                     types.Report
		keywordsJSON          string
		startedAt, finishedAt string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, term, keywords, started_at, finished_at,
			ids_collected, articles_fetched, articles_accepted, articles_rejected
		 FROM runs WHERE id = ?`, runID,
	).Scan(&r.RunID, &r.Term, &keywordsJSON, &startedAt, &finishedAt,
		&r.Stats.IDsCollected, &r.Stats.ArticlesFetched,
		&r.Stats.ArticlesAccepted, &r.Stats.ArticlesRejected)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	if err != nil {
		return nil, fmt.Errorf("querying run: %w", err)
	}
	if err := json.Unmarshal([]byte(keywordsJSON), &r.Keywords); err != nil {
		return nil, fmt.Errorf("decoding run keywords: %w", err)
	}
	r.StartedAt = parseTime(startedAt)
	r.FinishedAt = parseTime(finishedAt)

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name FROM authors WHERE run_id = ? ORDER BY name`, runID)
	if err != nil {
		return nil, fmt.Errorf("querying authors: %w", err)
	}
	type authorRow struct {
		id   int64
		name string
	}
	var authorRows []authorRow
	for rows.Next() {
		var ar authorRow
		if err := rows.Scan(&ar.id, &ar.name); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scanning author: %w", err)
		}
		authorRows = append(authorRows, ar)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating authors: %w", err)
	}

	r.Authors = make([]types.AuthorSummary, 0, len(authorRows))
	for _, ar := range authorRows {
		affs, err := s.strings(ctx, `SELECT affiliation FROM affiliations WHERE author_id = ? ORDER BY affiliation`, ar.id)
		if err != nil {
			return nil, err
		}
		titles, err := s.strings(ctx, `SELECT title FROM titles WHERE author_id = ? ORDER BY title`, ar.id)
		if err != nil {
			return nil, err
		}
		r.Authors = append(r.Authors, types.AuthorSummary{Name: ar.name, Affiliations: affs, Titles: titles})
	}
	r.Stats.Authors = len(r.Authors)
	return &r, nil
}

// RunIDs returns stored run ids, most recent first.
func (s *Store) RunIDs(ctx context.Context) ([]string, error) {
	return s.strings(ctx, `SELECT id FROM runs ORDER BY started_at DESC, id`)
}

// AuthorsByAffiliation returns the names of authors in runID whose
// affiliation contains substr. The match is literal and case-sensitive.
func (s *Store) AuthorsByAffiliation(ctx context.Context, runID, substr string) ([]string, error) {
	return s.strings(ctx,
		`SELECT DISTINCT a.name FROM authors a
		 JOIN affiliations f ON f.author_id = a.id
		 WHERE a.run_id = ? AND instr(f.affiliation, ?) > 0
		 ORDER BY a.name`, runID, substr)
}

func (s *Store) strings(ctx context.Context, query string, args ...any) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying: %w", err)
	}
	defer rows.Close()

	out := []string{}
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("scanning: %w", err)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
