package database

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/leca/sauce-relay/internal/model"
	_ "modernc.org/sqlite"
)

// SQLiteDB implements Database backed by SQLite.
type SQLiteDB struct {
	db *sql.DB
}

// NewSQLiteDB opens (or creates) an SQLite database at dsn and runs migrations.
// For in-memory use pass "file::memory:?cache=shared".
func NewSQLiteDB(dsn string) (*SQLiteDB, error) {
	if !strings.Contains(dsn, "?") {
		dsn += "?_journal_mode=WAL&_busy_timeout=5000"
	} else if !strings.Contains(dsn, "_journal_mode") {
		dsn += "&_journal_mode=WAL&_busy_timeout=5000"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteDB{db: db}, nil
}

// Close closes the underlying database connection.
func (s *SQLiteDB) Close() error {
	return s.db.Close()
}

func (s *SQLiteDB) CreateSearch(rec *model.SearchRecord) error {
	_, err := s.db.Exec(`
		INSERT INTO searches (id, source, source_url, bytes, numres, dedupe, outcome, detail, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Source, rec.SourceURL, rec.Bytes, rec.NumResults, rec.Dedupe,
		rec.Outcome, rec.Detail, rec.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert search: %w", err)
	}
	return nil
}

func (s *SQLiteDB) GetSearch(id string) (*model.SearchRecord, error) {
	row := s.db.QueryRow(`
		SELECT id, source, source_url, bytes, numres, dedupe, outcome, detail, created_at
		FROM searches WHERE id = ?`,
		id,
	)
	return scanSearch(row)
}

func (s *SQLiteDB) ListSearches(page, perPage int) ([]*model.SearchRecord, int, error) {
	var total int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM searches`).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("count searches: %w", err)
	}

	offset := (page - 1) * perPage
	rows, err := s.db.Query(`
		SELECT id, source, source_url, bytes, numres, dedupe, outcome, detail, created_at
		FROM searches
		ORDER BY created_at DESC, id DESC
		LIMIT ? OFFSET ?`,
		perPage, offset,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("list searches: %w", err)
	}
	defer rows.Close()

	var records []*model.SearchRecord
	for rows.Next() {
		rec, err := scanSearch(rows)
		if err != nil {
			return nil, 0, err
		}
		records = append(records, rec)
	}
	return records, total, rows.Err()
}

func (s *SQLiteDB) DeleteSearch(id string) error {
	res, err := s.db.Exec(`DELETE FROM searches WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete search: %w", err)
	}
	return checkRowsAffected(res, "search not found")
}

func (s *SQLiteDB) CountSearches() (int, error) {
	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM searches`).Scan(&count)
	return count, err
}

func (s *SQLiteDB) CountSearchesByOutcome() (map[string]int, error) {
	rows, err := s.db.Query(`SELECT outcome, COUNT(*) FROM searches GROUP BY outcome`)
	if err != nil {
		return nil, fmt.Errorf("count searches by outcome: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var outcome string
		var count int
		if err := rows.Scan(&outcome, &count); err != nil {
			return nil, fmt.Errorf("scan outcome count: %w", err)
		}
		counts[outcome] = count
	}
	return counts, rows.Err()
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

type scannable interface {
	Scan(dest ...interface{}) error
}

func scanSearch(row scannable) (*model.SearchRecord, error) {
	rec := &model.SearchRecord{}
	var createdStr string

	err := row.Scan(&rec.ID, &rec.Source, &rec.SourceURL, &rec.Bytes,
		&rec.NumResults, &rec.Dedupe, &rec.Outcome, &rec.Detail, &createdStr)
	if err != nil {
		return nil, fmt.Errorf("scan search: %w", err)
	}

	rec.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdStr)
	return rec, nil
}

func checkRowsAffected(res sql.Result, notFoundMsg string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%s", notFoundMsg)
	}
	return nil
}
