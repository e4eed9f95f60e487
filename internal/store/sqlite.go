package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/readingroom/librarian/config"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore opens the database at dsn, migrates it, and seeds it from lib.
func NewSQLiteStore(dsn string, lib *config.Library) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// For in-memory SQLite, multiple connections create separate databases.
	// Keep a single connection to avoid schema/data disappearing across goroutines.
	if dsn == ":memory:" || strings.Contains(dsn, "mode=memory") {
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	if err := s.seed(lib); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to seed database: %w", err)
	}

	return s, nil
}

// migrate runs database migrations.
func (s *SQLiteStore) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS books (
			title TEXT PRIMARY KEY,
			copies INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS members (
			token TEXT PRIMARY KEY,
			name TEXT NOT NULL
		)`,
	}

	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w\n%s", err, m)
		}
	}
	return nil
}

// seed inserts the configured books and members, keeping existing rows.
func (s *SQLiteStore) seed(lib *config.Library) error {
	if lib == nil {
		return nil
	}
	for title, copies := range lib.Books {
		if _, err := s.db.Exec(`INSERT OR IGNORE INTO books (title, copies) VALUES (?, ?)`, title, copies); err != nil {
			return fmt.Errorf("seed book %q: %w", title, err)
		}
	}
	for token, name := range lib.Members {
		if _, err := s.db.Exec(`INSERT OR IGNORE INTO members (token, name) VALUES (?, ?)`, token, name); err != nil {
			return fmt.Errorf("seed member %q: %w", token, err)
		}
	}
	return nil
}

// Lookup returns the copy count for an exact (case-insensitive) title.
func (s *SQLiteStore) Lookup(ctx context.Context, title string) (int, bool, error) {
	var copies int
	err := s.db.QueryRowContext(ctx,
		`SELECT copies FROM books WHERE lower(title) = lower(?)`, title).Scan(&copies)
	if err == sql.ErrNoRows {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("lookup book: %w", err)
	}
	return copies, true, nil
}

// Search returns titles containing the query, case-insensitively.
func (s *SQLiteStore) Search(ctx context.Context, query string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT title FROM books WHERE instr(lower(title), lower(?)) > 0 ORDER BY title`, query)
	if err != nil {
		return nil, fmt.Errorf("search books: %w", err)
	}
	defer rows.Close()

	var titles []string
	for rows.Next() {
		var title string
		if err := rows.Scan(&title); err != nil {
			return nil, fmt.Errorf("scan title: %w", err)
		}
		titles = append(titles, title)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate titles: %w", err)
	}
	return titles, nil
}

// IsValidToken reports whether token belongs to a registered member.
func (s *SQLiteStore) IsValidToken(ctx context.Context, token string) (bool, error) {
	if token == "" {
		return false, nil
	}
	var one int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM members WHERE token = ?`, token).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check member token: %w", err)
	}
	return true, nil
}

// MemberName returns the display name for a member token, or "" if unknown.
func (s *SQLiteStore) MemberName(ctx context.Context, token string) (string, error) {
	var name string
	err := s.db.QueryRowContext(ctx, `SELECT name FROM members WHERE token = ?`, token).Scan(&name)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get member name: %w", err)
	}
	return name, nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
