package example

import (
	"context"
	"database/sql"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
)

const schema = `
CREATE TABLE IF NOT EXISTS notes (
	id       INTEGER PRIMARY KEY AUTOINCREMENT,
	slug     TEXT NOT NULL UNIQUE,
	title    TEXT NOT NULL,
	body     TEXT NOT NULL,
	owner    TEXT NOT NULL,
	archived INTEGER NOT NULL DEFAULT 0
)`

// Store keeps notes in SQLite. Errors keep the driver error in their chain,
// so missing rows and constraint violations can be recognized upstream.
type Store struct {
	db *sql.DB
}

// OpenStore opens the database at dsn and creates the schema.
// Use ":memory:" for a throwaway database.
func OpenStore(ctx context.Context, dsn string) (*Store, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", dsn)
	}
	// Every connection to ":memory:" is a separate database.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "create schema")
	}
	return &Store{db: db}, nil
}

func (s *Store) Insert(ctx context.Context, n *Note) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO notes (slug, title, body, owner, archived) VALUES (?, ?, ?, ?, ?)`,
		n.Slug, n.Title, n.Body, n.Owner, n.Archived)
	return errors.Wrapf(err, "insert note %q", n.Slug)
}

func (s *Store) Get(ctx context.Context, slug string) (*Note, error) {
	n := &Note{}
	err := s.db.QueryRowContext(ctx,
		`SELECT slug, title, body, owner, archived FROM notes WHERE slug = ?`, slug,
	).Scan(&n.Slug, &n.Title, &n.Body, &n.Owner, &n.Archived)
	if err != nil {
		return nil, errors.Wrapf(err, "get note %q", slug)
	}
	return n, nil
}

func (s *Store) SetArchived(ctx context.Context, slug string) error {
	_, err := s.db.ExecContext(ctx, `UPDATE notes SET archived = 1 WHERE slug = ?`, slug)
	return errors.Wrapf(err, "archive note %q", slug)
}

func (s *Store) Count(ctx context.Context, owner string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM notes WHERE owner = ?`, owner).Scan(&count)
	if err != nil {
		return 0, errors.Wrapf(err, "count notes of %q", owner)
	}
	return count, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}
