package helperstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/gwauth/internal/dbx"
	"github.com/dmitrijs2005/gwauth/internal/filex"
	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS helper_data (
  user_id    TEXT PRIMARY KEY,
  helper     BLOB NOT NULL,
  updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);`

type SQLite struct {
	db   dbx.DBTX
	conn *sql.DB
}

func NewSQLite(db dbx.DBTX) *SQLite {
	return &SQLite{db: db}
}

// OpenSQLite opens (creating if needed) the database file at path.
func OpenSQLite(ctx context.Context, path string) (*SQLite, error) {
	if path != ":memory:" && !strings.HasPrefix(path, "file:") {
		if _, err := filex.EnsureParentDir(path); err != nil {
			return nil, err
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	s := &SQLite{db: db, conn: db}
	if err := s.EnsureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLite) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, sqliteSchema); err != nil {
		return fmt.Errorf("failed to create helper_data: %w", err)
	}
	return nil
}

func (s *SQLite) Save(ctx context.Context, userID string, helper []byte) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO helper_data (user_id, helper) VALUES (?, ?)
		ON CONFLICT(user_id) DO UPDATE SET helper = excluded.helper, updated_at = CURRENT_TIMESTAMP
	`, userID, helper)
	if err != nil {
		return fmt.Errorf("failed to save helper data[%s]: %w", userID, err)
	}
	return nil
}

func (s *SQLite) Load(ctx context.Context, userID string) ([]byte, error) {
	var helper []byte
	err := s.db.QueryRowContext(ctx, `SELECT helper FROM helper_data WHERE user_id = ?`, userID).Scan(&helper)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load helper data[%s]: %w", userID, err)
	}
	return helper, nil
}

func (s *SQLite) Delete(ctx context.Context, userID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM helper_data WHERE user_id = ?`, userID)
	if err != nil {
		return fmt.Errorf("failed to delete helper data[%s]: %w", userID, err)
	}
	return nil
}

// Close closes the database only if OpenSQLite opened it.
func (s *SQLite) Close() error {
	if s.conn == nil {
		return nil
	}
	return s.conn.Close()
}
