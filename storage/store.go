// Package storage persists session histories in SQLite so they survive a
// server restart.
package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"icon_studio/errclass"
	"icon_studio/generator"
	"icon_studio/history"
)

// Session is the persisted form of a generator.Session.
type Session struct {
	ID        string
	CreatedAt time.Time
	Cursor    int
	Records   []generator.Record
}

// Store provides SQLite-backed persistence for session histories.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at path and migrates it.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	// A single connection keeps writes serialized and pragmas in effect.
	db.SetMaxOpenConns(1)
	for _, pragma := range []string{`PRAGMA foreign_keys = ON`, `PRAGMA busy_timeout = 5000`} {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("open store: %s: %w", pragma, err)
		}
	}
	if err := Migrate(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return New(db)
}

// New returns a Store bound to an existing, migrated database handle.
func New(db *sql.DB) (*Store, error) {
	if db == nil {
		return nil, fmt.Errorf("db is nil")
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// SaveSession replaces the stored history of a session with state.
func (s *Store) SaveSession(id string, createdAt time.Time, state history.State[generator.Record]) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("save session: store is nil")
	}
	if id == "" {
		return fmt.Errorf("save session: id is empty")
	}
	now := time.Now().UTC().Format(time.RFC3339Nano)

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("save session: begin: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	_, err = tx.Exec(`INSERT INTO sessions (id, cursor, created_at, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET cursor = excluded.cursor, updated_at = excluded.updated_at`,
		id, state.Cursor(), createdAt.UTC().Format(time.RFC3339Nano), now)
	if err != nil {
		return fmt.Errorf("save session: upsert: %w", err)
	}
	if _, err = tx.Exec(`DELETE FROM records WHERE session_id = ?`, id); err != nil {
		return fmt.Errorf("save session: clear records: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT INTO records
		(id, session_id, position, svg, label, prompt, style, color, reference_image, extraction_fallback, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("save session: prepare: %w", err)
	}
	defer stmt.Close()

	for i, r := range state.Entries() {
		fallback := 0
		if r.ExtractionFallback {
			fallback = 1
		}
		_, err = stmt.Exec(r.ID, id, i, r.SVG, r.Label, r.Prompt, r.Style, r.Color, r.ReferenceImage,
			fallback, r.CreatedAt.UTC().Format(time.RFC3339Nano))
		if err != nil {
			return fmt.Errorf("save session: insert record %s: %w", r.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("save session: commit: %w", err)
	}
	return nil
}

// LoadSession returns a stored session. A missing session yields
// errclass.ErrNotFound.
func (s *Store) LoadSession(id string) (Session, error) {
	if s == nil || s.db == nil {
		return Session{}, fmt.Errorf("load session: store is nil")
	}

	var (
		out       Session
		createdAt string
	)
	err := s.db.QueryRow(`SELECT id, cursor, created_at FROM sessions WHERE id = ?`, id).
		Scan(&out.ID, &out.Cursor, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Session{}, errclass.ErrNotFound.WithDetailsf("session %s", id)
	}
	if err != nil {
		return Session{}, fmt.Errorf("load session: select: %w", err)
	}
	if out.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return Session{}, fmt.Errorf("load session: parse created_at: %w", err)
	}

	rows, err := s.db.Query(`SELECT id, svg, label, prompt, style, color, reference_image, extraction_fallback, created_at
		FROM records WHERE session_id = ? ORDER BY position`, id)
	if err != nil {
		return Session{}, fmt.Errorf("load session: select records: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			r        generator.Record
			fallback int
			at       string
		)
		if err := rows.Scan(&r.ID, &r.SVG, &r.Label, &r.Prompt, &r.Style, &r.Color, &r.ReferenceImage, &fallback, &at); err != nil {
			return Session{}, fmt.Errorf("load session: scan record: %w", err)
		}
		r.ExtractionFallback = fallback != 0
		if r.CreatedAt, err = time.Parse(time.RFC3339Nano, at); err != nil {
			return Session{}, fmt.Errorf("load session: parse record time: %w", err)
		}
		out.Records = append(out.Records, r)
	}
	if err := rows.Err(); err != nil {
		return Session{}, fmt.Errorf("load session: rows: %w", err)
	}
	return out, nil
}

// ListSessionIDs returns stored session ids, most recently updated first.
func (s *Store) ListSessionIDs() ([]string, error) {
	rows, err := s.db.Query(`SELECT id FROM sessions ORDER BY updated_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("list sessions: scan: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// DeleteSession removes a session and its records.
func (s *Store) DeleteSession(id string) error {
	res, err := s.db.Exec(`DELETE FROM sessions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete session: rows affected: %w", err)
	}
	if n == 0 {
		return errclass.ErrNotFound.WithDetailsf("session %s", id)
	}
	return nil
}
