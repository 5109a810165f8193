package main

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/bekirdag/gridview/internal/grid"
)

// layoutStore remembers column widths, order and visibility per dataset so a
// reopened file comes back the way it was left.
type layoutStore struct {
	db   *sql.DB
	path string
}

type savedColumn struct {
	Name     string
	Width    int
	Position int
	Hidden   bool
}

func openLayoutStore(dir string) (*layoutStore, error) {
	if err := ensureDir(dir); err != nil {
		return nil, err
	}
	sqlitePath := filepath.Join(dir, "layouts.sqlite")
	db, err := sql.Open("sqlite", sqlitePath)
	if err != nil {
		return nil, err
	}
	if err := migrateLayoutStore(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &layoutStore{db: db, path: sqlitePath}, nil
}

func migrateLayoutStore(db *sql.DB) error {
	statements := []string{
		`PRAGMA journal_mode=WAL;`,
		`CREATE TABLE IF NOT EXISTS column_layouts (
			dataset TEXT NOT NULL,
			name TEXT NOT NULL,
			width INTEGER NOT NULL DEFAULT 0,
			position INTEGER NOT NULL DEFAULT 0,
			hidden INTEGER NOT NULL DEFAULT 0,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (dataset, name)
		);`,
	}
	for _, stmt := range statements {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("layout store migration failed: %w", err)
		}
	}
	return nil
}

func (s *layoutStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Load returns the saved columns of dataset ordered by position.
func (s *layoutStore) Load(dataset string) ([]savedColumn, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	rows, err := s.db.Query(`SELECT name, width, position, hidden FROM column_layouts
		WHERE dataset = ? ORDER BY position ASC, name ASC`, datasetKey(dataset))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []savedColumn
	for rows.Next() {
		var (
			col    savedColumn
			hidden int
		)
		if err := rows.Scan(&col.Name, &col.Width, &col.Position, &hidden); err != nil {
			return nil, err
		}
		col.Hidden = hidden != 0
		out = append(out, col)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Save replaces the stored layout of dataset with cols.
func (s *layoutStore) Save(dataset string, cols []grid.Column) error {
	if s == nil || s.db == nil {
		return nil
	}
	key := datasetKey(dataset)
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	if _, err := tx.Exec(`DELETE FROM column_layouts WHERE dataset = ?`, key); err != nil {
		_ = tx.Rollback()
		return err
	}
	stmt, err := tx.Prepare(`INSERT INTO column_layouts (dataset, name, width, position, hidden) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	defer stmt.Close()
	for i, c := range cols {
		if c.Action {
			continue
		}
		hidden := 0
		if c.Hidden {
			hidden = 1
		}
		if _, err := stmt.Exec(key, c.Name, c.Width, i+1, hidden); err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

func (s *layoutStore) Forget(dataset string) error {
	if s == nil || s.db == nil {
		return nil
	}
	_, err := s.db.Exec(`DELETE FROM column_layouts WHERE dataset = ?`, datasetKey(dataset))
	return err
}

// applySavedLayout overlays saved widths, order and visibility on cols.
// Saved columns that no longer exist are ignored; new columns keep their
// place after the saved ones.
func applySavedLayout(cols []grid.Column, saved []savedColumn) []grid.Column {
	if len(saved) == 0 {
		return cols
	}
	byName := make(map[string]savedColumn, len(saved))
	for _, s := range saved {
		byName[s.Name] = s
	}
	out := make([]grid.Column, len(cols))
	for i, c := range cols {
		if s, ok := byName[c.Name]; ok {
			if s.Width > 0 {
				c.Width = s.Width
			}
			if c.Hideable {
				c.Hidden = s.Hidden
			}
			if c.Order == nil {
				pos := s.Position
				c.Order = &pos
			}
		}
		out[i] = c
	}
	return out
}

func datasetKey(dataset string) string {
	clean := strings.TrimSpace(dataset)
	if clean == "" {
		return "-"
	}
	if abs, err := filepath.Abs(clean); err == nil && pathExists(abs) {
		return abs
	}
	return clean
}

func ensureDir(path string) error {
	return os.MkdirAll(path, 0o755)
}

func pathExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
