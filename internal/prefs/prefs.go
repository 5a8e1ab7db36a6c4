// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package prefs persists user preferences and adapter descriptors in a
// SQLite database. Chains are built from the stored descriptors overlaid
// onto the built-in defaults, so enable/disable and priority edits
// survive across runs.
package prefs

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/paperpipe/pkg/types"
)

const dbFile = "paperpipe.db"

// Adapter kinds stored in the descriptor table.
const (
	KindScraper    = "scraper"
	KindDownloader = "downloader"
)

// Store manages the preference SQLite database.
type Store struct {
	db *sql.DB
}

// NewStore opens or creates the preference database at dir/paperpipe.db,
// creating the schema when absent.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating preference directory: %w", err)
	}

	dbPath := filepath.Join(dir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL")
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
		`CREATE TABLE IF NOT EXISTS preferences (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS adapters (
			name TEXT NOT NULL,
			kind TEXT NOT NULL,
			enable INTEGER NOT NULL,
			priority INTEGER NOT NULL,
			args TEXT,
			custom TEXT,
			PRIMARY KEY (name, kind)
		)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Get returns the preference value for key, or fallback when unset.
func (s *Store) Get(key, fallback string) (string, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM preferences WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return fallback, nil
	}
	if err != nil {
		return "", fmt.Errorf("reading preference %s: %w", key, err)
	}
	return value, nil
}

// Set stores the preference value for key.
func (s *Store) Set(key, value string) error {
	_, err := s.db.Exec(
		`INSERT INTO preferences (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value=excluded.value`, key, value)
	if err != nil {
		return fmt.Errorf("writing preference %s: %w", key, err)
	}
	return nil
}

// Descriptors returns the stored adapter descriptors of the given kind.
func (s *Store) Descriptors(kind string) ([]types.Descriptor, error) {
	rows, err := s.db.Query(
		`SELECT name, enable, priority, args, custom FROM adapters WHERE kind = ? ORDER BY priority DESC, name`,
		kind)
	if err != nil {
		return nil, fmt.Errorf("reading descriptors: %w", err)
	}
	defer rows.Close()

	var descs []types.Descriptor
	for rows.Next() {
		var (
			d            types.Descriptor
			enable       int
			args, custom sql.NullString
		)
		if err := rows.Scan(&d.Name, &enable, &d.Priority, &args, &custom); err != nil {
			return nil, fmt.Errorf("scanning descriptor: %w", err)
		}
		d.Enable = enable != 0
		if args.Valid && args.String != "" {
			if err := json.Unmarshal([]byte(args.String), &d.Args); err != nil {
				return nil, fmt.Errorf("parsing args for %s: %w", d.Name, err)
			}
		}
		if custom.Valid && custom.String != "" {
			d.Custom = &types.CustomRules{}
			if err := json.Unmarshal([]byte(custom.String), d.Custom); err != nil {
				return nil, fmt.Errorf("parsing custom rules for %s: %w", d.Name, err)
			}
		}
		descs = append(descs, d)
	}
	return descs, rows.Err()
}

// SaveDescriptor upserts one adapter descriptor.
func (s *Store) SaveDescriptor(kind string, d types.Descriptor) error {
	var argsJSON, customJSON []byte
	var err error
	if len(d.Args) > 0 {
		if argsJSON, err = json.Marshal(d.Args); err != nil {
			return fmt.Errorf("marshaling args for %s: %w", d.Name, err)
		}
	}
	if d.Custom != nil {
		if customJSON, err = json.Marshal(d.Custom); err != nil {
			return fmt.Errorf("marshaling custom rules for %s: %w", d.Name, err)
		}
	}

	_, err = s.db.Exec(
		`INSERT INTO adapters (name, kind, enable, priority, args, custom)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(name, kind) DO UPDATE SET
			enable=excluded.enable, priority=excluded.priority,
			args=excluded.args, custom=excluded.custom`,
		d.Name, kind, boolInt(d.Enable), d.Priority, nullable(argsJSON), nullable(customJSON))
	if err != nil {
		return fmt.Errorf("saving descriptor %s: %w", d.Name, err)
	}
	return nil
}

// SetEnabled flips the enable flag of a stored descriptor, inserting it
// with the given defaults when it has never been stored.
func (s *Store) SetEnabled(kind string, d types.Descriptor, enable bool) error {
	d.Enable = enable
	return s.SaveDescriptor(kind, d)
}

// DeleteDescriptor removes a stored descriptor, reverting the adapter to
// its built-in defaults on the next run.
func (s *Store) DeleteDescriptor(kind, name string) error {
	_, err := s.db.Exec(`DELETE FROM adapters WHERE kind = ? AND name = ?`, kind, name)
	if err != nil {
		return fmt.Errorf("deleting descriptor %s: %w", name, err)
	}
	return nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func nullable(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	return string(b)
}
