// Package history keeps a SQLite record of every analyze run.
package history

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/KaramelBytes/tidyloom-cli/internal/utils"
)

const timeLayout = "2006-01-02 15:04:05.000000"

// Run is one recorded analyze invocation.
type Run struct {
	ID          string
	File        string
	RowsIn      int
	RowsOut     int
	RowsRemoved int
	Columns     int
	Issues      int
	ReportPath  string
	CreatedAt   time.Time
}

type runRow struct {
	ID          string `db:"id"`
	File        string `db:"file"`
	RowsIn      int    `db:"rows_in"`
	RowsOut     int    `db:"rows_out"`
	RowsRemoved int    `db:"rows_removed"`
	Columns     int    `db:"columns"`
	Issues      int    `db:"issues"`
	ReportPath  string `db:"report_path"`
	CreatedAt   string `db:"created_at"`
}

// Store is a SQLite-backed run log.
type Store struct {
	db  *sqlx.DB
	now func() time.Time
}

// Open opens or creates the database at path. ":memory:" keeps it in
// memory for the lifetime of the store.
func Open(path string) (*Store, error) {
	if path != ":memory:" {
		if err := utils.EnsureDir(filepath.Dir(path)); err != nil {
			return nil, fmt.Errorf("create history dir: %w", err)
		}
	}
	db, err := sqlx.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// One connection: the CLI is the only writer and :memory: needs it.
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if path != ":memory:" {
		if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
			db.Close()
			return nil, fmt.Errorf("enable WAL mode: %w", err)
		}
	}
	s := &Store{db: db, now: time.Now}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("create tables: %w", err)
	}
	return s, nil
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		file TEXT NOT NULL,
		rows_in INTEGER NOT NULL,
		rows_out INTEGER NOT NULL,
		rows_removed INTEGER NOT NULL,
		columns INTEGER NOT NULL,
		issues INTEGER NOT NULL,
		report_path TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created_at DESC);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("execute schema: %w", err)
	}
	return nil
}

func (s *Store) Close() error { return s.db.Close() }

// Record stores r, filling in ID and CreatedAt when unset.
func (s *Store) Record(ctx context.Context, r *Run) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = s.now()
	}
	row := runRow{
		ID:          r.ID,
		File:        r.File,
		RowsIn:      r.RowsIn,
		RowsOut:     r.RowsOut,
		RowsRemoved: r.RowsRemoved,
		Columns:     r.Columns,
		Issues:      r.Issues,
		ReportPath:  r.ReportPath,
		CreatedAt:   r.CreatedAt.UTC().Format(timeLayout),
	}
	_, err := s.db.NamedExecContext(ctx, `
		INSERT INTO runs (id, file, rows_in, rows_out, rows_removed, columns, issues, report_path, created_at)
		VALUES (:id, :file, :rows_in, :rows_out, :rows_removed, :columns, :issues, :report_path, :created_at)`, row)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// List returns the most recent runs first. limit <= 0 returns all.
func (s *Store) List(ctx context.Context, limit int) ([]Run, error) {
	q := `SELECT id, file, rows_in, rows_out, rows_removed, columns, issues, report_path, created_at
		FROM runs ORDER BY created_at DESC, rowid DESC`
	args := []any{}
	if limit > 0 {
		q += " LIMIT ?"
		args = append(args, limit)
	}
	var rows []runRow
	if err := s.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	out := make([]Run, 0, len(rows))
	for _, row := range rows {
		ts, err := time.ParseInLocation(timeLayout, row.CreatedAt, time.UTC)
		if err != nil {
			return nil, fmt.Errorf("parse created_at of run %s: %w", row.ID, err)
		}
		out = append(out, Run{
			ID:          row.ID,
			File:        row.File,
			RowsIn:      row.RowsIn,
			RowsOut:     row.RowsOut,
			RowsRemoved: row.RowsRemoved,
			Columns:     row.Columns,
			Issues:      row.Issues,
			ReportPath:  row.ReportPath,
			CreatedAt:   ts,
		})
	}
	return out, nil
}
