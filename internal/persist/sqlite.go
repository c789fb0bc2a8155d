package persist

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"go.klb.dev/clipbox/internal/content"
	"go.klb.dev/clipbox/internal/history"
)

// SQLiteGateway stores the history in an SQLite table. Save rewrites the
// table inside one transaction, so readers see either the old or the new
// snapshot.
type SQLiteGateway struct {
	db *sql.DB
}

// NewSQLiteGateway opens or creates the database at dbPath.
func NewSQLiteGateway(dbPath string) (*SQLiteGateway, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o700); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(10000)&_pragma=synchronous(normal)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	db.SetMaxOpenConns(1)

	g := &SQLiteGateway{db: db}
	if err := g.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return g, nil
}

func (g *SQLiteGateway) migrate() error {
	_, err := g.db.Exec(`
	CREATE TABLE IF NOT EXISTS entries (
		id          TEXT PRIMARY KEY,
		position    INTEGER NOT NULL,
		content     TEXT NOT NULL,
		kind        TEXT NOT NULL DEFAULT 'text',
		created_at  TEXT NOT NULL,
		favorite    INTEGER NOT NULL DEFAULT 0,
		source_path TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_entries_position ON entries(position);
	`)
	return err
}

func (g *SQLiteGateway) Load(ctx context.Context) ([]history.Entry, error) {
	rows, err := g.db.QueryContext(ctx,
		`SELECT id, content, created_at, favorite, source_path
		 FROM entries ORDER BY position ASC`)
	if err != nil {
		return nil, fmt.Errorf("query entries: %w", err)
	}
	defer rows.Close()

	var entries []history.Entry
	for rows.Next() {
		var (
			e          history.Entry
			createdAt  string
			favorite   int
			sourcePath sql.NullString
		)
		if err := rows.Scan(&e.ID, &e.Content, &createdAt, &favorite, &sourcePath); err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		if e.CreatedAt, err = parseStamp(createdAt); err != nil {
			slog.Warn("stored entry has an unreadable timestamp, it will be restamped",
				"id", e.ID, "created_at", createdAt, "err", err)
		}
		e.Favorite = favorite != 0
		e.Kind = content.Classify(e.Content).Kind()
		if sourcePath.Valid && e.Kind == content.Image {
			e.SourcePath = sourcePath.String
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (g *SQLiteGateway) Save(ctx context.Context, entries []history.Entry) error {
	tx, err := g.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM entries`); err != nil {
		return fmt.Errorf("clear entries: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO entries (id, position, content, kind, created_at, favorite, source_path)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, e := range entries {
		var sourcePath *string
		if e.SourcePath != "" {
			sourcePath = &e.SourcePath
		}
		favorite := 0
		if e.Favorite {
			favorite = 1
		}
		if _, err := stmt.ExecContext(ctx,
			e.ID, i, e.Content, e.Kind.String(),
			e.CreatedAt.UTC().Format(time.RFC3339Nano), favorite, sourcePath); err != nil {
			return fmt.Errorf("insert entry %s: %w", e.ID, err)
		}
	}

	return tx.Commit()
}

// parseStamp reads the RFC 3339 form Save writes, and SQLite's own
// CURRENT_TIMESTAMP form for rows written by other tools.
func parseStamp(v string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, v)
	if err == nil {
		return t, nil
	}
	if t, err2 := time.ParseInLocation(time.DateTime, v, time.UTC); err2 == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("parse created_at %q: %w", v, err)
}

func (g *SQLiteGateway) Close() error {
	return g.db.Close()
}
