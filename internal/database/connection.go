package database

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// Options selects the backing store. Driver is "sqlite3" or "postgres";
// DSN is a file path (sqlite) or a connection URL (postgres).
type Options struct {
	Driver string
	DSN    string
}

// Connect opens a database connection, applies pool settings and creates the
// schema if it does not exist yet. The returned handle is meant to be opened
// once at process start and injected into the repositories.
func Connect(opts Options) (*sqlx.DB, error) {
	db, err := sqlx.Connect(opts.Driver, opts.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if opts.Driver == "sqlite3" {
		if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
		}
		// SQLite doesn't support multiple writers
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	} else {
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(5)
	}

	if err := initializeSchema(db, opts.Driver); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// initializeSchema creates necessary tables if they don't exist
func initializeSchema(db *sqlx.DB, driver string) error {
	serial := "INTEGER PRIMARY KEY AUTOINCREMENT"
	timestamp := "TIMESTAMP"
	if driver == "postgres" {
		serial = "BIGSERIAL PRIMARY KEY"
		timestamp = "TIMESTAMPTZ"
	}

	statements := []string{
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS tasks (
				id TEXT PRIMARY KEY,
				course_id TEXT NOT NULL,
				title TEXT NOT NULL DEFAULT '',
				language TEXT NOT NULL DEFAULT '',
				created_at %s NOT NULL DEFAULT CURRENT_TIMESTAMP
			)`, timestamp),
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS task_words (
				id %s,
				task_id TEXT NOT NULL,
				term TEXT NOT NULL,
				translation TEXT NOT NULL DEFAULT '',
				position INTEGER NOT NULL DEFAULT 0,
				created_at %s NOT NULL DEFAULT CURRENT_TIMESTAMP,
				FOREIGN KEY (task_id) REFERENCES tasks(id),
				UNIQUE(task_id, term)
			)`, serial, timestamp),
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS learning_items (
				id %s,
				user_id TEXT NOT NULL,
				task_id TEXT NOT NULL,
				term TEXT NOT NULL,
				status INTEGER NOT NULL DEFAULT 0,
				definition TEXT,
				created_at %s NOT NULL DEFAULT CURRENT_TIMESTAMP,
				UNIQUE(user_id, task_id, term)
			)`, serial, timestamp),
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS completions (
				id %s,
				user_id TEXT NOT NULL,
				task_id TEXT NOT NULL,
				course_id TEXT NOT NULL DEFAULT '',
				score REAL NOT NULL DEFAULT 0,
				attempts INTEGER NOT NULL DEFAULT 1,
				completed_at %s,
				created_at %s NOT NULL DEFAULT CURRENT_TIMESTAMP,
				updated_at %s NOT NULL DEFAULT CURRENT_TIMESTAMP,
				UNIQUE(user_id, task_id)
			)`, serial, timestamp, timestamp, timestamp),
		`CREATE INDEX IF NOT EXISTS idx_learning_items_user_task ON learning_items(user_id, task_id)`,
		`CREATE INDEX IF NOT EXISTS idx_task_words_task ON task_words(task_id)`,
	}

	for _, stmt := range statements {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to initialize schema: %w", err)
		}
	}
	return nil
}
