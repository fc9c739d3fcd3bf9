// Package sqlite implements the repository interfaces using SQLite as the
// storage backend.
//
// WHY modernc.org/sqlite INSTEAD OF github.com/mattn/go-sqlite3?
// mattn/go-sqlite3 uses CGo, which means you need a C compiler installed and
// cross-compilation becomes painful. modernc.org/sqlite is a pure Go
// translation of the SQLite C code — works everywhere Go works.
//
// The schema is two relations:
//
//	users    — keyed by username, with a UNIQUE primary key enforcing the
//	           one-account-per-username rule
//	messages — keyed by a generated id, with foreign keys to users for both
//	           sender and recipient
package sqlite

import (
	"database/sql"
	"fmt"
	"strings"

	// Side-effect import: the driver registers itself with database/sql
	// under the name "sqlite" at init time.
	_ "modernc.org/sqlite"
)

// DB wraps a sql.DB connection pool and owns the schema. The repository
// implementations are exposed through Users() and Messages() — both share
// this pool, so there is one connection lifecycle to manage.
type DB struct {
	conn *sql.DB
}

// UserDB implements repository.UserRepository over the users relation.
type UserDB struct {
	conn *sql.DB
}

// MessageDB implements repository.MessageRepository over the messages
// relation.
type MessageDB struct {
	conn *sql.DB
}

// Users returns the user repository backed by this database.
func (db *DB) Users() *UserDB {
	return &UserDB{conn: db.conn}
}

// Messages returns the message repository backed by this database.
func (db *DB) Messages() *MessageDB {
	return &MessageDB{conn: db.conn}
}

// New creates a new SQLite database connection and runs migrations.
//
// dbPath examples:
//   - "data/messagely.db" → file-based database (persistent)
//   - ":memory:"          → in-memory database (great for tests)
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	// Ping forces an immediate connection so a bad path or permissions
	// problem surfaces here, not on the first query.
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	// WAL mode allows concurrent reads while a write is in progress —
	// important for a web server where requests overlap.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}

	// Foreign keys are OFF by default in SQLite. We need them ON so that
	// messages can only reference existing users.
	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: enabling foreign keys: %w", err)
	}

	db := &DB{conn: conn}

	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return db, nil
}

// Close closes the database connection pool. Wherever you call New(),
// immediately defer Close() — it flushes the WAL and releases the file lock.
func (db *DB) Close() error {
	return db.conn.Close()
}

// migrate creates the schema. CREATE TABLE IF NOT EXISTS is idempotent, so
// this is safe to run on every startup.
func (db *DB) migrate() error {
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			username      TEXT PRIMARY KEY,
			password_hash TEXT NOT NULL,
			first_name    TEXT NOT NULL,
			last_name     TEXT NOT NULL,
			phone         TEXT NOT NULL DEFAULT '',
			joined_at     DATETIME NOT NULL,
			last_login_at DATETIME NOT NULL
		);
	`)
	if err != nil {
		return fmt.Errorf("creating users table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS messages (
			id            TEXT PRIMARY KEY,
			from_username TEXT NOT NULL REFERENCES users(username),
			to_username   TEXT NOT NULL REFERENCES users(username),
			body          TEXT NOT NULL,
			sent_at       DATETIME NOT NULL,
			read_at       DATETIME
		);
		CREATE INDEX IF NOT EXISTS idx_messages_from ON messages(from_username);
		CREATE INDEX IF NOT EXISTS idx_messages_to   ON messages(to_username);
	`)
	if err != nil {
		return fmt.Errorf("creating messages table: %w", err)
	}

	return nil
}

// isUniqueViolation reports whether err is SQLite complaining about a UNIQUE
// (or primary key) constraint. The driver surfaces constraint failures as a
// generic error with a stable message prefix, so matching on the text is the
// practical check here.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed") ||
		strings.Contains(err.Error(), "constraint failed: UNIQUE")
}

// isForeignKeyViolation reports whether err is SQLite rejecting a row that
// references a nonexistent user.
func isForeignKeyViolation(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "FOREIGN KEY constraint failed")
}
