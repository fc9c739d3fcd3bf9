package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/sakif/messagely/internal/apperror"
	"github.com/sakif/messagely/internal/model"
	"github.com/sakif/messagely/internal/repository"
)

// compile-time check that *UserDB implements repository.UserRepository
var _ repository.UserRepository = (*UserDB)(nil)

// Create inserts a new user row.
//
// TIMESTAMPS ARE ASSIGNED HERE, not by the caller. This is the single place
// where joined_at and last_login_at originate, which keeps the "set once at
// creation" contract testable — callers can't accidentally supply their own.
//
// The UNIQUE primary key on username is the conflict check. We insert and
// let the constraint fire rather than SELECT-then-INSERT, which would race
// against a concurrent registration of the same name.
func (db *UserDB) Create(ctx context.Context, user *model.User) error {
	now := time.Now().UTC()
	user.JoinedAt = now
	user.LastLoginAt = now

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO users (username, password_hash, first_name, last_name, phone, joined_at, last_login_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		user.Username,
		user.PasswordHash,
		user.FirstName,
		user.LastName,
		user.Phone,
		user.JoinedAt,
		user.LastLoginAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("user", user.Username)
		}
		return fmt.Errorf("sqlite: inserting user %s: %w", user.Username, err)
	}

	return nil
}

// GetByUsername retrieves a user by username.
// Returns apperror.ErrNotFound if no such user exists.
func (db *UserDB) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	var u model.User

	err := db.conn.QueryRowContext(ctx,
		`SELECT username, password_hash, first_name, last_name, phone, joined_at, last_login_at
		 FROM users WHERE username = ?`,
		username,
	).Scan(
		&u.Username,
		&u.PasswordHash,
		&u.FirstName,
		&u.LastName,
		&u.Phone,
		&u.JoinedAt,
		&u.LastLoginAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("user", username)
		}
		return nil, fmt.Errorf("sqlite: getting user %s: %w", username, err)
	}

	return &u, nil
}

// List returns basic info on all users in insertion order (SQLite's rowid
// order for rows that were never deleted, which is all of them — users are
// never deleted in this system).
func (db *UserDB) List(ctx context.Context) ([]model.UserSummary, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT username, first_name, last_name FROM users ORDER BY rowid`,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing users: %w", err)
	}
	defer rows.Close()

	// Non-nil so an empty directory serializes as [] rather than null
	users := []model.UserSummary{}
	for rows.Next() {
		var u model.UserSummary
		if err := rows.Scan(&u.Username, &u.FirstName, &u.LastName); err != nil {
			return nil, fmt.Errorf("sqlite: scanning user row: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating user rows: %w", err)
	}

	return users, nil
}

// UpdateLastLogin sets last_login_at to now.
// Returns apperror.ErrNotFound if the username does not exist — we check
// RowsAffected rather than doing a separate existence query.
func (db *UserDB) UpdateLastLogin(ctx context.Context, username string) error {
	res, err := db.conn.ExecContext(ctx,
		`UPDATE users SET last_login_at = ? WHERE username = ?`,
		time.Now().UTC(),
		username,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating last login for %s: %w", username, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if n == 0 {
		return apperror.NotFound("user", username)
	}

	return nil
}
