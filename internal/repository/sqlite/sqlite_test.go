package sqlite

import (
	"context"
	"testing"

	"github.com/sakif/messagely/internal/model"
)

// newTestDB returns a *DB backed by an in-memory SQLite database.
// The database lives only for the duration of the test and is discarded
// when the connection closes.
func newTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := New(":memory:")
	if err != nil {
		t.Fatalf("New(\":memory:\") error = %v", err)
	}
	t.Cleanup(func() { db.Close() })

	return db
}

// createTestUser inserts a user and fails the test on error.
// The stored "hash" is fake — these tests exercise storage, not bcrypt.
func createTestUser(t *testing.T, db *DB, username string) *model.User {
	t.Helper()

	user := &model.User{
		Username:     username,
		PasswordHash: "$2a$04$fakefakefakefakefakefake",
		FirstName:    "Test",
		LastName:     "User",
		Phone:        "555-0100",
	}
	if err := db.Users().Create(context.Background(), user); err != nil {
		t.Fatalf("failed to create test user %s: %v", username, err)
	}
	return user
}

// createTestMessage inserts a message between two existing users.
func createTestMessage(t *testing.T, db *DB, from, to, body string) *model.Message {
	t.Helper()

	msg := &model.Message{
		FromUsername: from,
		ToUsername:   to,
		Body:         body,
	}
	if err := db.Messages().Create(context.Background(), msg); err != nil {
		t.Fatalf("failed to create test message: %v", err)
	}
	return msg
}
