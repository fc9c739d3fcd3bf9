// Package main seeds the database with sample users and messages for local
// development. Safe to point at a fresh database only — re-running against
// an already-seeded one fails on the duplicate usernames.
//
// Usage:
//
//	DB_PATH=data/messagely.db go run ./cmd/seed
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/sakif/messagely/internal/auth"
	sqliteRepo "github.com/sakif/messagely/internal/repository/sqlite"
	"github.com/sakif/messagely/internal/service"
)

type sampleUser struct {
	username, password, firstName, lastName, phone string
}

type sampleMessage struct {
	from, to, body string
}

var sampleUsers = []sampleUser{
	{"alice", "alice123", "Alice", "Smith", "123-456-7890"},
	{"bob", "bob123", "Bob", "Johnson", "234-567-8901"},
	{"charlie", "charlie123", "Charlie", "Brown", "345-678-9012"},
}

var sampleMessages = []sampleMessage{
	{"alice", "bob", "Hey Bob, how are you?"},
	{"bob", "alice", "Hey Alice, I'm doing great!"},
	{"alice", "charlie", "Hi Charlie, are you available for a call?"},
	{"charlie", "alice", "Hey Alice, I'm busy right now, can we talk later?"},
	{"bob", "charlie", "Charlie, did you finish the project?"},
	{"charlie", "bob", "Hi Bob, yes, I finished it yesterday."},
}

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	dbPath := "data/messagely.db"
	if envDB := os.Getenv("DB_PATH"); envDB != "" {
		dbPath = envDB
	}

	db, err := sqliteRepo.New(dbPath)
	if err != nil {
		logger.Error("failed to open database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer db.Close()

	// Seeding goes through the real services so the sample passwords are
	// properly hashed and the sample messages pass participant checks.
	userService := service.NewUserService(db.Users(), auth.NewPasswordService(), logger)
	messageService := service.NewMessageService(db.Messages(), logger)

	ctx := context.Background()

	for _, u := range sampleUsers {
		if _, err := userService.Register(ctx, u.username, u.password, u.firstName, u.lastName, u.phone); err != nil {
			logger.Error("failed to register sample user",
				slog.String("username", u.username),
				slog.String("error", err.Error()),
			)
			os.Exit(1)
		}
		logger.Info("registered sample user", slog.String("username", u.username))
	}

	for _, m := range sampleMessages {
		if _, err := messageService.Send(ctx, m.from, m.to, m.body); err != nil {
			logger.Error("failed to send sample message",
				slog.String("from", m.from),
				slog.String("to", m.to),
				slog.String("error", err.Error()),
			)
			os.Exit(1)
		}
	}

	logger.Info("sample data generated",
		slog.Int("users", len(sampleUsers)),
		slog.Int("messages", len(sampleMessages)),
	)
}
