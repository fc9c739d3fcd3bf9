package repository

import (
	"context"

	"github.com/sakif/messagely/internal/model"
)

// UserRepository is the storage contract for user records.
//
// Create assigns JoinedAt and LastLoginAt; callers never supply timestamps.
// It returns a Conflict error if the username is already taken (the store's
// UNIQUE constraint is the source of truth — no check-then-insert race).
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	List(ctx context.Context) ([]model.UserSummary, error)
	UpdateLastLogin(ctx context.Context, username string) error
}

// MessageRepository is the storage contract for messages.
//
// Create assigns the message ID and SentAt and leaves ReadAt nil.
// MarkRead sets ReadAt only if it is still NULL — the update is conditional
// so the Unread→Read transition happens at most once, even under concurrent
// callers — and returns the message as stored afterwards either way.
type MessageRepository interface {
	Create(ctx context.Context, msg *model.Message) error
	GetByID(ctx context.Context, id string) (*model.Message, error)
	GetDetail(ctx context.Context, id string) (*model.MessageDetail, error)
	MarkRead(ctx context.Context, id string) (*model.Message, error)
	ListFrom(ctx context.Context, username string) ([]model.MessageWithRecipient, error)
	ListTo(ctx context.Context, username string) ([]model.MessageWithSender, error)
}
