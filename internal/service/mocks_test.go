package service

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/rs/xid"
	"github.com/sakif/messagely/internal/apperror"
	"github.com/sakif/messagely/internal/auth"
	"github.com/sakif/messagely/internal/model"
)

// Hand-written in-memory mocks for the repository interfaces. They store
// copies, not the caller's pointers, so tests can't accidentally mutate the
// "database" through a retained reference.

type mockUserRepo struct {
	users []*model.User // slice, not map — List must preserve insertion order
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{}
}

func (m *mockUserRepo) find(username string) *model.User {
	for _, u := range m.users {
		if u.Username == username {
			return u
		}
	}
	return nil
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	if m.find(user.Username) != nil {
		return apperror.Conflict("user", user.Username)
	}
	now := time.Now()
	user.JoinedAt = now
	user.LastLoginAt = now
	stored := *user
	m.users = append(m.users, &stored)
	return nil
}

func (m *mockUserRepo) GetByUsername(_ context.Context, username string) (*model.User, error) {
	u := m.find(username)
	if u == nil {
		return nil, apperror.NotFound("user", username)
	}
	result := *u
	return &result, nil
}

func (m *mockUserRepo) List(_ context.Context) ([]model.UserSummary, error) {
	result := []model.UserSummary{}
	for _, u := range m.users {
		result = append(result, u.Summary())
	}
	return result, nil
}

func (m *mockUserRepo) UpdateLastLogin(_ context.Context, username string) error {
	u := m.find(username)
	if u == nil {
		return apperror.NotFound("user", username)
	}
	u.LastLoginAt = time.Now()
	return nil
}

type mockMessageRepo struct {
	users    *mockUserRepo // participant existence checks
	messages map[string]*model.Message
}

func newMockMessageRepo(users *mockUserRepo) *mockMessageRepo {
	return &mockMessageRepo{
		users:    users,
		messages: make(map[string]*model.Message),
	}
}

func (m *mockMessageRepo) Create(_ context.Context, msg *model.Message) error {
	for _, username := range []string{msg.FromUsername, msg.ToUsername} {
		if m.users.find(username) == nil {
			return apperror.NotFound("user", username)
		}
	}
	msg.ID = xid.New().String()
	msg.SentAt = time.Now()
	msg.ReadAt = nil
	stored := *msg
	m.messages[msg.ID] = &stored
	return nil
}

func (m *mockMessageRepo) GetByID(_ context.Context, id string) (*model.Message, error) {
	msg, ok := m.messages[id]
	if !ok {
		return nil, apperror.NotFound("message", id)
	}
	result := *msg
	return &result, nil
}

func (m *mockMessageRepo) GetDetail(_ context.Context, id string) (*model.MessageDetail, error) {
	msg, ok := m.messages[id]
	if !ok {
		return nil, apperror.NotFound("message", id)
	}
	from := m.users.find(msg.FromUsername)
	to := m.users.find(msg.ToUsername)
	return &model.MessageDetail{
		ID:       msg.ID,
		Body:     msg.Body,
		SentAt:   msg.SentAt,
		ReadAt:   msg.ReadAt,
		FromUser: from.Profile(),
		ToUser:   to.Profile(),
	}, nil
}

func (m *mockMessageRepo) MarkRead(_ context.Context, id string) (*model.Message, error) {
	msg, ok := m.messages[id]
	if !ok {
		return nil, apperror.NotFound("message", id)
	}
	// Conditional, like the real store: set only if still unread
	if msg.ReadAt == nil {
		now := time.Now()
		msg.ReadAt = &now
	}
	result := *msg
	return &result, nil
}

func (m *mockMessageRepo) ListFrom(_ context.Context, username string) ([]model.MessageWithRecipient, error) {
	result := []model.MessageWithRecipient{}
	for _, msg := range m.messages {
		if msg.FromUsername != username {
			continue
		}
		result = append(result, model.MessageWithRecipient{
			ID:     msg.ID,
			Body:   msg.Body,
			SentAt: msg.SentAt,
			ReadAt: msg.ReadAt,
			ToUser: m.users.find(msg.ToUsername).Profile(),
		})
	}
	return result, nil
}

func (m *mockMessageRepo) ListTo(_ context.Context, username string) ([]model.MessageWithSender, error) {
	result := []model.MessageWithSender{}
	for _, msg := range m.messages {
		if msg.ToUsername != username {
			continue
		}
		result = append(result, model.MessageWithSender{
			ID:       msg.ID,
			Body:     msg.Body,
			SentAt:   msg.SentAt,
			ReadAt:   msg.ReadAt,
			FromUser: m.users.find(msg.FromUsername).Profile(),
		})
	}
	return result, nil
}

// =========================================================================
// SHARED TEST HELPERS
// =========================================================================

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// newTestServices wires a UserService and MessageService over shared mocks,
// mirroring the dependency graph the server builds in production.
func newTestServices(t *testing.T) (*UserService, *MessageService, *mockUserRepo) {
	t.Helper()

	users := newMockUserRepo()
	messages := newMockMessageRepo(users)
	logger := testLogger()

	// bcrypt cost 4: tests shouldn't pay for production-strength hashing
	userSvc := NewUserService(users, auth.NewPasswordServiceForTest(4), logger)
	msgSvc := NewMessageService(messages, logger)
	return userSvc, msgSvc, users
}

// registerTestUser registers a user through the real service path.
func registerTestUser(t *testing.T, svc *UserService, username, password string) *model.User {
	t.Helper()

	user, err := svc.Register(context.Background(), username, password, "Test", "User", "555-0100")
	if err != nil {
		t.Fatalf("setup: Register(%s) error = %v", username, err)
	}
	return user
}
