package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/sakif/messagely/internal/apperror"
)

// =========================================================================
// SEND TESTS
// =========================================================================

func TestSend_Success(t *testing.T) {
	userSvc, msgSvc, _ := newTestServices(t)
	registerTestUser(t, userSvc, "alice", "pw")
	registerTestUser(t, userSvc, "bob", "pw")

	msg, err := msgSvc.Send(context.Background(), "alice", "bob", "hello")
	if err != nil {
		t.Fatalf("Send() error = %v", err)
	}

	if msg.ID == "" {
		t.Error("Send() should assign an ID")
	}
	if msg.FromUsername != "alice" || msg.ToUsername != "bob" {
		t.Errorf("participants = %s→%s, want alice→bob", msg.FromUsername, msg.ToUsername)
	}
	if msg.ReadAt != nil {
		t.Error("a new message must start unread")
	}
	if msg.SentAt.IsZero() {
		t.Error("Send() should set SentAt")
	}
}

func TestSend_UnknownRecipient(t *testing.T) {
	userSvc, msgSvc, _ := newTestServices(t)
	registerTestUser(t, userSvc, "alice", "pw")

	_, err := msgSvc.Send(context.Background(), "alice", "ghost", "hello?")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestSend_Validation(t *testing.T) {
	userSvc, msgSvc, _ := newTestServices(t)
	registerTestUser(t, userSvc, "alice", "pw")
	registerTestUser(t, userSvc, "bob", "pw")

	tests := []struct {
		name           string
		from, to, body string
	}{
		{"empty body", "alice", "bob", ""},
		{"whitespace body", "alice", "bob", "   "},
		{"missing recipient", "alice", "", "hello"},
		{"missing sender", "", "bob", "hello"},
		{"body too long", "alice", "bob", strings.Repeat("a", MaxBodyLength+1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := msgSvc.Send(context.Background(), tt.from, tt.to, tt.body)
			if !errors.Is(err, apperror.ErrValidation) {
				t.Errorf("error = %v, want ErrValidation", err)
			}
		})
	}
}

// =========================================================================
// GET TESTS
// =========================================================================

func TestGetMessage_ByRecipient(t *testing.T) {
	userSvc, msgSvc, _ := newTestServices(t)
	registerTestUser(t, userSvc, "alice", "pw")
	registerTestUser(t, userSvc, "bob", "pw")
	sent, _ := msgSvc.Send(context.Background(), "alice", "bob", "hello")

	detail, err := msgSvc.Get(context.Background(), sent.ID, "bob")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if detail.FromUser.Username != "alice" || detail.ToUser.Username != "bob" {
		t.Errorf("profiles = %s→%s, want alice→bob", detail.FromUser.Username, detail.ToUser.Username)
	}
	if detail.ReadAt != nil {
		t.Error("unread message should show ReadAt == nil")
	}
}

func TestGetMessage_BySender(t *testing.T) {
	userSvc, msgSvc, _ := newTestServices(t)
	registerTestUser(t, userSvc, "alice", "pw")
	registerTestUser(t, userSvc, "bob", "pw")
	sent, _ := msgSvc.Send(context.Background(), "alice", "bob", "hello")

	if _, err := msgSvc.Get(context.Background(), sent.ID, "alice"); err != nil {
		t.Errorf("Get() by sender error = %v, want nil", err)
	}
}

func TestGetMessage_ByThirdParty_Unauthorized(t *testing.T) {
	userSvc, msgSvc, _ := newTestServices(t)
	registerTestUser(t, userSvc, "alice", "pw")
	registerTestUser(t, userSvc, "bob", "pw")
	registerTestUser(t, userSvc, "charlie", "pw")
	sent, _ := msgSvc.Send(context.Background(), "alice", "bob", "private")

	_, err := msgSvc.Get(context.Background(), sent.ID, "charlie")
	if !errors.Is(err, apperror.ErrUnauthorized) {
		t.Errorf("error = %v, want ErrUnauthorized", err)
	}
}

func TestGetMessage_NotFound(t *testing.T) {
	_, msgSvc, _ := newTestServices(t)

	_, err := msgSvc.Get(context.Background(), "nonexistent", "alice")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

// =========================================================================
// MARK READ TESTS
// =========================================================================

// The full scenario from the product brief: Alice sends to Bob, Bob reads,
// Alice cannot mark read and the timestamp survives her attempt.
func TestMarkRead_Scenario(t *testing.T) {
	userSvc, msgSvc, _ := newTestServices(t)
	registerTestUser(t, userSvc, "alice", "pw")
	registerTestUser(t, userSvc, "bob", "pw")

	sent, err := msgSvc.Send(context.Background(), "alice", "bob", "hello")
	if err != nil {
		t.Fatalf("Send() error = %v", err)
	}

	// Bob sees it unread
	detail, err := msgSvc.Get(context.Background(), sent.ID, "bob")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if detail.ReadAt != nil {
		t.Fatal("message should start unread")
	}

	// Bob marks it read
	read, err := msgSvc.MarkRead(context.Background(), sent.ID, "bob")
	if err != nil {
		t.Fatalf("MarkRead() by recipient error = %v", err)
	}
	if read.ReadAt == nil {
		t.Fatal("MarkRead() should set ReadAt")
	}

	// Alice (the sender) cannot mark it read...
	_, err = msgSvc.MarkRead(context.Background(), sent.ID, "alice")
	if !errors.Is(err, apperror.ErrUnauthorized) {
		t.Errorf("sender MarkRead() error = %v, want ErrUnauthorized", err)
	}

	// ...and her denied attempt changed nothing
	after, err := msgSvc.Get(context.Background(), sent.ID, "bob")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if after.ReadAt == nil || !after.ReadAt.Equal(*read.ReadAt) {
		t.Error("a denied MarkRead() must not change read_at")
	}
}

func TestMarkRead_Idempotent(t *testing.T) {
	userSvc, msgSvc, _ := newTestServices(t)
	registerTestUser(t, userSvc, "alice", "pw")
	registerTestUser(t, userSvc, "bob", "pw")
	sent, _ := msgSvc.Send(context.Background(), "alice", "bob", "hello")

	first, err := msgSvc.MarkRead(context.Background(), sent.ID, "bob")
	if err != nil {
		t.Fatalf("MarkRead() error = %v", err)
	}

	second, err := msgSvc.MarkRead(context.Background(), sent.ID, "bob")
	if err != nil {
		t.Fatalf("second MarkRead() error = %v", err)
	}
	if !second.ReadAt.Equal(*first.ReadAt) {
		t.Errorf("re-marking changed ReadAt: %v → %v", first.ReadAt, second.ReadAt)
	}
}

func TestMarkRead_ThirdParty_Unauthorized(t *testing.T) {
	userSvc, msgSvc, _ := newTestServices(t)
	registerTestUser(t, userSvc, "alice", "pw")
	registerTestUser(t, userSvc, "bob", "pw")
	registerTestUser(t, userSvc, "charlie", "pw")
	sent, _ := msgSvc.Send(context.Background(), "alice", "bob", "hello")

	_, err := msgSvc.MarkRead(context.Background(), sent.ID, "charlie")
	if !errors.Is(err, apperror.ErrUnauthorized) {
		t.Errorf("error = %v, want ErrUnauthorized", err)
	}
}

func TestMarkRead_NotFound(t *testing.T) {
	_, msgSvc, _ := newTestServices(t)

	_, err := msgSvc.MarkRead(context.Background(), "nonexistent", "bob")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

// =========================================================================
// LISTING TESTS
// =========================================================================

func TestMessagesFromAndTo(t *testing.T) {
	userSvc, msgSvc, _ := newTestServices(t)
	registerTestUser(t, userSvc, "alice", "pw")
	registerTestUser(t, userSvc, "bob", "pw")
	msgSvc.Send(context.Background(), "alice", "bob", "one")
	msgSvc.Send(context.Background(), "bob", "alice", "two")

	from, err := msgSvc.MessagesFrom(context.Background(), "alice")
	if err != nil {
		t.Fatalf("MessagesFrom() error = %v", err)
	}
	if len(from) != 1 || from[0].ToUser.Username != "bob" {
		t.Errorf("MessagesFrom(alice) = %v, want one message to bob", from)
	}

	to, err := msgSvc.MessagesTo(context.Background(), "alice")
	if err != nil {
		t.Fatalf("MessagesTo() error = %v", err)
	}
	if len(to) != 1 || to[0].FromUser.Username != "bob" {
		t.Errorf("MessagesTo(alice) = %v, want one message from bob", to)
	}
}
