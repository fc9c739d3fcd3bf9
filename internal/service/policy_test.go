package service

import (
	"testing"

	"github.com/sakif/messagely/internal/model"
)

// The policy predicates are pure functions, so these tests are plain truth
// tables over requester identities.

func TestCanView(t *testing.T) {
	msg := &model.Message{
		ID:           "m1",
		FromUsername: "alice",
		ToUsername:   "bob",
	}

	tests := []struct {
		name      string
		requester string
		want      bool
	}{
		{"sender can view", "alice", true},
		{"recipient can view", "bob", true},
		{"third party cannot view", "charlie", false},
		{"empty requester cannot view", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanView(tt.requester, msg); got != tt.want {
				t.Errorf("CanView(%q, alice→bob) = %v, want %v", tt.requester, got, tt.want)
			}
		})
	}
}

func TestCanMarkRead(t *testing.T) {
	msg := &model.Message{
		ID:           "m1",
		FromUsername: "alice",
		ToUsername:   "bob",
	}

	tests := []struct {
		name      string
		requester string
		want      bool
	}{
		{"recipient can mark read", "bob", true},
		{"sender cannot mark read", "alice", false},
		{"third party cannot mark read", "charlie", false},
		{"empty requester cannot mark read", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanMarkRead(tt.requester, msg); got != tt.want {
				t.Errorf("CanMarkRead(%q, alice→bob) = %v, want %v", tt.requester, got, tt.want)
			}
		})
	}
}

// A user messaging themselves is both sender and recipient: they can view
// and can mark read. Odd, but consistent with the rules.
func TestPolicy_SelfMessage(t *testing.T) {
	msg := &model.Message{
		ID:           "m1",
		FromUsername: "alice",
		ToUsername:   "alice",
	}

	if !CanView("alice", msg) {
		t.Error("CanView should allow the author of a self-message")
	}
	if !CanMarkRead("alice", msg) {
		t.Error("CanMarkRead should allow the recipient of a self-message")
	}
}
