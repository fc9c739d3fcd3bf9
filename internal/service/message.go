package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/messagely/internal/apperror"
	"github.com/sakif/messagely/internal/model"
	"github.com/sakif/messagely/internal/repository"
)

// MaxBodyLength caps message bodies. Generous for a text message, small
// enough that nobody ships a novel through the API.
const MaxBodyLength = 10000

// MessageService owns message creation, retrieval, and the Unread→Read
// state machine, with the authorization policy from policy.go applied on
// every access.
//
// Every method that reads or mutates a message follows the same three
// steps, in order:
//
//  1. FETCH the message
//  2. AUTHORIZE with a pure predicate against the freshly fetched state
//  3. MUTATE (or return) only if the predicate allowed it
//
// Authorizing against the row we just loaded — never cached or partially
// loaded state — is what keeps the policy checks honest, and evaluating the
// predicate before the mutation means denial can never leave half-applied
// state behind.
type MessageService struct {
	messages repository.MessageRepository
	logger   *slog.Logger
}

// NewMessageService creates a MessageService.
func NewMessageService(messages repository.MessageRepository, logger *slog.Logger) *MessageService {
	return &MessageService{
		messages: messages,
		logger:   logger,
	}
}

// Send creates a new message from one user to another.
//
// Both participants must exist; otherwise the repository reports NotFound
// naming the missing username and no row is created. The sender comes from
// the verified requester identity — handlers must never take it from the
// request body.
func (s *MessageService) Send(ctx context.Context, from, to, body string) (*model.Message, error) {
	to = strings.TrimSpace(to)

	if from == "" {
		return nil, apperror.ValidationFailed("from_username", "sender is required")
	}
	if to == "" {
		return nil, apperror.ValidationFailed("to_username", "recipient is required")
	}
	if strings.TrimSpace(body) == "" {
		return nil, apperror.ValidationFailed("body", "message body is required")
	}
	if len(body) > MaxBodyLength {
		return nil, apperror.ValidationFailed("body",
			fmt.Sprintf("message body must be %d characters or less", MaxBodyLength))
	}

	msg := &model.Message{
		FromUsername: from,
		ToUsername:   to,
		Body:         body,
	}

	// The repository assigns ID and SentAt and leaves ReadAt nil.
	if err := s.messages.Create(ctx, msg); err != nil {
		return nil, err
	}

	s.logger.Info("message sent",
		slog.String("id", msg.ID),
		slog.String("from", msg.FromUsername),
		slog.String("to", msg.ToUsername),
	)

	return msg, nil
}

// Get returns a message with full sender/recipient profiles.
//
// Fails with NotFound for an unknown ID, and with Unauthorized when the
// requester is neither the sender nor the recipient. NotFound is checked
// first: someone who guesses a nonexistent ID learns nothing about which
// IDs exist beyond what they already knew.
func (s *MessageService) Get(ctx context.Context, id, requester string) (*model.MessageDetail, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperror.ValidationFailed("id", "message ID is required")
	}

	detail, err := s.messages.GetDetail(ctx, id)
	if err != nil {
		return nil, err
	}

	if !CanView(requester, detail.Message()) {
		return nil, apperror.Unauthorized("only the sender or recipient may view this message")
	}

	return detail, nil
}

// MarkRead transitions a message to Read on behalf of the requester.
//
// Only the recipient may do this — the predicate is evaluated against the
// fetched message BEFORE any mutation, so an unauthorized caller provably
// cannot alter read_at. Marking an already-read message again is an
// idempotent no-op that returns the original timestamp.
func (s *MessageService) MarkRead(ctx context.Context, id, requester string) (*model.Message, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperror.ValidationFailed("id", "message ID is required")
	}

	// Step 1: fetch
	msg, err := s.messages.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	// Step 2: authorize
	if !CanMarkRead(requester, msg) {
		return nil, apperror.Unauthorized("only the recipient may mark this message read")
	}

	// Step 3: mutate
	updated, err := s.messages.MarkRead(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("service/message: marking %s read: %w", id, err)
	}

	s.logger.Info("message marked read",
		slog.String("id", updated.ID),
		slog.String("by", requester),
	)

	return updated, nil
}

// MessagesFrom returns all messages sent by the given user, newest last,
// each with the recipient's profile.
func (s *MessageService) MessagesFrom(ctx context.Context, username string) ([]model.MessageWithRecipient, error) {
	msgs, err := s.messages.ListFrom(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("service/message: listing from %s: %w", username, err)
	}
	return msgs, nil
}

// MessagesTo returns all messages sent to the given user, newest last,
// each with the sender's profile.
func (s *MessageService) MessagesTo(ctx context.Context, username string) ([]model.MessageWithSender, error) {
	msgs, err := s.messages.ListTo(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("service/message: listing to %s: %w", username, err)
	}
	return msgs, nil
}
