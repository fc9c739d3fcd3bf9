package model

import "time"

// Message is a single text message between two users.
//
// A message has exactly two states:
//
//	Unread (ReadAt == nil)  →  Read (ReadAt set)
//
// The transition is one-way and happens at most once. ReadAt, once set,
// never reverts to nil and never changes value. There is no unsend and no
// edit — SentAt and Body are immutable after creation.
//
// WHY ReadAt *time.Time (a pointer)?
// "Unread" is a real state, not a zero value. A nil pointer maps cleanly to
// SQL NULL and serializes to JSON null, so clients can distinguish "never
// read" from any actual timestamp without a magic sentinel date.
type Message struct {
	ID           string     `json:"id"`
	FromUsername string     `json:"from_username"`
	ToUsername   string     `json:"to_username"`
	Body         string     `json:"body"`
	SentAt       time.Time  `json:"sent_at"`
	ReadAt       *time.Time `json:"read_at"` // nil = unread
}

// MessageDetail is a message enriched with full sender and recipient
// profiles, as returned by the single-message endpoint.
type MessageDetail struct {
	ID       string      `json:"id"`
	Body     string      `json:"body"`
	SentAt   time.Time   `json:"sent_at"`
	ReadAt   *time.Time  `json:"read_at"`
	FromUser UserProfile `json:"from_user"`
	ToUser   UserProfile `json:"to_user"`
}

// Message returns the bare message embedded in this detail view. Handy for
// feeding a MessageDetail to the pure authorization predicates, which only
// look at the participant usernames.
func (d *MessageDetail) Message() *Message {
	return &Message{
		ID:           d.ID,
		FromUsername: d.FromUser.Username,
		ToUsername:   d.ToUser.Username,
		Body:         d.Body,
		SentAt:       d.SentAt,
		ReadAt:       d.ReadAt,
	}
}

// MessageWithRecipient is one row of a "messages from user X" listing: the
// message plus the recipient's profile (the sender is implied by the query).
type MessageWithRecipient struct {
	ID     string      `json:"id"`
	Body   string      `json:"body"`
	SentAt time.Time   `json:"sent_at"`
	ReadAt *time.Time  `json:"read_at"`
	ToUser UserProfile `json:"to_user"`
}

// MessageWithSender is one row of a "messages to user X" listing: the
// message plus the sender's profile.
type MessageWithSender struct {
	ID       string      `json:"id"`
	Body     string      `json:"body"`
	SentAt   time.Time   `json:"sent_at"`
	ReadAt   *time.Time  `json:"read_at"`
	FromUser UserProfile `json:"from_user"`
}
