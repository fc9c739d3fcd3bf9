// Package model defines the data structures used throughout the application.
package model

import "time"

// User represents a registered account.
//
// The username is the primary identifier — it is chosen at registration and
// never changes. Messages reference users by username (foreign keys on the
// messages table), so renaming would mean rewriting message history; we
// simply don't allow it.
//
// WHY PasswordHash HAS json:"-"?
// The bcrypt hash must never leave the server. The `json:"-"` tag tells
// encoding/json to skip the field entirely, so a User can be written straight
// into an API response without leaking credentials.
type User struct {
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	Phone        string    `json:"phone"`
	JoinedAt     time.Time `json:"joined_at"`     // set once at registration
	LastLoginAt  time.Time `json:"last_login_at"` // updated on each successful login
}

// UserSummary is the shape returned by the user listing: just enough to
// render a directory, no phone number and no timestamps.
type UserSummary struct {
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// UserProfile is the sender/recipient record embedded in message detail
// responses. Unlike UserSummary it includes the phone number, matching what
// a conversation view needs to show about the counterparty.
type UserProfile struct {
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`
}

// Profile returns the embeddable profile record for this user.
func (u *User) Profile() UserProfile {
	return UserProfile{
		Username:  u.Username,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Phone:     u.Phone,
	}
}

// Summary returns the directory-listing shape for this user.
func (u *User) Summary() UserSummary {
	return UserSummary{
		Username:  u.Username,
		FirstName: u.FirstName,
		LastName:  u.LastName,
	}
}
