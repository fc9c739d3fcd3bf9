// Package service contains the business logic layer of the application.
//
// The layering follows the usual three-tier split:
//
//	Handler (HTTP layer)     → parses requests, writes responses
//	Service (business layer) → validates, authorizes, orchestrates
//	Repository (data layer)  → reads/writes the database
//
// Services accept primitives and return models — they know nothing about
// HTTP. Every operation that acts on behalf of someone takes the requester's
// verified username as an explicit argument; there is no ambient
// "currently logged in user" state anywhere below the middleware.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/messagely/internal/apperror"
	"github.com/sakif/messagely/internal/auth"
	"github.com/sakif/messagely/internal/model"
	"github.com/sakif/messagely/internal/repository"
)

// Validation constants.
const (
	MaxUsernameLength = 50
	MaxNameLength     = 100
	MaxPhoneLength    = 30
)

// UserService is the user directory: registration, credential checks, and
// profile lookups.
type UserService struct {
	users     repository.UserRepository
	passwords *auth.PasswordService
	logger    *slog.Logger
}

// NewUserService creates a UserService with all required dependencies.
func NewUserService(
	users repository.UserRepository,
	passwords *auth.PasswordService,
	logger *slog.Logger,
) *UserService {
	return &UserService{
		users:     users,
		passwords: passwords,
		logger:    logger,
	}
}

// Register creates a new user account.
//
// The plaintext password is bcrypt-hashed before anything touches the
// repository; it is never stored and never appears on the returned User
// (PasswordHash is excluded from JSON anyway, but we also clear it here so
// the caller can't leak it by accident).
//
// Fails with Conflict if the username is taken — the store's UNIQUE
// constraint is the authority, so concurrent registrations of the same name
// can't both win.
func (s *UserService) Register(ctx context.Context, username, password, firstName, lastName, phone string) (*model.User, error) {
	username = strings.TrimSpace(username)

	if username == "" {
		return nil, apperror.ValidationFailed("username", "username is required")
	}
	if len(username) > MaxUsernameLength {
		return nil, apperror.ValidationFailed("username",
			fmt.Sprintf("username must be %d characters or less", MaxUsernameLength))
	}
	if password == "" {
		return nil, apperror.ValidationFailed("password", "password is required")
	}
	firstName = strings.TrimSpace(firstName)
	lastName = strings.TrimSpace(lastName)
	if firstName == "" {
		return nil, apperror.ValidationFailed("first_name", "first name is required")
	}
	if lastName == "" {
		return nil, apperror.ValidationFailed("last_name", "last name is required")
	}
	if len(firstName) > MaxNameLength || len(lastName) > MaxNameLength {
		return nil, apperror.ValidationFailed("name",
			fmt.Sprintf("names must be %d characters or less", MaxNameLength))
	}
	if len(phone) > MaxPhoneLength {
		return nil, apperror.ValidationFailed("phone",
			fmt.Sprintf("phone must be %d characters or less", MaxPhoneLength))
	}

	hash, err := s.passwords.Hash(password)
	if err != nil {
		return nil, apperror.ValidationFailed("password", err.Error())
	}

	user := &model.User{
		Username:     username,
		PasswordHash: hash,
		FirstName:    firstName,
		LastName:     lastName,
		Phone:        strings.TrimSpace(phone),
	}

	// The repository assigns JoinedAt and LastLoginAt.
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("user registered", slog.String("username", user.Username))

	user.PasswordHash = ""
	return user, nil
}

// Authenticate checks a username/password pair.
//
// FAILS CLOSED: unknown username and wrong password both return
// (false, nil). Bad credentials are an expected, common outcome — a normal
// boolean result, not an error. The error return is reserved for storage
// faults, where we also answer false.
//
// The two failure modes are indistinguishable in the result, so callers
// can't tell (and therefore can't reveal) which usernames exist.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (bool, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("service/user: looking up %s: %w", username, err)
	}

	if err := s.passwords.Verify(user.PasswordHash, password); err != nil {
		return false, nil
	}

	return true, nil
}

// RecordLogin updates last_login_at to now.
// Fails with NotFound if the username does not exist.
func (s *UserService) RecordLogin(ctx context.Context, username string) error {
	if err := s.users.UpdateLastLogin(ctx, username); err != nil {
		return err
	}

	s.logger.Info("login recorded", slog.String("username", username))
	return nil
}

// Get returns the full user record for the given username.
// Fails with NotFound if absent. The password hash is cleared before return.
func (s *UserService) Get(ctx context.Context, username string) (*model.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, apperror.ValidationFailed("username", "username is required")
	}

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	user.PasswordHash = ""
	return user, nil
}

// ListAll returns basic info on every user, in insertion order.
func (s *UserService) ListAll(ctx context.Context) ([]model.UserSummary, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("service/user: listing users: %w", err)
	}
	return users, nil
}

// isNotFound is a small readability helper for the fail-closed paths.
func isNotFound(err error) bool {
	return errors.Is(err, apperror.ErrNotFound)
}
