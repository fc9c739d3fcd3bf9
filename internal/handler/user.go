package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/messagely/internal/apperror"
	"github.com/sakif/messagely/internal/auth"
	"github.com/sakif/messagely/internal/model"
	"github.com/sakif/messagely/internal/service"
)

// UserHandler serves the user directory and per-user message listings.
type UserHandler struct {
	users    *service.UserService
	messages *service.MessageService
	logger   *slog.Logger
}

// NewUserHandler creates a UserHandler.
func NewUserHandler(users *service.UserService, messages *service.MessageService, logger *slog.Logger) *UserHandler {
	return &UserHandler{
		users:    users,
		messages: messages,
		logger:   logger,
	}
}

// usersResponse wraps the directory listing.
type usersResponse struct {
	Users []model.UserSummary `json:"users"`
}

type userResponse struct {
	User *model.User `json:"user"`
}

type messagesFromResponse struct {
	Messages []model.MessageWithRecipient `json:"messages"`
}

type messagesToResponse struct {
	Messages []model.MessageWithSender `json:"messages"`
}

// HandleList returns basic info on all users.
//
// HTTP: GET /api/users  (any authenticated user)
func (h *UserHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.ListAll(r.Context())
	if err != nil {
		h.logger.Error("failed to list users", slog.String("error", err.Error()))
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, usersResponse{Users: users})
}

// HandleGet returns a user's full profile.
//
// HTTP: GET /api/users/{username}
//
// Only the user themselves may see the full record (it includes phone and
// login timestamps). The requester identity comes from the validated token
// in the request context, never from the URL.
func (h *UserHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")

	requester, ok := auth.UsernameFromContext(r.Context())
	if !ok || requester != username {
		writeError(w, apperror.Unauthorized("you may only view your own profile"))
		return
	}

	user, err := h.users.Get(r.Context(), username)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, userResponse{User: user})
}

// HandleMessagesFrom returns all messages sent by the user.
//
// HTTP: GET /api/users/{username}/from  (the user themselves only)
func (h *UserHandler) HandleMessagesFrom(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")

	requester, ok := auth.UsernameFromContext(r.Context())
	if !ok || requester != username {
		writeError(w, apperror.Unauthorized("you may only view your own messages"))
		return
	}

	// 404 for an unknown user, not just an empty list
	if _, err := h.users.Get(r.Context(), username); err != nil {
		writeError(w, err)
		return
	}

	msgs, err := h.messages.MessagesFrom(r.Context(), username)
	if err != nil {
		h.logger.Error("failed to list sent messages",
			slog.String("username", username),
			slog.String("error", err.Error()),
		)
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, messagesFromResponse{Messages: msgs})
}

// HandleMessagesTo returns all messages sent to the user.
//
// HTTP: GET /api/users/{username}/to  (the user themselves only)
func (h *UserHandler) HandleMessagesTo(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")

	requester, ok := auth.UsernameFromContext(r.Context())
	if !ok || requester != username {
		writeError(w, apperror.Unauthorized("you may only view your own messages"))
		return
	}

	if _, err := h.users.Get(r.Context(), username); err != nil {
		writeError(w, err)
		return
	}

	msgs, err := h.messages.MessagesTo(r.Context(), username)
	if err != nil {
		h.logger.Error("failed to list received messages",
			slog.String("username", username),
			slog.String("error", err.Error()),
		)
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, messagesToResponse{Messages: msgs})
}
