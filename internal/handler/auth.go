package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/sakif/messagely/internal/auth"
	"github.com/sakif/messagely/internal/service"
)

// AuthHandler manages registration and login: verifying credentials through
// the user service and issuing JWTs through the token service.
type AuthHandler struct {
	users  *service.UserService
	tokens *auth.TokenService
	logger *slog.Logger
}

// NewAuthHandler creates an AuthHandler.
func NewAuthHandler(users *service.UserService, tokens *auth.TokenService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		users:  users,
		tokens: tokens,
		logger: logger,
	}
}

// registerRequest is the expected body for POST /auth/register.
// Explicit request structs per operation keep the API surface statically
// checkable — no poking at maps of any.
type registerRequest struct {
	Username  string `json:"username"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// tokenResponse is returned by both register and login.
type tokenResponse struct {
	Token string `json:"token"`
}

// HandleRegister registers a new user and logs them straight in.
//
// HTTP: POST /auth/register
// BODY: {"username", "password", "first_name", "last_name", "phone"}
// → 201 {"token": "<jwt>"}  |  409 on duplicate username
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("invalid register JSON", slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "invalid JSON body",
		})
		return
	}

	user, err := h.users.Register(r.Context(), req.Username, req.Password, req.FirstName, req.LastName, req.Phone)
	if err != nil {
		writeError(w, err)
		return
	}

	token, err := h.tokens.Generate(user.Username)
	if err != nil {
		h.logger.Error("failed to issue token after registration",
			slog.String("username", user.Username),
			slog.String("error", err.Error()),
		)
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, tokenResponse{Token: token})
}

// HandleLogin verifies credentials and issues a token.
//
// HTTP: POST /auth/login
// BODY: {"username", "password"}
// → 200 {"token": "<jwt>"}  |  401 on bad credentials
//
// A failed credential check is a 401 with a deliberately vague message —
// the response never says whether the username or the password was wrong.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("invalid login JSON", slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "invalid JSON body",
		})
		return
	}

	ok, err := h.users.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		// A storage fault, not bad credentials
		h.logger.Error("authenticate failed", slog.String("error", err.Error()))
		writeError(w, err)
		return
	}
	if !ok {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{
			Error:   "unauthorized",
			Message: "invalid username/password",
		})
		return
	}

	// Successful login updates last_login_at. A failure here shouldn't
	// block the login itself, but it is worth a log line.
	if err := h.users.RecordLogin(r.Context(), req.Username); err != nil {
		h.logger.Warn("failed to record login",
			slog.String("username", req.Username),
			slog.String("error", err.Error()),
		)
	}

	token, err := h.tokens.Generate(req.Username)
	if err != nil {
		h.logger.Error("failed to issue token",
			slog.String("username", req.Username),
			slog.String("error", err.Error()),
		)
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, tokenResponse{Token: token})
}
