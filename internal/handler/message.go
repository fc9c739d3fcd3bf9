package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/messagely/internal/apperror"
	"github.com/sakif/messagely/internal/auth"
	"github.com/sakif/messagely/internal/model"
	"github.com/sakif/messagely/internal/service"
)

// MessageHandler exposes the message operations: send, fetch, mark read.
//
// The handler's only jobs are parsing and identity plumbing. It pulls the
// requester's username out of the request context (where the auth
// middleware put it after validating the token) and passes it into the
// service as an explicit argument — the authorization decisions themselves
// live in the service layer.
type MessageHandler struct {
	messages *service.MessageService
	logger   *slog.Logger
}

// NewMessageHandler creates a MessageHandler.
func NewMessageHandler(messages *service.MessageService, logger *slog.Logger) *MessageHandler {
	return &MessageHandler{
		messages: messages,
		logger:   logger,
	}
}

// sendRequest is the expected body for POST /api/messages.
// Note there is no from_username field: the sender is always the
// authenticated requester. Accepting a sender from the body would let
// anyone forge messages.
type sendRequest struct {
	ToUsername string `json:"to_username"`
	Body       string `json:"body"`
}

type messageResponse struct {
	Message *model.Message `json:"message"`
}

type messageDetailResponse struct {
	Message *model.MessageDetail `json:"message"`
}

// HandleSend creates a new message from the requester.
//
// HTTP: POST /api/messages
// BODY: {"to_username": "bob", "body": "hello"}
// → 201 {"message": {...}}  |  404 if the recipient does not exist
func (h *MessageHandler) HandleSend(w http.ResponseWriter, r *http.Request) {
	requester, ok := auth.UsernameFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("authentication required"))
		return
	}

	var req sendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("invalid send JSON", slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "invalid JSON body",
		})
		return
	}

	msg, err := h.messages.Send(r.Context(), requester, req.ToUsername, req.Body)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, messageResponse{Message: msg})
}

// HandleGet returns a single message with sender/recipient profiles.
//
// HTTP: GET /api/messages/{id}
// → 200 {"message": {...}}  |  404 unknown id  |  401 not a participant
func (h *MessageHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	requester, ok := auth.UsernameFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("authentication required"))
		return
	}

	detail, err := h.messages.Get(r.Context(), chi.URLParam(r, "id"), requester)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, messageDetailResponse{Message: detail})
}

// HandleMarkRead marks a message as read by the requester.
//
// HTTP: POST /api/messages/{id}/read
// → 200 {"message": {...}}  |  404 unknown id  |  401 not the recipient
func (h *MessageHandler) HandleMarkRead(w http.ResponseWriter, r *http.Request) {
	requester, ok := auth.UsernameFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("authentication required"))
		return
	}

	msg, err := h.messages.MarkRead(r.Context(), chi.URLParam(r, "id"), requester)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{Message: msg})
}
