package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/nvaruna/RagChatServer/internal/adapter"
	"github.com/nvaruna/RagChatServer/internal/adapter/utils"
	"github.com/nvaruna/RagChatServer/internal/api"
	"github.com/nvaruna/RagChatServer/internal/domain/chatModel"
	"github.com/nvaruna/RagChatServer/pkg/logger_i"
)

type ChatHandler struct {
	sessions chatModel.SessionStore
	messages chatModel.MessageStore
	logger   *logger_i.Logger
}

func NewChatHandler(sessions chatModel.SessionStore, messages chatModel.MessageStore) *ChatHandler {
	return &ChatHandler{
		sessions: sessions,
		messages: messages,
		logger:   logger_i.NewLogger("Chat Handler"),
	}
}

// ListSessionsHandler godoc
// @Summary      List chat sessions
// @Tags         Sessions
// @Produce      json
// @Success      200  {array}   api.SessionResponse
// @Failure      500  {object}  api.ErrorResponse
// @Router       /api/sessions [get]
func (h *ChatHandler) ListSessionsHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		return
	}
	log := h.logger.With("traceId", traceId(r.Context()))

	sessions, err := h.sessions.GetSessions(r.Context())
	if err != nil {
		log.Error("Error listing sessions", "error", err)
		WriteErrorResponse(w, http.StatusInternalServerError, "Could not list sessions")
		return
	}
	writeJsonResponse(w, http.StatusOK, adapter.ToSessionResponses(sessions))
}

// CreateSessionHandler godoc
// @Summary      Create a chat session
// @Tags         Sessions
// @Accept       json
// @Produce      json
// @Param        request  body      api.SessionRequest  true  "Session id and optional name"
// @Success      201      {object}  api.SessionResponse
// @Failure      400      {object}  api.ErrorResponse
// @Failure      500      {object}  api.ErrorResponse
// @Router       /api/sessions [post]
func (h *ChatHandler) CreateSessionHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		return
	}
	log := h.logger.With("traceId", traceId(r.Context()))

	var requestData api.SessionRequest
	defer closeBody(r.Body, log)
	if err := json.NewDecoder(r.Body).Decode(&requestData); err != nil || !isValidSessionId(requestData.SessionId) {
		WriteErrorResponse(w, http.StatusBadRequest, "valid session_id is required")
		return
	}

	name := requestData.Name
	if name == "" {
		name = "New chat"
	}
	now := time.Now()
	session := chatModel.ChatSession{
		SessionId: requestData.SessionId,
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := h.sessions.CreateSession(r.Context(), session); err != nil {
		log.Error("Error creating session", "error", err)
		WriteErrorResponse(w, http.StatusInternalServerError, "Could not create session")
		return
	}
	writeJsonResponse(w, http.StatusCreated, adapter.ToSessionResponse(session))
}

// RenameSessionHandler godoc
// @Summary      Rename a chat session
// @Tags         Sessions
// @Accept       json
// @Produce      json
// @Param        id       path      string              true  "Session id"
// @Param        request  body      api.SessionRequest  true  "New name"
// @Success      200      {object}  api.SessionResponse
// @Failure      400      {object}  api.ErrorResponse
// @Failure      500      {object}  api.ErrorResponse
// @Router       /api/sessions/{id} [put]
func (h *ChatHandler) RenameSessionHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		return
	}
	log := h.logger.With("traceId", traceId(r.Context()))

	sessionId := utils.GetChiURLParam(r, "id")
	var requestData api.SessionRequest
	defer closeBody(r.Body, log)
	if err := json.NewDecoder(r.Body).Decode(&requestData); err != nil || requestData.Name == "" {
		WriteErrorResponse(w, http.StatusBadRequest, "name is required")
		return
	}

	if err := h.sessions.RenameSession(r.Context(), sessionId, requestData.Name); err != nil {
		log.Error("Error renaming session", "sessionId", sessionId, "error", err)
		WriteErrorResponse(w, http.StatusInternalServerError, "Could not rename session")
		return
	}
	writeJsonResponse(w, http.StatusOK, api.SessionResponse{SessionId: sessionId, Name: requestData.Name})
}

// DeleteSessionHandler godoc
// @Summary      Delete a chat session and its messages
// @Tags         Sessions
// @Produce      json
// @Param        id   path      string  true  "Session id"
// @Success      204  "Deleted"
// @Failure      500  {object}  api.ErrorResponse
// @Router       /api/sessions/{id} [delete]
func (h *ChatHandler) DeleteSessionHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		return
	}
	log := h.logger.With("traceId", traceId(r.Context()))

	sessionId := utils.GetChiURLParam(r, "id")
	if err := h.sessions.DeleteSession(r.Context(), sessionId); err != nil {
		log.Error("Error deleting session", "sessionId", sessionId, "error", err)
		WriteErrorResponse(w, http.StatusInternalServerError, "Could not delete session")
		return
	}
	if err := h.messages.ClearMessages(r.Context(), sessionId); err != nil {
		log.Error("Error clearing messages", "sessionId", sessionId, "error", err)
		WriteErrorResponse(w, http.StatusInternalServerError, "Could not delete session messages")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetMessagesHandler godoc
// @Summary      Get the persisted messages of a session
// @Tags         Messages
// @Produce      json
// @Param        id   path      string  true  "Session id"
// @Success      200  {array}   api.MessageResponse
// @Failure      500  {object}  api.ErrorResponse
// @Router       /api/sessions/{id}/messages [get]
func (h *ChatHandler) GetMessagesHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		return
	}
	log := h.logger.With("traceId", traceId(r.Context()))

	sessionId := utils.GetChiURLParam(r, "id")
	messages, err := h.messages.GetMessages(r.Context(), sessionId)
	if err != nil {
		log.Error("Error getting messages", "sessionId", sessionId, "error", err)
		WriteErrorResponse(w, http.StatusInternalServerError, "Could not get messages")
		return
	}
	writeJsonResponse(w, http.StatusOK, adapter.ToMessageResponses(messages))
}

// ClearMessagesHandler godoc
// @Summary      Clear a session's persisted messages
// @Tags         Messages
// @Produce      json
// @Param        id   path      string  true  "Session id"
// @Success      204  "Cleared"
// @Failure      500  {object}  api.ErrorResponse
// @Router       /api/messages/{id} [delete]
func (h *ChatHandler) ClearMessagesHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		return
	}
	log := h.logger.With("traceId", traceId(r.Context()))

	sessionId := utils.GetChiURLParam(r, "id")
	if err := h.messages.ClearMessages(r.Context(), sessionId); err != nil {
		log.Error("Error clearing messages", "sessionId", sessionId, "error", err)
		WriteErrorResponse(w, http.StatusInternalServerError, "Could not clear messages")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SaveMessageHandler godoc
// @Summary      Persist a chat message
// @Tags         Messages
// @Accept       json
// @Produce      json
// @Param        request  body      api.MessageRequest  true  "Session id, role and content"
// @Success      201      {object}  api.MessageResponse
// @Failure      400      {object}  api.ErrorResponse
// @Failure      500      {object}  api.ErrorResponse
// @Router       /api/messages [post]
func (h *ChatHandler) SaveMessageHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		return
	}
	log := h.logger.With("traceId", traceId(r.Context()))

	var requestData api.MessageRequest
	defer closeBody(r.Body, log)
	if err := json.NewDecoder(r.Body).Decode(&requestData); err != nil ||
		!isValidSessionId(requestData.SessionId) || requestData.Role == "" || requestData.Content == "" {
		WriteErrorResponse(w, http.StatusBadRequest, "session_id, role and content are required")
		return
	}

	message := chatModel.ChatMessage{
		SessionId: requestData.SessionId,
		Role:      requestData.Role,
		Content:   requestData.Content,
		Thinking:  requestData.Thinking,
		Timestamp: time.Now(),
	}
	if err := h.messages.SaveMessage(r.Context(), message); err != nil {
		log.Error("Error saving message", "sessionId", requestData.SessionId, "error", err)
		WriteErrorResponse(w, http.StatusInternalServerError, "Could not save message")
		return
	}
	if err := h.sessions.TouchSession(r.Context(), requestData.SessionId, message.Timestamp); err != nil {
		log.Warn("Couldn't touch session", "sessionId", requestData.SessionId, "error", err)
	}
	writeJsonResponse(w, http.StatusCreated, api.MessageResponse{
		SessionId: message.SessionId,
		Role:      message.Role,
		Content:   message.Content,
		Thinking:  message.Thinking,
		Timestamp: message.Timestamp,
	})
}
