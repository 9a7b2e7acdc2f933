package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"nlustudio/internal/app"
	"nlustudio/internal/transport/http/response"
)

type ChatHandler struct {
	chatService *app.ChatService
}

type createChatSessionRequest struct {
	WorkspaceID uint  `json:"workspaceId"`
	NLUModelID  *uint `json:"nluModelId"`
}

type createChatMessageRequest struct {
	MessageText     string   `json:"messageText"`
	IsUser          bool     `json:"isUser"`
	IntentDetected  string   `json:"intentDetected"`
	ConfidenceScore *float64 `json:"confidenceScore"`
}

func NewChatHandler(chatService *app.ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

func (h *ChatHandler) ListSessions(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "authentication required")
		return
	}

	workspaceID, present, valid := uintQuery(c, "workspaceId")
	if !present {
		response.Error(c, http.StatusBadRequest, response.CodeMissingWorkspaceID, "workspaceId is required")
		return
	}
	if !valid {
		response.Error(c, http.StatusBadRequest, response.CodeInvalidWorkspaceID, "invalid workspaceId")
		return
	}

	limit, offset := pagination(c)
	sessions, err := h.chatService.ListSessions(userID, workspaceID, limit, offset)
	if err != nil {
		respondScopedError(c, err, "workspace", "list chat sessions failed")
		return
	}
	c.JSON(http.StatusOK, sessions)
}

func (h *ChatHandler) CreateSession(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "authentication required")
		return
	}

	var req createChatSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeInvalidPayload, "invalid request payload")
		return
	}
	if req.WorkspaceID == 0 {
		response.Error(c, http.StatusBadRequest, response.CodeMissingWorkspaceID, "workspaceId is required")
		return
	}

	session, err := h.chatService.CreateSession(app.CreateChatSessionInput{
		UserID:      userID,
		WorkspaceID: req.WorkspaceID,
		NLUModelID:  req.NLUModelID,
	})
	if err != nil {
		respondScopedError(c, err, "workspace or nlu model", "create chat session failed")
		return
	}
	c.JSON(http.StatusCreated, session)
}

func (h *ChatHandler) GetSession(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "authentication required")
		return
	}
	id, ok := idParam(c)
	if !ok {
		response.Error(c, http.StatusBadRequest, response.CodeInvalidID, "invalid session id")
		return
	}

	session, err := h.chatService.GetSession(userID, id)
	if err != nil {
		h.respondSessionError(c, err, "get chat session failed")
		return
	}
	c.JSON(http.StatusOK, session)
}

func (h *ChatHandler) EndSession(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "authentication required")
		return
	}
	id, ok := idParam(c)
	if !ok {
		response.Error(c, http.StatusBadRequest, response.CodeInvalidID, "invalid session id")
		return
	}

	session, err := h.chatService.EndSession(userID, id)
	if err != nil {
		h.respondSessionError(c, err, "end chat session failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "session ended",
		"session": session,
	})
}

func (h *ChatHandler) ListMessages(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "authentication required")
		return
	}
	id, ok := idParam(c)
	if !ok {
		response.Error(c, http.StatusBadRequest, response.CodeInvalidID, "invalid session id")
		return
	}

	limit, offset := pagination(c)
	messages, err := h.chatService.ListMessages(c.Request.Context(), userID, id, limit, offset)
	if err != nil {
		respondScopedError(c, err, "chat session", "list chat messages failed")
		return
	}
	c.JSON(http.StatusOK, messages)
}

func (h *ChatHandler) CreateMessage(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "authentication required")
		return
	}
	id, ok := idParam(c)
	if !ok {
		response.Error(c, http.StatusBadRequest, response.CodeInvalidID, "invalid session id")
		return
	}

	var req createChatMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeInvalidPayload, "invalid request payload")
		return
	}
	if strings.TrimSpace(req.MessageText) == "" {
		response.Error(c, http.StatusBadRequest, response.CodeMissingText, "messageText is required")
		return
	}

	message, err := h.chatService.CreateMessage(c.Request.Context(), app.CreateChatMessageInput{
		UserID:          userID,
		SessionID:       id,
		MessageText:     req.MessageText,
		IsUser:          req.IsUser,
		IntentDetected:  req.IntentDetected,
		ConfidenceScore: req.ConfidenceScore,
	})
	if err != nil {
		switch {
		case errors.Is(err, app.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, response.CodeSessionEnded, "session has ended")
		default:
			respondScopedError(c, err, "chat session", "create chat message failed")
		}
		return
	}
	c.JSON(http.StatusCreated, message)
}

func (h *ChatHandler) respondSessionError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, app.ErrNotFound):
		response.Error(c, http.StatusNotFound, response.CodeSessionNotFound, "chat session not found")
	default:
		response.Error(c, http.StatusInternalServerError, response.CodeInternalError, fallback)
	}
}
