package app

import (
	"context"
	"log"
	"strings"
	"time"

	"nlustudio/internal/model"
)

type ChatService struct {
	store     ChatStore
	nluModels NLUModelStore
	validator *OwnershipValidator
	cache     ChatHistoryCache
}

type CreateChatSessionInput struct {
	UserID      uint
	WorkspaceID uint
	NLUModelID  *uint
}

type CreateChatMessageInput struct {
	UserID          uint
	SessionID       uint
	MessageText     string
	IsUser          bool
	IntentDetected  string
	ConfidenceScore *float64
}

func NewChatService(store ChatStore, nluModels NLUModelStore, validator *OwnershipValidator, cache ChatHistoryCache) *ChatService {
	return &ChatService{
		store:     store,
		nluModels: nluModels,
		validator: validator,
		cache:     cache,
	}
}

func (s *ChatService) ListSessions(userID, workspaceID uint, limit, offset int) ([]model.ChatSession, error) {
	ownership, err := s.validator.Workspace(workspaceID, userID)
	if err != nil {
		return nil, err
	}
	if err := scoped(ownership); err != nil {
		return nil, err
	}
	return s.store.ListSessionsByWorkspaceID(workspaceID, limit, offset)
}

func (s *ChatService) CreateSession(input CreateChatSessionInput) (*model.ChatSession, error) {
	if input.WorkspaceID == 0 {
		return nil, ErrInvalidInput
	}

	ownership, err := s.validator.Workspace(input.WorkspaceID, input.UserID)
	if err != nil {
		return nil, err
	}
	if err := scoped(ownership); err != nil {
		return nil, err
	}

	if input.NLUModelID != nil {
		nluModel, err := s.nluModels.GetByID(*input.NLUModelID)
		if err != nil {
			return nil, err
		}
		if nluModel == nil || nluModel.WorkspaceID != input.WorkspaceID {
			return nil, ErrNotFound
		}
	}

	session := &model.ChatSession{
		WorkspaceID: input.WorkspaceID,
		NLUModelID:  input.NLUModelID,
		StartedAt:   time.Now(),
	}
	if err := s.store.CreateSession(session); err != nil {
		return nil, err
	}
	return session, nil
}

func (s *ChatService) GetSession(userID, id uint) (*model.ChatSession, error) {
	ownership, err := s.validator.ChatSession(id, userID)
	if err != nil {
		return nil, err
	}
	if err := foldToNotFound(ownership); err != nil {
		return nil, err
	}
	session, err := s.store.GetSessionByID(id)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrNotFound
	}
	return session, nil
}

func (s *ChatService) EndSession(userID, id uint) (*model.ChatSession, error) {
	if _, err := s.GetSession(userID, id); err != nil {
		return nil, err
	}
	return s.store.EndSession(id)
}

// ListMessages serves the first page from the cache when it is warm and clean;
// everything else reads through to the database.
func (s *ChatService) ListMessages(ctx context.Context, userID, sessionID uint, limit, offset int) ([]model.ChatMessage, error) {
	ownership, err := s.validator.ChatSession(sessionID, userID)
	if err != nil {
		return nil, err
	}
	if err := scoped(ownership); err != nil {
		return nil, err
	}

	cacheable := s.cache != nil && offset == 0
	if cacheable {
		dirty, err := s.cache.IsDirty(ctx, sessionID)
		if err != nil {
			log.Printf("chat history dirty check failed for session %d: %v", sessionID, err)
		} else if !dirty {
			cached, ok, err := s.cache.GetHistory(ctx, sessionID)
			if err != nil {
				log.Printf("chat history cache read failed for session %d: %v", sessionID, err)
			} else if ok {
				return window(cached, limit), nil
			}
		}
	}

	messages, err := s.store.ListMessagesBySessionID(sessionID, limit, offset)
	if err != nil {
		return nil, err
	}
	// Only a page that holds the whole history is safe to cache; a truncated
	// page would short-change later readers with a larger limit.
	if cacheable && (limit <= 0 || len(messages) < limit) {
		if err := s.cache.SetHistory(ctx, sessionID, messages); err != nil {
			log.Printf("chat history cache write failed for session %d: %v", sessionID, err)
		}
	}
	return messages, nil
}

// CreateMessage appends one message to a live session. The cache entry is
// marked dirty rather than rewritten so the next reader reloads a consistent
// page.
func (s *ChatService) CreateMessage(ctx context.Context, input CreateChatMessageInput) (*model.ChatMessage, error) {
	text := strings.TrimSpace(input.MessageText)
	if text == "" {
		return nil, ErrInvalidInput
	}

	ownership, err := s.validator.ChatSession(input.SessionID, input.UserID)
	if err != nil {
		return nil, err
	}
	if err := scoped(ownership); err != nil {
		return nil, err
	}

	session, err := s.store.GetSessionByID(input.SessionID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrNotFound
	}
	if session.EndedAt != nil {
		return nil, ErrInvalidInput
	}

	message := &model.ChatMessage{
		ChatSessionID:   session.ID,
		MessageText:     text,
		IsUser:          input.IsUser,
		IntentDetected:  strings.TrimSpace(input.IntentDetected),
		ConfidenceScore: input.ConfidenceScore,
	}
	if err := s.store.CreateMessage(message); err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.MarkDirty(ctx, session.ID); err != nil {
			log.Printf("chat history dirty mark failed for session %d: %v", session.ID, err)
		}
	}
	return message, nil
}

func window(messages []model.ChatMessage, limit int) []model.ChatMessage {
	if limit <= 0 || limit >= len(messages) {
		return messages
	}
	return messages[:limit]
}
