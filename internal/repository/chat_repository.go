package repository

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"nlustudio/internal/model"
)

type ChatRepository struct {
	db *gorm.DB
}

func NewChatRepository(db *gorm.DB) *ChatRepository {
	return &ChatRepository{db: db}
}

func (r *ChatRepository) CreateSession(session *model.ChatSession) error {
	if err := r.db.Create(session).Error; err != nil {
		return fmt.Errorf("create chat session failed: %w", err)
	}
	return nil
}

func (r *ChatRepository) ListSessionsByWorkspaceID(workspaceID uint, limit, offset int) ([]model.ChatSession, error) {
	var sessions []model.ChatSession
	if err := r.db.Where("workspace_id = ?", workspaceID).
		Order("started_at DESC").Limit(limit).Offset(offset).
		Find(&sessions).Error; err != nil {
		return nil, fmt.Errorf("list chat sessions failed: %w", err)
	}
	return sessions, nil
}

func (r *ChatRepository) GetSessionByID(id uint) (*model.ChatSession, error) {
	var session model.ChatSession
	if err := r.db.First(&session, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("query chat session failed: %w", err)
	}
	return &session, nil
}

func (r *ChatRepository) SessionOwnerOf(id uint) (ownerID uint, found bool, err error) {
	var row struct {
		OwnerID uint
	}
	err = r.db.Table("chat_sessions").
		Select("workspaces.user_id AS owner_id").
		Joins("JOIN workspaces ON workspaces.id = chat_sessions.workspace_id").
		Where("chat_sessions.id = ?", id).
		Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("query chat session owner failed: %w", err)
	}
	return row.OwnerID, true, nil
}

func (r *ChatRepository) EndSession(id uint) (*model.ChatSession, error) {
	if err := r.db.Model(&model.ChatSession{}).
		Where("id = ? AND ended_at IS NULL", id).
		Update("ended_at", time.Now()).Error; err != nil {
		return nil, fmt.Errorf("end chat session failed: %w", err)
	}
	return r.GetSessionByID(id)
}

func (r *ChatRepository) CreateMessage(message *model.ChatMessage) error {
	if err := r.db.Create(message).Error; err != nil {
		return fmt.Errorf("create chat message failed: %w", err)
	}
	return nil
}

func (r *ChatRepository) ListMessagesBySessionID(sessionID uint, limit, offset int) ([]model.ChatMessage, error) {
	var messages []model.ChatMessage
	if err := r.db.Where("chat_session_id = ?", sessionID).
		Order("created_at ASC").Limit(limit).Offset(offset).
		Find(&messages).Error; err != nil {
		return nil, fmt.Errorf("list chat messages failed: %w", err)
	}
	return messages, nil
}
