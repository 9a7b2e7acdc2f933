package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"nlustudio/internal/model"
)

type SessionRepository struct {
	db *gorm.DB
}

func NewSessionRepository(db *gorm.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

func (r *SessionRepository) Create(session *model.Session) error {
	if err := r.db.Create(session).Error; err != nil {
		return fmt.Errorf("create session failed: %w", err)
	}
	return nil
}

// GetByToken returns (nil, nil) when no session carries the token. Expiry is
// the caller's concern; expired rows are returned as-is.
func (r *SessionRepository) GetByToken(tok string) (*model.Session, error) {
	var session model.Session
	if err := r.db.Where("token = ?", tok).First(&session).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("query session by token failed: %w", err)
	}
	return &session, nil
}

func (r *SessionRepository) DeleteByToken(tok string) error {
	if err := r.db.Where("token = ?", tok).Delete(&model.Session{}).Error; err != nil {
		return fmt.Errorf("delete session failed: %w", err)
	}
	return nil
}
