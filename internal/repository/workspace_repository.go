package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"nlustudio/internal/model"
)

type WorkspaceRepository struct {
	db *gorm.DB
}

func NewWorkspaceRepository(db *gorm.DB) *WorkspaceRepository {
	return &WorkspaceRepository{db: db}
}

func (r *WorkspaceRepository) Create(workspace *model.Workspace) error {
	if err := r.db.Create(workspace).Error; err != nil {
		return fmt.Errorf("create workspace failed: %w", err)
	}
	return nil
}

func (r *WorkspaceRepository) ListByUserID(userID uint, search string, limit, offset int) ([]model.Workspace, error) {
	query := r.db.Where("user_id = ?", userID)
	if search != "" {
		pattern := "%" + search + "%"
		query = query.Where("name LIKE ? OR description LIKE ?", pattern, pattern)
	}

	var workspaces []model.Workspace
	if err := query.Order("created_at DESC").Limit(limit).Offset(offset).Find(&workspaces).Error; err != nil {
		return nil, fmt.Errorf("list workspaces failed: %w", err)
	}
	return workspaces, nil
}

func (r *WorkspaceRepository) GetByID(id uint) (*model.Workspace, error) {
	var workspace model.Workspace
	if err := r.db.First(&workspace, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("query workspace failed: %w", err)
	}
	return &workspace, nil
}

func (r *WorkspaceRepository) Updates(id uint, fields map[string]interface{}) (*model.Workspace, error) {
	if err := r.db.Model(&model.Workspace{}).Where("id = ?", id).Updates(fields).Error; err != nil {
		return nil, fmt.Errorf("update workspace failed: %w", err)
	}
	return r.GetByID(id)
}

// DeleteCascade removes the workspace together with every resource that hangs
// off it. The schema has no ON DELETE CASCADE, so the chain is walked here,
// leaves first, inside one transaction.
func (r *WorkspaceRepository) DeleteCascade(id uint) (*model.Workspace, error) {
	workspace, err := r.GetByID(id)
	if err != nil {
		return nil, err
	}
	if workspace == nil {
		return nil, nil
	}

	err = r.db.Transaction(func(tx *gorm.DB) error {
		mlModelIDs := tx.Model(&model.MLModel{}).Select("id").Where("workspace_id = ?", id)
		if err := tx.Where("ml_model_id IN (?)", mlModelIDs).Delete(&model.TrainingHistory{}).Error; err != nil {
			return err
		}
		if err := tx.Where("workspace_id = ?", id).Delete(&model.MLModel{}).Error; err != nil {
			return err
		}

		nluModelIDs := tx.Model(&model.NLUModel{}).Select("id").Where("workspace_id = ?", id)
		if err := tx.Where("nlu_model_id IN (?)", nluModelIDs).Delete(&model.Annotation{}).Error; err != nil {
			return err
		}
		if err := tx.Where("workspace_id = ?", id).Delete(&model.NLUModel{}).Error; err != nil {
			return err
		}

		chatSessionIDs := tx.Model(&model.ChatSession{}).Select("id").Where("workspace_id = ?", id)
		if err := tx.Where("chat_session_id IN (?)", chatSessionIDs).Delete(&model.ChatMessage{}).Error; err != nil {
			return err
		}
		if err := tx.Where("workspace_id = ?", id).Delete(&model.ChatSession{}).Error; err != nil {
			return err
		}

		if err := tx.Where("workspace_id = ?", id).Delete(&model.Dataset{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Workspace{}, id).Error
	})
	if err != nil {
		return nil, fmt.Errorf("cascade delete workspace failed: %w", err)
	}
	return workspace, nil
}
