package repository

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"nlustudio/internal/model"
)

type MLModelRepository struct {
	db *gorm.DB
}

func NewMLModelRepository(db *gorm.DB) *MLModelRepository {
	return &MLModelRepository{db: db}
}

func (r *MLModelRepository) Create(mlModel *model.MLModel) error {
	if err := r.db.Create(mlModel).Error; err != nil {
		return fmt.Errorf("create ml model failed: %w", err)
	}
	return nil
}

func (r *MLModelRepository) ListByWorkspaceID(workspaceID uint, search string, limit, offset int) ([]model.MLModel, error) {
	query := r.db.Where("workspace_id = ?", workspaceID)
	if search != "" {
		query = query.Where("model_name LIKE ?", "%"+search+"%")
	}

	var models []model.MLModel
	if err := query.Order("trained_at DESC").Limit(limit).Offset(offset).Find(&models).Error; err != nil {
		return nil, fmt.Errorf("list ml models failed: %w", err)
	}
	return models, nil
}

func (r *MLModelRepository) GetByID(id uint) (*model.MLModel, error) {
	var mlModel model.MLModel
	if err := r.db.First(&mlModel, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("query ml model failed: %w", err)
	}
	return &mlModel, nil
}

func (r *MLModelRepository) OwnerOf(id uint) (ownerID uint, found bool, err error) {
	var row struct {
		OwnerID uint
	}
	err = r.db.Table("ml_models").
		Select("workspaces.user_id AS owner_id").
		Joins("JOIN workspaces ON workspaces.id = ml_models.workspace_id").
		Where("ml_models.id = ?", id).
		Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("query ml model owner failed: %w", err)
	}
	return row.OwnerID, true, nil
}

func (r *MLModelRepository) Updates(id uint, fields map[string]interface{}) (*model.MLModel, error) {
	if err := r.db.Model(&model.MLModel{}).Where("id = ?", id).Updates(fields).Error; err != nil {
		return nil, fmt.Errorf("update ml model failed: %w", err)
	}
	return r.GetByID(id)
}

func (r *MLModelRepository) Delete(id uint) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("ml_model_id = ?", id).Delete(&model.TrainingHistory{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.MLModel{}, id).Error
	})
	if err != nil {
		return fmt.Errorf("delete ml model failed: %w", err)
	}
	return nil
}

// SelectExclusive clears is_selected for every model in the workspace and sets
// it on modelID inside one transaction, so at most one model per workspace is
// ever observed selected.
func (r *MLModelRepository) SelectExclusive(workspaceID, modelID uint) (*model.MLModel, error) {
	now := time.Now()
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.MLModel{}).
			Where("workspace_id = ?", workspaceID).
			Updates(map[string]interface{}{"is_selected": false, "updated_at": now}).Error; err != nil {
			return err
		}
		return tx.Model(&model.MLModel{}).
			Where("id = ?", modelID).
			Updates(map[string]interface{}{"is_selected": true, "updated_at": now}).Error
	})
	if err != nil {
		return nil, fmt.Errorf("select ml model failed: %w", err)
	}
	return r.GetByID(modelID)
}
