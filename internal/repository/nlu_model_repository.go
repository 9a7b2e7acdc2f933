package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"nlustudio/internal/model"
)

type NLUModelRepository struct {
	db *gorm.DB
}

func NewNLUModelRepository(db *gorm.DB) *NLUModelRepository {
	return &NLUModelRepository{db: db}
}

func (r *NLUModelRepository) Create(nluModel *model.NLUModel) error {
	if err := r.db.Create(nluModel).Error; err != nil {
		return fmt.Errorf("create nlu model failed: %w", err)
	}
	return nil
}

func (r *NLUModelRepository) ListByWorkspaceID(workspaceID uint, search string, limit, offset int) ([]model.NLUModel, error) {
	query := r.db.Where("workspace_id = ?", workspaceID)
	if search != "" {
		query = query.Where("name LIKE ?", "%"+search+"%")
	}

	var models []model.NLUModel
	if err := query.Order("trained_at DESC").Limit(limit).Offset(offset).Find(&models).Error; err != nil {
		return nil, fmt.Errorf("list nlu models failed: %w", err)
	}
	return models, nil
}

func (r *NLUModelRepository) GetByID(id uint) (*model.NLUModel, error) {
	var nluModel model.NLUModel
	if err := r.db.First(&nluModel, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("query nlu model failed: %w", err)
	}
	return &nluModel, nil
}

func (r *NLUModelRepository) OwnerOf(id uint) (ownerID uint, found bool, err error) {
	var row struct {
		OwnerID uint
	}
	err = r.db.Table("nlu_models").
		Select("workspaces.user_id AS owner_id").
		Joins("JOIN workspaces ON workspaces.id = nlu_models.workspace_id").
		Where("nlu_models.id = ?", id).
		Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("query nlu model owner failed: %w", err)
	}
	return row.OwnerID, true, nil
}

func (r *NLUModelRepository) Updates(id uint, fields map[string]interface{}) (*model.NLUModel, error) {
	if err := r.db.Model(&model.NLUModel{}).Where("id = ?", id).Updates(fields).Error; err != nil {
		return nil, fmt.Errorf("update nlu model failed: %w", err)
	}
	return r.GetByID(id)
}

func (r *NLUModelRepository) Delete(id uint) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("nlu_model_id = ?", id).Delete(&model.Annotation{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.NLUModel{}, id).Error
	})
	if err != nil {
		return fmt.Errorf("delete nlu model failed: %w", err)
	}
	return nil
}
