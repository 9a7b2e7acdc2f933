package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"nlustudio/internal/model"
)

type DatasetRepository struct {
	db *gorm.DB
}

func NewDatasetRepository(db *gorm.DB) *DatasetRepository {
	return &DatasetRepository{db: db}
}

func (r *DatasetRepository) Create(dataset *model.Dataset) error {
	if err := r.db.Create(dataset).Error; err != nil {
		return fmt.Errorf("create dataset failed: %w", err)
	}
	return nil
}

func (r *DatasetRepository) ListByWorkspaceID(workspaceID uint, search string, limit, offset int) ([]model.Dataset, error) {
	query := r.db.Where("workspace_id = ?", workspaceID)
	if search != "" {
		query = query.Where("name LIKE ?", "%"+search+"%")
	}

	var datasets []model.Dataset
	if err := query.Order("uploaded_at DESC").Limit(limit).Offset(offset).Find(&datasets).Error; err != nil {
		return nil, fmt.Errorf("list datasets failed: %w", err)
	}
	return datasets, nil
}

func (r *DatasetRepository) GetByID(id uint) (*model.Dataset, error) {
	var dataset model.Dataset
	if err := r.db.First(&dataset, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("query dataset failed: %w", err)
	}
	return &dataset, nil
}

// OwnerOf resolves the dataset's owning user via a single join up the
// ownership chain. found is false when the dataset does not exist.
func (r *DatasetRepository) OwnerOf(id uint) (ownerID uint, found bool, err error) {
	var row struct {
		OwnerID uint
	}
	err = r.db.Table("datasets").
		Select("workspaces.user_id AS owner_id").
		Joins("JOIN workspaces ON workspaces.id = datasets.workspace_id").
		Where("datasets.id = ?", id).
		Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("query dataset owner failed: %w", err)
	}
	return row.OwnerID, true, nil
}

func (r *DatasetRepository) Delete(id uint) error {
	if err := r.db.Delete(&model.Dataset{}, id).Error; err != nil {
		return fmt.Errorf("delete dataset failed: %w", err)
	}
	return nil
}
