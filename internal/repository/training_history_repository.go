package repository

import (
	"fmt"

	"gorm.io/gorm"

	"nlustudio/internal/model"
)

type TrainingHistoryRepository struct {
	db *gorm.DB
}

func NewTrainingHistoryRepository(db *gorm.DB) *TrainingHistoryRepository {
	return &TrainingHistoryRepository{db: db}
}

func (r *TrainingHistoryRepository) Create(record *model.TrainingHistory) error {
	if err := r.db.Create(record).Error; err != nil {
		return fmt.Errorf("create training history failed: %w", err)
	}
	return nil
}

func (r *TrainingHistoryRepository) ListByMLModelID(mlModelID uint, limit, offset int) ([]model.TrainingHistory, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	var records []model.TrainingHistory
	if err := r.db.Where("ml_model_id = ?", mlModelID).
		Order("epoch_number ASC").Limit(limit).Offset(offset).
		Find(&records).Error; err != nil {
		return nil, fmt.Errorf("list training history failed: %w", err)
	}
	return records, nil
}
