package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"nlustudio/internal/model"
)

type AnnotationRepository struct {
	db *gorm.DB
}

func NewAnnotationRepository(db *gorm.DB) *AnnotationRepository {
	return &AnnotationRepository{db: db}
}

func (r *AnnotationRepository) Create(annotation *model.Annotation) error {
	if err := r.db.Create(annotation).Error; err != nil {
		return fmt.Errorf("create annotation failed: %w", err)
	}
	return nil
}

func (r *AnnotationRepository) ListByNLUModelID(nluModelID uint, search string, limit, offset int) ([]model.Annotation, error) {
	query := r.db.Where("nlu_model_id = ?", nluModelID)
	if search != "" {
		pattern := "%" + search + "%"
		query = query.Where("text LIKE ? OR intent LIKE ?", pattern, pattern)
	}

	var annotations []model.Annotation
	if err := query.Order("created_at DESC").Limit(limit).Offset(offset).Find(&annotations).Error; err != nil {
		return nil, fmt.Errorf("list annotations failed: %w", err)
	}
	return annotations, nil
}

func (r *AnnotationRepository) GetByID(id uint) (*model.Annotation, error) {
	var annotation model.Annotation
	if err := r.db.First(&annotation, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("query annotation failed: %w", err)
	}
	return &annotation, nil
}

// OwnerOf walks annotation -> nlu model -> workspace. Annotations not yet
// assigned to a model have no chain and report not found, matching the
// inner-join semantics of the ownership check.
func (r *AnnotationRepository) OwnerOf(id uint) (ownerID uint, found bool, err error) {
	var row struct {
		OwnerID uint
	}
	err = r.db.Table("annotations").
		Select("workspaces.user_id AS owner_id").
		Joins("JOIN nlu_models ON nlu_models.id = annotations.nlu_model_id").
		Joins("JOIN workspaces ON workspaces.id = nlu_models.workspace_id").
		Where("annotations.id = ?", id).
		Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("query annotation owner failed: %w", err)
	}
	return row.OwnerID, true, nil
}

func (r *AnnotationRepository) Updates(id uint, fields map[string]interface{}) (*model.Annotation, error) {
	if err := r.db.Model(&model.Annotation{}).Where("id = ?", id).Updates(fields).Error; err != nil {
		return nil, fmt.Errorf("update annotation failed: %w", err)
	}
	return r.GetByID(id)
}

func (r *AnnotationRepository) Delete(id uint) error {
	if err := r.db.Delete(&model.Annotation{}, id).Error; err != nil {
		return fmt.Errorf("delete annotation failed: %w", err)
	}
	return nil
}
