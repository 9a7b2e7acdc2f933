package app

import (
	"strings"
	"time"

	"gorm.io/datatypes"

	"nlustudio/internal/model"
)

type AnnotationService struct {
	store     AnnotationStore
	validator *OwnershipValidator
}

type CreateAnnotationInput struct {
	UserID     uint
	NLUModelID uint
	Text       string
	Intent     string
	Entities   datatypes.JSON
}

type UpdateAnnotationInput struct {
	Text     *string
	Intent   *string
	Entities datatypes.JSON
}

func NewAnnotationService(store AnnotationStore, validator *OwnershipValidator) *AnnotationService {
	return &AnnotationService{store: store, validator: validator}
}

func (s *AnnotationService) List(userID, nluModelID uint, search string, limit, offset int) ([]model.Annotation, error) {
	ownership, err := s.validator.NLUModel(nluModelID, userID)
	if err != nil {
		return nil, err
	}
	if err := scoped(ownership); err != nil {
		return nil, err
	}
	return s.store.ListByNLUModelID(nluModelID, search, limit, offset)
}

func (s *AnnotationService) Create(input CreateAnnotationInput) (*model.Annotation, error) {
	text := strings.TrimSpace(input.Text)
	intent := strings.TrimSpace(input.Intent)
	if text == "" || intent == "" || input.NLUModelID == 0 {
		return nil, ErrInvalidInput
	}

	ownership, err := s.validator.NLUModel(input.NLUModelID, input.UserID)
	if err != nil {
		return nil, err
	}
	if err := scoped(ownership); err != nil {
		return nil, err
	}

	nluModelID := input.NLUModelID
	annotation := &model.Annotation{
		NLUModelID: &nluModelID,
		Text:       text,
		Intent:     intent,
		Entities:   input.Entities,
	}
	if err := s.store.Create(annotation); err != nil {
		return nil, err
	}
	return annotation, nil
}

func (s *AnnotationService) Get(userID, id uint) (*model.Annotation, error) {
	ownership, err := s.validator.Annotation(id, userID)
	if err != nil {
		return nil, err
	}
	if err := foldToNotFound(ownership); err != nil {
		return nil, err
	}
	annotation, err := s.store.GetByID(id)
	if err != nil {
		return nil, err
	}
	if annotation == nil {
		return nil, ErrNotFound
	}
	return annotation, nil
}

func (s *AnnotationService) Update(userID, id uint, input UpdateAnnotationInput) (*model.Annotation, error) {
	if _, err := s.Get(userID, id); err != nil {
		return nil, err
	}

	fields := map[string]interface{}{
		"updated_at": time.Now(),
	}
	if input.Text != nil {
		text := strings.TrimSpace(*input.Text)
		if text == "" {
			return nil, ErrInvalidInput
		}
		fields["text"] = text
	}
	if input.Intent != nil {
		intent := strings.TrimSpace(*input.Intent)
		if intent == "" {
			return nil, ErrInvalidInput
		}
		fields["intent"] = intent
	}
	if input.Entities != nil {
		fields["entities"] = input.Entities
	}

	return s.store.Updates(id, fields)
}

func (s *AnnotationService) Delete(userID, id uint) (*model.Annotation, error) {
	annotation, err := s.Get(userID, id)
	if err != nil {
		return nil, err
	}
	if err := s.store.Delete(id); err != nil {
		return nil, err
	}
	return annotation, nil
}
