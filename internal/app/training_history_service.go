package app

import "nlustudio/internal/model"

type TrainingHistoryService struct {
	store     TrainingHistoryStore
	validator *OwnershipValidator
}

func NewTrainingHistoryService(store TrainingHistoryStore, validator *OwnershipValidator) *TrainingHistoryService {
	return &TrainingHistoryService{store: store, validator: validator}
}

// List returns the epoch curve for one model, oldest epoch first.
func (s *TrainingHistoryService) List(userID, mlModelID uint, limit, offset int) ([]model.TrainingHistory, error) {
	ownership, err := s.validator.MLModel(mlModelID, userID)
	if err != nil {
		return nil, err
	}
	if err := scoped(ownership); err != nil {
		return nil, err
	}
	return s.store.ListByMLModelID(mlModelID, limit, offset)
}
