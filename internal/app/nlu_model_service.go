package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"gorm.io/datatypes"

	"nlustudio/internal/mlbackend"
	"nlustudio/internal/mlsim"
	"nlustudio/internal/model"
)

type NLUModelService struct {
	store     NLUModelStore
	validator *OwnershipValidator
	backend   MLBackend
}

type CreateNLUModelInput struct {
	UserID           uint
	WorkspaceID      uint
	Name             string
	ModelPath        string
	Intents          []string
	Entities         []string
	TrainingDataPath string
	Accuracy         float64
}

type UpdateNLUModelInput struct {
	Name      *string
	ModelPath *string
	Intents   []string
	Entities  []string
	Accuracy  *float64
}

type NLUPredictOutput struct {
	Intent     string                   `json:"intent"`
	Confidence float64                  `json:"confidence"`
	Entities   []mlbackend.ParsedEntity `json:"entities"`
	Simulated  bool                     `json:"simulated"`
}

func NewNLUModelService(store NLUModelStore, validator *OwnershipValidator, backend MLBackend) *NLUModelService {
	return &NLUModelService{
		store:     store,
		validator: validator,
		backend:   backend,
	}
}

func (s *NLUModelService) List(userID, workspaceID uint, search string, limit, offset int) ([]model.NLUModel, error) {
	ownership, err := s.validator.Workspace(workspaceID, userID)
	if err != nil {
		return nil, err
	}
	if err := scoped(ownership); err != nil {
		return nil, err
	}
	return s.store.ListByWorkspaceID(workspaceID, search, limit, offset)
}

func (s *NLUModelService) Create(input CreateNLUModelInput) (*model.NLUModel, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" || input.WorkspaceID == 0 {
		return nil, ErrInvalidInput
	}

	ownership, err := s.validator.Workspace(input.WorkspaceID, input.UserID)
	if err != nil {
		return nil, err
	}
	if err := scoped(ownership); err != nil {
		return nil, err
	}

	nluModel := &model.NLUModel{
		WorkspaceID:      input.WorkspaceID,
		Name:             name,
		ModelPath:        input.ModelPath,
		TrainingDataPath: input.TrainingDataPath,
		Accuracy:         input.Accuracy,
		TrainedAt:        time.Now(),
	}
	if err := setJSONField(&nluModel.Intents, input.Intents); err != nil {
		return nil, err
	}
	if err := setJSONField(&nluModel.Entities, input.Entities); err != nil {
		return nil, err
	}
	if err := s.store.Create(nluModel); err != nil {
		return nil, err
	}
	return nluModel, nil
}

func (s *NLUModelService) Get(userID, id uint) (*model.NLUModel, error) {
	ownership, err := s.validator.NLUModel(id, userID)
	if err != nil {
		return nil, err
	}
	if err := foldToNotFound(ownership); err != nil {
		return nil, err
	}
	nluModel, err := s.store.GetByID(id)
	if err != nil {
		return nil, err
	}
	if nluModel == nil {
		return nil, ErrNotFound
	}
	return nluModel, nil
}

func (s *NLUModelService) Update(userID, id uint, input UpdateNLUModelInput) (*model.NLUModel, error) {
	if _, err := s.Get(userID, id); err != nil {
		return nil, err
	}

	fields := map[string]interface{}{
		"updated_at": time.Now(),
	}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, ErrInvalidInput
		}
		fields["name"] = name
	}
	if input.ModelPath != nil {
		fields["model_path"] = *input.ModelPath
	}
	if input.Accuracy != nil {
		fields["accuracy"] = *input.Accuracy
	}
	if input.Intents != nil {
		encoded, err := json.Marshal(input.Intents)
		if err != nil {
			return nil, fmt.Errorf("encode intents failed: %w", err)
		}
		fields["intents"] = encoded
	}
	if input.Entities != nil {
		encoded, err := json.Marshal(input.Entities)
		if err != nil {
			return nil, fmt.Errorf("encode entities failed: %w", err)
		}
		fields["entities"] = encoded
	}

	return s.store.Updates(id, fields)
}

func (s *NLUModelService) Delete(userID, id uint) (*model.NLUModel, error) {
	nluModel, err := s.Get(userID, id)
	if err != nil {
		return nil, err
	}
	if err := s.store.Delete(id); err != nil {
		return nil, err
	}
	return nluModel, nil
}

// Predict parses one utterance with the model's NLU pipeline, falling back to
// simulation when the backend is down.
func (s *NLUModelService) Predict(ctx context.Context, userID, id uint, text string) (*NLUPredictOutput, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrInvalidInput
	}

	nluModel, err := s.Get(userID, id)
	if err != nil {
		return nil, err
	}

	parsed, err := s.backend.Parse(ctx, nluModel.ModelPath, text)
	if err != nil {
		if !errors.Is(err, mlbackend.ErrUnavailable) {
			return nil, err
		}
		log.Printf("ml backend unavailable, simulating parse: %v", err)
		parsed = mlsim.Parse(text, intentNames(nluModel))
		return &NLUPredictOutput{
			Intent:     parsed.Intent,
			Confidence: parsed.Confidence,
			Entities:   parsed.Entities,
			Simulated:  true,
		}, nil
	}
	return &NLUPredictOutput{
		Intent:     parsed.Intent,
		Confidence: parsed.Confidence,
		Entities:   parsed.Entities,
	}, nil
}

func intentNames(nluModel *model.NLUModel) []string {
	if len(nluModel.Intents) == 0 {
		return nil
	}
	var intents []string
	if err := json.Unmarshal(nluModel.Intents, &intents); err != nil {
		return nil
	}
	return intents
}

func setJSONField(field *datatypes.JSON, values []string) error {
	if len(values) == 0 {
		return nil
	}
	encoded, err := json.Marshal(values)
	if err != nil {
		return fmt.Errorf("encode json field failed: %w", err)
	}
	*field = encoded
	return nil
}
