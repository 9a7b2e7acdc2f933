package handler

import (
	"context"
	"strings"

	"nlustudio/internal/mlbackend"
	"nlustudio/internal/model"
)

type memWorkspaceStore struct {
	nextID uint
	byID   map[uint]*model.Workspace
}

func (s *memWorkspaceStore) Create(workspace *model.Workspace) error {
	s.nextID++
	workspace.ID = s.nextID
	s.byID[workspace.ID] = workspace
	return nil
}

func (s *memWorkspaceStore) ListByUserID(userID uint, search string, limit, offset int) ([]model.Workspace, error) {
	var out []model.Workspace
	for _, workspace := range s.byID {
		if workspace.UserID == userID {
			out = append(out, *workspace)
		}
	}
	return out, nil
}

func (s *memWorkspaceStore) GetByID(id uint) (*model.Workspace, error) {
	return s.byID[id], nil
}

func (s *memWorkspaceStore) Updates(id uint, fields map[string]interface{}) (*model.Workspace, error) {
	workspace, ok := s.byID[id]
	if !ok {
		return nil, nil
	}
	if name, ok := fields["name"].(string); ok {
		workspace.Name = name
	}
	if raw, present := fields["description"]; present {
		if raw == nil {
			workspace.Description = nil
		} else if description, ok := raw.(string); ok {
			workspace.Description = &description
		}
	}
	return workspace, nil
}

func (s *memWorkspaceStore) DeleteCascade(id uint) (*model.Workspace, error) {
	workspace, ok := s.byID[id]
	if !ok {
		return nil, nil
	}
	delete(s.byID, id)
	return workspace, nil
}

type memDatasetStore struct {
	nextID     uint
	byID       map[uint]*model.Dataset
	workspaces *memWorkspaceStore
}

func (s *memDatasetStore) Create(dataset *model.Dataset) error {
	s.nextID++
	dataset.ID = s.nextID
	s.byID[dataset.ID] = dataset
	return nil
}

func (s *memDatasetStore) ListByWorkspaceID(workspaceID uint, search string, limit, offset int) ([]model.Dataset, error) {
	var out []model.Dataset
	for _, dataset := range s.byID {
		if dataset.WorkspaceID != workspaceID {
			continue
		}
		if search != "" && !strings.Contains(dataset.Name, search) {
			continue
		}
		out = append(out, *dataset)
	}
	return out, nil
}

func (s *memDatasetStore) GetByID(id uint) (*model.Dataset, error) {
	return s.byID[id], nil
}

func (s *memDatasetStore) OwnerOf(id uint) (uint, bool, error) {
	dataset, ok := s.byID[id]
	if !ok {
		return 0, false, nil
	}
	workspace := s.workspaces.byID[dataset.WorkspaceID]
	if workspace == nil {
		return 0, false, nil
	}
	return workspace.UserID, true, nil
}

func (s *memDatasetStore) Delete(id uint) error {
	delete(s.byID, id)
	return nil
}

type memMLModelStore struct {
	nextID     uint
	byID       map[uint]*model.MLModel
	workspaces *memWorkspaceStore
}

func (s *memMLModelStore) Create(mlModel *model.MLModel) error {
	s.nextID++
	mlModel.ID = s.nextID
	s.byID[mlModel.ID] = mlModel
	return nil
}

func (s *memMLModelStore) ListByWorkspaceID(workspaceID uint, search string, limit, offset int) ([]model.MLModel, error) {
	var out []model.MLModel
	for _, mlModel := range s.byID {
		if mlModel.WorkspaceID == workspaceID {
			out = append(out, *mlModel)
		}
	}
	return out, nil
}

func (s *memMLModelStore) GetByID(id uint) (*model.MLModel, error) {
	return s.byID[id], nil
}

func (s *memMLModelStore) OwnerOf(id uint) (uint, bool, error) {
	mlModel, ok := s.byID[id]
	if !ok {
		return 0, false, nil
	}
	workspace := s.workspaces.byID[mlModel.WorkspaceID]
	if workspace == nil {
		return 0, false, nil
	}
	return workspace.UserID, true, nil
}

func (s *memMLModelStore) Updates(id uint, fields map[string]interface{}) (*model.MLModel, error) {
	mlModel, ok := s.byID[id]
	if !ok {
		return nil, nil
	}
	if name, ok := fields["model_name"].(string); ok {
		mlModel.ModelName = name
	}
	return mlModel, nil
}

func (s *memMLModelStore) Delete(id uint) error {
	delete(s.byID, id)
	return nil
}

func (s *memMLModelStore) SelectExclusive(workspaceID, modelID uint) (*model.MLModel, error) {
	for _, mlModel := range s.byID {
		if mlModel.WorkspaceID == workspaceID {
			mlModel.IsSelected = false
		}
	}
	target, ok := s.byID[modelID]
	if !ok {
		return nil, nil
	}
	target.IsSelected = true
	return target, nil
}

// The remaining stores and collaborators are not reached by these tests, so
// empty stubs satisfy the service constructors.

type stubNLUModels struct{}

func (stubNLUModels) Create(*model.NLUModel) error { return nil }
func (stubNLUModels) ListByWorkspaceID(uint, string, int, int) ([]model.NLUModel, error) {
	return nil, nil
}
func (stubNLUModels) GetByID(uint) (*model.NLUModel, error) { return nil, nil }
func (stubNLUModels) OwnerOf(uint) (uint, bool, error)      { return 0, false, nil }
func (stubNLUModels) Updates(uint, map[string]interface{}) (*model.NLUModel, error) {
	return nil, nil
}
func (stubNLUModels) Delete(uint) error { return nil }

type stubAnnotations struct{}

func (stubAnnotations) Create(*model.Annotation) error { return nil }
func (stubAnnotations) ListByNLUModelID(uint, string, int, int) ([]model.Annotation, error) {
	return nil, nil
}
func (stubAnnotations) GetByID(uint) (*model.Annotation, error) { return nil, nil }
func (stubAnnotations) OwnerOf(uint) (uint, bool, error)        { return 0, false, nil }

func (stubAnnotations) Updates(uint, map[string]interface{}) (*model.Annotation, error) {
	return nil, nil
}
func (stubAnnotations) Delete(uint) error { return nil }

type stubChat struct{}

func (stubChat) CreateSession(*model.ChatSession) error { return nil }
func (stubChat) ListSessionsByWorkspaceID(uint, int, int) ([]model.ChatSession, error) {
	return nil, nil
}
func (stubChat) GetSessionByID(uint) (*model.ChatSession, error) { return nil, nil }
func (stubChat) SessionOwnerOf(uint) (uint, bool, error)         { return 0, false, nil }
func (stubChat) EndSession(uint) (*model.ChatSession, error)     { return nil, nil }
func (stubChat) CreateMessage(*model.ChatMessage) error          { return nil }
func (stubChat) ListMessagesBySessionID(uint, int, int) ([]model.ChatMessage, error) {
	return nil, nil
}

type stubBackend struct{}

func (stubBackend) Health(context.Context) error { return mlbackend.ErrUnavailable }
func (stubBackend) TrainModels(context.Context, mlbackend.TrainRequest) (*mlbackend.TrainResponse, error) {
	return nil, mlbackend.ErrUnavailable
}
func (stubBackend) Predict(context.Context, mlbackend.PredictRequest) (*mlbackend.PredictResponse, error) {
	return nil, mlbackend.ErrUnavailable
}
func (stubBackend) Parse(context.Context, string, string) (*mlbackend.ParseResult, error) {
	return nil, mlbackend.ErrUnavailable
}
func (stubBackend) ExportModel(context.Context, string, string) ([]byte, error) {
	return nil, mlbackend.ErrUnavailable
}
func (stubBackend) ModelMetadata(context.Context, string) (map[string]interface{}, error) {
	return nil, mlbackend.ErrUnavailable
}

type stubPublisher struct{}

func (stubPublisher) Publish(context.Context, model.TrainingHistory) error { return nil }
