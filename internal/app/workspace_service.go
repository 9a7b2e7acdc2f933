package app

import (
	"strings"
	"time"

	"nlustudio/internal/model"
)

type WorkspaceService struct {
	store WorkspaceStore
}

type CreateWorkspaceInput struct {
	UserID      uint
	Name        string
	Description *string
}

// UpdateWorkspaceInput carries only the fields the caller supplied; nil means
// "leave alone", which keeps updates partial.
type UpdateWorkspaceInput struct {
	Name             *string
	Description      *string
	ClearDescription bool
}

func NewWorkspaceService(store WorkspaceStore) *WorkspaceService {
	return &WorkspaceService{store: store}
}

func (s *WorkspaceService) List(userID uint, search string, limit, offset int) ([]model.Workspace, error) {
	if userID == 0 {
		return nil, ErrInvalidInput
	}
	return s.store.ListByUserID(userID, search, limit, offset)
}

func (s *WorkspaceService) Create(input CreateWorkspaceInput) (*model.Workspace, error) {
	if input.UserID == 0 {
		return nil, ErrInvalidInput
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrInvalidInput
	}

	var description *string
	if input.Description != nil {
		trimmed := strings.TrimSpace(*input.Description)
		description = &trimmed
	}

	workspace := &model.Workspace{
		UserID:      input.UserID,
		Name:        name,
		Description: description,
	}
	if err := s.store.Create(workspace); err != nil {
		return nil, err
	}
	return workspace, nil
}

// Get folds a wrong owner into not-found: a workspace id is never confirmed
// to exist for anyone but its owner.
func (s *WorkspaceService) Get(userID, id uint) (*model.Workspace, error) {
	workspace, err := s.store.GetByID(id)
	if err != nil {
		return nil, err
	}
	if workspace == nil || workspace.UserID != userID {
		return nil, ErrNotFound
	}
	return workspace, nil
}

func (s *WorkspaceService) Update(userID, id uint, input UpdateWorkspaceInput) (*model.Workspace, error) {
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
	if input.ClearDescription {
		fields["description"] = nil
	} else if input.Description != nil {
		fields["description"] = strings.TrimSpace(*input.Description)
	}

	return s.store.Updates(id, fields)
}

func (s *WorkspaceService) Delete(userID, id uint) (*model.Workspace, error) {
	if _, err := s.Get(userID, id); err != nil {
		return nil, err
	}
	deleted, err := s.store.DeleteCascade(id)
	if err != nil {
		return nil, err
	}
	if deleted == nil {
		return nil, ErrNotFound
	}
	return deleted, nil
}
