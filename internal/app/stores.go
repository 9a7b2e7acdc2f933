package app

import (
	"context"

	"nlustudio/internal/mlbackend"
	"nlustudio/internal/model"
)

// Store interfaces are declared on the consumer side and satisfied by the
// concrete gorm repositories. Tests swap in in-memory fakes.

type UserStore interface {
	Create(user *model.User) error
	GetByEmail(email string) (*model.User, error)
	GetByID(id uint) (*model.User, error)
}

type SessionStore interface {
	Create(session *model.Session) error
	GetByToken(tok string) (*model.Session, error)
	DeleteByToken(tok string) error
}

type WorkspaceStore interface {
	Create(workspace *model.Workspace) error
	ListByUserID(userID uint, search string, limit, offset int) ([]model.Workspace, error)
	GetByID(id uint) (*model.Workspace, error)
	Updates(id uint, fields map[string]interface{}) (*model.Workspace, error)
	DeleteCascade(id uint) (*model.Workspace, error)
}

type DatasetStore interface {
	Create(dataset *model.Dataset) error
	ListByWorkspaceID(workspaceID uint, search string, limit, offset int) ([]model.Dataset, error)
	GetByID(id uint) (*model.Dataset, error)
	OwnerOf(id uint) (ownerID uint, found bool, err error)
	Delete(id uint) error
}

type MLModelStore interface {
	Create(mlModel *model.MLModel) error
	ListByWorkspaceID(workspaceID uint, search string, limit, offset int) ([]model.MLModel, error)
	GetByID(id uint) (*model.MLModel, error)
	OwnerOf(id uint) (ownerID uint, found bool, err error)
	Updates(id uint, fields map[string]interface{}) (*model.MLModel, error)
	Delete(id uint) error
	SelectExclusive(workspaceID, modelID uint) (*model.MLModel, error)
}

type NLUModelStore interface {
	Create(nluModel *model.NLUModel) error
	ListByWorkspaceID(workspaceID uint, search string, limit, offset int) ([]model.NLUModel, error)
	GetByID(id uint) (*model.NLUModel, error)
	OwnerOf(id uint) (ownerID uint, found bool, err error)
	Updates(id uint, fields map[string]interface{}) (*model.NLUModel, error)
	Delete(id uint) error
}

type AnnotationStore interface {
	Create(annotation *model.Annotation) error
	ListByNLUModelID(nluModelID uint, search string, limit, offset int) ([]model.Annotation, error)
	GetByID(id uint) (*model.Annotation, error)
	OwnerOf(id uint) (ownerID uint, found bool, err error)
	Updates(id uint, fields map[string]interface{}) (*model.Annotation, error)
	Delete(id uint) error
}

type ChatStore interface {
	CreateSession(session *model.ChatSession) error
	ListSessionsByWorkspaceID(workspaceID uint, limit, offset int) ([]model.ChatSession, error)
	GetSessionByID(id uint) (*model.ChatSession, error)
	SessionOwnerOf(id uint) (ownerID uint, found bool, err error)
	EndSession(id uint) (*model.ChatSession, error)
	CreateMessage(message *model.ChatMessage) error
	ListMessagesBySessionID(sessionID uint, limit, offset int) ([]model.ChatMessage, error)
}

type TrainingHistoryStore interface {
	Create(record *model.TrainingHistory) error
	ListByMLModelID(mlModelID uint, limit, offset int) ([]model.TrainingHistory, error)
}

// MLBackend is the Python training service. The HTTP client satisfies it;
// tests substitute canned responses or outages.
type MLBackend interface {
	Health(ctx context.Context) error
	TrainModels(ctx context.Context, req mlbackend.TrainRequest) (*mlbackend.TrainResponse, error)
	Predict(ctx context.Context, req mlbackend.PredictRequest) (*mlbackend.PredictResponse, error)
	Parse(ctx context.Context, modelPath, text string) (*mlbackend.ParseResult, error)
	ExportModel(ctx context.Context, modelPath, format string) ([]byte, error)
	ModelMetadata(ctx context.Context, modelPath string) (map[string]interface{}, error)
}

// AsyncEpochPublisher hands training epoch records to the persistence worker.
type AsyncEpochPublisher interface {
	Publish(ctx context.Context, record model.TrainingHistory) error
}

// ChatHistoryCache fronts the chat message listing with a short-TTL cache.
type ChatHistoryCache interface {
	GetHistory(ctx context.Context, sessionID uint) ([]model.ChatMessage, bool, error)
	SetHistory(ctx context.Context, sessionID uint, messages []model.ChatMessage) error
	DeleteHistory(ctx context.Context, sessionID uint) error
	MarkDirty(ctx context.Context, sessionID uint) error
	IsDirty(ctx context.Context, sessionID uint) (bool, error)
}
