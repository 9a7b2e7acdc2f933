package app

import (
	"context"
	"strings"

	"nlustudio/internal/mlbackend"
	"nlustudio/internal/model"
)

// In-memory stores backing the service tests. Ownership chains resolve the
// same way the gorm repositories do, through the workspace's user id.

type fakeUserStore struct {
	nextID uint
	byID   map[uint]*model.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{byID: map[uint]*model.User{}}
}

func (s *fakeUserStore) Create(user *model.User) error {
	s.nextID++
	user.ID = s.nextID
	s.byID[user.ID] = user
	return nil
}

func (s *fakeUserStore) GetByEmail(email string) (*model.User, error) {
	for _, user := range s.byID {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, nil
}

func (s *fakeUserStore) GetByID(id uint) (*model.User, error) {
	return s.byID[id], nil
}

type fakeSessionStore struct {
	nextID  uint
	byToken map[string]*model.Session
}

func newFakeSessionStore() *fakeSessionStore {
	return &fakeSessionStore{byToken: map[string]*model.Session{}}
}

func (s *fakeSessionStore) Create(session *model.Session) error {
	s.nextID++
	session.ID = s.nextID
	s.byToken[session.Token] = session
	return nil
}

func (s *fakeSessionStore) GetByToken(tok string) (*model.Session, error) {
	return s.byToken[tok], nil
}

func (s *fakeSessionStore) DeleteByToken(tok string) error {
	delete(s.byToken, tok)
	return nil
}

type fakeWorkspaceStore struct {
	nextID uint
	byID   map[uint]*model.Workspace
}

func newFakeWorkspaceStore() *fakeWorkspaceStore {
	return &fakeWorkspaceStore{byID: map[uint]*model.Workspace{}}
}

func (s *fakeWorkspaceStore) Create(workspace *model.Workspace) error {
	s.nextID++
	workspace.ID = s.nextID
	s.byID[workspace.ID] = workspace
	return nil
}

func (s *fakeWorkspaceStore) ListByUserID(userID uint, search string, limit, offset int) ([]model.Workspace, error) {
	var out []model.Workspace
	for _, workspace := range s.byID {
		if workspace.UserID != userID {
			continue
		}
		if search != "" && !strings.Contains(workspace.Name, search) {
			continue
		}
		out = append(out, *workspace)
	}
	return out, nil
}

func (s *fakeWorkspaceStore) GetByID(id uint) (*model.Workspace, error) {
	return s.byID[id], nil
}

func (s *fakeWorkspaceStore) Updates(id uint, fields map[string]interface{}) (*model.Workspace, error) {
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

func (s *fakeWorkspaceStore) DeleteCascade(id uint) (*model.Workspace, error) {
	workspace, ok := s.byID[id]
	if !ok {
		return nil, nil
	}
	delete(s.byID, id)
	return workspace, nil
}

type fakeDatasetStore struct {
	nextID     uint
	byID       map[uint]*model.Dataset
	workspaces *fakeWorkspaceStore
}

func newFakeDatasetStore(workspaces *fakeWorkspaceStore) *fakeDatasetStore {
	return &fakeDatasetStore{byID: map[uint]*model.Dataset{}, workspaces: workspaces}
}

func (s *fakeDatasetStore) Create(dataset *model.Dataset) error {
	s.nextID++
	dataset.ID = s.nextID
	s.byID[dataset.ID] = dataset
	return nil
}

func (s *fakeDatasetStore) ListByWorkspaceID(workspaceID uint, search string, limit, offset int) ([]model.Dataset, error) {
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

func (s *fakeDatasetStore) GetByID(id uint) (*model.Dataset, error) {
	return s.byID[id], nil
}

func (s *fakeDatasetStore) OwnerOf(id uint) (uint, bool, error) {
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

func (s *fakeDatasetStore) Delete(id uint) error {
	delete(s.byID, id)
	return nil
}

type fakeMLModelStore struct {
	nextID     uint
	byID       map[uint]*model.MLModel
	workspaces *fakeWorkspaceStore
}

func newFakeMLModelStore(workspaces *fakeWorkspaceStore) *fakeMLModelStore {
	return &fakeMLModelStore{byID: map[uint]*model.MLModel{}, workspaces: workspaces}
}

func (s *fakeMLModelStore) Create(mlModel *model.MLModel) error {
	s.nextID++
	mlModel.ID = s.nextID
	s.byID[mlModel.ID] = mlModel
	return nil
}

func (s *fakeMLModelStore) ListByWorkspaceID(workspaceID uint, search string, limit, offset int) ([]model.MLModel, error) {
	var out []model.MLModel
	for _, mlModel := range s.byID {
		if mlModel.WorkspaceID != workspaceID {
			continue
		}
		if search != "" && !strings.Contains(mlModel.ModelName, search) {
			continue
		}
		out = append(out, *mlModel)
	}
	return out, nil
}

func (s *fakeMLModelStore) GetByID(id uint) (*model.MLModel, error) {
	return s.byID[id], nil
}

func (s *fakeMLModelStore) OwnerOf(id uint) (uint, bool, error) {
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

func (s *fakeMLModelStore) Updates(id uint, fields map[string]interface{}) (*model.MLModel, error) {
	mlModel, ok := s.byID[id]
	if !ok {
		return nil, nil
	}
	if name, ok := fields["model_name"].(string); ok {
		mlModel.ModelName = name
	}
	if target, ok := fields["target_column"].(string); ok {
		mlModel.TargetColumn = target
	}
	if accuracy, ok := fields["accuracy"].(float64); ok {
		mlModel.Accuracy = accuracy
	}
	return mlModel, nil
}

func (s *fakeMLModelStore) Delete(id uint) error {
	delete(s.byID, id)
	return nil
}

func (s *fakeMLModelStore) SelectExclusive(workspaceID, modelID uint) (*model.MLModel, error) {
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

type fakeNLUModelStore struct {
	nextID     uint
	byID       map[uint]*model.NLUModel
	workspaces *fakeWorkspaceStore
}

func newFakeNLUModelStore(workspaces *fakeWorkspaceStore) *fakeNLUModelStore {
	return &fakeNLUModelStore{byID: map[uint]*model.NLUModel{}, workspaces: workspaces}
}

func (s *fakeNLUModelStore) Create(nluModel *model.NLUModel) error {
	s.nextID++
	nluModel.ID = s.nextID
	s.byID[nluModel.ID] = nluModel
	return nil
}

func (s *fakeNLUModelStore) ListByWorkspaceID(workspaceID uint, search string, limit, offset int) ([]model.NLUModel, error) {
	var out []model.NLUModel
	for _, nluModel := range s.byID {
		if nluModel.WorkspaceID == workspaceID {
			out = append(out, *nluModel)
		}
	}
	return out, nil
}

func (s *fakeNLUModelStore) GetByID(id uint) (*model.NLUModel, error) {
	return s.byID[id], nil
}

func (s *fakeNLUModelStore) OwnerOf(id uint) (uint, bool, error) {
	nluModel, ok := s.byID[id]
	if !ok {
		return 0, false, nil
	}
	workspace := s.workspaces.byID[nluModel.WorkspaceID]
	if workspace == nil {
		return 0, false, nil
	}
	return workspace.UserID, true, nil
}

func (s *fakeNLUModelStore) Updates(id uint, fields map[string]interface{}) (*model.NLUModel, error) {
	nluModel, ok := s.byID[id]
	if !ok {
		return nil, nil
	}
	if name, ok := fields["name"].(string); ok {
		nluModel.Name = name
	}
	return nluModel, nil
}

func (s *fakeNLUModelStore) Delete(id uint) error {
	delete(s.byID, id)
	return nil
}

type fakeAnnotationStore struct {
	nextID    uint
	byID      map[uint]*model.Annotation
	nluModels *fakeNLUModelStore
}

func newFakeAnnotationStore(nluModels *fakeNLUModelStore) *fakeAnnotationStore {
	return &fakeAnnotationStore{byID: map[uint]*model.Annotation{}, nluModels: nluModels}
}

func (s *fakeAnnotationStore) Create(annotation *model.Annotation) error {
	s.nextID++
	annotation.ID = s.nextID
	s.byID[annotation.ID] = annotation
	return nil
}

func (s *fakeAnnotationStore) ListByNLUModelID(nluModelID uint, search string, limit, offset int) ([]model.Annotation, error) {
	var out []model.Annotation
	for _, annotation := range s.byID {
		if annotation.NLUModelID == nil || *annotation.NLUModelID != nluModelID {
			continue
		}
		if search != "" && !strings.Contains(annotation.Text, search) && !strings.Contains(annotation.Intent, search) {
			continue
		}
		out = append(out, *annotation)
	}
	return out, nil
}

func (s *fakeAnnotationStore) GetByID(id uint) (*model.Annotation, error) {
	return s.byID[id], nil
}

func (s *fakeAnnotationStore) OwnerOf(id uint) (uint, bool, error) {
	annotation, ok := s.byID[id]
	if !ok || annotation.NLUModelID == nil {
		return 0, false, nil
	}
	return s.nluModels.OwnerOf(*annotation.NLUModelID)
}

func (s *fakeAnnotationStore) Updates(id uint, fields map[string]interface{}) (*model.Annotation, error) {
	annotation, ok := s.byID[id]
	if !ok {
		return nil, nil
	}
	if text, ok := fields["text"].(string); ok {
		annotation.Text = text
	}
	if intent, ok := fields["intent"].(string); ok {
		annotation.Intent = intent
	}
	return annotation, nil
}

func (s *fakeAnnotationStore) Delete(id uint) error {
	delete(s.byID, id)
	return nil
}

type fakeChatStore struct {
	nextSessionID uint
	nextMessageID uint
	sessions      map[uint]*model.ChatSession
	messages      []model.ChatMessage
	workspaces    *fakeWorkspaceStore
}

func newFakeChatStore(workspaces *fakeWorkspaceStore) *fakeChatStore {
	return &fakeChatStore{sessions: map[uint]*model.ChatSession{}, workspaces: workspaces}
}

func (s *fakeChatStore) CreateSession(session *model.ChatSession) error {
	s.nextSessionID++
	session.ID = s.nextSessionID
	s.sessions[session.ID] = session
	return nil
}

func (s *fakeChatStore) ListSessionsByWorkspaceID(workspaceID uint, limit, offset int) ([]model.ChatSession, error) {
	var out []model.ChatSession
	for _, session := range s.sessions {
		if session.WorkspaceID == workspaceID {
			out = append(out, *session)
		}
	}
	return out, nil
}

func (s *fakeChatStore) GetSessionByID(id uint) (*model.ChatSession, error) {
	return s.sessions[id], nil
}

func (s *fakeChatStore) SessionOwnerOf(id uint) (uint, bool, error) {
	session, ok := s.sessions[id]
	if !ok {
		return 0, false, nil
	}
	workspace := s.workspaces.byID[session.WorkspaceID]
	if workspace == nil {
		return 0, false, nil
	}
	return workspace.UserID, true, nil
}

func (s *fakeChatStore) EndSession(id uint) (*model.ChatSession, error) {
	session, ok := s.sessions[id]
	if !ok {
		return nil, nil
	}
	if session.EndedAt == nil {
		now := session.StartedAt
		session.EndedAt = &now
	}
	return session, nil
}

func (s *fakeChatStore) CreateMessage(message *model.ChatMessage) error {
	s.nextMessageID++
	message.ID = s.nextMessageID
	s.messages = append(s.messages, *message)
	return nil
}

func (s *fakeChatStore) ListMessagesBySessionID(sessionID uint, limit, offset int) ([]model.ChatMessage, error) {
	var out []model.ChatMessage
	for _, message := range s.messages {
		if message.ChatSessionID == sessionID {
			out = append(out, message)
		}
	}
	if offset > 0 && offset < len(out) {
		out = out[offset:]
	}
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

type fakeTrainingHistoryStore struct {
	records []model.TrainingHistory
}

func (s *fakeTrainingHistoryStore) Create(record *model.TrainingHistory) error {
	s.records = append(s.records, *record)
	return nil
}

func (s *fakeTrainingHistoryStore) ListByMLModelID(mlModelID uint, limit, offset int) ([]model.TrainingHistory, error) {
	var out []model.TrainingHistory
	for _, record := range s.records {
		if record.MLModelID == mlModelID {
			out = append(out, record)
		}
	}
	return out, nil
}

type fakeBackend struct {
	trainResp   *mlbackend.TrainResponse
	trainErr    error
	predictResp *mlbackend.PredictResponse
	predictErr  error
	parseResp   *mlbackend.ParseResult
	parseErr    error
	exportData  []byte
	exportErr   error
	healthErr   error
}

func (b *fakeBackend) Health(ctx context.Context) error {
	return b.healthErr
}

func (b *fakeBackend) TrainModels(ctx context.Context, req mlbackend.TrainRequest) (*mlbackend.TrainResponse, error) {
	if b.trainErr != nil {
		return nil, b.trainErr
	}
	return b.trainResp, nil
}

func (b *fakeBackend) Predict(ctx context.Context, req mlbackend.PredictRequest) (*mlbackend.PredictResponse, error) {
	if b.predictErr != nil {
		return nil, b.predictErr
	}
	return b.predictResp, nil
}

func (b *fakeBackend) Parse(ctx context.Context, modelPath, text string) (*mlbackend.ParseResult, error) {
	if b.parseErr != nil {
		return nil, b.parseErr
	}
	return b.parseResp, nil
}

func (b *fakeBackend) ExportModel(ctx context.Context, modelPath, format string) ([]byte, error) {
	if b.exportErr != nil {
		return nil, b.exportErr
	}
	return b.exportData, nil
}

func (b *fakeBackend) ModelMetadata(ctx context.Context, modelPath string) (map[string]interface{}, error) {
	return map[string]interface{}{"model_path": modelPath}, nil
}

type fakeEpochPublisher struct {
	published []model.TrainingHistory
	err       error
}

func (p *fakeEpochPublisher) Publish(ctx context.Context, record model.TrainingHistory) error {
	if p.err != nil {
		return p.err
	}
	p.published = append(p.published, record)
	return nil
}

type fakeChatHistoryCache struct {
	history map[uint][]model.ChatMessage
	dirty   map[uint]bool
	sets    int
}

func newFakeChatHistoryCache() *fakeChatHistoryCache {
	return &fakeChatHistoryCache{
		history: map[uint][]model.ChatMessage{},
		dirty:   map[uint]bool{},
	}
}

func (c *fakeChatHistoryCache) GetHistory(ctx context.Context, sessionID uint) ([]model.ChatMessage, bool, error) {
	messages, ok := c.history[sessionID]
	return messages, ok, nil
}

func (c *fakeChatHistoryCache) SetHistory(ctx context.Context, sessionID uint, messages []model.ChatMessage) error {
	c.history[sessionID] = messages
	delete(c.dirty, sessionID)
	c.sets++
	return nil
}

func (c *fakeChatHistoryCache) DeleteHistory(ctx context.Context, sessionID uint) error {
	delete(c.history, sessionID)
	delete(c.dirty, sessionID)
	return nil
}

func (c *fakeChatHistoryCache) MarkDirty(ctx context.Context, sessionID uint) error {
	c.dirty[sessionID] = true
	return nil
}

func (c *fakeChatHistoryCache) IsDirty(ctx context.Context, sessionID uint) (bool, error) {
	return c.dirty[sessionID], nil
}
