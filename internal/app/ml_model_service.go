package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"nlustudio/internal/mlbackend"
	"nlustudio/internal/mlsim"
	"nlustudio/internal/model"
)

type MLModelService struct {
	store     MLModelStore
	datasets  DatasetStore
	validator *OwnershipValidator
	backend   MLBackend
	publisher AsyncEpochPublisher
}

type CreateMLModelInput struct {
	UserID           uint
	WorkspaceID      uint
	DatasetID        uint
	ModelName        string
	AlgorithmType    string
	TargetColumn     string
	FeatureColumns   []string
	ModelFilePath    string
	Accuracy         float64
	PrecisionScore   *float64
	RecallScore      *float64
	F1Score          *float64
	TrainingDuration int
}

type UpdateMLModelInput struct {
	ModelName    *string
	TargetColumn *string
	Accuracy     *float64
}

type TrainModelsInput struct {
	UserID       uint
	WorkspaceID  uint
	DatasetID    uint
	ProblemType  string
	TargetColumn string
	Algorithms   []string
	TestSize     float64
}

type TrainModelsOutput struct {
	Models    []model.MLModel             `json:"models"`
	Results   []mlbackend.AlgorithmResult `json:"results"`
	Simulated bool                        `json:"simulated"`
}

type PredictInput struct {
	UserID  uint
	ModelID uint
	Data    []map[string]interface{}
}

type PredictOutput struct {
	Predictions []mlbackend.Prediction `json:"predictions"`
	Simulated   bool                   `json:"simulated"`
}

func NewMLModelService(
	store MLModelStore,
	datasets DatasetStore,
	validator *OwnershipValidator,
	backend MLBackend,
	publisher AsyncEpochPublisher,
) *MLModelService {
	return &MLModelService{
		store:     store,
		datasets:  datasets,
		validator: validator,
		backend:   backend,
		publisher: publisher,
	}
}

func (s *MLModelService) List(userID, workspaceID uint, search string, limit, offset int) ([]model.MLModel, error) {
	ownership, err := s.validator.Workspace(workspaceID, userID)
	if err != nil {
		return nil, err
	}
	if err := scoped(ownership); err != nil {
		return nil, err
	}
	return s.store.ListByWorkspaceID(workspaceID, search, limit, offset)
}

func (s *MLModelService) Create(input CreateMLModelInput) (*model.MLModel, error) {
	name := strings.TrimSpace(input.ModelName)
	if name == "" || input.WorkspaceID == 0 || strings.TrimSpace(input.AlgorithmType) == "" {
		return nil, ErrInvalidInput
	}

	ownership, err := s.validator.Workspace(input.WorkspaceID, input.UserID)
	if err != nil {
		return nil, err
	}
	if err := scoped(ownership); err != nil {
		return nil, err
	}

	mlModel := &model.MLModel{
		WorkspaceID:      input.WorkspaceID,
		DatasetID:        input.DatasetID,
		ModelName:        name,
		AlgorithmType:    input.AlgorithmType,
		TargetColumn:     input.TargetColumn,
		ModelFilePath:    input.ModelFilePath,
		Accuracy:         input.Accuracy,
		PrecisionScore:   input.PrecisionScore,
		RecallScore:      input.RecallScore,
		F1Score:          input.F1Score,
		TrainingDuration: input.TrainingDuration,
		TrainedAt:        time.Now(),
	}
	if len(input.FeatureColumns) > 0 {
		encoded, err := json.Marshal(input.FeatureColumns)
		if err != nil {
			return nil, fmt.Errorf("encode feature columns failed: %w", err)
		}
		mlModel.FeatureColumns = encoded
	}
	if err := s.store.Create(mlModel); err != nil {
		return nil, err
	}
	return mlModel, nil
}

func (s *MLModelService) Get(userID, id uint) (*model.MLModel, error) {
	ownership, err := s.validator.MLModel(id, userID)
	if err != nil {
		return nil, err
	}
	if err := foldToNotFound(ownership); err != nil {
		return nil, err
	}
	mlModel, err := s.store.GetByID(id)
	if err != nil {
		return nil, err
	}
	if mlModel == nil {
		return nil, ErrNotFound
	}
	return mlModel, nil
}

func (s *MLModelService) Update(userID, id uint, input UpdateMLModelInput) (*model.MLModel, error) {
	if _, err := s.Get(userID, id); err != nil {
		return nil, err
	}

	fields := map[string]interface{}{
		"updated_at": time.Now(),
	}
	if input.ModelName != nil {
		name := strings.TrimSpace(*input.ModelName)
		if name == "" {
			return nil, ErrInvalidInput
		}
		fields["model_name"] = name
	}
	if input.TargetColumn != nil {
		fields["target_column"] = strings.TrimSpace(*input.TargetColumn)
	}
	if input.Accuracy != nil {
		fields["accuracy"] = *input.Accuracy
	}

	return s.store.Updates(id, fields)
}

func (s *MLModelService) Delete(userID, id uint) (*model.MLModel, error) {
	mlModel, err := s.Get(userID, id)
	if err != nil {
		return nil, err
	}
	if err := s.store.Delete(id); err != nil {
		return nil, err
	}
	return mlModel, nil
}

// Select marks one model as the workspace's active model and clears the flag
// on every sibling in the same write.
func (s *MLModelService) Select(userID, id uint) (*model.MLModel, error) {
	mlModel, err := s.Get(userID, id)
	if err != nil {
		return nil, err
	}
	return s.store.SelectExclusive(mlModel.WorkspaceID, id)
}

// Train runs the requested algorithms against the dataset on the ML backend,
// persists one model row per successful result, and marks the most accurate
// one selected. When the backend is down the run is simulated instead of
// failing the request.
func (s *MLModelService) Train(ctx context.Context, input TrainModelsInput) (*TrainModelsOutput, error) {
	if input.WorkspaceID == 0 || input.DatasetID == 0 || len(input.Algorithms) == 0 {
		return nil, ErrInvalidInput
	}

	ownership, err := s.validator.Workspace(input.WorkspaceID, input.UserID)
	if err != nil {
		return nil, err
	}
	if err := scoped(ownership); err != nil {
		return nil, err
	}

	dataset, err := s.datasets.GetByID(input.DatasetID)
	if err != nil {
		return nil, err
	}
	if dataset == nil || dataset.WorkspaceID != input.WorkspaceID {
		return nil, ErrNotFound
	}

	trainReq := mlbackend.TrainRequest{
		WorkspaceID:  input.WorkspaceID,
		DatasetID:    input.DatasetID,
		FilePath:     dataset.FilePath,
		ProblemType:  input.ProblemType,
		TargetColumn: input.TargetColumn,
		Algorithms:   input.Algorithms,
		TestSize:     input.TestSize,
	}

	simulated := false
	trainResp, err := s.backend.TrainModels(ctx, trainReq)
	if err != nil {
		if !errors.Is(err, mlbackend.ErrUnavailable) {
			return nil, err
		}
		log.Printf("ml backend unavailable, simulating training run: %v", err)
		trainResp = mlsim.TrainModels(trainReq)
		simulated = true
	}

	featureColumns := featureColumnsFor(dataset, input.TargetColumn)

	output := &TrainModelsOutput{
		Results:   trainResp.Results,
		Simulated: simulated,
	}
	var best *model.MLModel
	for _, result := range trainResp.Results {
		if !result.Success {
			continue
		}
		mlModel, err := s.persistResult(input, result, featureColumns)
		if err != nil {
			return nil, err
		}
		output.Models = append(output.Models, *mlModel)
		if best == nil || mlModel.Accuracy > best.Accuracy {
			best = mlModel
		}
		s.publishEpochs(ctx, mlModel.ID, result.Epochs)
	}

	if best != nil {
		if _, err := s.store.SelectExclusive(input.WorkspaceID, best.ID); err != nil {
			return nil, err
		}
	}
	return output, nil
}

// Predict scores rows against a trained model, simulating when the backend is
// unreachable. Every row must carry the model's feature columns.
func (s *MLModelService) Predict(ctx context.Context, input PredictInput) (*PredictOutput, error) {
	if len(input.Data) == 0 {
		return nil, ErrInvalidInput
	}

	mlModel, err := s.Get(input.UserID, input.ModelID)
	if err != nil {
		return nil, err
	}

	if err := validateFeatures(mlModel, input.Data); err != nil {
		return nil, err
	}

	predictReq := mlbackend.PredictRequest{
		ModelPath:     mlModel.ModelFilePath,
		AlgorithmType: mlModel.AlgorithmType,
		Data:          input.Data,
	}

	predictResp, err := s.backend.Predict(ctx, predictReq)
	if err != nil {
		if !errors.Is(err, mlbackend.ErrUnavailable) {
			return nil, err
		}
		log.Printf("ml backend unavailable, simulating prediction: %v", err)
		return &PredictOutput{
			Predictions: mlsim.Predict(predictReq).Predictions,
			Simulated:   true,
		}, nil
	}
	return &PredictOutput{Predictions: predictResp.Predictions}, nil
}

// Download exports the serialized model file from the backend. There is no
// simulation here; without the backend there are no bytes to hand out.
func (s *MLModelService) Download(ctx context.Context, userID, id uint, format string) ([]byte, string, error) {
	mlModel, err := s.Get(userID, id)
	if err != nil {
		return nil, "", err
	}
	if mlModel.ModelFilePath == "" {
		return nil, "", ErrNotFound
	}

	raw, err := s.backend.ExportModel(ctx, mlModel.ModelFilePath, format)
	if err != nil {
		if errors.Is(err, mlbackend.ErrUnavailable) {
			return nil, "", ErrUpstreamUnavailable
		}
		return nil, "", err
	}

	ext := "pkl"
	if format == "h5" {
		ext = "h5"
	}
	filename := fmt.Sprintf("%s.%s", strings.ReplaceAll(mlModel.ModelName, " ", "_"), ext)
	return raw, filename, nil
}

func (s *MLModelService) persistResult(input TrainModelsInput, result mlbackend.AlgorithmResult, featureColumns []string) (*model.MLModel, error) {
	mlModel := &model.MLModel{
		WorkspaceID:      input.WorkspaceID,
		DatasetID:        input.DatasetID,
		ModelName:        fmt.Sprintf("%s - %s", result.AlgorithmName, time.Now().Format("2006-01-02 15:04")),
		AlgorithmType:    result.AlgorithmID,
		TargetColumn:     input.TargetColumn,
		ModelFilePath:    result.ModelFilePath,
		Accuracy:         result.Accuracy,
		PrecisionScore:   result.Precision,
		RecallScore:      result.Recall,
		F1Score:          result.F1Score,
		TrainingDuration: result.TrainingDuration,
		TrainedAt:        time.Now(),
	}
	if len(featureColumns) > 0 {
		encoded, err := json.Marshal(featureColumns)
		if err != nil {
			return nil, fmt.Errorf("encode feature columns failed: %w", err)
		}
		mlModel.FeatureColumns = encoded
	}
	if len(result.ConfusionMatrix) > 0 {
		encoded, err := json.Marshal(result.ConfusionMatrix)
		if err != nil {
			return nil, fmt.Errorf("encode confusion matrix failed: %w", err)
		}
		mlModel.ConfusionMatrix = encoded
	}
	if err := s.store.Create(mlModel); err != nil {
		return nil, err
	}
	return mlModel, nil
}

func (s *MLModelService) publishEpochs(ctx context.Context, modelID uint, epochs []mlbackend.EpochPoint) {
	if s.publisher == nil {
		return
	}
	for _, point := range epochs {
		record := model.TrainingHistory{
			MLModelID:     modelID,
			EpochNumber:   point.Epoch,
			LossValue:     point.Loss,
			AccuracyValue: point.Accuracy,
		}
		if err := s.publisher.Publish(ctx, record); err != nil {
			log.Printf("publish epoch %d for model %d failed: %v", point.Epoch, modelID, err)
		}
	}
}

func featureColumnsFor(dataset *model.Dataset, targetColumn string) []string {
	if len(dataset.Columns) == 0 {
		return nil
	}
	var columns []string
	if err := json.Unmarshal(dataset.Columns, &columns); err != nil {
		return nil
	}
	features := make([]string, 0, len(columns))
	for _, column := range columns {
		if column != targetColumn {
			features = append(features, column)
		}
	}
	return features
}

func validateFeatures(mlModel *model.MLModel, rows []map[string]interface{}) error {
	if len(mlModel.FeatureColumns) == 0 {
		return nil
	}
	var features []string
	if err := json.Unmarshal(mlModel.FeatureColumns, &features); err != nil {
		return nil
	}
	for _, row := range rows {
		for _, feature := range features {
			if _, ok := row[feature]; !ok {
				return fmt.Errorf("%w: missing feature %q", ErrInvalidInput, feature)
			}
		}
	}
	return nil
}
