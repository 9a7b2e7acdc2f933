package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"nlustudio/internal/app"
	"nlustudio/internal/transport/http/response"
)

type MLModelHandler struct {
	mlModelService *app.MLModelService
}

type createMLModelRequest struct {
	WorkspaceID      uint     `json:"workspaceId"`
	DatasetID        uint     `json:"datasetId"`
	ModelName        string   `json:"modelName"`
	AlgorithmType    string   `json:"algorithmType"`
	TargetColumn     string   `json:"targetColumn"`
	FeatureColumns   []string `json:"featureColumns"`
	ModelFilePath    string   `json:"modelFilePath"`
	Accuracy         float64  `json:"accuracy"`
	PrecisionScore   *float64 `json:"precisionScore"`
	RecallScore      *float64 `json:"recallScore"`
	F1Score          *float64 `json:"f1Score"`
	TrainingDuration int      `json:"trainingDuration"`
}

type updateMLModelRequest struct {
	ModelName    *string  `json:"modelName"`
	TargetColumn *string  `json:"targetColumn"`
	Accuracy     *float64 `json:"accuracy"`
}

type trainRequest struct {
	WorkspaceID  uint     `json:"workspaceId"`
	DatasetID    uint     `json:"datasetId"`
	ProblemType  string   `json:"problemType"`
	TargetColumn string   `json:"targetColumn"`
	Algorithms   []string `json:"algorithms"`
	TestSize     float64  `json:"testSize"`
}

type predictRequest struct {
	ModelID uint                     `json:"modelId"`
	Data    []map[string]interface{} `json:"data"`
}

var problemTypes = map[string]bool{
	"classification": true,
	"regression":     true,
	"clustering":     true,
}

func NewMLModelHandler(mlModelService *app.MLModelService) *MLModelHandler {
	return &MLModelHandler{mlModelService: mlModelService}
}

func (h *MLModelHandler) List(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "authentication required")
		return
	}

	workspaceID, present, valid := uintQuery(c, "workspaceId")
	if !present {
		response.Error(c, http.StatusBadRequest, response.CodeMissingWorkspaceID, "workspaceId is required")
		return
	}
	if !valid {
		response.Error(c, http.StatusBadRequest, response.CodeInvalidWorkspaceID, "invalid workspaceId")
		return
	}

	limit, offset := pagination(c)
	models, err := h.mlModelService.List(userID, workspaceID, c.Query("search"), limit, offset)
	if err != nil {
		respondScopedError(c, err, "workspace", "list models failed")
		return
	}
	c.JSON(http.StatusOK, models)
}

func (h *MLModelHandler) Create(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "authentication required")
		return
	}

	var req createMLModelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeInvalidPayload, "invalid request payload")
		return
	}
	if req.WorkspaceID == 0 {
		response.Error(c, http.StatusBadRequest, response.CodeMissingWorkspaceID, "workspaceId is required")
		return
	}
	if strings.TrimSpace(req.ModelName) == "" {
		response.Error(c, http.StatusBadRequest, response.CodeMissingName, "modelName is required")
		return
	}

	mlModel, err := h.mlModelService.Create(app.CreateMLModelInput{
		UserID:           userID,
		WorkspaceID:      req.WorkspaceID,
		DatasetID:        req.DatasetID,
		ModelName:        req.ModelName,
		AlgorithmType:    req.AlgorithmType,
		TargetColumn:     req.TargetColumn,
		FeatureColumns:   req.FeatureColumns,
		ModelFilePath:    req.ModelFilePath,
		Accuracy:         req.Accuracy,
		PrecisionScore:   req.PrecisionScore,
		RecallScore:      req.RecallScore,
		F1Score:          req.F1Score,
		TrainingDuration: req.TrainingDuration,
	})
	if err != nil {
		switch {
		case errors.Is(err, app.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, response.CodeInvalidPayload, "modelName and algorithmType are required")
		default:
			respondScopedError(c, err, "workspace", "create model failed")
		}
		return
	}
	c.JSON(http.StatusCreated, mlModel)
}

func (h *MLModelHandler) Get(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "authentication required")
		return
	}
	id, ok := idParam(c)
	if !ok {
		response.Error(c, http.StatusBadRequest, response.CodeInvalidID, "invalid model id")
		return
	}

	mlModel, err := h.mlModelService.Get(userID, id)
	if err != nil {
		h.respondModelError(c, err, "get model failed")
		return
	}
	c.JSON(http.StatusOK, mlModel)
}

func (h *MLModelHandler) Update(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "authentication required")
		return
	}
	id, ok := idParam(c)
	if !ok {
		response.Error(c, http.StatusBadRequest, response.CodeInvalidID, "invalid model id")
		return
	}

	var req updateMLModelRequest
	if _, err := decodeBody(c, &req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeInvalidPayload, "invalid request payload")
		return
	}
	if req.ModelName == nil && req.TargetColumn == nil && req.Accuracy == nil {
		response.Error(c, http.StatusBadRequest, response.CodeNoUpdates, "no updates provided")
		return
	}

	mlModel, err := h.mlModelService.Update(userID, id, app.UpdateMLModelInput{
		ModelName:    req.ModelName,
		TargetColumn: req.TargetColumn,
		Accuracy:     req.Accuracy,
	})
	if err != nil {
		switch {
		case errors.Is(err, app.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, response.CodeInvalidName, "modelName cannot be blank")
		default:
			h.respondModelError(c, err, "update model failed")
		}
		return
	}
	c.JSON(http.StatusOK, mlModel)
}

func (h *MLModelHandler) Delete(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "authentication required")
		return
	}
	id, ok := idParam(c)
	if !ok {
		response.Error(c, http.StatusBadRequest, response.CodeInvalidID, "invalid model id")
		return
	}

	mlModel, err := h.mlModelService.Delete(userID, id)
	if err != nil {
		h.respondModelError(c, err, "delete model failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "model deleted",
		"model":   mlModel,
	})
}

func (h *MLModelHandler) Select(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "authentication required")
		return
	}
	id, ok := idParam(c)
	if !ok {
		response.Error(c, http.StatusBadRequest, response.CodeInvalidID, "invalid model id")
		return
	}

	mlModel, err := h.mlModelService.Select(userID, id)
	if err != nil {
		h.respondModelError(c, err, "select model failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "model selected",
		"model":   mlModel,
	})
}

func (h *MLModelHandler) Train(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "authentication required")
		return
	}

	var req trainRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeInvalidPayload, "invalid request payload")
		return
	}
	if req.WorkspaceID == 0 {
		response.Error(c, http.StatusBadRequest, response.CodeMissingWorkspaceID, "workspaceId is required")
		return
	}
	if req.DatasetID == 0 {
		response.Error(c, http.StatusBadRequest, response.CodeMissingDatasetID, "datasetId is required")
		return
	}
	if !problemTypes[req.ProblemType] {
		response.Error(c, http.StatusBadRequest, response.CodeInvalidProblemType, "problemType must be classification, regression, or clustering")
		return
	}
	if req.ProblemType != "clustering" && strings.TrimSpace(req.TargetColumn) == "" {
		response.Error(c, http.StatusBadRequest, response.CodeMissingTargetColumn, "targetColumn is required for supervised training")
		return
	}
	if len(req.Algorithms) == 0 {
		response.Error(c, http.StatusBadRequest, response.CodeMissingAlgorithms, "at least one algorithm is required")
		return
	}

	output, err := h.mlModelService.Train(c.Request.Context(), app.TrainModelsInput{
		UserID:       userID,
		WorkspaceID:  req.WorkspaceID,
		DatasetID:    req.DatasetID,
		ProblemType:  req.ProblemType,
		TargetColumn: req.TargetColumn,
		Algorithms:   req.Algorithms,
		TestSize:     req.TestSize,
	})
	if err != nil {
		switch {
		case errors.Is(err, app.ErrNotFound):
			response.Error(c, http.StatusNotFound, response.CodeNotFound, "workspace or dataset not found")
		case errors.Is(err, app.ErrForbidden):
			response.Error(c, http.StatusForbidden, response.CodeForbidden, "access denied")
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalError, "training failed")
		}
		return
	}

	body := gin.H{
		"message":   fmt.Sprintf("trained %d model(s)", len(output.Models)),
		"results":   output.Results,
		"simulated": output.Simulated,
	}
	if best := bestOf(output); best != nil {
		body["bestModel"] = best
	}
	c.JSON(http.StatusCreated, body)
}

func (h *MLModelHandler) Predict(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "authentication required")
		return
	}

	var req predictRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeInvalidPayload, "invalid request payload")
		return
	}
	if req.ModelID == 0 {
		response.Error(c, http.StatusBadRequest, response.CodeMissingMLModelID, "modelId is required")
		return
	}
	if len(req.Data) == 0 {
		response.Error(c, http.StatusBadRequest, response.CodeInvalidPayload, "data must contain at least one row")
		return
	}

	mlModel, err := h.mlModelService.Get(userID, req.ModelID)
	if err != nil {
		h.respondModelError(c, err, "predict failed")
		return
	}

	output, err := h.mlModelService.Predict(c.Request.Context(), app.PredictInput{
		UserID:  userID,
		ModelID: req.ModelID,
		Data:    req.Data,
	})
	if err != nil {
		switch {
		case errors.Is(err, app.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, response.CodeMissingFeature, err.Error())
		default:
			h.respondModelError(c, err, "predict failed")
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":          "prediction complete",
		"modelName":        mlModel.ModelName,
		"algorithmType":    mlModel.AlgorithmType,
		"predictions":      output.Predictions,
		"totalPredictions": len(output.Predictions),
		"simulated":        output.Simulated,
	})
}

func (h *MLModelHandler) Download(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "authentication required")
		return
	}
	id, ok := idParam(c)
	if !ok {
		response.Error(c, http.StatusBadRequest, response.CodeInvalidID, "invalid model id")
		return
	}

	format := c.DefaultQuery("format", "pickle")
	if format != "pickle" && format != "h5" {
		response.Error(c, http.StatusBadRequest, response.CodeUnsupportedFormat, "format must be pickle or h5")
		return
	}

	raw, filename, err := h.mlModelService.Download(c.Request.Context(), userID, id, format)
	if err != nil {
		switch {
		case errors.Is(err, app.ErrUpstreamUnavailable):
			response.Error(c, http.StatusServiceUnavailable, response.CodeUpstreamUnavailable, "ml backend unavailable")
		default:
			h.respondModelError(c, err, "download model failed")
		}
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/octet-stream", raw)
}

func (h *MLModelHandler) respondModelError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, app.ErrNotFound):
		response.Error(c, http.StatusNotFound, response.CodeModelNotFound, "model not found")
	default:
		response.Error(c, http.StatusInternalServerError, response.CodeInternalError, fallback)
	}
}

func bestOf(output *app.TrainModelsOutput) interface{} {
	if len(output.Models) == 0 {
		return nil
	}
	best := output.Models[0]
	for _, m := range output.Models[1:] {
		if m.Accuracy > best.Accuracy {
			best = m
		}
	}
	best.IsSelected = true
	return best
}
