package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"nlustudio/internal/app"
	"nlustudio/internal/transport/http/response"
)

type NLUModelHandler struct {
	nluModelService   *app.NLUModelService
	annotationService *app.AnnotationService
}

type createNLUModelRequest struct {
	WorkspaceID      uint     `json:"workspaceId"`
	Name             string   `json:"name"`
	ModelPath        string   `json:"modelPath"`
	Intents          []string `json:"intents"`
	Entities         []string `json:"entities"`
	TrainingDataPath string   `json:"trainingDataPath"`
	Accuracy         float64  `json:"accuracy"`
}

type updateNLUModelRequest struct {
	Name      *string  `json:"name"`
	ModelPath *string  `json:"modelPath"`
	Intents   []string `json:"intents"`
	Entities  []string `json:"entities"`
	Accuracy  *float64 `json:"accuracy"`
}

type nluPredictRequest struct {
	NLUModelID uint   `json:"nluModelId"`
	Text       string `json:"text"`
}

func NewNLUModelHandler(nluModelService *app.NLUModelService, annotationService *app.AnnotationService) *NLUModelHandler {
	return &NLUModelHandler{
		nluModelService:   nluModelService,
		annotationService: annotationService,
	}
}

func (h *NLUModelHandler) List(c *gin.Context) {
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
	models, err := h.nluModelService.List(userID, workspaceID, c.Query("search"), limit, offset)
	if err != nil {
		respondScopedError(c, err, "workspace", "list nlu models failed")
		return
	}
	c.JSON(http.StatusOK, models)
}

func (h *NLUModelHandler) Create(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "authentication required")
		return
	}

	var req createNLUModelRequest
	keys, err := decodeBody(c, &req)
	if err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeInvalidPayload, "invalid request payload")
		return
	}
	if hasUserIDKey(keys) {
		response.Error(c, http.StatusBadRequest, response.CodeUserIDNotAllowed, "userId is derived from the session and cannot be set")
		return
	}
	if req.WorkspaceID == 0 {
		response.Error(c, http.StatusBadRequest, response.CodeMissingWorkspaceID, "workspaceId is required")
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		response.Error(c, http.StatusBadRequest, response.CodeMissingName, "name is required")
		return
	}

	nluModel, err := h.nluModelService.Create(app.CreateNLUModelInput{
		UserID:           userID,
		WorkspaceID:      req.WorkspaceID,
		Name:             req.Name,
		ModelPath:        req.ModelPath,
		Intents:          req.Intents,
		Entities:         req.Entities,
		TrainingDataPath: req.TrainingDataPath,
		Accuracy:         req.Accuracy,
	})
	if err != nil {
		switch {
		case errors.Is(err, app.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, response.CodeMissingName, "name is required")
		default:
			respondScopedError(c, err, "workspace", "create nlu model failed")
		}
		return
	}
	c.JSON(http.StatusCreated, nluModel)
}

func (h *NLUModelHandler) Get(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "authentication required")
		return
	}
	id, ok := idParam(c)
	if !ok {
		response.Error(c, http.StatusBadRequest, response.CodeInvalidID, "invalid nlu model id")
		return
	}

	nluModel, err := h.nluModelService.Get(userID, id)
	if err != nil {
		h.respondModelError(c, err, "get nlu model failed")
		return
	}
	c.JSON(http.StatusOK, nluModel)
}

func (h *NLUModelHandler) Update(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "authentication required")
		return
	}
	id, ok := idParam(c)
	if !ok {
		response.Error(c, http.StatusBadRequest, response.CodeInvalidID, "invalid nlu model id")
		return
	}

	var req updateNLUModelRequest
	keys, err := decodeBody(c, &req)
	if err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeInvalidPayload, "invalid request payload")
		return
	}

	recognized := 0
	for _, field := range []string{"name", "modelPath", "intents", "entities", "accuracy"} {
		if _, present := keys[field]; present {
			recognized++
		}
	}
	if recognized == 0 {
		response.Error(c, http.StatusBadRequest, response.CodeNoFieldsToUpdate, "no fields to update")
		return
	}

	nluModel, err := h.nluModelService.Update(userID, id, app.UpdateNLUModelInput{
		Name:      req.Name,
		ModelPath: req.ModelPath,
		Intents:   req.Intents,
		Entities:  req.Entities,
		Accuracy:  req.Accuracy,
	})
	if err != nil {
		switch {
		case errors.Is(err, app.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, response.CodeInvalidName, "name cannot be blank")
		default:
			h.respondModelError(c, err, "update nlu model failed")
		}
		return
	}
	c.JSON(http.StatusOK, nluModel)
}

func (h *NLUModelHandler) Delete(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "authentication required")
		return
	}
	id, ok := idParam(c)
	if !ok {
		response.Error(c, http.StatusBadRequest, response.CodeInvalidID, "invalid nlu model id")
		return
	}

	nluModel, err := h.nluModelService.Delete(userID, id)
	if err != nil {
		h.respondModelError(c, err, "delete nlu model failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":  "nlu model deleted",
		"nluModel": nluModel,
	})
}

// ListAnnotations serves /nlu-models/:id/annotations with the parent-scoped
// policy: the model id is named explicitly, so a foreign model answers 403.
func (h *NLUModelHandler) ListAnnotations(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "authentication required")
		return
	}
	id, ok := idParam(c)
	if !ok {
		response.Error(c, http.StatusBadRequest, response.CodeInvalidID, "invalid nlu model id")
		return
	}

	limit, offset := pagination(c)
	annotations, err := h.annotationService.List(userID, id, c.Query("search"), limit, offset)
	if err != nil {
		respondScopedError(c, err, "nlu model", "list annotations failed")
		return
	}
	c.JSON(http.StatusOK, annotations)
}

func (h *NLUModelHandler) Predict(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "authentication required")
		return
	}

	var req nluPredictRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeInvalidPayload, "invalid request payload")
		return
	}
	if req.NLUModelID == 0 {
		response.Error(c, http.StatusBadRequest, response.CodeMissingNLUModelID, "nluModelId is required")
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		response.Error(c, http.StatusBadRequest, response.CodeMissingText, "text is required")
		return
	}

	output, err := h.nluModelService.Predict(c.Request.Context(), userID, req.NLUModelID, req.Text)
	if err != nil {
		switch {
		case errors.Is(err, app.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, response.CodeMissingText, "text is required")
		default:
			h.respondModelError(c, err, "nlu predict failed")
		}
		return
	}
	c.JSON(http.StatusOK, output)
}

func (h *NLUModelHandler) respondModelError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, app.ErrNotFound):
		response.Error(c, http.StatusNotFound, response.CodeModelNotFound, "nlu model not found")
	default:
		response.Error(c, http.StatusInternalServerError, response.CodeInternalError, fallback)
	}
}
