package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"

	"nlustudio/internal/app"
	"nlustudio/internal/transport/http/response"
)

type AnnotationHandler struct {
	annotationService *app.AnnotationService
}

type createAnnotationRequest struct {
	NLUModelID uint           `json:"nluModelId"`
	Text       string         `json:"text"`
	Intent     string         `json:"intent"`
	Entities   datatypes.JSON `json:"entities"`
}

type updateAnnotationRequest struct {
	Text     *string        `json:"text"`
	Intent   *string        `json:"intent"`
	Entities datatypes.JSON `json:"entities"`
}

func NewAnnotationHandler(annotationService *app.AnnotationService) *AnnotationHandler {
	return &AnnotationHandler{annotationService: annotationService}
}

func (h *AnnotationHandler) List(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "authentication required")
		return
	}

	nluModelID, present, valid := uintQuery(c, "nluModelId")
	if !present {
		response.Error(c, http.StatusBadRequest, response.CodeMissingNLUModelID, "nluModelId is required")
		return
	}
	if !valid {
		response.Error(c, http.StatusBadRequest, response.CodeInvalidID, "invalid nluModelId")
		return
	}

	limit, offset := pagination(c)
	annotations, err := h.annotationService.List(userID, nluModelID, c.Query("search"), limit, offset)
	if err != nil {
		respondScopedError(c, err, "nlu model", "list annotations failed")
		return
	}
	c.JSON(http.StatusOK, annotations)
}

func (h *AnnotationHandler) Create(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "authentication required")
		return
	}

	var req createAnnotationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeInvalidPayload, "invalid request payload")
		return
	}
	if req.NLUModelID == 0 {
		response.Error(c, http.StatusBadRequest, response.CodeMissingNLUModelID, "nluModelId is required")
		return
	}
	if strings.TrimSpace(req.Text) == "" || strings.TrimSpace(req.Intent) == "" {
		response.Error(c, http.StatusBadRequest, response.CodeInvalidPayload, "text and intent are required")
		return
	}

	annotation, err := h.annotationService.Create(app.CreateAnnotationInput{
		UserID:     userID,
		NLUModelID: req.NLUModelID,
		Text:       req.Text,
		Intent:     req.Intent,
		Entities:   req.Entities,
	})
	if err != nil {
		switch {
		case errors.Is(err, app.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, response.CodeInvalidPayload, "text and intent are required")
		default:
			respondScopedError(c, err, "nlu model", "create annotation failed")
		}
		return
	}
	c.JSON(http.StatusCreated, annotation)
}

func (h *AnnotationHandler) Update(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "authentication required")
		return
	}
	id, ok := idParam(c)
	if !ok {
		response.Error(c, http.StatusBadRequest, response.CodeInvalidID, "invalid annotation id")
		return
	}

	var req updateAnnotationRequest
	keys, err := decodeBody(c, &req)
	if err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeInvalidPayload, "invalid request payload")
		return
	}

	recognized := 0
	for _, field := range []string{"text", "intent", "entities"} {
		if _, present := keys[field]; present {
			recognized++
		}
	}
	if recognized == 0 {
		response.Error(c, http.StatusBadRequest, response.CodeNoFieldsToUpdate, "no fields to update")
		return
	}

	annotation, err := h.annotationService.Update(userID, id, app.UpdateAnnotationInput{
		Text:     req.Text,
		Intent:   req.Intent,
		Entities: req.Entities,
	})
	if err != nil {
		switch {
		case errors.Is(err, app.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, response.CodeInvalidPayload, "text and intent cannot be blank")
		case errors.Is(err, app.ErrNotFound):
			response.Error(c, http.StatusNotFound, response.CodeNotFound, "annotation not found")
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalError, "update annotation failed")
		}
		return
	}
	c.JSON(http.StatusOK, annotation)
}

func (h *AnnotationHandler) Delete(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "authentication required")
		return
	}
	id, ok := idParam(c)
	if !ok {
		response.Error(c, http.StatusBadRequest, response.CodeInvalidID, "invalid annotation id")
		return
	}

	annotation, err := h.annotationService.Delete(userID, id)
	if err != nil {
		switch {
		case errors.Is(err, app.ErrNotFound):
			response.Error(c, http.StatusNotFound, response.CodeNotFound, "annotation not found")
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalError, "delete annotation failed")
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":    "annotation deleted",
		"annotation": annotation,
	})
}
