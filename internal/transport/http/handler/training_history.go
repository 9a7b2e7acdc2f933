package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"nlustudio/internal/app"
	"nlustudio/internal/transport/http/response"
)

type TrainingHistoryHandler struct {
	historyService *app.TrainingHistoryService
}

func NewTrainingHistoryHandler(historyService *app.TrainingHistoryService) *TrainingHistoryHandler {
	return &TrainingHistoryHandler{historyService: historyService}
}

func (h *TrainingHistoryHandler) List(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "authentication required")
		return
	}

	mlModelID, present, valid := uintQuery(c, "mlModelId")
	if !present {
		response.Error(c, http.StatusBadRequest, response.CodeMissingMLModelID, "mlModelId is required")
		return
	}
	if !valid {
		response.Error(c, http.StatusBadRequest, response.CodeInvalidID, "invalid mlModelId")
		return
	}

	limit, offset := pagination(c)
	history, err := h.historyService.List(userID, mlModelID, limit, offset)
	if err != nil {
		respondScopedError(c, err, "model", "list training history failed")
		return
	}
	c.JSON(http.StatusOK, history)
}
