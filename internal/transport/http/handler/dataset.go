package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"nlustudio/internal/app"
	"nlustudio/internal/transport/http/response"
)

type DatasetHandler struct {
	datasetService *app.DatasetService
}

type createDatasetRequest struct {
	WorkspaceID uint     `json:"workspaceId"`
	Name        string   `json:"name"`
	FilePath    string   `json:"filePath"`
	FileFormat  string   `json:"fileFormat"`
	FileSize    int64    `json:"fileSize"`
	RowCount    int      `json:"rowCount"`
	ColumnCount int      `json:"columnCount"`
	Columns     []string `json:"columns"`
}

func NewDatasetHandler(datasetService *app.DatasetService) *DatasetHandler {
	return &DatasetHandler{datasetService: datasetService}
}

func (h *DatasetHandler) List(c *gin.Context) {
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
	datasets, err := h.datasetService.List(userID, workspaceID, c.Query("search"), limit, offset)
	if err != nil {
		respondScopedError(c, err, "workspace", "list datasets failed")
		return
	}
	c.JSON(http.StatusOK, datasets)
}

func (h *DatasetHandler) Create(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "authentication required")
		return
	}

	var req createDatasetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeInvalidPayload, "invalid request payload")
		return
	}
	if req.WorkspaceID == 0 {
		response.Error(c, http.StatusBadRequest, response.CodeMissingWorkspaceID, "workspaceId is required")
		return
	}

	dataset, err := h.datasetService.Create(app.CreateDatasetInput{
		UserID:      userID,
		WorkspaceID: req.WorkspaceID,
		Name:        req.Name,
		FilePath:    req.FilePath,
		FileFormat:  req.FileFormat,
		FileSize:    req.FileSize,
		RowCount:    req.RowCount,
		ColumnCount: req.ColumnCount,
		Columns:     req.Columns,
	})
	if err != nil {
		switch {
		case errors.Is(err, app.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, response.CodeMissingName, "name is required")
		default:
			respondScopedError(c, err, "workspace", "create dataset failed")
		}
		return
	}
	c.JSON(http.StatusCreated, dataset)
}

// Upload accepts multipart form data with a `file` part and a `workspaceId`
// field, stores the file, and parses it into columns, row count, and preview.
func (h *DatasetHandler) Upload(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "authentication required")
		return
	}

	workspaceIDRaw := c.PostForm("workspaceId")
	if workspaceIDRaw == "" {
		response.Error(c, http.StatusBadRequest, response.CodeMissingWorkspaceID, "workspaceId is required")
		return
	}
	workspaceID64, err := strconv.ParseUint(workspaceIDRaw, 10, 64)
	if err != nil || workspaceID64 == 0 {
		response.Error(c, http.StatusBadRequest, response.CodeInvalidWorkspaceID, "invalid workspaceId")
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeMissingFile, "file is required")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalError, "read uploaded file failed")
		return
	}
	defer file.Close()

	result, err := h.datasetService.Upload(app.UploadDatasetInput{
		UserID:      userID,
		WorkspaceID: uint(workspaceID64),
		FileName:    fileHeader.Filename,
		FileSize:    fileHeader.Size,
		Content:     file,
	})
	if err != nil {
		switch {
		case errors.Is(err, app.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, response.CodeUnsupportedFormat, "file must be CSV, JSON, or YAML")
		default:
			respondScopedError(c, err, "workspace", "upload dataset failed")
		}
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h *DatasetHandler) Get(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "authentication required")
		return
	}
	id, ok := idParam(c)
	if !ok {
		response.Error(c, http.StatusBadRequest, response.CodeInvalidID, "invalid dataset id")
		return
	}

	dataset, err := h.datasetService.Get(userID, id)
	if err != nil {
		switch {
		case errors.Is(err, app.ErrNotFound):
			response.Error(c, http.StatusNotFound, response.CodeNotFound, "dataset not found")
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalError, "get dataset failed")
		}
		return
	}
	c.JSON(http.StatusOK, dataset)
}

func (h *DatasetHandler) Delete(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "authentication required")
		return
	}
	id, ok := idParam(c)
	if !ok {
		response.Error(c, http.StatusBadRequest, response.CodeInvalidID, "invalid dataset id")
		return
	}

	dataset, err := h.datasetService.Delete(userID, id)
	if err != nil {
		switch {
		case errors.Is(err, app.ErrNotFound):
			response.Error(c, http.StatusNotFound, response.CodeNotFound, "dataset not found")
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalError, "delete dataset failed")
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "dataset deleted",
		"dataset": dataset,
	})
}

// respondScopedError maps the parent-scoped ownership outcomes: missing parent
// is 404, someone else's parent is 403.
func respondScopedError(c *gin.Context, err error, parent, fallback string) {
	switch {
	case errors.Is(err, app.ErrNotFound):
		response.Error(c, http.StatusNotFound, response.CodeNotFound, parent+" not found")
	case errors.Is(err, app.ErrForbidden):
		response.Error(c, http.StatusForbidden, response.CodeForbidden, "access denied")
	default:
		response.Error(c, http.StatusInternalServerError, response.CodeInternalError, fallback)
	}
}
