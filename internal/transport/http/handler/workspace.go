package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"nlustudio/internal/app"
	"nlustudio/internal/transport/http/response"
)

type WorkspaceHandler struct {
	workspaceService *app.WorkspaceService
}

type createWorkspaceRequest struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
}

type updateWorkspaceRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

func NewWorkspaceHandler(workspaceService *app.WorkspaceService) *WorkspaceHandler {
	return &WorkspaceHandler{workspaceService: workspaceService}
}

func (h *WorkspaceHandler) List(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "authentication required")
		return
	}

	limit, offset := pagination(c)
	workspaces, err := h.workspaceService.List(userID, c.Query("search"), limit, offset)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalError, "list workspaces failed")
		return
	}
	c.JSON(http.StatusOK, workspaces)
}

func (h *WorkspaceHandler) Create(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "authentication required")
		return
	}

	var req createWorkspaceRequest
	keys, err := decodeBody(c, &req)
	if err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeInvalidPayload, "invalid request payload")
		return
	}
	if hasUserIDKey(keys) {
		response.Error(c, http.StatusBadRequest, response.CodeUserIDNotAllowed, "userId is derived from the session and cannot be set")
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		response.Error(c, http.StatusBadRequest, response.CodeMissingName, "name is required")
		return
	}

	workspace, err := h.workspaceService.Create(app.CreateWorkspaceInput{
		UserID:      userID,
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		switch {
		case errors.Is(err, app.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, response.CodeMissingName, "name is required")
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalError, "create workspace failed")
		}
		return
	}
	c.JSON(http.StatusCreated, workspace)
}

func (h *WorkspaceHandler) Get(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "authentication required")
		return
	}
	id, ok := idParam(c)
	if !ok {
		response.Error(c, http.StatusBadRequest, response.CodeInvalidID, "invalid workspace id")
		return
	}

	workspace, err := h.workspaceService.Get(userID, id)
	if err != nil {
		switch {
		case errors.Is(err, app.ErrNotFound):
			response.Error(c, http.StatusNotFound, response.CodeNotFound, "workspace not found")
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalError, "get workspace failed")
		}
		return
	}
	c.JSON(http.StatusOK, workspace)
}

func (h *WorkspaceHandler) Update(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "authentication required")
		return
	}
	id, ok := idParam(c)
	if !ok {
		response.Error(c, http.StatusBadRequest, response.CodeInvalidID, "invalid workspace id")
		return
	}

	var req updateWorkspaceRequest
	keys, err := decodeBody(c, &req)
	if err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeInvalidPayload, "invalid request payload")
		return
	}

	input := app.UpdateWorkspaceInput{Name: req.Name}
	recognized := 0
	if _, present := keys["name"]; present {
		recognized++
	}
	if raw, present := keys["description"]; present {
		recognized++
		if isNull(raw) {
			input.ClearDescription = true
		} else {
			input.Description = req.Description
		}
	}
	if recognized == 0 {
		response.Error(c, http.StatusBadRequest, response.CodeNoFieldsToUpdate, "no fields to update")
		return
	}

	workspace, err := h.workspaceService.Update(userID, id, input)
	if err != nil {
		switch {
		case errors.Is(err, app.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, response.CodeInvalidName, "name cannot be blank")
		case errors.Is(err, app.ErrNotFound):
			response.Error(c, http.StatusNotFound, response.CodeNotFound, "workspace not found")
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalError, "update workspace failed")
		}
		return
	}
	c.JSON(http.StatusOK, workspace)
}

func (h *WorkspaceHandler) Delete(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "authentication required")
		return
	}
	id, ok := idParam(c)
	if !ok {
		response.Error(c, http.StatusBadRequest, response.CodeInvalidID, "invalid workspace id")
		return
	}

	workspace, err := h.workspaceService.Delete(userID, id)
	if err != nil {
		switch {
		case errors.Is(err, app.ErrNotFound):
			response.Error(c, http.StatusNotFound, response.CodeNotFound, "workspace not found")
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalError, "delete workspace failed")
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":   "workspace deleted",
		"workspace": workspace,
	})
}
