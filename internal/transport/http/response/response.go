package response

import "github.com/gin-gonic/gin"

// Machine-readable error codes. Clients branch on Code; Error is display text.
const (
	CodeInvalidPayload      = "INVALID_PAYLOAD"
	CodeUnauthorized        = "UNAUTHORIZED"
	CodeInvalidCredentials  = "INVALID_CREDENTIALS"
	CodeEmailExists         = "EMAIL_EXISTS"
	CodeForbidden           = "FORBIDDEN"
	CodeNotFound            = "NOT_FOUND"
	CodeModelNotFound       = "MODEL_NOT_FOUND"
	CodeSessionNotFound     = "SESSION_NOT_FOUND"
	CodeInvalidID           = "INVALID_ID"
	CodeMissingName         = "MISSING_NAME"
	CodeInvalidName         = "INVALID_NAME"
	CodeMissingWorkspaceID  = "MISSING_WORKSPACE_ID"
	CodeInvalidWorkspaceID  = "INVALID_WORKSPACE_ID"
	CodeMissingDatasetID    = "MISSING_DATASET_ID"
	CodeMissingNLUModelID   = "MISSING_NLU_MODEL_ID"
	CodeMissingMLModelID    = "MISSING_ML_MODEL_ID"
	CodeMissingFile         = "MISSING_FILE"
	CodeMissingText         = "MISSING_TEXT"
	CodeUnsupportedFormat   = "UNSUPPORTED_FORMAT"
	CodeUserIDNotAllowed    = "USER_ID_NOT_ALLOWED"
	CodeNoFieldsToUpdate    = "NO_FIELDS_TO_UPDATE"
	CodeNoUpdates           = "NO_UPDATES"
	CodeInvalidProblemType  = "INVALID_PROBLEM_TYPE"
	CodeMissingTargetColumn = "MISSING_TARGET_COLUMN"
	CodeMissingAlgorithms   = "MISSING_ALGORITHMS"
	CodeMissingFeature      = "MISSING_FEATURE"
	CodeSessionEnded        = "SESSION_ENDED"
	CodeUpstreamUnavailable = "UPSTREAM_UNAVAILABLE"
	CodeInternalError       = "INTERNAL_ERROR"
)

type ErrorBody struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func Error(c *gin.Context, httpStatus int, code, message string) {
	c.JSON(httpStatus, ErrorBody{
		Error: message,
		Code:  code,
	})
}
