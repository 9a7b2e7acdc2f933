package handler

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nlustudio/internal/app"
	"nlustudio/internal/model"
	"nlustudio/internal/transport/http/middleware"
)

// The handlers are exercised over httptest with in-memory stores behind the
// real services, so the tests cover the full decode, validate, and error
// mapping path without a database.

type testEnv struct {
	router     *gin.Engine
	userID     uint
	workspaces *memWorkspaceStore
	datasets   *memDatasetStore
	mlModels   *memMLModelStore
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	workspaces := &memWorkspaceStore{byID: map[uint]*model.Workspace{}}
	datasets := &memDatasetStore{byID: map[uint]*model.Dataset{}, workspaces: workspaces}
	mlModels := &memMLModelStore{byID: map[uint]*model.MLModel{}, workspaces: workspaces}
	validator := app.NewOwnershipValidator(workspaces, datasets, mlModels, stubNLUModels{}, stubAnnotations{}, stubChat{})

	workspaceHandler := NewWorkspaceHandler(app.NewWorkspaceService(workspaces))
	datasetHandler := NewDatasetHandler(app.NewDatasetService(datasets, validator, t.TempDir()))
	mlModelHandler := NewMLModelHandler(app.NewMLModelService(mlModels, datasets, validator, stubBackend{}, stubPublisher{}))

	env := &testEnv{userID: 7, workspaces: workspaces, datasets: datasets, mlModels: mlModels}

	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set(middleware.ContextUserIDKey, env.userID)
	})
	router.POST("/workspaces", workspaceHandler.Create)
	router.PUT("/workspaces/:id", workspaceHandler.Update)
	router.GET("/datasets/:id", datasetHandler.Get)
	router.POST("/datasets/upload", datasetHandler.Upload)
	router.PUT("/ml-models/:id", mlModelHandler.Update)
	env.router = router
	return env
}

func (env *testEnv) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	return rec
}

func decodeJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestCreateWorkspaceDerivesOwnerFromSession(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/workspaces", `{"name": "Churn Analysis"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	body := decodeJSON(t, rec)
	assert.Equal(t, float64(7), body["userId"])
	assert.Equal(t, "Churn Analysis", body["name"])
	assert.Nil(t, body["description"])
}

func TestCreateWorkspaceRejectsClientUserID(t *testing.T) {
	env := newTestEnv(t)

	for _, payload := range []string{
		`{"name": "w", "userId": 99}`,
		`{"name": "w", "user_id": 99}`,
	} {
		rec := env.do(t, http.MethodPost, "/workspaces", payload)
		require.Equal(t, http.StatusBadRequest, rec.Code, payload)
		assert.Equal(t, "USER_ID_NOT_ALLOWED", decodeJSON(t, rec)["code"], payload)
	}
	assert.Empty(t, env.workspaces.byID)
}

func TestCreateWorkspaceMissingName(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/workspaces", `{"description": "d"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "MISSING_NAME", decodeJSON(t, rec)["code"])
}

func TestUpdateWorkspaceNullDescriptionClears(t *testing.T) {
	env := newTestEnv(t)
	description := "old"
	workspace := &model.Workspace{UserID: env.userID, Name: "w", Description: &description}
	require.NoError(t, env.workspaces.Create(workspace))

	rec := env.do(t, http.MethodPut, "/workspaces/"+strconv.Itoa(int(workspace.ID)), `{"description": null}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, decodeJSON(t, rec)["description"])
}

func TestUpdateWorkspaceNoRecognizedFields(t *testing.T) {
	env := newTestEnv(t)
	workspace := &model.Workspace{UserID: env.userID, Name: "w"}
	require.NoError(t, env.workspaces.Create(workspace))

	rec := env.do(t, http.MethodPut, "/workspaces/"+strconv.Itoa(int(workspace.ID)), `{"unknown": 1}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "NO_FIELDS_TO_UPDATE", decodeJSON(t, rec)["code"])
}

func TestUpdateMLModelEmptyBody(t *testing.T) {
	env := newTestEnv(t)
	workspace := &model.Workspace{UserID: env.userID, Name: "w"}
	require.NoError(t, env.workspaces.Create(workspace))
	mlModel := &model.MLModel{WorkspaceID: workspace.ID, ModelName: "m", AlgorithmType: "svm"}
	require.NoError(t, env.mlModels.Create(mlModel))

	rec := env.do(t, http.MethodPut, "/ml-models/"+strconv.Itoa(int(mlModel.ID)), `{}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "NO_UPDATES", decodeJSON(t, rec)["code"])
}

func TestGetDatasetOwnedByAnotherUser(t *testing.T) {
	env := newTestEnv(t)
	foreign := &model.Workspace{UserID: env.userID + 1, Name: "theirs"}
	require.NoError(t, env.workspaces.Create(foreign))
	dataset := &model.Dataset{WorkspaceID: foreign.ID, Name: "d"}
	require.NoError(t, env.datasets.Create(dataset))

	rec := env.do(t, http.MethodGet, "/datasets/"+strconv.Itoa(int(dataset.ID)), "")
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "NOT_FOUND", decodeJSON(t, rec)["code"])
}

func TestUploadDatasetMultipart(t *testing.T) {
	env := newTestEnv(t)
	workspace := &model.Workspace{UserID: env.userID, Name: "w"}
	require.NoError(t, env.workspaces.Create(workspace))

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	require.NoError(t, writer.WriteField("workspaceId", strconv.Itoa(int(workspace.ID))))
	part, err := writer.CreateFormFile("file", "people.csv")
	require.NoError(t, err)
	_, err = part.Write([]byte("age,label\n30,yes\n41,no\n"))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/datasets/upload", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	body := decodeJSON(t, rec)
	assert.Equal(t, float64(2), body["rowCount"])
	assert.Equal(t, []interface{}{"age", "label"}, body["columns"])
	require.Len(t, env.datasets.byID, 1)
}

func TestUploadDatasetMissingFile(t *testing.T) {
	env := newTestEnv(t)
	workspace := &model.Workspace{UserID: env.userID, Name: "w"}
	require.NoError(t, env.workspaces.Create(workspace))

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	require.NoError(t, writer.WriteField("workspaceId", strconv.Itoa(int(workspace.ID))))
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/datasets/upload", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "MISSING_FILE", decodeJSON(t, rec)["code"])
}
