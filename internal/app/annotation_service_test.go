package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nlustudio/internal/model"
)

type annotationFixture struct {
	svc         *AnnotationService
	workspaces  *fakeWorkspaceStore
	nluModels   *fakeNLUModelStore
	annotations *fakeAnnotationStore

	nluModel *model.NLUModel
}

func newAnnotationFixture(t *testing.T) *annotationFixture {
	t.Helper()

	workspaces := newFakeWorkspaceStore()
	datasets := newFakeDatasetStore(workspaces)
	mlModels := newFakeMLModelStore(workspaces)
	nluModels := newFakeNLUModelStore(workspaces)
	annotations := newFakeAnnotationStore(nluModels)
	chat := newFakeChatStore(workspaces)
	validator := NewOwnershipValidator(workspaces, datasets, mlModels, nluModels, annotations, chat)

	svc := NewAnnotationService(annotations, validator)

	workspace := &model.Workspace{UserID: ownerID, Name: "w"}
	require.NoError(t, workspaces.Create(workspace))
	nluModel := &model.NLUModel{WorkspaceID: workspace.ID, Name: "m"}
	require.NoError(t, nluModels.Create(nluModel))

	return &annotationFixture{
		svc:         svc,
		workspaces:  workspaces,
		nluModels:   nluModels,
		annotations: annotations,
		nluModel:    nluModel,
	}
}

func TestCreateAnnotationAttachesToModel(t *testing.T) {
	f := newAnnotationFixture(t)

	annotation, err := f.svc.Create(CreateAnnotationInput{
		UserID:     ownerID,
		NLUModelID: f.nluModel.ID,
		Text:       "  book me a flight  ",
		Intent:     "book_flight",
	})
	require.NoError(t, err)

	assert.Equal(t, "book me a flight", annotation.Text)
	require.NotNil(t, annotation.NLUModelID)
	assert.Equal(t, f.nluModel.ID, *annotation.NLUModelID)
}

func TestCreateAnnotationRequiresModelTextAndIntent(t *testing.T) {
	f := newAnnotationFixture(t)

	cases := []CreateAnnotationInput{
		{UserID: ownerID, Text: "t", Intent: "i"},
		{UserID: ownerID, NLUModelID: f.nluModel.ID, Intent: "i"},
		{UserID: ownerID, NLUModelID: f.nluModel.ID, Text: "t", Intent: "  "},
	}
	for i, input := range cases {
		_, err := f.svc.Create(input)
		assert.ErrorIs(t, err, ErrInvalidInput, "case %d", i)
	}
}

func TestCreateAnnotationOnForeignModel(t *testing.T) {
	f := newAnnotationFixture(t)

	_, err := f.svc.Create(CreateAnnotationInput{
		UserID:     strangerID,
		NLUModelID: f.nluModel.ID,
		Text:       "t",
		Intent:     "i",
	})
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestAnnotationOwnershipResolvesThroughModel(t *testing.T) {
	f := newAnnotationFixture(t)

	annotation, err := f.svc.Create(CreateAnnotationInput{
		UserID:     ownerID,
		NLUModelID: f.nluModel.ID,
		Text:       "t",
		Intent:     "i",
	})
	require.NoError(t, err)

	_, err = f.svc.Get(strangerID, annotation.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	got, err := f.svc.Get(ownerID, annotation.ID)
	require.NoError(t, err)
	assert.Equal(t, annotation.ID, got.ID)
}

func TestUpdateAnnotationRejectsBlankIntent(t *testing.T) {
	f := newAnnotationFixture(t)

	annotation, err := f.svc.Create(CreateAnnotationInput{
		UserID:     ownerID,
		NLUModelID: f.nluModel.ID,
		Text:       "t",
		Intent:     "i",
	})
	require.NoError(t, err)

	blank := " "
	_, err = f.svc.Update(ownerID, annotation.ID, UpdateAnnotationInput{Intent: &blank})
	assert.ErrorIs(t, err, ErrInvalidInput)
}
