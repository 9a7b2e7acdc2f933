package app

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"nlustudio/internal/model"
	"nlustudio/internal/pkg/datasetparse"
)

type DatasetService struct {
	store     DatasetStore
	validator *OwnershipValidator
	uploadDir string
}

type CreateDatasetInput struct {
	UserID      uint
	WorkspaceID uint
	Name        string
	FilePath    string
	FileFormat  string
	FileSize    int64
	RowCount    int
	ColumnCount int
	Columns     []string
}

type UploadDatasetInput struct {
	UserID      uint
	WorkspaceID uint
	FileName    string
	FileSize    int64
	Content     io.Reader
}

type UploadDatasetResult struct {
	Dataset     *model.Dataset           `json:"dataset"`
	Columns     []string                 `json:"columns"`
	RowCount    int                      `json:"rowCount"`
	ColumnCount int                      `json:"columnCount"`
	Preview     []map[string]interface{} `json:"preview"`
}

func NewDatasetService(store DatasetStore, validator *OwnershipValidator, uploadDir string) *DatasetService {
	return &DatasetService{
		store:     store,
		validator: validator,
		uploadDir: uploadDir,
	}
}

func (s *DatasetService) List(userID, workspaceID uint, search string, limit, offset int) ([]model.Dataset, error) {
	ownership, err := s.validator.Workspace(workspaceID, userID)
	if err != nil {
		return nil, err
	}
	if err := scoped(ownership); err != nil {
		return nil, err
	}
	return s.store.ListByWorkspaceID(workspaceID, search, limit, offset)
}

func (s *DatasetService) Create(input CreateDatasetInput) (*model.Dataset, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" || input.WorkspaceID == 0 {
		return nil, ErrInvalidInput
	}

	ownership, err := s.validator.Workspace(input.WorkspaceID, input.UserID)
	if err != nil {
		return nil, err
	}
	if err := scoped(ownership); err != nil {
		return nil, err
	}

	dataset := &model.Dataset{
		WorkspaceID: input.WorkspaceID,
		Name:        name,
		FilePath:    input.FilePath,
		FileFormat:  input.FileFormat,
		FileSize:    input.FileSize,
		RowCount:    input.RowCount,
		ColumnCount: input.ColumnCount,
		UploadedAt:  time.Now(),
	}
	if err := setJSONField(&dataset.Columns, input.Columns); err != nil {
		return nil, err
	}
	if err := s.store.Create(dataset); err != nil {
		return nil, err
	}
	return dataset, nil
}

// Upload stores the raw file under the upload dir, parses it by extension,
// and persists the dataset with the derived shape.
func (s *DatasetService) Upload(input UploadDatasetInput) (*UploadDatasetResult, error) {
	if input.WorkspaceID == 0 || strings.TrimSpace(input.FileName) == "" {
		return nil, ErrInvalidInput
	}

	ownership, err := s.validator.Workspace(input.WorkspaceID, input.UserID)
	if err != nil {
		return nil, err
	}
	if err := scoped(ownership); err != nil {
		return nil, err
	}

	format, err := datasetparse.DetectFormat(input.FileName)
	if err != nil {
		return nil, ErrInvalidInput
	}

	destDir := filepath.Join(s.uploadDir, fmt.Sprintf("%d", input.WorkspaceID))
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir failed: %w", err)
	}
	destPath := filepath.Join(destDir, uuid.NewString()+filepath.Ext(input.FileName))

	destFile, err := os.Create(destPath)
	if err != nil {
		return nil, fmt.Errorf("create upload file failed: %w", err)
	}
	defer destFile.Close()

	if _, err := io.Copy(destFile, input.Content); err != nil {
		return nil, fmt.Errorf("write upload file failed: %w", err)
	}
	if _, err := destFile.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("rewind upload file failed: %w", err)
	}

	parsed, err := datasetparse.Parse(destFile, format)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	dataset, err := s.Create(CreateDatasetInput{
		UserID:      input.UserID,
		WorkspaceID: input.WorkspaceID,
		Name:        input.FileName,
		FilePath:    destPath,
		FileFormat:  format,
		FileSize:    input.FileSize,
		RowCount:    parsed.RowCount,
		ColumnCount: parsed.ColumnCount,
		Columns:     parsed.Columns,
	})
	if err != nil {
		return nil, err
	}

	return &UploadDatasetResult{
		Dataset:     dataset,
		Columns:     parsed.Columns,
		RowCount:    parsed.RowCount,
		ColumnCount: parsed.ColumnCount,
		Preview:     parsed.Preview,
	}, nil
}

func (s *DatasetService) Get(userID, id uint) (*model.Dataset, error) {
	ownership, err := s.validator.Dataset(id, userID)
	if err != nil {
		return nil, err
	}
	if err := foldToNotFound(ownership); err != nil {
		return nil, err
	}
	dataset, err := s.store.GetByID(id)
	if err != nil {
		return nil, err
	}
	if dataset == nil {
		return nil, ErrNotFound
	}
	return dataset, nil
}

func (s *DatasetService) Delete(userID, id uint) (*model.Dataset, error) {
	dataset, err := s.Get(userID, id)
	if err != nil {
		return nil, err
	}
	if err := s.store.Delete(id); err != nil {
		return nil, err
	}
	return dataset, nil
}
