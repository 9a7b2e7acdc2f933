package model

import (
	"time"

	"gorm.io/datatypes"
)

type Dataset struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	WorkspaceID uint           `gorm:"not null;index" json:"workspaceId"`
	Name        string         `gorm:"size:256;not null" json:"name"`
	FilePath    string         `gorm:"size:512" json:"filePath"`
	FileFormat  string         `gorm:"size:16" json:"fileFormat"`
	FileSize    int64          `json:"fileSize"`
	RowCount    int            `json:"rowCount"`
	ColumnCount int            `json:"columnCount"`
	Columns     datatypes.JSON `gorm:"type:json" json:"columns"`
	UploadedAt  time.Time      `json:"uploadedAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
}
