package model

import (
	"time"

	"gorm.io/datatypes"
)

// MLModel is one trained model. At most one model per workspace carries
// IsSelected; the exclusive-select update enforces that in a transaction.
type MLModel struct {
	ID               uint           `gorm:"primaryKey" json:"id"`
	WorkspaceID      uint           `gorm:"not null;index" json:"workspaceId"`
	DatasetID        uint           `gorm:"index" json:"datasetId"`
	ModelName        string         `gorm:"size:256;not null" json:"modelName"`
	AlgorithmType    string         `gorm:"size:64;not null" json:"algorithmType"`
	TargetColumn     string         `gorm:"size:128;not null" json:"targetColumn"`
	FeatureColumns   datatypes.JSON `gorm:"type:json" json:"featureColumns"`
	ModelFilePath    string         `gorm:"size:512" json:"modelFilePath"`
	Accuracy         float64        `json:"accuracy"`
	PrecisionScore   *float64       `json:"precisionScore"`
	RecallScore      *float64       `json:"recallScore"`
	F1Score          *float64       `json:"f1Score"`
	ConfusionMatrix  datatypes.JSON `gorm:"type:json" json:"confusionMatrix"`
	TrainingDuration int            `json:"trainingDuration"`
	IsSelected       bool           `gorm:"not null;default:false" json:"isSelected"`
	TrainedAt        time.Time      `json:"trainedAt"`
	UpdatedAt        time.Time      `json:"updatedAt"`
}
