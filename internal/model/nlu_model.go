package model

import (
	"time"

	"gorm.io/datatypes"
)

type NLUModel struct {
	ID               uint           `gorm:"primaryKey" json:"id"`
	WorkspaceID      uint           `gorm:"not null;index" json:"workspaceId"`
	Name             string         `gorm:"size:256;not null" json:"name"`
	ModelPath        string         `gorm:"size:512" json:"modelPath"`
	Intents          datatypes.JSON `gorm:"type:json" json:"intents"`
	Entities         datatypes.JSON `gorm:"type:json" json:"entities"`
	TrainingDataPath string         `gorm:"size:512" json:"trainingDataPath"`
	Accuracy         float64        `json:"accuracy"`
	TrainedAt        time.Time      `json:"trainedAt"`
	UpdatedAt        time.Time      `json:"updatedAt"`
}
