package model

import (
	"time"

	"gorm.io/datatypes"
)

// Annotation is one labeled training utterance. The API always writes
// annotations under an NLU model; ownership resolves through that model.
type Annotation struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	NLUModelID *uint          `gorm:"index" json:"nluModelId"`
	Text       string         `gorm:"type:text;not null" json:"text"`
	Intent     string         `gorm:"size:128" json:"intent"`
	Entities   datatypes.JSON `gorm:"type:json" json:"entities"`
	CreatedAt  time.Time      `json:"createdAt"`
	UpdatedAt  time.Time      `json:"updatedAt"`
}
