package model

import "time"

type TrainingHistory struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	MLModelID     uint      `gorm:"not null;index" json:"mlModelId"`
	EpochNumber   int       `gorm:"not null" json:"epochNumber"`
	LossValue     float64   `json:"lossValue"`
	AccuracyValue float64   `json:"accuracyValue"`
	CreatedAt     time.Time `json:"createdAt"`
}
