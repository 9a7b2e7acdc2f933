package model

import "time"

type ChatMessage struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	ChatSessionID   uint      `gorm:"not null;index" json:"chatSessionId"`
	MessageText     string    `gorm:"type:text;not null" json:"messageText"`
	IsUser          bool      `gorm:"not null" json:"isUser"`
	IntentDetected  string    `gorm:"size:128" json:"intentDetected"`
	ConfidenceScore *float64  `json:"confidenceScore"`
	CreatedAt       time.Time `json:"createdAt"`
}
