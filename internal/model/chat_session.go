package model

import "time"

type ChatSession struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	WorkspaceID uint       `gorm:"not null;index" json:"workspaceId"`
	NLUModelID  *uint      `gorm:"index" json:"nluModelId"`
	StartedAt   time.Time  `json:"startedAt"`
	EndedAt     *time.Time `json:"endedAt"`
}
