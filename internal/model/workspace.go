package model

import "time"

// Workspace is the tenant root. Every other resource reaches its owner by
// walking foreign keys up to Workspace.UserID.
type Workspace struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"not null;index" json:"userId"`
	Name        string    `gorm:"size:128;not null" json:"name"`
	Description *string   `gorm:"size:1024" json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
