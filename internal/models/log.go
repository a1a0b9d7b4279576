package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AuditLog keeps the history of admin mutations.
type AuditLog struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID     uuid.UUID `gorm:"type:uuid;index" json:"userId"`
	Action     string    `gorm:"size:32" json:"action"`     // "create", "update", "delete", "reorder"
	EntityType string    `gorm:"size:32" json:"entityType"` // "course", "category", ...
	EntityID   string    `gorm:"size:64" json:"entityId"`
	Details    string    `json:"details"`
	CreatedAt  time.Time `gorm:"index" json:"createdAt"`
}

func (l *AuditLog) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}
