package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type AIAction string

const (
	AIActionGenerated AIAction = "generated"
	AIActionApplied   AIAction = "applied"
	AIActionDiscarded AIAction = "discarded"
)

func ParseAIAction(value string) (AIAction, bool) {
	switch AIAction(value) {
	case AIActionGenerated, AIActionApplied, AIActionDiscarded:
		return AIAction(value), true
	}
	return "", false
}

// AIActionLog is an append-only audit row. There is no update path.
type AIActionLog struct {
	ID        uuid.UUID         `gorm:"type:varchar(36);primaryKey" json:"id"`
	Action    AIAction          `gorm:"type:varchar(20);not null;index" json:"action"`
	DishID    *uuid.UUID        `gorm:"type:varchar(36);index" json:"dish_id"`
	Metadata  datatypes.JSONMap `json:"metadata"`
	CreatedAt time.Time         `gorm:"not null;index" json:"created_at"`
}

func (l *AIActionLog) BeforeCreate(tx *gorm.DB) error {
	ensureID(&l.ID)
	return nil
}
