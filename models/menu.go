package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Menu is a named grouping of dishes, e.g. "Lunch Menu".
type Menu struct {
	ID          uuid.UUID `gorm:"type:varchar(36);primaryKey" json:"id"`
	Name        string    `gorm:"type:varchar(50);not null" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	Active      bool      `gorm:"not null;index" json:"active"`
	Dishes      []Dish    `gorm:"many2many:menu_dishes;" json:"dishes,omitempty"`
	CreatedAt   time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time `gorm:"not null" json:"updated_at"`
}

func (m *Menu) BeforeCreate(tx *gorm.DB) error {
	ensureID(&m.ID)
	return nil
}
