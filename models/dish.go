package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Dish struct {
	ID                    uuid.UUID                   `gorm:"type:varchar(36);primaryKey" json:"id"`
	Name                  string                      `gorm:"type:varchar(100);not null;index" json:"name"`
	Description           string                      `gorm:"type:text" json:"description"`
	Price                 decimal.Decimal             `gorm:"type:decimal(10,2);not null" json:"price"`
	ImageURL              string                      `gorm:"type:varchar(500)" json:"image_url"`
	Category              string                      `gorm:"type:varchar(50);not null;index" json:"category"`
	Active                bool                        `gorm:"not null;index" json:"active"`
	Pairing               string                      `gorm:"type:varchar(255)" json:"pairing"`
	IngredientSuggestions datatypes.JSONSlice[string] `json:"ingredient_suggestions"`
	Tags                  datatypes.JSONSlice[string] `json:"tags"`
	Menus                 []Menu                      `gorm:"many2many:menu_dishes;" json:"menus,omitempty"`
	CreatedAt             time.Time                   `gorm:"not null;index" json:"created_at"`
	UpdatedAt             time.Time                   `gorm:"not null" json:"updated_at"`
}

func (d *Dish) BeforeCreate(tx *gorm.DB) error {
	ensureID(&d.ID)
	return nil
}
