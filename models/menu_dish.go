package models

import (
	"time"

	"github.com/google/uuid"
)

// MenuDish is the join row between Menu and Dish.
type MenuDish struct {
	MenuID    uuid.UUID `gorm:"type:varchar(36);primaryKey" json:"menu_id"`
	DishID    uuid.UUID `gorm:"type:varchar(36);primaryKey" json:"dish_id"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

func (MenuDish) TableName() string {
	return "menu_dishes"
}
