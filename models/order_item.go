package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// OrderItem is immutable once written. UnitPrice and DishName are captured at order time.
type OrderItem struct {
	ID        uuid.UUID       `gorm:"type:varchar(36);primaryKey" json:"id"`
	OrderID   uuid.UUID       `gorm:"type:varchar(36);not null;index" json:"order_id"`
	DishID    *uuid.UUID      `gorm:"type:varchar(36);index" json:"dish_id"`
	Dish      *Dish           `gorm:"foreignKey:DishID;constraint:OnDelete:SET NULL" json:"dish,omitempty"`
	DishName  string          `gorm:"type:varchar(100);not null" json:"dish_name"`
	LineNo    int             `gorm:"not null" json:"line_no"`
	Quantity  int             `gorm:"not null" json:"quantity"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"unit_price"`
	CreatedAt time.Time       `gorm:"not null" json:"created_at"`
}

func (i *OrderItem) BeforeCreate(tx *gorm.DB) error {
	ensureID(&i.ID)
	return nil
}

func (i OrderItem) LineTotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}
