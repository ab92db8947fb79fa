// Package testutil provides isolated in-memory databases and fixtures for tests.
package testutil

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/yeremiapane/global-bites/database"
	"github.com/yeremiapane/global-bites/models"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDB returns a fresh, migrated SQLite database private to the calling test.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		NowFunc: func() time.Time { return time.Now().UTC() },
		Logger:  logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	// One connection keeps the in-memory database alive and serialises access.
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return db
}

// CreateDish inserts a dish with the given price, e.g. "12.50".
func CreateDish(t testing.TB, db *gorm.DB, name, category, price string, active bool) models.Dish {
	t.Helper()

	dish := models.Dish{
		Name:                  name,
		Category:              category,
		Price:                 decimal.RequireFromString(price),
		Active:                active,
		Tags:                  datatypes.JSONSlice[string]{},
		IngredientSuggestions: datatypes.JSONSlice[string]{},
	}
	if err := db.Create(&dish).Error; err != nil {
		t.Fatalf("failed to create dish %s: %v", name, err)
	}
	return dish
}

func CreateMenu(t testing.TB, db *gorm.DB, name string, active bool) models.Menu {
	t.Helper()

	menu := models.Menu{Name: name, Active: active}
	if err := db.Create(&menu).Error; err != nil {
		t.Fatalf("failed to create menu %s: %v", name, err)
	}
	return menu
}

// CreateOrder writes an order directly, bypassing pricing, for report fixtures.
func CreateOrder(t testing.TB, db *gorm.DB, status models.OrderStatus, createdAt time.Time, items ...models.OrderItem) models.Order {
	t.Helper()

	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.LineTotal())
	}
	order := models.Order{
		TotalPrice: total,
		Status:     status,
		Version:    1,
		CreatedAt:  createdAt.UTC(),
		UpdatedAt:  createdAt.UTC(),
	}
	if err := db.Omit("Items").Create(&order).Error; err != nil {
		t.Fatalf("failed to create order: %v", err)
	}
	for i := range items {
		items[i].OrderID = order.ID
		items[i].CreatedAt = createdAt.UTC()
	}
	if len(items) > 0 {
		if err := db.Create(&items).Error; err != nil {
			t.Fatalf("failed to create order items: %v", err)
		}
	}
	order.Items = items
	return order
}
