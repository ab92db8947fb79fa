package database

import (
	"errors"
	"fmt"
	"strings"

	"github.com/yeremiapane/global-bites/models"
	"github.com/yeremiapane/global-bites/utils"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// AutoMigrate creates or updates every table the service owns.
func AutoMigrate(db *gorm.DB) error {
	if err := db.SetupJoinTable(&models.Menu{}, "Dishes", &models.MenuDish{}); err != nil {
		return fmt.Errorf("setup menu_dishes: %w", err)
	}
	if err := db.SetupJoinTable(&models.Dish{}, "Menus", &models.MenuDish{}); err != nil {
		return fmt.Errorf("setup menu_dishes: %w", err)
	}

	err := db.AutoMigrate(
		&models.User{},
		&models.Dish{},
		&models.Menu{},
		&models.MenuDish{},
		&models.Order{},
		&models.OrderItem{},
		&models.AIActionLog{},
	)
	if err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	utils.InfoLogger.Println("Database migration completed")
	return nil
}

// EnsureAdmin creates the bootstrap admin account when it does not exist yet.
func EnsureAdmin(db *gorm.DB, name, email, password string) (bool, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return false, nil
	}

	var existing models.User
	err := db.Where("email = ?", email).First(&existing).Error
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return false, err
	}

	admin := models.User{
		Name:     name,
		Email:    email,
		Password: string(hashed),
		Role:     models.RoleAdmin,
	}
	if err := db.Create(&admin).Error; err != nil {
		return false, err
	}

	utils.InfoLogger.Printf("Bootstrap admin created: %s", email)
	return true, nil
}
