package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/yeremiapane/global-bites/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type MenuRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Menu, error)
	List(ctx context.Context, activeOnly bool) ([]models.Menu, error)
	Create(ctx context.Context, menu *models.Menu) error
	Update(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error
	AttachDish(ctx context.Context, menuID, dishID uuid.UUID) error
	DetachDish(ctx context.Context, menuID, dishID uuid.UUID) error
	ListDishes(ctx context.Context, menuID uuid.UUID, activeOnly bool) ([]models.Dish, error)
}

type GormMenuRepository struct {
	DB *gorm.DB
}

func NewMenuRepository(db *gorm.DB) *GormMenuRepository {
	return &GormMenuRepository{DB: db}
}

func (r *GormMenuRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Menu, error) {
	var menu models.Menu
	if err := r.DB.WithContext(ctx).First(&menu, "id = ?", id).Error; err != nil {
		return nil, translateError(err, "menu")
	}
	return &menu, nil
}

func (r *GormMenuRepository) List(ctx context.Context, activeOnly bool) ([]models.Menu, error) {
	var menus []models.Menu
	db := r.DB.WithContext(ctx)
	if activeOnly {
		db = db.Where("active = ?", true)
	}
	if err := db.Order("name ASC").Find(&menus).Error; err != nil {
		return nil, translateError(err, "menus")
	}
	return menus, nil
}

func (r *GormMenuRepository) Create(ctx context.Context, menu *models.Menu) error {
	return translateError(r.DB.WithContext(ctx).Omit("Dishes").Create(menu).Error, "menu")
}

// Update also serves soft deletion: {"active": false}.
func (r *GormMenuRepository) Update(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}
	err := r.DB.WithContext(ctx).Model(&models.Menu{}).Where("id = ?", id).Updates(fields).Error
	return translateError(err, "menu")
}

// AttachDish links a dish to a menu. Linking twice is a no-op.
func (r *GormMenuRepository) AttachDish(ctx context.Context, menuID, dishID uuid.UUID) error {
	link := models.MenuDish{MenuID: menuID, DishID: dishID}
	err := r.DB.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&link).Error
	return translateError(err, "menu dish")
}

func (r *GormMenuRepository) DetachDish(ctx context.Context, menuID, dishID uuid.UUID) error {
	err := r.DB.WithContext(ctx).
		Where("menu_id = ? AND dish_id = ?", menuID, dishID).
		Delete(&models.MenuDish{}).Error
	return translateError(err, "menu dish")
}

func (r *GormMenuRepository) ListDishes(ctx context.Context, menuID uuid.UUID, activeOnly bool) ([]models.Dish, error) {
	var dishes []models.Dish
	db := r.DB.WithContext(ctx).
		Joins("JOIN menu_dishes ON menu_dishes.dish_id = dishes.id").
		Where("menu_dishes.menu_id = ?", menuID)
	if activeOnly {
		db = db.Where("dishes.active = ?", true)
	}
	if err := db.Order("dishes.name ASC").Find(&dishes).Error; err != nil {
		return nil, translateError(err, "dishes")
	}
	return dishes, nil
}
