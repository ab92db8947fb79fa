package repositories

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/yeremiapane/global-bites/models"
	"github.com/yeremiapane/global-bites/utils"
	"gorm.io/gorm"
)

type DishFilter struct {
	Active   *bool
	Category string
	Search   string
	// ActiveMenusOnly hides soft-deleted menus from the preloaded Menus.
	ActiveMenusOnly bool
}

var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

// containsPattern builds a LIKE pattern for use with ESCAPE '!'.
func containsPattern(term string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(strings.TrimSpace(term))) + "%"
}

type CategoryCount struct {
	Category string `json:"category"`
	Count    int64  `json:"count"`
}

type DishRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Dish, error)
	List(ctx context.Context, filter DishFilter, page utils.Pagination) ([]models.Dish, int64, error)
	ListActive(ctx context.Context) ([]models.Dish, error)
	SearchByName(ctx context.Context, query string, limit int) ([]models.Dish, error)
	Create(ctx context.Context, dish *models.Dish) error
	Update(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error
	Delete(ctx context.Context, id uuid.UUID) error
	CountByCategory(ctx context.Context) ([]CategoryCount, error)
	CountByActive(ctx context.Context) (active int64, archived int64, err error)
}

type GormDishRepository struct {
	DB *gorm.DB
}

func NewDishRepository(db *gorm.DB) *GormDishRepository {
	return &GormDishRepository{DB: db}
}

func (r *GormDishRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Dish, error) {
	var dish models.Dish
	if err := r.DB.WithContext(ctx).First(&dish, "id = ?", id).Error; err != nil {
		return nil, translateError(err, "dish")
	}
	return &dish, nil
}

func dishFilterScope(filter DishFilter) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if filter.Active != nil {
			db = db.Where("active = ?", *filter.Active)
		}
		if category := strings.TrimSpace(filter.Category); category != "" {
			db = db.Where("LOWER(category) = ?", strings.ToLower(category))
		}
		if search := strings.TrimSpace(filter.Search); search != "" {
			like := containsPattern(search)
			db = db.Where("(LOWER(name) LIKE ? ESCAPE '!' OR LOWER(category) LIKE ? ESCAPE '!')", like, like)
		}
		return db
	}
}

// List returns one page of dishes, newest first, and the total number of matches.
func (r *GormDishRepository) List(ctx context.Context, filter DishFilter, page utils.Pagination) ([]models.Dish, int64, error) {
	var total int64
	scope := dishFilterScope(filter)

	if err := r.DB.WithContext(ctx).Model(&models.Dish{}).Scopes(scope).Count(&total).Error; err != nil {
		return nil, 0, translateError(err, "dishes")
	}

	menus := r.DB.WithContext(ctx)
	if filter.ActiveMenusOnly {
		menus = menus.Preload("Menus", "active = ?", true)
	} else {
		menus = menus.Preload("Menus")
	}

	var dishes []models.Dish
	err := menus.
		Scopes(scope).
		Order("created_at DESC").
		Order("name ASC").
		Offset(page.Offset()).
		Limit(page.PageSize).
		Find(&dishes).Error
	if err != nil {
		return nil, 0, translateError(err, "dishes")
	}
	return dishes, total, nil
}

func (r *GormDishRepository) ListActive(ctx context.Context) ([]models.Dish, error) {
	var dishes []models.Dish
	err := r.DB.WithContext(ctx).
		Where("active = ?", true).
		Order("category ASC").
		Order("name ASC").
		Find(&dishes).Error
	if err != nil {
		return nil, translateError(err, "dishes")
	}
	return dishes, nil
}

// SearchByName matches active dishes whose name contains query, ignoring case.
func (r *GormDishRepository) SearchByName(ctx context.Context, query string, limit int) ([]models.Dish, error) {
	var dishes []models.Dish
	err := r.DB.WithContext(ctx).
		Where("active = ?", true).
		Where("LOWER(name) LIKE ? ESCAPE '!'", containsPattern(query)).
		Order("name ASC").
		Limit(limit).
		Find(&dishes).Error
	if err != nil {
		return nil, translateError(err, "dishes")
	}
	return dishes, nil
}

func (r *GormDishRepository) Create(ctx context.Context, dish *models.Dish) error {
	return translateError(r.DB.WithContext(ctx).Omit("Menus").Create(dish).Error, "dish")
}

func (r *GormDishRepository) Update(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}
	result := r.DB.WithContext(ctx).Model(&models.Dish{}).Where("id = ?", id).Updates(fields)
	if result.Error != nil {
		return translateError(result.Error, "dish")
	}
	return nil
}

// Delete removes the dish for good. Menu links are dropped and past order items keep
// their snapshot with a NULL dish reference.
func (r *GormDishRepository) Delete(ctx context.Context, id uuid.UUID) error {
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("dish_id = ?", id).Delete(&models.MenuDish{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.OrderItem{}).Where("dish_id = ?", id).Update("dish_id", nil).Error; err != nil {
			return err
		}
		result := tx.Where("id = ?", id).Delete(&models.Dish{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	return translateError(err, "dish")
}

func (r *GormDishRepository) CountByCategory(ctx context.Context) ([]CategoryCount, error) {
	var rows []CategoryCount
	err := r.DB.WithContext(ctx).
		Model(&models.Dish{}).
		Select("category, COUNT(*) AS count").
		Group("category").
		Order("count DESC").
		Order("category ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, translateError(err, "dishes")
	}
	return rows, nil
}

func (r *GormDishRepository) CountByActive(ctx context.Context) (int64, int64, error) {
	var active, archived int64
	db := r.DB.WithContext(ctx).Model(&models.Dish{})
	if err := db.Where("active = ?", true).Count(&active).Error; err != nil {
		return 0, 0, translateError(err, "dishes")
	}
	if err := r.DB.WithContext(ctx).Model(&models.Dish{}).Where("active = ?", false).Count(&archived).Error; err != nil {
		return 0, 0, translateError(err, "dishes")
	}
	return active, archived, nil
}
