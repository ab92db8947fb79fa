package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/yeremiapane/global-bites/models"
	"github.com/yeremiapane/global-bites/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type OrderFilter struct {
	Status *models.OrderStatus
}

type StatusCount struct {
	Status models.OrderStatus `json:"status"`
	Count  int64              `json:"count"`
}

type OrderRepository interface {
	CreateWithItems(ctx context.Context, order *models.Order, items []models.OrderItem) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	List(ctx context.Context, filter OrderFilter, page utils.Pagination) ([]models.Order, int64, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, expectedVersion int, status models.OrderStatus) (bool, error)
	ListBetween(ctx context.Context, start, end time.Time) ([]models.Order, error)
	CountByStatus(ctx context.Context) ([]StatusCount, error)
	Totals(ctx context.Context) (count int64, revenue decimal.Decimal, err error)
	Recent(ctx context.Context, limit int) ([]models.Order, error)
}

type GormOrderRepository struct {
	DB *gorm.DB
}

func NewOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{DB: db}
}

func preloadItems(db *gorm.DB) *gorm.DB {
	return db.Order("line_no ASC")
}

// CreateWithItems writes the header and its line items in one transaction.
func (r *GormOrderRepository) CreateWithItems(ctx context.Context, order *models.Order, items []models.OrderItem) error {
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(order).Error; err != nil {
			return err
		}

		for i := range items {
			items[i].OrderID = order.ID
			items[i].LineNo = i + 1
		}
		if err := tx.Omit(clause.Associations).Create(&items).Error; err != nil {
			return err
		}

		order.Items = items
		return nil
	})
	return translateError(err, "order")
}

func (r *GormOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.DB.WithContext(ctx).
		Preload("Items", preloadItems).
		First(&order, "id = ?", id).Error
	if err != nil {
		return nil, translateError(err, "order")
	}
	return &order, nil
}

func (r *GormOrderRepository) List(ctx context.Context, filter OrderFilter, page utils.Pagination) ([]models.Order, int64, error) {
	scope := func(db *gorm.DB) *gorm.DB {
		if filter.Status != nil {
			db = db.Where("status = ?", *filter.Status)
		}
		return db
	}

	var total int64
	if err := r.DB.WithContext(ctx).Model(&models.Order{}).Scopes(scope).Count(&total).Error; err != nil {
		return nil, 0, translateError(err, "orders")
	}

	var orders []models.Order
	err := r.DB.WithContext(ctx).
		Scopes(scope).
		Preload("Items", preloadItems).
		Order("created_at DESC").
		Offset(page.Offset()).
		Limit(page.PageSize).
		Find(&orders).Error
	if err != nil {
		return nil, 0, translateError(err, "orders")
	}
	return orders, total, nil
}

// UpdateStatus is a compare-and-swap on version. It reports false when the row was not at
// expectedVersion (or no longer exists).
func (r *GormOrderRepository) UpdateStatus(ctx context.Context, id uuid.UUID, expectedVersion int, status models.OrderStatus) (bool, error) {
	result := r.DB.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ? AND version = ?", id, expectedVersion).
		Updates(map[string]interface{}{
			"status":  status,
			"version": gorm.Expr("version + 1"),
		})
	if result.Error != nil {
		return false, translateError(result.Error, "order")
	}
	return result.RowsAffected == 1, nil
}

// ListBetween returns orders created in [start, end] with items and their dishes.
func (r *GormOrderRepository) ListBetween(ctx context.Context, start, end time.Time) ([]models.Order, error) {
	var orders []models.Order
	err := r.DB.WithContext(ctx).
		Preload("Items", preloadItems).
		Preload("Items.Dish").
		Where("created_at >= ? AND created_at <= ?", start.UTC(), end.UTC()).
		Order("created_at ASC").
		Find(&orders).Error
	if err != nil {
		return nil, translateError(err, "orders")
	}
	return orders, nil
}

func (r *GormOrderRepository) CountByStatus(ctx context.Context) ([]StatusCount, error) {
	var rows []StatusCount
	err := r.DB.WithContext(ctx).
		Model(&models.Order{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, translateError(err, "orders")
	}
	return rows, nil
}

func (r *GormOrderRepository) Totals(ctx context.Context) (int64, decimal.Decimal, error) {
	var count int64
	if err := r.DB.WithContext(ctx).Model(&models.Order{}).Count(&count).Error; err != nil {
		return 0, decimal.Zero, translateError(err, "orders")
	}

	var revenue decimal.NullDecimal
	row := r.DB.WithContext(ctx).Model(&models.Order{}).Select("SUM(total_price)").Row()
	if err := row.Scan(&revenue); err != nil {
		return 0, decimal.Zero, translateError(err, "orders")
	}
	if !revenue.Valid {
		return count, decimal.Zero, nil
	}
	return count, revenue.Decimal, nil
}

func (r *GormOrderRepository) Recent(ctx context.Context, limit int) ([]models.Order, error) {
	var orders []models.Order
	err := r.DB.WithContext(ctx).
		Preload("Items", preloadItems).
		Order("created_at DESC").
		Limit(limit).
		Find(&orders).Error
	if err != nil {
		return nil, translateError(err, "orders")
	}
	return orders, nil
}
