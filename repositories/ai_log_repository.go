package repositories

import (
	"context"
	"time"

	"github.com/yeremiapane/global-bites/models"
	"gorm.io/gorm"
)

type ActionCount struct {
	Action models.AIAction `json:"action"`
	Count  int64           `json:"count"`
}

// AILogRepository is append-only: there is deliberately no update or delete.
type AILogRepository interface {
	Create(ctx context.Context, log *models.AIActionLog) error
	CountByAction(ctx context.Context, start, end time.Time) ([]ActionCount, error)
	ListBetween(ctx context.Context, start, end time.Time, limit int) ([]models.AIActionLog, error)
}

type GormAILogRepository struct {
	DB *gorm.DB
}

func NewAILogRepository(db *gorm.DB) *GormAILogRepository {
	return &GormAILogRepository{DB: db}
}

func (r *GormAILogRepository) Create(ctx context.Context, log *models.AIActionLog) error {
	return translateError(r.DB.WithContext(ctx).Create(log).Error, "ai action log")
}

func (r *GormAILogRepository) CountByAction(ctx context.Context, start, end time.Time) ([]ActionCount, error) {
	var rows []ActionCount
	err := r.DB.WithContext(ctx).
		Model(&models.AIActionLog{}).
		Select("action, COUNT(*) AS count").
		Where("created_at >= ? AND created_at <= ?", start.UTC(), end.UTC()).
		Group("action").
		Scan(&rows).Error
	if err != nil {
		return nil, translateError(err, "ai action logs")
	}
	return rows, nil
}

// ListBetween returns the newest logs first.
func (r *GormAILogRepository) ListBetween(ctx context.Context, start, end time.Time, limit int) ([]models.AIActionLog, error) {
	var logs []models.AIActionLog
	err := r.DB.WithContext(ctx).
		Where("created_at >= ? AND created_at <= ?", start.UTC(), end.UTC()).
		Order("created_at DESC").
		Limit(limit).
		Find(&logs).Error
	if err != nil {
		return nil, translateError(err, "ai action logs")
	}
	return logs, nil
}
