package repository

import (
	"context"
	"fmt"
	"time"

	"mindcare-go/internal/models"

	"gorm.io/gorm"
)

// FollowUpRepository persists scheduled follow-up check-ins.
type FollowUpRepository struct {
	db *gorm.DB
}

func NewFollowUpRepository(db *gorm.DB) *FollowUpRepository {
	return &FollowUpRepository{db: db}
}

func (r *FollowUpRepository) Create(ctx context.Context, f *models.FollowUp) error {
	if err := r.db.WithContext(ctx).Create(f).Error; err != nil {
		return fmt.Errorf("failed to create follow-up: %w", err)
	}
	return nil
}

// Due returns undelivered follow-ups scheduled at or before now, oldest first.
func (r *FollowUpRepository) Due(ctx context.Context, now time.Time) ([]models.FollowUp, error) {
	var due []models.FollowUp
	err := r.db.WithContext(ctx).
		Where("delivered = ? AND scheduled_for <= ?", false, now).
		Order("scheduled_for ASC").
		Find(&due).Error
	return due, err
}

// MarkDelivered flags a follow-up as sent. It returns ErrNotFound when no
// undelivered follow-up has that id.
func (r *FollowUpRepository) MarkDelivered(ctx context.Context, id string, at time.Time) error {
	res := r.db.WithContext(ctx).Model(&models.FollowUp{}).
		Where("id = ? AND delivered = ?", id, false).
		Updates(map[string]interface{}{"delivered": true, "delivered_at": at})
	if res.Error != nil {
		return fmt.Errorf("failed to mark follow-up %s delivered: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
