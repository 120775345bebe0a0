package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	planvo "github.com/rolegate/rolegate/internal/domain/plan/valueobjects"
	"github.com/rolegate/rolegate/internal/domain/subscription"
	"github.com/rolegate/rolegate/internal/infrastructure/persistence/mappers"
	"github.com/rolegate/rolegate/internal/infrastructure/persistence/models"
	"github.com/rolegate/rolegate/internal/shared/db"
	apperrors "github.com/rolegate/rolegate/internal/shared/errors"
)

type SubscriptionRepository struct {
	db *gorm.DB
}

func NewSubscriptionRepository(db *gorm.DB) *SubscriptionRepository {
	return &SubscriptionRepository{db: db}
}

var _ subscription.Repository = (*SubscriptionRepository)(nil)

func (r *SubscriptionRepository) Create(ctx context.Context, s *subscription.Subscription) error {
	model := mappers.SubscriptionToModel(s)
	if err := db.GetTxFromContext(ctx, r.db).Create(model).Error; err != nil {
		return fmt.Errorf("failed to create subscription: %w", err)
	}
	s.SetID(model.ID)
	return nil
}

func (r *SubscriptionRepository) ListExpired(ctx context.Context, now time.Time) ([]*subscription.Subscription, error) {
	var rows []models.SubscriptionModel
	if err := db.GetTxFromContext(ctx, r.db).
		Where("expire_date != ? AND expire_date < ?", planvo.ForeverExpiry, now.Unix()).
		Order("expire_date ASC").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list expired subscriptions: %w", err)
	}
	return toSubscriptions(rows), nil
}

func (r *SubscriptionRepository) ListByUser(ctx context.Context, userID string) ([]*subscription.Subscription, error) {
	var rows []models.SubscriptionModel
	if err := db.GetTxFromContext(ctx, r.db).
		Where("user_id = ?", userID).
		Order("id ASC").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list subscriptions: %w", err)
	}
	return toSubscriptions(rows), nil
}

func (r *SubscriptionRepository) Delete(ctx context.Context, id uint) error {
	result := db.GetTxFromContext(ctx, r.db).Delete(&models.SubscriptionModel{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete subscription: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrSubscriptionNotFound
	}
	return nil
}

func toSubscriptions(rows []models.SubscriptionModel) []*subscription.Subscription {
	subs := make([]*subscription.Subscription, 0, len(rows))
	for i := range rows {
		subs = append(subs, mappers.SubscriptionToDomain(&rows[i]))
	}
	return subs
}
