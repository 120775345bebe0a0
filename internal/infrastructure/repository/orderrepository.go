package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/rolegate/rolegate/internal/domain/order"
	vo "github.com/rolegate/rolegate/internal/domain/order/valueobjects"
	"github.com/rolegate/rolegate/internal/infrastructure/persistence/mappers"
	"github.com/rolegate/rolegate/internal/infrastructure/persistence/models"
	"github.com/rolegate/rolegate/internal/shared/db"
	apperrors "github.com/rolegate/rolegate/internal/shared/errors"
)

type OrderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

var _ order.Repository = (*OrderRepository)(nil)

func (r *OrderRepository) Create(ctx context.Context, o *order.Order) error {
	model, err := mappers.OrderToModel(o)
	if err != nil {
		return err
	}
	if err := db.GetTxFromContext(ctx, r.db).Create(model).Error; err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}
	return nil
}

func (r *OrderRepository) GetByOrderID(ctx context.Context, orderID string) (*order.Order, error) {
	var model models.OrderModel
	if err := db.GetTxFromContext(ctx, r.db).Where("order_id = ?", orderID).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	return mappers.OrderToDomain(&model)
}

// MarkPaid is a compare-and-set on status so that concurrent fulfillments
// across processes cannot both flip the same order.
func (r *OrderRepository) MarkPaid(ctx context.Context, orderID string, paidAt time.Time, callbackPayload map[string]string) (bool, error) {
	payload, err := mappers.EncodePayload(callbackPayload)
	if err != nil {
		return false, err
	}

	updates := map[string]any{
		"status":  vo.OrderStatusPaid.String(),
		"paid_at": paidAt.Unix(),
	}
	if payload != nil {
		updates["callback_payload"] = payload
	}

	result := db.GetTxFromContext(ctx, r.db).
		Model(&models.OrderModel{}).
		Where("order_id = ? AND status = ?", orderID, vo.OrderStatusPending.String()).
		Updates(updates)
	if result.Error != nil {
		return false, fmt.Errorf("failed to mark order paid: %w", result.Error)
	}
	return result.RowsAffected == 1, nil
}

func (r *OrderRepository) ListPendingBetween(ctx context.Context, from, to time.Time, limit int) ([]*order.Order, error) {
	var rows []models.OrderModel
	q := db.GetTxFromContext(ctx, r.db).
		Where("status = ? AND created_at >= ? AND created_at < ?", vo.OrderStatusPending.String(), from.Unix(), to.Unix()).
		Order("created_at ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list pending orders: %w", err)
	}

	orders := make([]*order.Order, 0, len(rows))
	for i := range rows {
		o, err := mappers.OrderToDomain(&rows[i])
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, nil
}
