package usecases

import (
	"context"

	"github.com/rolegate/rolegate/internal/domain/order"
	apperrors "github.com/rolegate/rolegate/internal/shared/errors"
)

type GetOrderUseCase struct {
	orderRepo order.Repository
}

func NewGetOrderUseCase(orderRepo order.Repository) *GetOrderUseCase {
	return &GetOrderUseCase{orderRepo: orderRepo}
}

func (uc *GetOrderUseCase) Execute(ctx context.Context, orderID string) (*order.Order, error) {
	if orderID == "" {
		return nil, apperrors.NewValidationError("order id is required")
	}
	return uc.orderRepo.GetByOrderID(ctx, orderID)
}
