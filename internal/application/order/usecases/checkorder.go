package usecases

import (
	"context"
	"errors"
	"fmt"

	"github.com/rolegate/rolegate/internal/application/payment/paymentgateway"
	"github.com/rolegate/rolegate/internal/domain/order"
	apperrors "github.com/rolegate/rolegate/internal/shared/errors"
	"github.com/rolegate/rolegate/internal/shared/logger"
)

type CheckOrderResult struct {
	OrderID string
	Paid    bool
	Fulfill *FulfillOrderResult
}

// CheckOrderUseCase asks the gateway whether a pending order was paid and
// fulfills it when it was. Only gateways implementing OrderQuerier support it.
type CheckOrderUseCase struct {
	orderRepo order.Repository
	gateway   paymentgateway.Gateway
	fulfill   *FulfillOrderUseCase
	logger    logger.Interface
}

func NewCheckOrderUseCase(
	orderRepo order.Repository,
	gateway paymentgateway.Gateway,
	fulfill *FulfillOrderUseCase,
	logger logger.Interface,
) *CheckOrderUseCase {
	return &CheckOrderUseCase{
		orderRepo: orderRepo,
		gateway:   gateway,
		fulfill:   fulfill,
		logger:    logger,
	}
}

func (uc *CheckOrderUseCase) Execute(ctx context.Context, orderID string) (*CheckOrderResult, error) {
	querier, ok := uc.gateway.(paymentgateway.OrderQuerier)
	if !ok {
		return nil, apperrors.ErrUnsupportedOperation
	}

	o, err := uc.orderRepo.GetByOrderID(ctx, orderID)
	if err != nil {
		if errors.Is(err, apperrors.ErrOrderNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	if o.IsPaid() {
		return &CheckOrderResult{
			OrderID: orderID,
			Paid:    true,
			Fulfill: &FulfillOrderResult{OrderID: orderID, AlreadyPaid: true},
		}, nil
	}

	paid, err := querier.QueryOrder(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to query order status: %w", err)
	}
	if !paid {
		uc.logger.Debugw("gateway reports order unpaid", "order_id", orderID)
		return &CheckOrderResult{OrderID: orderID}, nil
	}

	res, err := uc.fulfill.Execute(ctx, FulfillOrderCommand{OrderID: orderID, Source: SourceCheck})
	if err != nil {
		return nil, err
	}
	return &CheckOrderResult{OrderID: orderID, Paid: true, Fulfill: res}, nil
}
