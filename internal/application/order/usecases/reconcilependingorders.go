package usecases

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rolegate/rolegate/internal/domain/order"
	"github.com/rolegate/rolegate/internal/shared/biztime"
	apperrors "github.com/rolegate/rolegate/internal/shared/errors"
	"github.com/rolegate/rolegate/internal/shared/logger"
)

const (
	reconcileWindow = 24 * time.Hour
	// orders younger than this are left to the webhook
	reconcileMinAge = 2 * time.Minute
	reconcileBatch  = 100
)

// ReconcilePendingOrdersUseCase polls the gateway for recent pending orders,
// catching payments whose notification never arrived. It only runs against
// gateways that support order queries.
type ReconcilePendingOrdersUseCase struct {
	orderRepo order.Repository
	check     *CheckOrderUseCase
	clock     biztime.Clock
	logger    logger.Interface
}

func NewReconcilePendingOrdersUseCase(
	orderRepo order.Repository,
	check *CheckOrderUseCase,
	clock biztime.Clock,
	logger logger.Interface,
) *ReconcilePendingOrdersUseCase {
	return &ReconcilePendingOrdersUseCase{
		orderRepo: orderRepo,
		check:     check,
		clock:     clock,
		logger:    logger,
	}
}

// Execute returns the number of orders fulfilled by this run.
func (uc *ReconcilePendingOrdersUseCase) Execute(ctx context.Context) (int, error) {
	now := uc.clock.Now()
	pending, err := uc.orderRepo.ListPendingBetween(ctx, now.Add(-reconcileWindow), now.Add(-reconcileMinAge), reconcileBatch)
	if err != nil {
		return 0, fmt.Errorf("failed to list pending orders: %w", err)
	}

	fulfilled := 0
	for _, o := range pending {
		if ctx.Err() != nil {
			return fulfilled, ctx.Err()
		}
		res, err := uc.check.Execute(ctx, o.OrderID())
		if err != nil {
			if errors.Is(err, apperrors.ErrUnsupportedOperation) {
				return 0, err
			}
			uc.logger.Warnw("failed to reconcile pending order",
				"order_id", o.OrderID(),
				"error", err,
			)
			continue
		}
		if res.Paid && res.Fulfill != nil && !res.Fulfill.AlreadyPaid {
			fulfilled++
		}
	}
	return fulfilled, nil
}
