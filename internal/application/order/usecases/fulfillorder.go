package usecases

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/rolegate/rolegate/internal/application/entitlement"
	"github.com/rolegate/rolegate/internal/domain/order"
	"github.com/rolegate/rolegate/internal/domain/plan"
	"github.com/rolegate/rolegate/internal/domain/subscription"
	"github.com/rolegate/rolegate/internal/shared/biztime"
	apperrors "github.com/rolegate/rolegate/internal/shared/errors"
	"github.com/rolegate/rolegate/internal/shared/logger"
)

// Fulfillment sources, used in logs.
const (
	SourceWebhook = "webhook"
	SourceAdmin   = "admin"
	SourceCheck   = "check"
)

type FulfillOrderCommand struct {
	OrderID string
	Source  string
	// CallbackPayload and ReportedAmount come from a verified gateway
	// notification and are kept for audit only.
	CallbackPayload map[string]string
	ReportedAmount  decimal.Decimal
}

type FulfillOrderResult struct {
	OrderID      string
	AlreadyPaid  bool
	Subscription *subscription.Subscription
}

// FulfillOrderUseCase grants the plan's role for a pending order and records
// the payment. It is idempotent per order id.
type FulfillOrderUseCase struct {
	orderRepo        order.Repository
	planRepo         plan.Repository
	subscriptionRepo subscription.Repository
	actor            entitlement.Actor
	locker           OrderLocker
	tx               TransactionRunner
	clock            biztime.Clock
	notifier         FailureNotifier
	metrics          LifecycleMetrics
	logger           logger.Interface
}

func NewFulfillOrderUseCase(
	orderRepo order.Repository,
	planRepo plan.Repository,
	subscriptionRepo subscription.Repository,
	actor entitlement.Actor,
	locker OrderLocker,
	tx TransactionRunner,
	clock biztime.Clock,
	logger logger.Interface,
) *FulfillOrderUseCase {
	return &FulfillOrderUseCase{
		orderRepo:        orderRepo,
		planRepo:         planRepo,
		subscriptionRepo: subscriptionRepo,
		actor:            actor,
		locker:           locker,
		tx:               tx,
		clock:            clock,
		logger:           logger,
	}
}

// SetFailureNotifier sets the administrator notifier (optional).
func (uc *FulfillOrderUseCase) SetFailureNotifier(n FailureNotifier) {
	uc.notifier = n
}

// SetMetrics sets the metrics recorder (optional).
func (uc *FulfillOrderUseCase) SetMetrics(m LifecycleMetrics) {
	uc.metrics = m
}

func (uc *FulfillOrderUseCase) Execute(ctx context.Context, cmd FulfillOrderCommand) (*FulfillOrderResult, error) {
	if cmd.OrderID == "" {
		return nil, apperrors.NewValidationError("order id is required")
	}

	release, err := uc.locker.Lock(ctx, cmd.OrderID)
	if err != nil {
		uc.record(OutcomeError)
		return nil, fmt.Errorf("failed to lock order %s: %w", cmd.OrderID, err)
	}
	defer release()

	result, userID, err := uc.fulfill(ctx, cmd)
	if err != nil {
		uc.record(outcomeOf(err))
		uc.logger.Errorw("order fulfillment failed, order left pending",
			"order_id", cmd.OrderID,
			"source", cmd.Source,
			"error", err,
		)
		if uc.notifier != nil && !errors.Is(err, apperrors.ErrOrderNotFound) {
			uc.notifier.NotifyFulfillmentFailure(ctx, cmd.OrderID, userID, err)
		}
		return nil, err
	}

	if result.AlreadyPaid {
		uc.record(OutcomeAlreadyPaid)
	} else {
		uc.record(OutcomeFulfilled)
	}
	return result, nil
}

func (uc *FulfillOrderUseCase) fulfill(ctx context.Context, cmd FulfillOrderCommand) (*FulfillOrderResult, string, error) {
	o, err := uc.orderRepo.GetByOrderID(ctx, cmd.OrderID)
	if err != nil {
		if errors.Is(err, apperrors.ErrOrderNotFound) {
			return nil, "", err
		}
		return nil, "", fmt.Errorf("failed to get order: %w", err)
	}

	if o.IsPaid() {
		uc.logger.Infow("order already paid, skipping",
			"order_id", o.OrderID(),
			"source", cmd.Source,
		)
		return &FulfillOrderResult{OrderID: o.OrderID(), AlreadyPaid: true}, o.UserID(), nil
	}

	if !cmd.ReportedAmount.IsZero() && !cmd.ReportedAmount.Equal(o.PaymentAmount()) {
		uc.logger.Warnw("gateway reported amount differs from order amount",
			"order_id", o.OrderID(),
			"order_amount", o.PaymentAmount().StringFixed(2),
			"reported_amount", cmd.ReportedAmount.String(),
		)
	}

	p, err := uc.planRepo.GetByID(ctx, o.PlanID())
	if err != nil {
		if errors.Is(err, apperrors.ErrPlanNotFound) {
			return nil, o.UserID(), fmt.Errorf("order %s references plan %d: %w", o.OrderID(), o.PlanID(), err)
		}
		return nil, o.UserID(), fmt.Errorf("failed to get plan: %w", err)
	}

	if err := uc.actor.Grant(ctx, o.UserID(), p.RoleID()); err != nil {
		return nil, o.UserID(), fmt.Errorf("failed to grant role for order %s: %w", o.OrderID(), err)
	}

	now := uc.clock.Now()
	sub, err := subscription.NewSubscription(o.UserID(), p.RoleID(), p.ID(), o.OrderID(), p.Duration(), now)
	if err != nil {
		return nil, o.UserID(), fmt.Errorf("failed to build subscription: %w", err)
	}

	transitioned := false
	err = uc.tx.RunInTransaction(ctx, func(txCtx context.Context) error {
		ok, err := uc.orderRepo.MarkPaid(txCtx, o.OrderID(), now, cmd.CallbackPayload)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		transitioned = true
		return uc.subscriptionRepo.Create(txCtx, sub)
	})
	if err != nil {
		// the role is granted but the payment is not recorded; a retry
		// grants again, which the platform treats as a no-op
		return nil, o.UserID(), fmt.Errorf("failed to record payment for order %s: %w", o.OrderID(), err)
	}

	if !transitioned {
		uc.logger.Infow("order paid concurrently, subscription not duplicated",
			"order_id", o.OrderID(),
			"source", cmd.Source,
		)
		return &FulfillOrderResult{OrderID: o.OrderID(), AlreadyPaid: true}, o.UserID(), nil
	}

	uc.logger.Infow("order fulfilled",
		"order_id", o.OrderID(),
		"user_id", o.UserID(),
		"role_id", p.RoleID(),
		"plan", p.Name(),
		"expire_date", sub.ExpireDate(),
		"source", cmd.Source,
	)
	return &FulfillOrderResult{OrderID: o.OrderID(), Subscription: sub}, o.UserID(), nil
}

func (uc *FulfillOrderUseCase) record(outcome string) {
	if uc.metrics != nil {
		uc.metrics.FulfillmentOutcome(outcome)
	}
}

func outcomeOf(err error) string {
	switch {
	case errors.Is(err, apperrors.ErrOrderNotFound):
		return OutcomeNotFound
	case errors.Is(err, apperrors.ErrPlanNotFound):
		return OutcomePlanNotFound
	case apperrors.IsActorError(err):
		return OutcomeGrantFailed
	}
	return OutcomeError
}
