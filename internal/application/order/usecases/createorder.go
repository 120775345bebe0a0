package usecases

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/rolegate/rolegate/internal/application/payment/paymentgateway"
	"github.com/rolegate/rolegate/internal/application/payment/pricing"
	"github.com/rolegate/rolegate/internal/domain/order"
	"github.com/rolegate/rolegate/internal/domain/plan"
	vo "github.com/rolegate/rolegate/internal/domain/plan/valueobjects"
	"github.com/rolegate/rolegate/internal/shared/biztime"
	apperrors "github.com/rolegate/rolegate/internal/shared/errors"
	"github.com/rolegate/rolegate/internal/shared/id"
	"github.com/rolegate/rolegate/internal/shared/logger"
)

type CreateOrderCommand struct {
	UserID string
	// PlanID takes precedence over PlanName when set.
	PlanID   uint
	PlanName string
	Method   string
}

type CreateOrderResult struct {
	OrderID  string
	PayURL   string
	Amount   decimal.Decimal
	Currency vo.Currency
	PlanName string
	Method   string
}

type CreateOrderUseCase struct {
	orderRepo order.Repository
	planRepo  plan.Repository
	gateway   paymentgateway.Gateway
	methods   *pricing.MethodTable
	converter *pricing.Converter
	clock     biztime.Clock
	metrics   LifecycleMetrics
	logger    logger.Interface
}

// NewCreateOrderUseCase accepts a nil gateway when the configured platform is
// unknown; Execute then fails with a validation error.
func NewCreateOrderUseCase(
	orderRepo order.Repository,
	planRepo plan.Repository,
	gateway paymentgateway.Gateway,
	methods *pricing.MethodTable,
	converter *pricing.Converter,
	clock biztime.Clock,
	logger logger.Interface,
) *CreateOrderUseCase {
	return &CreateOrderUseCase{
		orderRepo: orderRepo,
		planRepo:  planRepo,
		gateway:   gateway,
		methods:   methods,
		converter: converter,
		clock:     clock,
		logger:    logger,
	}
}

// SetMetrics sets the metrics recorder (optional).
func (uc *CreateOrderUseCase) SetMetrics(m LifecycleMetrics) {
	uc.metrics = m
}

func (uc *CreateOrderUseCase) Execute(ctx context.Context, cmd CreateOrderCommand) (*CreateOrderResult, error) {
	if uc.gateway == nil {
		return nil, apperrors.NewValidationError("payment platform is not configured")
	}
	userID := strings.TrimSpace(cmd.UserID)
	if userID == "" {
		return nil, apperrors.NewValidationError("user id is required")
	}

	p, err := uc.resolvePlan(ctx, cmd)
	if err != nil {
		return nil, err
	}

	method, ok := uc.methods.Lookup(strings.TrimSpace(cmd.Method))
	if !ok {
		return nil, apperrors.NewValidationError("unknown payment method", cmd.Method)
	}

	amount, err := uc.converter.Convert(ctx, p.Price(), p.Currency(), method.Currency)
	if err != nil {
		return nil, fmt.Errorf("failed to price order: %w", err)
	}

	now := uc.clock.Now()
	orderID, err := id.NewOrderID(userID, now)
	if err != nil {
		return nil, fmt.Errorf("failed to generate order id: %w", err)
	}

	o, err := order.NewOrder(orderID, userID, p.ID(), method.Name, amount, method.Currency, now)
	if err != nil {
		return nil, apperrors.NewValidationError(err.Error())
	}
	if err := uc.orderRepo.Create(ctx, o); err != nil {
		return nil, fmt.Errorf("failed to save order: %w", err)
	}

	platform := string(uc.gateway.Platform())
	payURL, err := uc.gateway.CreateOrder(ctx, paymentgateway.CreateOrderRequest{
		OrderID:     orderID,
		Description: "Plan-" + p.Name(),
		Amount:      amount,
		MethodCode:  method.Code,
	})
	if err != nil {
		uc.logger.Warnw("payment gateway rejected order, order left pending",
			"order_id", orderID,
			"user_id", userID,
			"plan", p.Name(),
			"amount", amount.StringFixed(2),
			"error", err,
		)
		if uc.metrics != nil {
			uc.metrics.OrderCreateFailed(platform)
		}
		return nil, fmt.Errorf("failed to create payment for order %s: %w", orderID, err)
	}

	if uc.metrics != nil {
		uc.metrics.OrderCreated(platform, method.Currency.String())
	}
	uc.logger.Infow("order created",
		"order_id", orderID,
		"user_id", userID,
		"plan", p.Name(),
		"method", method.Name,
		"amount", amount.StringFixed(2),
		"currency", method.Currency.String(),
	)

	return &CreateOrderResult{
		OrderID:  orderID,
		PayURL:   payURL,
		Amount:   amount,
		Currency: method.Currency,
		PlanName: p.Name(),
		Method:   method.Name,
	}, nil
}

func (uc *CreateOrderUseCase) resolvePlan(ctx context.Context, cmd CreateOrderCommand) (*plan.Plan, error) {
	var (
		p   *plan.Plan
		err error
	)
	switch {
	case cmd.PlanID != 0:
		p, err = uc.planRepo.GetByID(ctx, cmd.PlanID)
	case strings.TrimSpace(cmd.PlanName) != "":
		p, err = uc.planRepo.GetByName(ctx, strings.TrimSpace(cmd.PlanName))
	default:
		return nil, apperrors.NewValidationError("plan is required")
	}
	if err != nil {
		if errors.Is(err, apperrors.ErrPlanNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get plan: %w", err)
	}
	return p, nil
}
