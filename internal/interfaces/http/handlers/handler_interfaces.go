package handlers

import (
	"context"

	"github.com/rolegate/rolegate/internal/application/order/dispatch"
	orderUsecases "github.com/rolegate/rolegate/internal/application/order/usecases"
	planUsecases "github.com/rolegate/rolegate/internal/application/plan/usecases"
	subscriptionUsecases "github.com/rolegate/rolegate/internal/application/subscription/usecases"
	"github.com/rolegate/rolegate/internal/domain/order"
	"github.com/rolegate/rolegate/internal/domain/plan"
	"github.com/rolegate/rolegate/internal/domain/subscription"
)

// NotifyHandler

type fulfillmentQueue interface {
	Enqueue(job dispatch.Job) error
}

type callbackRecorder interface {
	CallbackHandled(result string)
}

// PlanHandler

type listPlansUseCase interface {
	Execute(ctx context.Context) ([]*plan.Plan, error)
	RenderPanel(ctx context.Context) (string, error)
}

type setPlanUseCase interface {
	Execute(ctx context.Context, cmd planUsecases.SetPlanCommand) (*planUsecases.SetPlanResult, error)
}

type deletePlanUseCase interface {
	Execute(ctx context.Context, name string) error
}

// OrderHandler

type createOrderUseCase interface {
	Execute(ctx context.Context, cmd orderUsecases.CreateOrderCommand) (*orderUsecases.CreateOrderResult, error)
}

type getOrderUseCase interface {
	Execute(ctx context.Context, orderID string) (*order.Order, error)
}

type fulfillOrderUseCase interface {
	Execute(ctx context.Context, cmd orderUsecases.FulfillOrderCommand) (*orderUsecases.FulfillOrderResult, error)
}

type checkOrderUseCase interface {
	Execute(ctx context.Context, orderID string) (*orderUsecases.CheckOrderResult, error)
}

// SubscriptionHandler

type grantSubscriptionUseCase interface {
	Execute(ctx context.Context, cmd subscriptionUsecases.GrantSubscriptionCommand) (*subscription.Subscription, error)
}

// HealthHandler

type pinger interface {
	PingContext(ctx context.Context) error
}
