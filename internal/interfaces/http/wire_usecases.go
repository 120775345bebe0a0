package http

import (
	orderUsecases "github.com/rolegate/rolegate/internal/application/order/usecases"
	planUsecases "github.com/rolegate/rolegate/internal/application/plan/usecases"
	subscriptionUsecases "github.com/rolegate/rolegate/internal/application/subscription/usecases"
)

// UseCases exposes the wired use cases to the CLI commands that share the
// container with the server.
type UseCases struct {
	// Plans
	SetPlan     *planUsecases.SetPlanUseCase
	DeletePlan  *planUsecases.DeletePlanUseCase
	ListPlans   *planUsecases.ListPlansUseCase
	ImportPlans *planUsecases.ImportPlansUseCase

	// Orders
	CreateOrder     *orderUsecases.CreateOrderUseCase
	GetOrder        *orderUsecases.GetOrderUseCase
	FulfillOrder    *orderUsecases.FulfillOrderUseCase
	CheckOrder      *orderUsecases.CheckOrderUseCase
	ReconcileOrders *orderUsecases.ReconcilePendingOrdersUseCase

	// Subscriptions
	ExpireSubscriptions *subscriptionUsecases.ExpireSubscriptionsUseCase
	GrantSubscription   *subscriptionUsecases.GrantSubscriptionUseCase
}
