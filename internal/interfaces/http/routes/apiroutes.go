package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/rolegate/rolegate/internal/interfaces/http/handlers"
	"github.com/rolegate/rolegate/internal/interfaces/http/middleware"
)

// APIRouteConfig holds dependencies for the admin API.
type APIRouteConfig struct {
	PlanHandler         *handlers.PlanHandler
	OrderHandler        *handlers.OrderHandler
	SubscriptionHandler *handlers.SubscriptionHandler
	AdminAuth           *middleware.AdminAuthMiddleware
	// OrderRateLimit guards order creation; nil disables it.
	OrderRateLimit gin.HandlerFunc
}

// SetupAPIRoutes configures the admin API under /api.
func SetupAPIRoutes(engine *gin.Engine, cfg *APIRouteConfig) {
	api := engine.Group("/api")
	api.Use(cfg.AdminAuth.RequireAdmin())

	plans := api.Group("/plans")
	{
		plans.GET("", cfg.PlanHandler.ListPlans)
		plans.GET("/panel", cfg.PlanHandler.GetPanel)
		plans.PUT("/:name", cfg.PlanHandler.SetPlan)
		plans.DELETE("/:name", cfg.PlanHandler.DeletePlan)
	}

	orders := api.Group("/orders")
	{
		create := []gin.HandlerFunc{cfg.OrderHandler.CreateOrder}
		if cfg.OrderRateLimit != nil {
			create = append([]gin.HandlerFunc{cfg.OrderRateLimit}, create...)
		}
		orders.POST("", create...)
		orders.GET("/:order_id", cfg.OrderHandler.GetOrder)
		orders.POST("/:order_id/fulfill", cfg.OrderHandler.FulfillOrder)
		orders.POST("/:order_id/check", cfg.OrderHandler.CheckOrder)
	}

	api.POST("/subscriptions", cfg.SubscriptionHandler.GrantSubscription)
}
