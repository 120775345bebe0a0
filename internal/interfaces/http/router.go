package http

import (
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/rolegate/rolegate/internal/application/payment/paymentgateway"
	"github.com/rolegate/rolegate/internal/interfaces/http/handlers"
	"github.com/rolegate/rolegate/internal/interfaces/http/middleware"
	"github.com/rolegate/rolegate/internal/interfaces/http/routes"
	"github.com/rolegate/rolegate/internal/shared/utils"
)

func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		utils.RegisterValidations(v)
	}
}

func (c *Container) initHandlers() {
	c.hdlrs = &allHandlers{
		notifyHandler:       handlers.NewNotifyHandler(c.gateway, c.dispatcher, c.metrics, c.log.Named("notify")),
		planHandler:         handlers.NewPlanHandler(c.ucs.ListPlans, c.ucs.SetPlan, c.ucs.DeletePlan, c.log.Named("http.plan")),
		orderHandler:        handlers.NewOrderHandler(c.ucs.CreateOrder, c.ucs.GetOrder, c.ucs.FulfillOrder, c.ucs.CheckOrder, c.log.Named("http.order")),
		subscriptionHandler: handlers.NewSubscriptionHandler(c.ucs.GrantSubscription, c.log.Named("http.subscription")),
	}
	if sqlDB, err := c.db.DB(); err == nil {
		c.hdlrs.healthHandler = handlers.NewHealthHandler(sqlDB)
	}
}

// SetupRoutes configures all HTTP routes
func (c *Container) SetupRoutes() {
	c.engine.Use(middleware.RequestID())
	c.engine.Use(middleware.Logger(c.log.Named("http")))
	c.engine.Use(middleware.Recovery(c.log))
	if c.metrics != nil {
		c.engine.Use(middleware.Metrics(c.metrics))
		c.engine.GET(c.cfg.Metrics.Path, gin.WrapH(c.metrics.Handler()))
	}

	if c.hdlrs.healthHandler != nil {
		c.engine.GET("/health", c.hdlrs.healthHandler.HealthCheck)
	}

	routes.SetupNotifyRoutes(c.engine, &routes.NotifyRouteConfig{
		NotifyHandler: c.hdlrs.notifyHandler,
		Path:          c.cfg.Server.NotifyPath,
		AllowGet:      c.gateway != nil && c.gateway.Platform() == paymentgateway.PlatformYipay,
	})

	apiCfg := &routes.APIRouteConfig{
		PlanHandler:         c.hdlrs.planHandler,
		OrderHandler:        c.hdlrs.orderHandler,
		SubscriptionHandler: c.hdlrs.subscriptionHandler,
		AdminAuth:           middleware.NewAdminAuthMiddleware(c.cfg.Admin.TokenHash, c.log.Named("http.admin")),
	}
	if c.redis != nil {
		apiCfg.OrderRateLimit = middleware.NewRateLimiter(c.redis, orderCreateLimit, orderCreateWindow, c.log.Named("ratelimit")).Limit()
	}
	routes.SetupAPIRoutes(c.engine, apiCfg)
}

// GetEngine returns the Gin engine
func (c *Container) GetEngine() *gin.Engine {
	return c.engine
}
