package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/rolegate/rolegate/internal/interfaces/http/handlers"
)

// NotifyRouteConfig holds dependencies for the payment notification route.
type NotifyRouteConfig struct {
	NotifyHandler *handlers.NotifyHandler
	Path          string
	// AllowGet also registers GET for platforms that deliver notifications
	// in the query string.
	AllowGet bool
}

// SetupNotifyRoutes configures the payment notification endpoint.
func SetupNotifyRoutes(engine *gin.Engine, cfg *NotifyRouteConfig) {
	engine.POST(cfg.Path, cfg.NotifyHandler.HandleNotify)
	if cfg.AllowGet {
		engine.GET(cfg.Path, cfg.NotifyHandler.HandleNotify)
	}
}
