package http

import (
	"github.com/rolegate/rolegate/internal/interfaces/http/handlers"
)

// allHandlers holds all HTTP handler instances used by the application.
type allHandlers struct {
	notifyHandler       *handlers.NotifyHandler
	planHandler         *handlers.PlanHandler
	orderHandler        *handlers.OrderHandler
	subscriptionHandler *handlers.SubscriptionHandler
	healthHandler       *handlers.HealthHandler
}
