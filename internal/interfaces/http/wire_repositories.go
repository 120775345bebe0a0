package http

import (
	"github.com/rolegate/rolegate/internal/domain/order"
	"github.com/rolegate/rolegate/internal/domain/plan"
	"github.com/rolegate/rolegate/internal/domain/subscription"
	"github.com/rolegate/rolegate/internal/infrastructure/repository"
	"github.com/rolegate/rolegate/internal/shared/db"
)

// repositories holds all repository instances used by the application.
type repositories struct {
	orderRepo        order.Repository
	planRepo         plan.Repository
	subscriptionRepo subscription.Repository
	txManager        *db.TransactionManager
}

func (c *Container) initRepositories() {
	c.repos = &repositories{
		orderRepo:        repository.NewOrderRepository(c.db),
		planRepo:         repository.NewPlanRepository(c.db),
		subscriptionRepo: repository.NewSubscriptionRepository(c.db),
		txManager:        db.NewTransactionManager(c.db),
	}
}
