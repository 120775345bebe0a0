package usecases

import (
	"context"
	"fmt"

	"github.com/rolegate/rolegate/internal/application/entitlement"
	"github.com/rolegate/rolegate/internal/domain/subscription"
	"github.com/rolegate/rolegate/internal/shared/biztime"
	"github.com/rolegate/rolegate/internal/shared/logger"
)

// SweepMetrics records sweeper results.
type SweepMetrics interface {
	SubscriptionsRevoked(n int)
	RevokeFailed()
}

// ExpireSubscriptionsUseCase revokes roles whose subscription has lapsed.
// A subscription row is deleted only after its revoke succeeded, so a failed
// revoke is retried on the next run.
type ExpireSubscriptionsUseCase struct {
	subscriptionRepo subscription.Repository
	actor            entitlement.Actor
	clock            biztime.Clock
	metrics          SweepMetrics
	logger           logger.Interface
}

func NewExpireSubscriptionsUseCase(
	subscriptionRepo subscription.Repository,
	actor entitlement.Actor,
	clock biztime.Clock,
	logger logger.Interface,
) *ExpireSubscriptionsUseCase {
	return &ExpireSubscriptionsUseCase{
		subscriptionRepo: subscriptionRepo,
		actor:            actor,
		clock:            clock,
		logger:           logger,
	}
}

// SetMetrics sets the metrics recorder (optional).
func (uc *ExpireSubscriptionsUseCase) SetMetrics(m SweepMetrics) {
	uc.metrics = m
}

// Execute returns the number of subscriptions removed.
func (uc *ExpireSubscriptionsUseCase) Execute(ctx context.Context) (int, error) {
	expired, err := uc.subscriptionRepo.ListExpired(ctx, uc.clock.Now())
	if err != nil {
		return 0, fmt.Errorf("failed to find expired subscriptions: %w", err)
	}
	if len(expired) == 0 {
		return 0, nil
	}

	uc.logger.Infow("found expired subscriptions to process", "count", len(expired))

	removed := 0
	for _, sub := range expired {
		if ctx.Err() != nil {
			break
		}

		if err := uc.actor.Revoke(ctx, sub.UserID(), sub.RoleID()); err != nil {
			uc.logger.Warnw("failed to revoke expired role, keeping subscription for retry",
				"subscription_id", sub.ID(),
				"user_id", sub.UserID(),
				"role_id", sub.RoleID(),
				"error", err,
			)
			if uc.metrics != nil {
				uc.metrics.RevokeFailed()
			}
			continue
		}

		if err := uc.subscriptionRepo.Delete(ctx, sub.ID()); err != nil {
			uc.logger.Errorw("role revoked but subscription row not deleted",
				"subscription_id", sub.ID(),
				"error", err,
			)
			continue
		}

		removed++
		uc.logger.Debugw("expired subscription removed",
			"subscription_id", sub.ID(),
			"user_id", sub.UserID(),
			"role_id", sub.RoleID(),
		)
	}

	if uc.metrics != nil {
		uc.metrics.SubscriptionsRevoked(removed)
	}
	return removed, nil
}
