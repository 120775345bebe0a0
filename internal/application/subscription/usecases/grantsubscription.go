package usecases

import (
	"context"
	"fmt"
	"strings"

	"github.com/rolegate/rolegate/internal/application/entitlement"
	"github.com/rolegate/rolegate/internal/domain/subscription"
	vo "github.com/rolegate/rolegate/internal/domain/plan/valueobjects"
	"github.com/rolegate/rolegate/internal/shared/biztime"
	apperrors "github.com/rolegate/rolegate/internal/shared/errors"
	"github.com/rolegate/rolegate/internal/shared/logger"
)

type GrantSubscriptionCommand struct {
	UserID         string
	RoleID         string
	DurationMonths int
}

// GrantSubscriptionUseCase gives a role without an order, e.g. for refunds or
// promotions. The grant happens before the row is written.
type GrantSubscriptionUseCase struct {
	subscriptionRepo subscription.Repository
	actor            entitlement.Actor
	clock            biztime.Clock
	logger           logger.Interface
}

func NewGrantSubscriptionUseCase(
	subscriptionRepo subscription.Repository,
	actor entitlement.Actor,
	clock biztime.Clock,
	logger logger.Interface,
) *GrantSubscriptionUseCase {
	return &GrantSubscriptionUseCase{
		subscriptionRepo: subscriptionRepo,
		actor:            actor,
		clock:            clock,
		logger:           logger,
	}
}

func (uc *GrantSubscriptionUseCase) Execute(ctx context.Context, cmd GrantSubscriptionCommand) (*subscription.Subscription, error) {
	duration, err := vo.NewDuration(cmd.DurationMonths)
	if err != nil {
		return nil, apperrors.NewValidationError(err.Error())
	}
	sub, err := subscription.NewSubscription(strings.TrimSpace(cmd.UserID), strings.TrimSpace(cmd.RoleID), 0, "", duration, uc.clock.Now())
	if err != nil {
		return nil, apperrors.NewValidationError(err.Error())
	}

	if err := uc.actor.Grant(ctx, sub.UserID(), sub.RoleID()); err != nil {
		return nil, fmt.Errorf("failed to grant role: %w", err)
	}
	if err := uc.subscriptionRepo.Create(ctx, sub); err != nil {
		return nil, fmt.Errorf("failed to save subscription: %w", err)
	}

	uc.logger.Infow("subscription granted manually",
		"subscription_id", sub.ID(),
		"user_id", sub.UserID(),
		"role_id", sub.RoleID(),
		"expire_date", sub.ExpireDate(),
	)
	return sub, nil
}
