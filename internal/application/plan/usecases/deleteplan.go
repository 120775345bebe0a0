package usecases

import (
	"context"
	"fmt"
	"strings"

	"github.com/rolegate/rolegate/internal/domain/plan"
	apperrors "github.com/rolegate/rolegate/internal/shared/errors"
	"github.com/rolegate/rolegate/internal/shared/logger"
)

// DeletePlanUseCase removes a plan by name. Pending orders that reference it
// fail fulfillment with ErrPlanNotFound afterwards.
type DeletePlanUseCase struct {
	planRepo plan.Repository
	logger   logger.Interface
}

func NewDeletePlanUseCase(planRepo plan.Repository, logger logger.Interface) *DeletePlanUseCase {
	return &DeletePlanUseCase{planRepo: planRepo, logger: logger}
}

func (uc *DeletePlanUseCase) Execute(ctx context.Context, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return apperrors.NewValidationError("plan name is required")
	}

	deleted, err := uc.planRepo.DeleteByName(ctx, name)
	if err != nil {
		return fmt.Errorf("failed to delete plan: %w", err)
	}
	if !deleted {
		return apperrors.ErrPlanNotFound
	}

	uc.logger.Infow("plan deleted", "plan", name)
	return nil
}
