package usecases

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/shopspring/decimal"

	"github.com/rolegate/rolegate/internal/domain/plan"
	vo "github.com/rolegate/rolegate/internal/domain/plan/valueobjects"
	apperrors "github.com/rolegate/rolegate/internal/shared/errors"
	"github.com/rolegate/rolegate/internal/shared/logger"
)

type SetPlanCommand struct {
	Name  string
	Price decimal.Decimal
	// Currency falls back to the configured default when empty.
	Currency       string
	RoleID         string
	DurationMonths int
}

type SetPlanResult struct {
	Plan    *plan.Plan
	Created bool
}

// SetPlanUseCase creates a plan or updates the plan with the same name.
type SetPlanUseCase struct {
	planRepo        plan.Repository
	defaultCurrency vo.Currency
	policy          *bluemonday.Policy
	logger          logger.Interface
}

func NewSetPlanUseCase(planRepo plan.Repository, defaultCurrency vo.Currency, logger logger.Interface) *SetPlanUseCase {
	if !defaultCurrency.IsValid() {
		defaultCurrency = vo.CurrencyUSDT
	}
	return &SetPlanUseCase{
		planRepo:        planRepo,
		defaultCurrency: defaultCurrency,
		policy:          bluemonday.StrictPolicy(),
		logger:          logger,
	}
}

func (uc *SetPlanUseCase) Execute(ctx context.Context, cmd SetPlanCommand) (*SetPlanResult, error) {
	name := uc.sanitizeName(cmd.Name)
	if name == "" {
		return nil, apperrors.NewValidationError("plan name is required")
	}

	currency := uc.defaultCurrency
	if strings.TrimSpace(cmd.Currency) != "" {
		c, err := vo.ParseCurrency(cmd.Currency)
		if err != nil {
			return nil, apperrors.NewValidationError(err.Error())
		}
		currency = c
	}

	duration, err := vo.NewDuration(cmd.DurationMonths)
	if err != nil {
		return nil, apperrors.NewValidationError(err.Error())
	}

	existing, err := uc.planRepo.GetByName(ctx, name)
	if err != nil && !errors.Is(err, apperrors.ErrPlanNotFound) {
		return nil, fmt.Errorf("failed to get plan: %w", err)
	}

	created := existing == nil
	var p *plan.Plan
	if created {
		p, err = plan.NewPlan(name, cmd.Price, currency, cmd.RoleID, duration)
	} else {
		p = existing
		err = p.Update(cmd.Price, currency, cmd.RoleID, duration)
	}
	if err != nil {
		return nil, apperrors.NewValidationError(err.Error())
	}

	if err := uc.planRepo.Save(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to save plan: %w", err)
	}

	uc.logger.Infow("plan saved",
		"plan", p.Name(),
		"created", created,
		"price", p.DisplayPrice(),
		"role_id", p.RoleID(),
	)
	return &SetPlanResult{Plan: p, Created: created}, nil
}

// sanitizeName strips markup so names are safe to echo into chat embeds.
func (uc *SetPlanUseCase) sanitizeName(name string) string {
	return strings.TrimSpace(html.UnescapeString(uc.policy.Sanitize(name)))
}
