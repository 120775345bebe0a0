package usecases

import (
	"context"
	"fmt"
	"strings"

	"github.com/rolegate/rolegate/internal/domain/plan"
)

const emptyPanelText = "No plans configured yet."

type ListPlansUseCase struct {
	planRepo plan.Repository
}

func NewListPlansUseCase(planRepo plan.Repository) *ListPlansUseCase {
	return &ListPlansUseCase{planRepo: planRepo}
}

func (uc *ListPlansUseCase) Execute(ctx context.Context) ([]*plan.Plan, error) {
	plans, err := uc.planRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list plans: %w", err)
	}
	return plans, nil
}

// RenderPanel renders the price list shown to buyers, one plan per line.
func (uc *ListPlansUseCase) RenderPanel(ctx context.Context) (string, error) {
	plans, err := uc.Execute(ctx)
	if err != nil {
		return "", err
	}
	return RenderPanel(plans), nil
}

func RenderPanel(plans []*plan.Plan) string {
	if len(plans) == 0 {
		return emptyPanelText
	}
	var b strings.Builder
	for _, p := range plans {
		fmt.Fprintf(&b, "**%s**: %s\n", p.Name(), p.DisplayPrice())
	}
	return strings.TrimSuffix(b.String(), "\n")
}
