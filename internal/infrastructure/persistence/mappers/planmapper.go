package mappers

import (
	"fmt"
	"time"

	"github.com/rolegate/rolegate/internal/domain/plan"
	vo "github.com/rolegate/rolegate/internal/domain/plan/valueobjects"
	"github.com/rolegate/rolegate/internal/infrastructure/persistence/models"
)

func PlanToModel(p *plan.Plan) *models.PlanModel {
	return &models.PlanModel{
		ID:             p.ID(),
		Name:           p.Name(),
		Price:          p.Price(),
		Currency:       p.Currency().String(),
		RoleID:         p.RoleID(),
		DurationMonths: p.Duration().Months(),
		CreatedAt:      p.CreatedAt().Unix(),
		UpdatedAt:      p.UpdatedAt().Unix(),
	}
}

func PlanToDomain(m *models.PlanModel) (*plan.Plan, error) {
	currency, err := vo.ParseCurrency(m.Currency)
	if err != nil {
		return nil, fmt.Errorf("plan %d: %w", m.ID, err)
	}
	duration, err := vo.NewDuration(m.DurationMonths)
	if err != nil {
		return nil, fmt.Errorf("plan %d: %w", m.ID, err)
	}
	return plan.ReconstructPlan(m.ID, m.Name, m.Price, currency, m.RoleID, duration,
		time.Unix(m.CreatedAt, 0).UTC(), time.Unix(m.UpdatedAt, 0).UTC()), nil
}
