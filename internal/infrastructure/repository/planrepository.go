package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/rolegate/rolegate/internal/domain/plan"
	"github.com/rolegate/rolegate/internal/infrastructure/persistence/mappers"
	"github.com/rolegate/rolegate/internal/infrastructure/persistence/models"
	"github.com/rolegate/rolegate/internal/shared/db"
	apperrors "github.com/rolegate/rolegate/internal/shared/errors"
)

type PlanRepository struct {
	db *gorm.DB
}

func NewPlanRepository(db *gorm.DB) *PlanRepository {
	return &PlanRepository{db: db}
}

var _ plan.Repository = (*PlanRepository)(nil)

// Save upserts by name. The existing row keeps its id and created_at.
func (r *PlanRepository) Save(ctx context.Context, p *plan.Plan) error {
	model := mappers.PlanToModel(p)

	return db.GetTxFromContext(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		var existing models.PlanModel
		err := tx.Where("name = ?", model.Name).First(&existing).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			if err := tx.Create(model).Error; err != nil {
				return fmt.Errorf("failed to create plan: %w", err)
			}
			p.SetID(model.ID)
			return nil
		case err != nil:
			return fmt.Errorf("failed to look up plan %q: %w", model.Name, err)
		}

		if err := tx.Model(&existing).Updates(map[string]any{
			"price":           model.Price,
			"currency":        model.Currency,
			"role_id":         model.RoleID,
			"duration_months": model.DurationMonths,
			"updated_at":      model.UpdatedAt,
		}).Error; err != nil {
			return fmt.Errorf("failed to update plan: %w", err)
		}
		p.SetID(existing.ID)
		return nil
	})
}

func (r *PlanRepository) GetByID(ctx context.Context, id uint) (*plan.Plan, error) {
	var model models.PlanModel
	if err := db.GetTxFromContext(ctx, r.db).First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrPlanNotFound
		}
		return nil, fmt.Errorf("failed to get plan: %w", err)
	}
	return mappers.PlanToDomain(&model)
}

func (r *PlanRepository) GetByName(ctx context.Context, name string) (*plan.Plan, error) {
	var model models.PlanModel
	if err := db.GetTxFromContext(ctx, r.db).Where("name = ?", name).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrPlanNotFound
		}
		return nil, fmt.Errorf("failed to get plan by name: %w", err)
	}
	return mappers.PlanToDomain(&model)
}

func (r *PlanRepository) List(ctx context.Context) ([]*plan.Plan, error) {
	var rows []models.PlanModel
	if err := db.GetTxFromContext(ctx, r.db).Order("id ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list plans: %w", err)
	}

	plans := make([]*plan.Plan, 0, len(rows))
	for i := range rows {
		p, err := mappers.PlanToDomain(&rows[i])
		if err != nil {
			return nil, err
		}
		plans = append(plans, p)
	}
	return plans, nil
}

func (r *PlanRepository) DeleteByName(ctx context.Context, name string) (bool, error) {
	result := db.GetTxFromContext(ctx, r.db).Where("name = ?", name).Delete(&models.PlanModel{})
	if result.Error != nil {
		return false, fmt.Errorf("failed to delete plan: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}
