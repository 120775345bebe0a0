package plan

import "context"

type Repository interface {
	// Save inserts the plan, or updates the existing plan with the same name.
	Save(ctx context.Context, plan *Plan) error
	GetByID(ctx context.Context, id uint) (*Plan, error)
	GetByName(ctx context.Context, name string) (*Plan, error)
	List(ctx context.Context) ([]*Plan, error)
	// DeleteByName reports whether a plan was removed.
	DeleteByName(ctx context.Context, name string) (bool, error)
}
