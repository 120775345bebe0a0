package subscription

import (
	"context"
	"time"
)

type Repository interface {
	Create(ctx context.Context, sub *Subscription) error
	// ListExpired returns non-forever subscriptions whose expiry is before now.
	ListExpired(ctx context.Context, now time.Time) ([]*Subscription, error)
	ListByUser(ctx context.Context, userID string) ([]*Subscription, error)
	Delete(ctx context.Context, id uint) error
}
