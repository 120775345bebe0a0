package order

import (
	"context"
	"time"
)

type Repository interface {
	Create(ctx context.Context, order *Order) error
	GetByOrderID(ctx context.Context, orderID string) (*Order, error)
	// MarkPaid flips a pending order to paid and reports whether this call
	// performed the transition. It never touches an already paid order.
	MarkPaid(ctx context.Context, orderID string, paidAt time.Time, callbackPayload map[string]string) (bool, error)
	// ListPendingBetween returns pending orders created in [from, to), oldest
	// first. A non-positive limit means no limit.
	ListPendingBetween(ctx context.Context, from, to time.Time, limit int) ([]*Order, error)
}
