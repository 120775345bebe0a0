package usecases

import "context"

// OrderLocker serializes fulfillment of one order. release must be safe to
// call more than once.
type OrderLocker interface {
	Lock(ctx context.Context, orderID string) (release func(), err error)
}

// TransactionRunner runs fn in one database transaction.
type TransactionRunner interface {
	RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// FailureNotifier alerts an administrator about a fulfillment that needs a
// manual retry. Implementations must not block for long.
type FailureNotifier interface {
	NotifyFulfillmentFailure(ctx context.Context, orderID, userID string, err error)
}

// LifecycleMetrics records order outcomes.
type LifecycleMetrics interface {
	OrderCreated(platform, currency string)
	OrderCreateFailed(platform string)
	FulfillmentOutcome(outcome string)
}

// Fulfillment outcomes reported to LifecycleMetrics.
const (
	OutcomeFulfilled    = "fulfilled"
	OutcomeAlreadyPaid  = "already_paid"
	OutcomeNotFound     = "order_not_found"
	OutcomePlanNotFound = "plan_not_found"
	OutcomeGrantFailed  = "grant_failed"
	OutcomeError        = "error"
)
