package order

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	vo "github.com/rolegate/rolegate/internal/domain/order/valueobjects"
	planvo "github.com/rolegate/rolegate/internal/domain/plan/valueobjects"
	"github.com/rolegate/rolegate/internal/shared/id"
)

// Order is one attempt by a user to buy a plan. It is never deleted.
type Order struct {
	orderID         string
	userID          string
	planID          uint
	status          vo.OrderStatus
	paymentMethod   string
	paymentAmount   decimal.Decimal
	paymentCurrency planvo.Currency
	createdAt       time.Time
	paidAt          *time.Time
	callbackPayload map[string]string
}

func NewOrder(orderID, userID string, planID uint, method string, amount decimal.Decimal,
	currency planvo.Currency, now time.Time) (*Order, error) {
	if orderID == "" || len(orderID) > id.MaxOrderIDLength {
		return nil, fmt.Errorf("order id must be 1-%d characters", id.MaxOrderIDLength)
	}
	if userID == "" {
		return nil, fmt.Errorf("user id is required")
	}
	if planID == 0 {
		return nil, fmt.Errorf("plan id is required")
	}
	if !amount.IsPositive() {
		return nil, fmt.Errorf("payment amount must be positive")
	}
	if !currency.IsValid() {
		return nil, fmt.Errorf("invalid currency: %s", currency)
	}

	return &Order{
		orderID:         orderID,
		userID:          userID,
		planID:          planID,
		status:          vo.OrderStatusPending,
		paymentMethod:   method,
		paymentAmount:   amount.Round(2),
		paymentCurrency: currency,
		createdAt:       now.UTC(),
	}, nil
}

// ReconstructOrder rebuilds an Order loaded from storage.
func ReconstructOrder(orderID, userID string, planID uint, status vo.OrderStatus, method string,
	amount decimal.Decimal, currency planvo.Currency, createdAt time.Time, paidAt *time.Time,
	callbackPayload map[string]string) *Order {
	return &Order{
		orderID:         orderID,
		userID:          userID,
		planID:          planID,
		status:          status,
		paymentMethod:   method,
		paymentAmount:   amount,
		paymentCurrency: currency,
		createdAt:       createdAt,
		paidAt:          paidAt,
		callbackPayload: callbackPayload,
	}
}

// MarkAsPaid is idempotent: a paid order stays paid with its original time.
func (o *Order) MarkAsPaid(at time.Time) {
	if o.status.IsPaid() {
		return
	}
	t := at.UTC()
	o.status = vo.OrderStatusPaid
	o.paidAt = &t
}

func (o *Order) OrderID() string {
	return o.orderID
}

func (o *Order) UserID() string {
	return o.userID
}

func (o *Order) PlanID() uint {
	return o.planID
}

func (o *Order) Status() vo.OrderStatus {
	return o.status
}

func (o *Order) IsPaid() bool {
	return o.status.IsPaid()
}

func (o *Order) PaymentMethod() string {
	return o.paymentMethod
}

func (o *Order) PaymentAmount() decimal.Decimal {
	return o.paymentAmount
}

func (o *Order) PaymentCurrency() planvo.Currency {
	return o.paymentCurrency
}

func (o *Order) CreatedAt() time.Time {
	return o.createdAt
}

func (o *Order) PaidAt() *time.Time {
	return o.paidAt
}

func (o *Order) CallbackPayload() map[string]string {
	return o.callbackPayload
}
