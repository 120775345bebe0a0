package handlers

import (
	"time"

	"github.com/rolegate/rolegate/internal/domain/order"
	"github.com/rolegate/rolegate/internal/domain/plan"
	"github.com/rolegate/rolegate/internal/domain/subscription"
)

type PlanResponse struct {
	ID             uint   `json:"id"`
	Name           string `json:"name"`
	Price          string `json:"price"`
	Currency       string `json:"currency"`
	RoleID         string `json:"role_id"`
	DurationMonths int    `json:"duration_months"`
	DurationLabel  string `json:"duration_label"`
}

func toPlanResponse(p *plan.Plan) PlanResponse {
	return PlanResponse{
		ID:             p.ID(),
		Name:           p.Name(),
		Price:          p.Price().StringFixed(2),
		Currency:       p.Currency().String(),
		RoleID:         p.RoleID(),
		DurationMonths: p.Duration().Months(),
		DurationLabel:  p.Duration().Label(),
	}
}

type OrderResponse struct {
	OrderID   string            `json:"order_id"`
	UserID    string            `json:"user_id"`
	PlanID    uint              `json:"plan_id"`
	Status    string            `json:"status"`
	Method    string            `json:"payment_method"`
	Amount    string            `json:"payment_amount"`
	Currency  string            `json:"payment_currency"`
	CreatedAt string            `json:"created_at"`
	PaidAt    *string           `json:"paid_at,omitempty"`
	Callback  map[string]string `json:"callback_payload,omitempty"`
}

func toOrderResponse(o *order.Order) OrderResponse {
	resp := OrderResponse{
		OrderID:   o.OrderID(),
		UserID:    o.UserID(),
		PlanID:    o.PlanID(),
		Status:    o.Status().String(),
		Method:    o.PaymentMethod(),
		Amount:    o.PaymentAmount().StringFixed(2),
		Currency:  o.PaymentCurrency().String(),
		CreatedAt: o.CreatedAt().UTC().Format(time.RFC3339),
		Callback:  o.CallbackPayload(),
	}
	if paidAt := o.PaidAt(); paidAt != nil {
		s := paidAt.UTC().Format(time.RFC3339)
		resp.PaidAt = &s
	}
	return resp
}

type SubscriptionResponse struct {
	ID         uint   `json:"id"`
	UserID     string `json:"user_id"`
	RoleID     string `json:"role_id"`
	PlanID     uint   `json:"plan_id,omitempty"`
	OrderID    string `json:"order_id,omitempty"`
	ExpireDate int64  `json:"expire_date"`
	Forever    bool   `json:"forever"`
}

func toSubscriptionResponse(s *subscription.Subscription) SubscriptionResponse {
	return SubscriptionResponse{
		ID:         s.ID(),
		UserID:     s.UserID(),
		RoleID:     s.RoleID(),
		PlanID:     s.PlanID(),
		OrderID:    s.OrderID(),
		ExpireDate: s.ExpireDate(),
		Forever:    s.IsForever(),
	}
}
