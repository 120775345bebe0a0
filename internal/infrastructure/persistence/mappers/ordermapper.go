package mappers

import (
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/datatypes"

	"github.com/rolegate/rolegate/internal/domain/order"
	vo "github.com/rolegate/rolegate/internal/domain/order/valueobjects"
	planvo "github.com/rolegate/rolegate/internal/domain/plan/valueobjects"
	"github.com/rolegate/rolegate/internal/infrastructure/persistence/models"
)

func OrderToModel(o *order.Order) (*models.OrderModel, error) {
	m := &models.OrderModel{
		OrderID:         o.OrderID(),
		UserID:          o.UserID(),
		PlanID:          o.PlanID(),
		Status:          o.Status().String(),
		PaymentMethod:   o.PaymentMethod(),
		PaymentAmount:   o.PaymentAmount(),
		PaymentCurrency: o.PaymentCurrency().String(),
		CreatedAt:       o.CreatedAt().Unix(),
	}
	if paidAt := o.PaidAt(); paidAt != nil {
		ts := paidAt.Unix()
		m.PaidAt = &ts
	}
	payload, err := EncodePayload(o.CallbackPayload())
	if err != nil {
		return nil, err
	}
	m.CallbackPayload = payload
	return m, nil
}

func OrderToDomain(m *models.OrderModel) (*order.Order, error) {
	status := vo.OrderStatus(m.Status)
	if !status.IsValid() {
		return nil, fmt.Errorf("order %s: invalid status %q", m.OrderID, m.Status)
	}
	currency, err := planvo.ParseCurrency(m.PaymentCurrency)
	if err != nil {
		return nil, fmt.Errorf("order %s: %w", m.OrderID, err)
	}

	var paidAt *time.Time
	if m.PaidAt != nil {
		t := time.Unix(*m.PaidAt, 0).UTC()
		paidAt = &t
	}

	var payload map[string]string
	if len(m.CallbackPayload) > 0 {
		if err := json.Unmarshal(m.CallbackPayload, &payload); err != nil {
			return nil, fmt.Errorf("order %s: decode callback payload: %w", m.OrderID, err)
		}
	}

	return order.ReconstructOrder(m.OrderID, m.UserID, m.PlanID, status, m.PaymentMethod,
		m.PaymentAmount, currency, time.Unix(m.CreatedAt, 0).UTC(), paidAt, payload), nil
}

// EncodePayload serializes a verified callback for the audit column.
func EncodePayload(payload map[string]string) (datatypes.JSON, error) {
	if len(payload) == 0 {
		return nil, nil
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode callback payload: %w", err)
	}
	return datatypes.JSON(b), nil
}
