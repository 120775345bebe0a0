package mappers

import (
	"time"

	"github.com/rolegate/rolegate/internal/domain/subscription"
	"github.com/rolegate/rolegate/internal/infrastructure/persistence/models"
)

func SubscriptionToModel(s *subscription.Subscription) *models.SubscriptionModel {
	m := &models.SubscriptionModel{
		ID:         s.ID(),
		UserID:     s.UserID(),
		RoleID:     s.RoleID(),
		PlanID:     s.PlanID(),
		ExpireDate: s.ExpireDate(),
		CreatedAt:  s.CreatedAt().Unix(),
	}
	if orderID := s.OrderID(); orderID != "" {
		m.OrderID = &orderID
	}
	return m
}

func SubscriptionToDomain(m *models.SubscriptionModel) *subscription.Subscription {
	var orderID string
	if m.OrderID != nil {
		orderID = *m.OrderID
	}
	return subscription.ReconstructSubscription(m.ID, m.UserID, m.RoleID, m.PlanID, orderID,
		m.ExpireDate, time.Unix(m.CreatedAt, 0).UTC())
}
