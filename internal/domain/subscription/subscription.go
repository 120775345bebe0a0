package subscription

import (
	"fmt"
	"time"

	planvo "github.com/rolegate/rolegate/internal/domain/plan/valueobjects"
)

// Subscription records that a user holds a role until expireDate (unix
// seconds) or forever when expireDate is planvo.ForeverExpiry.
type Subscription struct {
	id         uint
	userID     string
	roleID     string
	planID     uint
	orderID    string
	expireDate int64
	createdAt  time.Time
}

// NewSubscription starts a subscription at now. planID and orderID are zero
// values for manual grants.
func NewSubscription(userID, roleID string, planID uint, orderID string, duration planvo.Duration, now time.Time) (*Subscription, error) {
	if userID == "" {
		return nil, fmt.Errorf("user id is required")
	}
	if roleID == "" {
		return nil, fmt.Errorf("role id is required")
	}
	if duration.Months() == 0 {
		return nil, fmt.Errorf("duration is required")
	}
	return &Subscription{
		userID:     userID,
		roleID:     roleID,
		planID:     planID,
		orderID:    orderID,
		expireDate: duration.ExpiryFrom(now),
		createdAt:  now.UTC(),
	}, nil
}

func ReconstructSubscription(id uint, userID, roleID string, planID uint, orderID string, expireDate int64, createdAt time.Time) *Subscription {
	return &Subscription{
		id:         id,
		userID:     userID,
		roleID:     roleID,
		planID:     planID,
		orderID:    orderID,
		expireDate: expireDate,
		createdAt:  createdAt,
	}
}

func (s *Subscription) IsForever() bool {
	return s.expireDate == planvo.ForeverExpiry
}

// IsExpiredAt reports whether the subscription is due for revocation at now.
func (s *Subscription) IsExpiredAt(now time.Time) bool {
	return !s.IsForever() && s.expireDate < now.Unix()
}

func (s *Subscription) SetID(id uint) {
	s.id = id
}

func (s *Subscription) ID() uint {
	return s.id
}

func (s *Subscription) UserID() string {
	return s.userID
}

func (s *Subscription) RoleID() string {
	return s.roleID
}

func (s *Subscription) PlanID() uint {
	return s.planID
}

func (s *Subscription) OrderID() string {
	return s.orderID
}

func (s *Subscription) ExpireDate() int64 {
	return s.expireDate
}

func (s *Subscription) CreatedAt() time.Time {
	return s.createdAt
}
