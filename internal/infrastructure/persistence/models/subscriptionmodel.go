package models

// SubscriptionModel stores expire_date as unix seconds, -1 for forever.
// OrderID is NULL for manual grants and unique otherwise, so one order can
// never produce two subscriptions.
type SubscriptionModel struct {
	ID         uint    `gorm:"primaryKey"`
	UserID     string  `gorm:"size:32;index;not null"`
	RoleID     string  `gorm:"size:32;not null"`
	PlanID     uint    `gorm:"not null;default:0"`
	OrderID    *string `gorm:"size:32;uniqueIndex"`
	ExpireDate int64   `gorm:"index;not null"`
	CreatedAt  int64   `gorm:"autoCreateTime:false;not null"`
}

func (SubscriptionModel) TableName() string {
	return "subscriptions"
}
