// Package models holds the gorm row types of the order store.
package models

// All lists every model for gorm AutoMigrate.
func All() []any {
	return []any{&PlanModel{}, &OrderModel{}, &SubscriptionModel{}}
}
