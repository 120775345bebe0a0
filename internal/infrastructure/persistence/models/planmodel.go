package models

import "github.com/shopspring/decimal"

type PlanModel struct {
	ID             uint            `gorm:"primaryKey"`
	Name           string          `gorm:"uniqueIndex;size:64;not null"`
	Price          decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Currency       string          `gorm:"size:8;not null"`
	RoleID         string          `gorm:"size:32;not null"`
	DurationMonths int             `gorm:"not null"`
	CreatedAt      int64           `gorm:"autoCreateTime:false;not null"`
	UpdatedAt      int64           `gorm:"autoUpdateTime:false;not null"`
}

func (PlanModel) TableName() string {
	return "plans"
}
