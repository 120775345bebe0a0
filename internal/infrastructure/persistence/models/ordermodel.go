package models

import (
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type OrderModel struct {
	OrderID         string          `gorm:"primaryKey;size:32"`
	UserID          string          `gorm:"size:32;index;not null"`
	PlanID          uint            `gorm:"index;not null"`
	Status          string          `gorm:"size:16;index;not null"`
	PaymentMethod   string          `gorm:"size:32"`
	PaymentAmount   decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	PaymentCurrency string          `gorm:"size:8;not null"`
	CreatedAt       int64           `gorm:"autoCreateTime:false;not null"`
	PaidAt          *int64
	CallbackPayload datatypes.JSON
}

func (OrderModel) TableName() string {
	return "orders"
}
