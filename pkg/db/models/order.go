package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/shophub-backend/pkg/enums"
	"github.com/angelmondragon/shophub-backend/pkg/types"
)

// Order is created atomically with its items at checkout.
type Order struct {
	ID              uint                  `gorm:"column:id;primaryKey;autoIncrement"`
	UserID          *uint                 `gorm:"column:user_id;index"`
	User            *User                 `gorm:"foreignKey:UserID;constraint:OnDelete:SET NULL"`
	TotalAmount     decimal.Decimal       `gorm:"column:total_amount;type:numeric(10,2);not null"`
	TaxAmount       decimal.Decimal       `gorm:"column:tax_amount;type:numeric(10,2);not null;default:0"`
	ShippingAmount  decimal.Decimal       `gorm:"column:shipping_amount;type:numeric(10,2);not null;default:0"`
	Status          enums.OrderStatus     `gorm:"column:status;type:varchar(20);not null;default:'pending'"`
	ShippingAddress types.ShippingAddress `gorm:"column:shipping_address;type:jsonb"`
	Items           []OrderItem           `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt       time.Time             `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time             `gorm:"column:updated_at;autoUpdateTime"`
}
