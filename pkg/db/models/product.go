package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/shophub-backend/pkg/types"
)

// Product is a catalog listing. Stock is only mutated by checkout and cancellation.
type Product struct {
	ID              uint             `gorm:"column:id;primaryKey;autoIncrement"`
	Name            string           `gorm:"column:name;size:255;not null"`
	Description     string           `gorm:"column:description"`
	LongDescription string           `gorm:"column:long_description"`
	Price           decimal.Decimal  `gorm:"column:price;type:numeric(10,2);not null"`
	CategoryID      *uint            `gorm:"column:category_id;index"`
	Category        *Category        `gorm:"foreignKey:CategoryID;constraint:OnDelete:SET NULL"`
	ImageURL        string           `gorm:"column:image_url"`
	Rating          decimal.Decimal  `gorm:"column:rating;type:numeric(3,2);not null;default:0"`
	Stock           int              `gorm:"column:stock;not null;default:0;check:stock >= 0"`
	Brand           string           `gorm:"column:brand;size:100"`
	Features        types.StringList `gorm:"column:features;type:jsonb"`
	CreatedAt       time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}
