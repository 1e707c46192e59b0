package orders

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/angelmondragon/shophub-backend/pkg/db/models"
	"github.com/angelmondragon/shophub-backend/pkg/enums"
	"github.com/angelmondragon/shophub-backend/pkg/pagination"
	"github.com/angelmondragon/shophub-backend/pkg/types"
	"github.com/shopspring/decimal"
)

// OrderNumber renders the customer-facing order reference.
func OrderNumber(id uint) string {
	return fmt.Sprintf("ORD-%06d", id)
}

// OrderDTO is the transport shape of an order header.
type OrderDTO struct {
	ID              uint                  `json:"id"`
	OrderNumber     string                `json:"order_number"`
	Status          enums.OrderStatus     `json:"status"`
	Subtotal        types.Money           `json:"subtotal"`
	TaxAmount       types.Money           `json:"tax_amount"`
	ShippingAmount  types.Money           `json:"shipping_amount"`
	TotalAmount     types.Money           `json:"total_amount"`
	ShippingAddress types.ShippingAddress `json:"shipping_address"`
	ItemCount       int64                 `json:"item_count"`
	CreatedAt       time.Time             `json:"created_at"`
	UpdatedAt       time.Time             `json:"updated_at"`
}

// FromModel maps an order row onto its DTO.
func FromModel(o *models.Order, itemCount int64) OrderDTO {
	subtotal := o.TotalAmount.Sub(o.TaxAmount).Sub(o.ShippingAmount)
	return OrderDTO{
		ID:              o.ID,
		OrderNumber:     OrderNumber(o.ID),
		Status:          o.Status,
		Subtotal:        types.NewMoney(subtotal),
		TaxAmount:       types.NewMoney(o.TaxAmount),
		ShippingAmount:  types.NewMoney(o.ShippingAmount),
		TotalAmount:     types.NewMoney(o.TotalAmount),
		ShippingAddress: o.ShippingAddress,
		ItemCount:       itemCount,
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
	}
}

// OrderItemDTO is an order line. Price is the snapshot taken at checkout;
// the display fields reflect the product as it is now.
type OrderItemDTO struct {
	ID           uint        `json:"id"`
	ProductID    uint        `json:"product_id"`
	Quantity     int         `json:"quantity"`
	Price        types.Money `json:"price"`
	ItemTotal    types.Money `json:"item_total"`
	Name         string      `json:"name"`
	Description  string      `json:"description,omitempty"`
	ImageURL     string      `json:"image_url,omitempty"`
	Brand        string      `json:"brand,omitempty"`
	CategoryName string      `json:"category_name,omitempty"`
	CategorySlug string      `json:"category_slug,omitempty"`
}

// OrderDetail is a single order with its items.
type OrderDetail struct {
	Order       OrderDTO       `json:"order"`
	Items       []OrderItemDTO `json:"items"`
	OrderNumber string         `json:"order_number"`
}

// OrderList is one page of a user's order history.
type OrderList struct {
	Orders     []OrderDTO      `json:"orders"`
	Pagination pagination.Page `json:"pagination"`
}

type orderRecord struct {
	ID              uint
	Status          enums.OrderStatus
	TotalAmount     decimal.Decimal
	TaxAmount       decimal.Decimal
	ShippingAmount  decimal.Decimal
	ShippingAddress types.ShippingAddress
	CreatedAt       time.Time
	UpdatedAt       time.Time
	ItemCount       int64
}

func (r orderRecord) toDTO() OrderDTO {
	return FromModel(&models.Order{
		ID:              r.ID,
		Status:          r.Status,
		TotalAmount:     r.TotalAmount,
		TaxAmount:       r.TaxAmount,
		ShippingAmount:  r.ShippingAmount,
		ShippingAddress: r.ShippingAddress,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}, r.ItemCount)
}

type itemRecord struct {
	ID           uint
	ProductID    uint
	Quantity     int
	Price        decimal.Decimal
	Name         string
	Description  sql.NullString
	ImageURL     sql.NullString
	Brand        sql.NullString
	CategoryName sql.NullString
	CategorySlug sql.NullString
}

func (r itemRecord) toDTO() OrderItemDTO {
	return OrderItemDTO{
		ID:           r.ID,
		ProductID:    r.ProductID,
		Quantity:     r.Quantity,
		Price:        types.NewMoney(r.Price),
		ItemTotal:    types.NewMoney(r.Price.Mul(decimal.NewFromInt(int64(r.Quantity)))),
		Name:         r.Name,
		Description:  r.Description.String,
		ImageURL:     r.ImageURL.String,
		Brand:        r.Brand.String,
		CategoryName: r.CategoryName.String,
		CategorySlug: r.CategorySlug.String,
	}
}
