package cart

import (
	"database/sql"
	"time"

	"github.com/angelmondragon/shophub-backend/pkg/types"
	"github.com/shopspring/decimal"
)

// Line is a cart line joined with the live product data it prices against.
type Line struct {
	ID           uint
	ProductID    uint
	Quantity     int
	ProductName  string
	Description  string
	Price        decimal.Decimal
	Stock        int
	ImageURL     string
	Brand        string
	CategoryName string
	CreatedAt    time.Time
}

// LineTotal is the current price times quantity.
func (l Line) LineTotal() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// PricedLines projects lines onto the inputs of Summarize.
func PricedLines(lines []Line) []PricedLine {
	out := make([]PricedLine, 0, len(lines))
	for _, l := range lines {
		out = append(out, PricedLine{UnitPrice: l.Price, Quantity: l.Quantity})
	}
	return out
}

// LineDTO is the transport shape of a cart line.
type LineDTO struct {
	ID           uint        `json:"id"`
	ProductID    uint        `json:"product_id"`
	Quantity     int         `json:"quantity"`
	Name         string      `json:"name"`
	Description  string      `json:"description,omitempty"`
	Price        types.Money `json:"price"`
	ImageURL     string      `json:"image_url"`
	Stock        int         `json:"stock"`
	Brand        string      `json:"brand"`
	CategoryName string      `json:"category_name,omitempty"`
	ItemTotal    types.Money `json:"item_total"`
	CreatedAt    time.Time   `json:"created_at"`
}

// CartDTO is the full cart view.
type CartDTO struct {
	Items   []LineDTO  `json:"items"`
	Summary SummaryDTO `json:"summary"`
}

// AddLineInput is the payload for adding a product to the cart.
type AddLineInput struct {
	ProductID uint `json:"product_id" validate:"required,gt=0"`
	Quantity  int  `json:"quantity" validate:"omitempty,min=1,max=1000"`
}

// UpdateLineInput is the payload for setting a line's quantity.
type UpdateLineInput struct {
	Quantity int `json:"quantity" validate:"required,min=1,max=1000"`
}

func (l Line) DTO() LineDTO {
	return LineDTO{
		ID:           l.ID,
		ProductID:    l.ProductID,
		Quantity:     l.Quantity,
		Name:         l.ProductName,
		Description:  l.Description,
		Price:        types.NewMoney(l.Price),
		ImageURL:     l.ImageURL,
		Stock:        l.Stock,
		Brand:        l.Brand,
		CategoryName: l.CategoryName,
		ItemTotal:    types.NewMoney(l.LineTotal()),
		CreatedAt:    l.CreatedAt,
	}
}

func linesToDTOs(lines []Line) []LineDTO {
	out := make([]LineDTO, 0, len(lines))
	for _, l := range lines {
		out = append(out, l.DTO())
	}
	return out
}

type lineRecord struct {
	ID           uint
	ProductID    uint
	Quantity     int
	Name         string
	Description  sql.NullString
	Price        decimal.Decimal
	Stock        int
	ImageURL     sql.NullString
	Brand        sql.NullString
	CategoryName sql.NullString
	CreatedAt    time.Time
}

func (r lineRecord) toLine() Line {
	return Line{
		ID:           r.ID,
		ProductID:    r.ProductID,
		Quantity:     r.Quantity,
		ProductName:  r.Name,
		Description:  r.Description.String,
		Price:        r.Price,
		Stock:        r.Stock,
		ImageURL:     r.ImageURL.String,
		Brand:        r.Brand.String,
		CategoryName: r.CategoryName.String,
		CreatedAt:    r.CreatedAt,
	}
}
