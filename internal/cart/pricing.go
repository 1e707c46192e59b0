package cart

import (
	"github.com/angelmondragon/shophub-backend/pkg/config"
	"github.com/angelmondragon/shophub-backend/pkg/types"
	"github.com/shopspring/decimal"
)

// Pricing holds the constants the totals computation depends on.
type Pricing struct {
	TaxRate               decimal.Decimal
	FreeShippingThreshold decimal.Decimal
	StandardShipping      decimal.Decimal
}

// PricingFromConfig maps the store configuration onto Pricing.
func PricingFromConfig(cfg config.StoreConfig) Pricing {
	return Pricing{
		TaxRate:               cfg.TaxRate,
		FreeShippingThreshold: cfg.FreeShippingThreshold,
		StandardShipping:      cfg.StandardShipping,
	}
}

// DefaultPricing is 8% tax with free shipping strictly above 50.00, else 5.99.
func DefaultPricing() Pricing {
	return Pricing{
		TaxRate:               decimal.RequireFromString("0.08"),
		FreeShippingThreshold: decimal.RequireFromString("50.00"),
		StandardShipping:      decimal.RequireFromString("5.99"),
	}
}

// PricedLine is a quantity at the current unit price.
type PricedLine struct {
	UnitPrice decimal.Decimal
	Quantity  int
}

// Summary is the totals breakdown for a set of lines. Every amount is
// rounded to cents and Total is exactly Subtotal + Tax + Shipping.
type Summary struct {
	Subtotal      decimal.Decimal
	Tax           decimal.Decimal
	Shipping      decimal.Decimal
	Total         decimal.Decimal
	TaxRate       decimal.Decimal
	ItemCount     int
	TotalQuantity int
}

// Summarize computes the totals shared by the cart view, cart summary,
// checkout summary and checkout itself.
func Summarize(lines []PricedLine, p Pricing) Summary {
	subtotal := decimal.Zero
	quantity := 0
	for _, line := range lines {
		subtotal = subtotal.Add(line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity))))
		quantity += line.Quantity
	}
	subtotal = subtotal.Round(2)

	tax := subtotal.Mul(p.TaxRate).Round(2)
	shipping := p.StandardShipping.Round(2)
	if subtotal.GreaterThan(p.FreeShippingThreshold) {
		shipping = decimal.Zero
	}

	return Summary{
		Subtotal:      subtotal,
		Tax:           tax,
		Shipping:      shipping,
		Total:         subtotal.Add(tax).Add(shipping),
		TaxRate:       p.TaxRate,
		ItemCount:     len(lines),
		TotalQuantity: quantity,
	}
}

// SummaryDTO is the JSON shape of Summary.
type SummaryDTO struct {
	Subtotal      types.Money `json:"subtotal"`
	TaxRate       float64     `json:"tax_rate"`
	TaxAmount     types.Money `json:"tax_amount"`
	ShippingCost  types.Money `json:"shipping_cost"`
	Total         types.Money `json:"total"`
	ItemCount     int         `json:"item_count"`
	TotalQuantity int         `json:"total_quantity"`
}

func (s Summary) DTO() SummaryDTO {
	return SummaryDTO{
		Subtotal:      types.NewMoney(s.Subtotal),
		TaxRate:       s.TaxRate.InexactFloat64(),
		TaxAmount:     types.NewMoney(s.Tax),
		ShippingCost:  types.NewMoney(s.Shipping),
		Total:         types.NewMoney(s.Total),
		ItemCount:     s.ItemCount,
		TotalQuantity: s.TotalQuantity,
	}
}
