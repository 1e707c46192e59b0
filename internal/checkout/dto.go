package checkout

import (
	"github.com/angelmondragon/shophub-backend/internal/cart"
	"github.com/angelmondragon/shophub-backend/internal/orders"
	"github.com/angelmondragon/shophub-backend/pkg/types"
)

// ProcessRequest is the checkout payload.
type ProcessRequest struct {
	ShippingAddress types.ShippingAddress `json:"shipping_address" validate:"required"`
}

// PlacedOrder is returned by a successful checkout.
type PlacedOrder struct {
	Order             orders.OrderDTO `json:"order"`
	OrderNumber       string          `json:"order_number"`
	EstimatedDelivery string          `json:"estimated_delivery"`
}

// ShippingInfo describes the store's shipping and returns policy.
type ShippingInfo struct {
	FreeShippingThreshold types.Money `json:"free_shipping_threshold"`
	StandardShippingCost  types.Money `json:"standard_shipping_cost"`
	EstimatedDeliveryDays int         `json:"estimated_delivery_days"`
	ReturnPolicyDays      int         `json:"return_policy_days"`
}

// Summary is the pre-checkout view of the cart totals.
type Summary struct {
	CartSummary  cart.SummaryDTO `json:"cart_summary"`
	ShippingInfo ShippingInfo    `json:"shipping_info"`
}
