package checkout

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/angelmondragon/shophub-backend/internal/cart"
	"github.com/angelmondragon/shophub-backend/internal/checkout/reservation"
	"github.com/angelmondragon/shophub-backend/internal/orders"
	"github.com/angelmondragon/shophub-backend/pkg/auth"
	"github.com/angelmondragon/shophub-backend/pkg/config"
	"github.com/angelmondragon/shophub-backend/pkg/db/models"
	"github.com/angelmondragon/shophub-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/shophub-backend/pkg/errors"
	"github.com/angelmondragon/shophub-backend/pkg/logger"
	"github.com/angelmondragon/shophub-backend/pkg/metrics"
	"github.com/angelmondragon/shophub-backend/pkg/types"
	"gorm.io/gorm"
)

const deliveryDateLayout = "2006-01-02"

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type reservationRunner interface {
	Decrement(ctx context.Context, tx *gorm.DB, requests []reservation.StockRequest) error
}

type reservationEngine struct{}

func (reservationEngine) Decrement(ctx context.Context, tx *gorm.DB, requests []reservation.StockRequest) error {
	return reservation.Decrement(ctx, tx, requests)
}

// Service turns a user's cart into an order.
type Service interface {
	Checkout(ctx context.Context, identity auth.Identity, address types.ShippingAddress) (*PlacedOrder, error)
	Summary(ctx context.Context, identity auth.Identity) (*Summary, error)
}

// ServiceParams bundles the checkout dependencies. Reservation defaults to
// the conditional stock decrement; Metrics may be nil.
type ServiceParams struct {
	Tx          txRunner
	CartRepo    cart.Repository
	OrdersRepo  orders.Repository
	Reservation reservationRunner
	Store       config.StoreConfig
	Metrics     *metrics.OrderMetrics
	Logger      *logger.Logger
}

type service struct {
	tx          txRunner
	cartRepo    cart.Repository
	ordersRepo  orders.Repository
	reservation reservationRunner
	pricing     cart.Pricing
	store       config.StoreConfig
	metrics     *metrics.OrderMetrics
	logg        *logger.Logger
}

// NewService builds the checkout service.
func NewService(params ServiceParams) (Service, error) {
	if params.Tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if params.CartRepo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if params.OrdersRepo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Reservation == nil {
		params.Reservation = reservationEngine{}
	}
	return &service{
		tx:          params.Tx,
		cartRepo:    params.CartRepo,
		ordersRepo:  params.OrdersRepo,
		reservation: params.Reservation,
		pricing:     cart.PricingFromConfig(params.Store),
		store:       params.Store,
		metrics:     params.Metrics,
		logg:        params.Logger,
	}, nil
}

func (s *service) Checkout(ctx context.Context, identity auth.Identity, address types.ShippingAddress) (placed *PlacedOrder, err error) {
	started := time.Now()
	units := 0
	defer func() {
		s.metrics.ObserveCheckout(checkoutOutcome(err), units, time.Since(started))
	}()

	if identity.IsGuest() {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "please log in to complete checkout")
	}
	if strings.TrimSpace(address.Address) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "shipping address is required")
	}
	ctx = s.logg.WithUserID(ctx, identity.UserID)

	lines, err := s.cartRepo.ListLines(ctx, identity.UserID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load cart")
	}
	if len(lines) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeEmptyCart, "cart is empty, cannot process checkout")
	}
	// Advisory only; the conditional decrement below is authoritative.
	for _, line := range lines {
		if line.Quantity > line.Stock {
			return nil, pkgerrors.InsufficientStock(line.ProductID, line.ProductName, line.Stock, line.Quantity)
		}
	}

	summary := cart.Summarize(cart.PricedLines(lines), s.pricing)

	var created *orders.OrderDTO
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		ordersRepo := s.ordersRepo.WithTx(tx)
		cartRepo := s.cartRepo.WithTx(tx)

		userID := identity.UserID
		order := &models.Order{
			UserID:          &userID,
			TotalAmount:     summary.Total,
			TaxAmount:       summary.Tax,
			ShippingAmount:  summary.Shipping,
			Status:          enums.OrderStatusPending,
			ShippingAddress: address,
		}
		if err := ordersRepo.CreateOrder(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create order")
		}

		items := make([]models.OrderItem, 0, len(lines))
		requests := make([]reservation.StockRequest, 0, len(lines))
		for _, line := range lines {
			items = append(items, models.OrderItem{
				OrderID:   order.ID,
				ProductID: line.ProductID,
				Quantity:  line.Quantity,
				Price:     line.Price,
			})
			requests = append(requests, reservation.StockRequest{
				ProductID:   line.ProductID,
				ProductName: line.ProductName,
				Qty:         line.Quantity,
			})
		}
		if err := ordersRepo.CreateItems(ctx, items); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create order items")
		}
		if err := s.reservation.Decrement(ctx, tx, requests); err != nil {
			return err
		}
		if err := cartRepo.RemoveOrdered(ctx, identity.UserID, lines); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "clear ordered cart lines")
		}

		reloaded, err := ordersRepo.FindOrder(ctx, identity.UserID, order.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reload order")
		}
		created = reloaded
		return nil
	})
	if err != nil {
		if typed := pkgerrors.As(err); typed == nil || typed.Code() == pkgerrors.CodeInternal {
			s.logg.Error(ctx, "checkout.failed", err)
		} else {
			s.logg.Warn(ctx, "checkout.rejected: "+typed.Message())
		}
		return nil, err
	}

	units = summary.TotalQuantity
	ctx = s.logg.WithOrderID(ctx, created.ID)
	s.logg.Info(ctx, "checkout.order_placed")

	return &PlacedOrder{
		Order:             *created,
		OrderNumber:       created.OrderNumber,
		EstimatedDelivery: created.CreatedAt.AddDate(0, 0, s.store.DeliveryDays).Format(deliveryDateLayout),
	}, nil
}

func (s *service) Summary(ctx context.Context, identity auth.Identity) (*Summary, error) {
	var lines []cart.Line
	if !identity.IsGuest() {
		loaded, err := s.cartRepo.ListLines(ctx, identity.UserID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load cart")
		}
		lines = loaded
	}
	return &Summary{
		CartSummary: cart.Summarize(cart.PricedLines(lines), s.pricing).DTO(),
		ShippingInfo: ShippingInfo{
			FreeShippingThreshold: types.NewMoney(s.store.FreeShippingThreshold),
			StandardShippingCost:  types.NewMoney(s.store.StandardShipping),
			EstimatedDeliveryDays: s.store.SummaryDeliveryDays,
			ReturnPolicyDays:      s.store.ReturnPolicyDays,
		},
	}, nil
}

func checkoutOutcome(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeSuccess
	case pkgerrors.IsCode(err, pkgerrors.CodeEmptyCart):
		return metrics.OutcomeEmptyCart
	case pkgerrors.IsCode(err, pkgerrors.CodeInsufficient):
		return metrics.OutcomeInsufficientStock
	default:
		return metrics.OutcomeError
	}
}
