package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/angelmondragon/shophub-backend/pkg/auth"
	"github.com/angelmondragon/shophub-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/shophub-backend/pkg/errors"
	"github.com/angelmondragon/shophub-backend/pkg/logger"
	"github.com/angelmondragon/shophub-backend/pkg/metrics"
	"github.com/angelmondragon/shophub-backend/pkg/pagination"
	"gorm.io/gorm"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// InventoryReleaser returns stock when an order is cancelled.
type InventoryReleaser interface {
	Release(ctx context.Context, tx *gorm.DB, productID uint, qty int) error
}

// Service exposes a user's order history and cancellation.
type Service interface {
	ListOrders(ctx context.Context, identity auth.Identity, params pagination.Params) (*OrderList, error)
	GetOrder(ctx context.Context, identity auth.Identity, orderID uint) (*OrderDetail, error)
	Cancel(ctx context.Context, identity auth.Identity, orderID uint) (*OrderDTO, error)
}

type service struct {
	repo      Repository
	tx        txRunner
	inventory InventoryReleaser
	metrics   *metrics.OrderMetrics
	logg      *logger.Logger
}

// NewService builds the order service. A nil recorder disables metrics.
func NewService(repo Repository, tx txRunner, inventory InventoryReleaser, recorder *metrics.OrderMetrics, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if inventory == nil {
		return nil, fmt.Errorf("inventory releaser required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		repo:      repo,
		tx:        tx,
		inventory: inventory,
		metrics:   recorder,
		logg:      logg,
	}, nil
}

func (s *service) ListOrders(ctx context.Context, identity auth.Identity, params pagination.Params) (*OrderList, error) {
	if identity.IsGuest() {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	params = params.Normalize(pagination.DefaultOrdersLimit)

	rows, total, err := s.repo.ListOrders(ctx, identity.UserID, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list orders")
	}
	return &OrderList{Orders: rows, Pagination: pagination.NewPage(params, total)}, nil
}

func (s *service) GetOrder(ctx context.Context, identity auth.Identity, orderID uint) (*OrderDetail, error) {
	if identity.IsGuest() {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	order, err := s.repo.FindOrder(ctx, identity.UserID, orderID)
	if err != nil {
		return nil, notFoundOr(err, "load order")
	}
	items, err := s.repo.ListItems(ctx, order.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load order items")
	}
	return &OrderDetail{Order: *order, Items: items, OrderNumber: order.OrderNumber}, nil
}

// Cancel moves a pending order to cancelled and returns its stock, atomically.
func (s *service) Cancel(ctx context.Context, identity auth.Identity, orderID uint) (result *OrderDTO, err error) {
	started := time.Now()
	defer func() {
		s.metrics.ObserveCancel(cancelOutcome(err), time.Since(started))
	}()

	if identity.IsGuest() {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	ctx = s.logg.WithOrderID(s.logg.WithUserID(ctx, identity.UserID), orderID)

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		order, err := repo.FindOrder(ctx, identity.UserID, orderID)
		if err != nil {
			return notFoundOr(err, "load order")
		}
		if order.Status != enums.OrderStatusPending {
			return notPending(order.Status)
		}

		affected, err := repo.MarkCancelled(ctx, order.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update order status")
		}
		if affected == 0 {
			return notPending(enums.OrderStatusCancelled)
		}

		items, err := repo.ItemQuantities(ctx, order.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load order items")
		}
		for _, item := range items {
			if err := s.inventory.Release(ctx, tx, item.ProductID, item.Quantity); err != nil {
				return err
			}
		}

		result, err = repo.FindOrder(ctx, identity.UserID, order.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reload order")
		}
		return nil
	})
	if err != nil {
		if pkgerrors.IsCode(err, pkgerrors.CodeInternal) {
			s.logg.Error(ctx, "orders.cancel_failed", err)
		}
		return nil, err
	}

	s.logg.Info(ctx, "orders.cancelled")
	return result, nil
}

func notPending(status enums.OrderStatus) error {
	return pkgerrors.New(pkgerrors.CodeStateConflict, "only pending orders can be cancelled").
		WithDetails(map[string]any{"status": status})
}

func notFoundOr(err error, internalMsg string) error {
	if typed := pkgerrors.As(err); typed != nil {
		return typed
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, internalMsg)
}

func cancelOutcome(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeSuccess
	case pkgerrors.IsCode(err, pkgerrors.CodeNotFound):
		return metrics.OutcomeNotFound
	case pkgerrors.IsCode(err, pkgerrors.CodeStateConflict):
		return metrics.OutcomeInvalidState
	default:
		return metrics.OutcomeError
	}
}
