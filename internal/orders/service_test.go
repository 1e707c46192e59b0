package orders

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/angelmondragon/shophub-backend/internal/checkout/reservation"
	"github.com/angelmondragon/shophub-backend/pkg/auth"
	"github.com/angelmondragon/shophub-backend/pkg/db"
	"github.com/angelmondragon/shophub-backend/pkg/db/dbtest"
	"github.com/angelmondragon/shophub-backend/pkg/db/models"
	"github.com/angelmondragon/shophub-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/shophub-backend/pkg/errors"
	"github.com/angelmondragon/shophub-backend/pkg/logger"
	"github.com/angelmondragon/shophub-backend/pkg/metrics"
	"github.com/angelmondragon/shophub-backend/pkg/pagination"
	"github.com/angelmondragon/shophub-backend/pkg/types"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fixture struct {
	conn     *gorm.DB
	svc      Service
	registry *prometheus.Registry
	alice    auth.Identity
	bob      auth.Identity
	mug      *models.Product
	lamp     *models.Product
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	conn := dbtest.Open(t)
	registry := prometheus.NewRegistry()
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})

	svc, err := NewService(NewRepository(conn), db.Wrap(conn), reservation.Releaser{}, metrics.NewOrderMetrics(registry), logg)
	require.NoError(t, err)

	home := dbtest.MustCreateCategory(t, conn, "Home", "home")
	return &fixture{
		conn:     conn,
		svc:      svc,
		registry: registry,
		alice:    auth.User(dbtest.MustCreateUser(t, conn, "alice").ID),
		bob:      auth.User(dbtest.MustCreateUser(t, conn, "bob").ID),
		mug:      dbtest.MustCreateProduct(t, conn, dbtest.ProductSeed{Name: "Mug", Brand: "Potter", Price: "30.00", Stock: 3, CategoryID: &home.ID}),
		lamp:     dbtest.MustCreateProduct(t, conn, dbtest.ProductSeed{Name: "Lamp", Price: "10.00", Stock: 1}),
	}
}

type itemSeed struct {
	product *models.Product
	qty     int
	price   string
}

// placeOrder writes an order the way checkout leaves it, minus the stock move.
func (f *fixture) placeOrder(t *testing.T, owner auth.Identity, status enums.OrderStatus, createdAt time.Time, items ...itemSeed) *models.Order {
	t.Helper()
	userID := owner.UserID
	subtotal := decimal.Zero
	for _, item := range items {
		subtotal = subtotal.Add(decimal.RequireFromString(item.price).Mul(decimal.NewFromInt(int64(item.qty))))
	}
	tax := subtotal.Mul(decimal.RequireFromString("0.08")).Round(2)
	order := &models.Order{
		UserID:          &userID,
		TotalAmount:     subtotal.Add(tax),
		TaxAmount:       tax,
		ShippingAmount:  decimal.Zero,
		Status:          status,
		ShippingAddress: types.ShippingAddress{FirstName: "Ada", LastName: "L", Email: "ada@example.com", Address: "1 Row", City: "London", ZipCode: "N1", Country: "UK"},
		CreatedAt:       createdAt,
	}
	require.NoError(t, f.conn.Omit("Items", "User").Create(order).Error)
	for _, item := range items {
		require.NoError(t, f.conn.Omit("Product").Create(&models.OrderItem{
			OrderID:   order.ID,
			ProductID: item.product.ID,
			Quantity:  item.qty,
			Price:     decimal.RequireFromString(item.price),
		}).Error)
	}
	return order
}

func requireCode(t *testing.T, err error, code pkgerrors.Code) {
	t.Helper()
	require.Error(t, err)
	require.True(t, pkgerrors.IsCode(err, code), "expected %s, got %v", code, err)
}

func TestOrderNumber(t *testing.T) {
	require.Equal(t, "ORD-000042", OrderNumber(42))
	require.Equal(t, "ORD-1234567", OrderNumber(1234567))
}

func TestNewServiceValidatesDependencies(t *testing.T) {
	conn := dbtest.Open(t)
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})

	_, err := NewService(nil, db.Wrap(conn), reservation.Releaser{}, nil, logg)
	require.Error(t, err)
	_, err = NewService(NewRepository(conn), nil, reservation.Releaser{}, nil, logg)
	require.Error(t, err)
	_, err = NewService(NewRepository(conn), db.Wrap(conn), nil, nil, logg)
	require.Error(t, err)
	_, err = NewService(NewRepository(conn), db.Wrap(conn), reservation.Releaser{}, nil, nil)
	require.Error(t, err)
}

func TestListOrdersNewestFirstWithPagination(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	first := f.placeOrder(t, f.alice, enums.OrderStatusPending, base, itemSeed{f.mug, 1, "30.00"})
	second := f.placeOrder(t, f.alice, enums.OrderStatusShipped, base.Add(time.Hour), itemSeed{f.mug, 1, "30.00"}, itemSeed{f.lamp, 1, "10.00"})
	third := f.placeOrder(t, f.alice, enums.OrderStatusPending, base.Add(2*time.Hour), itemSeed{f.lamp, 1, "10.00"})
	f.placeOrder(t, f.bob, enums.OrderStatusPending, base.Add(3*time.Hour), itemSeed{f.lamp, 1, "10.00"})

	page, err := f.svc.ListOrders(ctx, f.alice, pagination.Params{Page: 1, Limit: 2})
	require.NoError(t, err)
	require.Len(t, page.Orders, 2)
	require.Equal(t, third.ID, page.Orders[0].ID)
	require.Equal(t, second.ID, page.Orders[1].ID)
	require.EqualValues(t, 2, page.Orders[1].ItemCount)
	require.Equal(t, OrderNumber(third.ID), page.Orders[0].OrderNumber)
	require.Equal(t, pagination.Page{CurrentPage: 1, TotalPages: 2, Total: 3, PerPage: 2, HasNext: true, HasPrev: false}, page.Pagination)

	page, err = f.svc.ListOrders(ctx, f.alice, pagination.Params{Page: 2, Limit: 2})
	require.NoError(t, err)
	require.Len(t, page.Orders, 1)
	require.Equal(t, first.ID, page.Orders[0].ID)
	require.True(t, page.Pagination.HasPrev)
	require.False(t, page.Pagination.HasNext)

	defaults, err := f.svc.ListOrders(ctx, f.bob, pagination.Params{})
	require.NoError(t, err)
	require.Len(t, defaults.Orders, 1)
	require.Equal(t, pagination.DefaultOrdersLimit, defaults.Pagination.PerPage)

	_, err = f.svc.ListOrders(ctx, auth.Guest(), pagination.Params{})
	requireCode(t, err, pkgerrors.CodeUnauthorized)
}

func TestGetOrderReturnsItemsWithSnapshotPrices(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	order := f.placeOrder(t, f.alice, enums.OrderStatusPending, time.Now().UTC(), itemSeed{f.mug, 2, "25.00"})

	require.NoError(t, f.conn.Model(&models.Product{}).Where("id = ?", f.mug.ID).Update("price", "31.00").Error)

	detail, err := f.svc.GetOrder(ctx, f.alice, order.ID)
	require.NoError(t, err)
	require.Equal(t, OrderNumber(order.ID), detail.OrderNumber)
	require.Equal(t, "50.00", detail.Order.Subtotal.StringFixed(2))
	require.Equal(t, "54.00", detail.Order.TotalAmount.StringFixed(2))
	require.Equal(t, "London", detail.Order.ShippingAddress.City)
	require.Len(t, detail.Items, 1)

	item := detail.Items[0]
	require.Equal(t, "Mug", item.Name)
	require.Equal(t, "Potter", item.Brand)
	require.Equal(t, "Home", item.CategoryName)
	require.Equal(t, "home", item.CategorySlug)
	require.Equal(t, "25.00", item.Price.StringFixed(2))
	require.Equal(t, "50.00", item.ItemTotal.StringFixed(2))

	_, err = f.svc.GetOrder(ctx, f.bob, order.ID)
	requireCode(t, err, pkgerrors.CodeNotFound)
	_, err = f.svc.GetOrder(ctx, f.alice, order.ID+100)
	requireCode(t, err, pkgerrors.CodeNotFound)
}

func TestCancelRestoresStock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	order := f.placeOrder(t, f.alice, enums.OrderStatusPending, time.Now().UTC(), itemSeed{f.mug, 2, "30.00"}, itemSeed{f.lamp, 1, "10.00"})

	cancelled, err := f.svc.Cancel(ctx, f.alice, order.ID)
	require.NoError(t, err)
	require.Equal(t, enums.OrderStatusCancelled, cancelled.Status)
	require.Equal(t, 5, dbtest.StockOf(t, f.conn, f.mug.ID))
	require.Equal(t, 2, dbtest.StockOf(t, f.conn, f.lamp.ID))
	require.Equal(t, 1, testutil.CollectAndCount(f.registry, "shop_order_cancellations_total"))
}

func TestCancelTwiceIsStateConflict(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	order := f.placeOrder(t, f.alice, enums.OrderStatusPending, time.Now().UTC(), itemSeed{f.mug, 2, "30.00"})

	_, err := f.svc.Cancel(ctx, f.alice, order.ID)
	require.NoError(t, err)

	_, err = f.svc.Cancel(ctx, f.alice, order.ID)
	requireCode(t, err, pkgerrors.CodeStateConflict)
	require.Equal(t, 5, dbtest.StockOf(t, f.conn, f.mug.ID))
}

func TestConcurrentCancelRestoresStockOnce(t *testing.T) {
	f := newFixture(t)
	order := f.placeOrder(t, f.alice, enums.OrderStatusPending, time.Now().UTC(), itemSeed{f.mug, 2, "30.00"})

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.svc.Cancel(context.Background(), f.alice, order.ID)
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		requireCode(t, err, pkgerrors.CodeStateConflict)
	}
	require.Equal(t, 1, succeeded)
	require.Equal(t, 5, dbtest.StockOf(t, f.conn, f.mug.ID))
}

func TestCancelRejectsNonPendingAndForeignOrders(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	shipped := f.placeOrder(t, f.alice, enums.OrderStatusShipped, time.Now().UTC(), itemSeed{f.mug, 1, "30.00"})
	pending := f.placeOrder(t, f.alice, enums.OrderStatusPending, time.Now().UTC(), itemSeed{f.mug, 1, "30.00"})

	_, err := f.svc.Cancel(ctx, f.alice, shipped.ID)
	requireCode(t, err, pkgerrors.CodeStateConflict)
	require.Equal(t, map[string]any{"status": enums.OrderStatusShipped}, pkgerrors.As(err).Details())

	_, err = f.svc.Cancel(ctx, f.bob, pending.ID)
	requireCode(t, err, pkgerrors.CodeNotFound)

	_, err = f.svc.Cancel(ctx, auth.Guest(), pending.ID)
	requireCode(t, err, pkgerrors.CodeUnauthorized)

	require.Equal(t, 3, dbtest.StockOf(t, f.conn, f.mug.ID))
}
