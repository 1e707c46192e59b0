package orders

import (
	"context"
	"strings"
	"time"

	"github.com/angelmondragon/shophub-backend/pkg/db/models"
	"github.com/angelmondragon/shophub-backend/pkg/enums"
	"github.com/angelmondragon/shophub-backend/pkg/pagination"
	"gorm.io/gorm"
)

var orderColumns = strings.Join([]string{
	"o.id",
	"o.status",
	"o.total_amount",
	"o.tax_amount",
	"o.shipping_amount",
	"o.shipping_address",
	"o.created_at",
	"o.updated_at",
	"(SELECT COUNT(*) FROM order_items oi WHERE oi.order_id = o.id) AS item_count",
}, ", ")

var itemColumns = strings.Join([]string{
	"oi.id",
	"oi.product_id",
	"oi.quantity",
	"oi.price",
	"p.name",
	"p.description",
	"p.image_url",
	"p.brand",
	"c.name AS category_name",
	"c.slug AS category_slug",
}, ", ")

// Repository defines persistence operations for orders and order items.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateOrder(ctx context.Context, order *models.Order) error
	CreateItems(ctx context.Context, items []models.OrderItem) error
	FindOrder(ctx context.Context, userID, orderID uint) (*OrderDTO, error)
	ListOrders(ctx context.Context, userID uint, params pagination.Params) ([]OrderDTO, int64, error)
	ListItems(ctx context.Context, orderID uint) ([]OrderItemDTO, error)
	ItemQuantities(ctx context.Context, orderID uint) ([]models.OrderItem, error)
	MarkCancelled(ctx context.Context, orderID uint) (int64, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository constructs an orders repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateOrder(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).Omit("Items", "User").Create(order).Error
}

func (r *repository) CreateItems(ctx context.Context, items []models.OrderItem) error {
	if len(items) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Omit("Product").Create(&items).Error
}

func (r *repository) owned(ctx context.Context, userID uint) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("orders o").
		Select(orderColumns).
		Where("o.user_id = ?", userID)
}

// FindOrder loads an order only if it belongs to userID.
func (r *repository) FindOrder(ctx context.Context, userID, orderID uint) (*OrderDTO, error) {
	var rows []orderRecord
	if err := r.owned(ctx, userID).Where("o.id = ?", orderID).Limit(1).Scan(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	dto := rows[0].toDTO()
	return &dto, nil
}

// ListOrders returns one page of the user's orders, newest first.
func (r *repository) ListOrders(ctx context.Context, userID uint, params pagination.Params) ([]OrderDTO, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.Order{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []orderRecord
	err := r.owned(ctx, userID).
		Order("o.created_at DESC, o.id DESC").
		Limit(params.Limit).
		Offset(params.Offset()).
		Scan(&rows).Error
	if err != nil {
		return nil, 0, err
	}

	out := make([]OrderDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDTO())
	}
	return out, total, nil
}

// ListItems joins each item with the product's current display fields.
func (r *repository) ListItems(ctx context.Context, orderID uint) ([]OrderItemDTO, error) {
	var rows []itemRecord
	err := r.db.WithContext(ctx).
		Table("order_items oi").
		Select(itemColumns).
		Joins("JOIN products p ON p.id = oi.product_id").
		Joins("LEFT JOIN categories c ON c.id = p.category_id").
		Where("oi.order_id = ?", orderID).
		Order("oi.id ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]OrderItemDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDTO())
	}
	return out, nil
}

func (r *repository) ItemQuantities(ctx context.Context, orderID uint) ([]models.OrderItem, error) {
	var items []models.OrderItem
	err := r.db.WithContext(ctx).
		Select("id", "order_id", "product_id", "quantity").
		Where("order_id = ?", orderID).
		Order("id ASC").
		Find(&items).Error
	return items, err
}

// MarkCancelled moves a pending order to cancelled. Zero rows affected means
// the order was no longer pending.
func (r *repository) MarkCancelled(ctx context.Context, orderID uint) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ? AND status = ?", orderID, enums.OrderStatusPending).
		Updates(map[string]any{
			"status":     enums.OrderStatusCancelled,
			"updated_at": time.Now().UTC(),
		})
	return res.RowsAffected, res.Error
}
