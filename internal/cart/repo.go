package cart

import (
	"context"
	"strings"
	"time"

	"github.com/angelmondragon/shophub-backend/pkg/db/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var lineColumns = strings.Join([]string{
	"ct.id",
	"ct.product_id",
	"ct.quantity",
	"ct.created_at",
	"p.name",
	"p.description",
	"p.price",
	"p.stock",
	"p.image_url",
	"p.brand",
	"c.name AS category_name",
}, ", ")

// Repository persists cart lines. Checkout reuses it inside its transaction.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	ListLines(ctx context.Context, userID uint) ([]Line, error)
	FindLine(ctx context.Context, userID, lineID uint) (*Line, error)
	FindLineByProduct(ctx context.Context, userID, productID uint) (*Line, error)
	AddQuantity(ctx context.Context, userID, productID uint, qty int) error
	UpdateQuantity(ctx context.Context, userID, lineID uint, qty int) (int64, error)
	DeleteLine(ctx context.Context, userID, lineID uint) (int64, error)
	Clear(ctx context.Context, userID uint) (int64, error)
	RemoveOrdered(ctx context.Context, userID uint, ordered []Line) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository constructs a cart repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) lines(ctx context.Context, userID uint) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("cart ct").
		Select(lineColumns).
		Joins("JOIN products p ON p.id = ct.product_id").
		Joins("LEFT JOIN categories c ON c.id = p.category_id").
		Where("ct.user_id = ?", userID)
}

// ListLines returns the user's lines, newest first.
func (r *repository) ListLines(ctx context.Context, userID uint) ([]Line, error) {
	var rows []lineRecord
	if err := r.lines(ctx, userID).Order("ct.created_at DESC, ct.id DESC").Scan(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]Line, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toLine())
	}
	return out, nil
}

func (r *repository) findOne(q *gorm.DB) (*Line, error) {
	var rows []lineRecord
	if err := q.Limit(1).Scan(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	line := rows[0].toLine()
	return &line, nil
}

// FindLine loads a line only if it belongs to userID.
func (r *repository) FindLine(ctx context.Context, userID, lineID uint) (*Line, error) {
	return r.findOne(r.lines(ctx, userID).Where("ct.id = ?", lineID))
}

func (r *repository) FindLineByProduct(ctx context.Context, userID, productID uint) (*Line, error) {
	return r.findOne(r.lines(ctx, userID).Where("ct.product_id = ?", productID))
}

// AddQuantity inserts the line or increments the existing (user, product) line.
func (r *repository) AddQuantity(ctx context.Context, userID, productID uint, qty int) error {
	line := &models.CartLine{UserID: userID, ProductID: productID, Quantity: qty}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}, {Name: "product_id"}},
			DoUpdates: clause.Assignments(map[string]any{
				"quantity":   gorm.Expr("cart.quantity + excluded.quantity"),
				"updated_at": time.Now().UTC(),
			}),
		}).
		Create(line).Error
}

func (r *repository) UpdateQuantity(ctx context.Context, userID, lineID uint, qty int) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.CartLine{}).
		Where("id = ? AND user_id = ?", lineID, userID).
		Updates(map[string]any{"quantity": qty, "updated_at": time.Now().UTC()})
	return res.RowsAffected, res.Error
}

func (r *repository) DeleteLine(ctx context.Context, userID, lineID uint) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", lineID, userID).
		Delete(&models.CartLine{})
	return res.RowsAffected, res.Error
}

// Clear deletes every line of the user.
func (r *repository) Clear(ctx context.Context, userID uint) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&models.CartLine{})
	return res.RowsAffected, res.Error
}

// RemoveOrdered takes the ordered quantities out of the user's cart. A line
// that gained quantity after it was read keeps the surplus, and lines added
// after the read are left alone.
func (r *repository) RemoveOrdered(ctx context.Context, userID uint, ordered []Line) error {
	for _, line := range ordered {
		res := r.db.WithContext(ctx).
			Where("id = ? AND user_id = ? AND quantity <= ?", line.ID, userID, line.Quantity).
			Delete(&models.CartLine{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			continue
		}
		err := r.db.WithContext(ctx).
			Model(&models.CartLine{}).
			Where("id = ? AND user_id = ? AND quantity > ?", line.ID, userID, line.Quantity).
			Updates(map[string]any{
				"quantity":   gorm.Expr("quantity - ?", line.Quantity),
				"updated_at": time.Now().UTC(),
			}).Error
		if err != nil {
			return err
		}
	}
	return nil
}
