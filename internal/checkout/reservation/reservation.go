// Package reservation moves product stock inside a caller-owned transaction.
package reservation

import (
	"context"
	"fmt"

	pkgerrors "github.com/angelmondragon/shophub-backend/pkg/errors"
	"gorm.io/gorm"
)

// StockRequest is a quantity of one product to take from or return to stock.
type StockRequest struct {
	ProductID   uint
	ProductName string
	Qty         int
}

// Decrement takes every request from stock with a conditional update. The
// first request that would drive stock negative fails with INSUFFICIENT_STOCK
// and the caller must roll back the transaction.
func Decrement(ctx context.Context, tx *gorm.DB, requests []StockRequest) error {
	if tx == nil {
		return fmt.Errorf("transaction required")
	}
	for _, req := range requests {
		if req.Qty < 1 {
			return pkgerrors.New(pkgerrors.CodeValidation, "reservation quantity must be positive")
		}
		res := tx.WithContext(ctx).Exec(
			"UPDATE products SET stock = stock - ? WHERE id = ? AND stock >= ?",
			req.Qty, req.ProductID, req.Qty,
		)
		if res.Error != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, res.Error, "decrement stock")
		}
		if res.RowsAffected == 0 {
			available, err := currentStock(ctx, tx, req.ProductID)
			if err != nil {
				return err
			}
			return pkgerrors.InsufficientStock(req.ProductID, req.ProductName, available, req.Qty)
		}
	}
	return nil
}

// Release returns qty units of a product to stock.
func Release(ctx context.Context, tx *gorm.DB, productID uint, qty int) error {
	if tx == nil {
		return fmt.Errorf("transaction required")
	}
	if qty < 1 {
		return pkgerrors.New(pkgerrors.CodeValidation, "release quantity must be positive")
	}
	err := tx.WithContext(ctx).
		Exec("UPDATE products SET stock = stock + ? WHERE id = ?", qty, productID).Error
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "restore stock")
	}
	return nil
}

// Releaser adapts Release to the order cancellation flow.
type Releaser struct{}

func (Releaser) Release(ctx context.Context, tx *gorm.DB, productID uint, qty int) error {
	return Release(ctx, tx, productID, qty)
}

func currentStock(ctx context.Context, tx *gorm.DB, productID uint) (int, error) {
	var stock []int
	err := tx.WithContext(ctx).Table("products").Where("id = ?", productID).Pluck("stock", &stock).Error
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load stock")
	}
	if len(stock) == 0 {
		return 0, nil
	}
	return stock[0], nil
}
