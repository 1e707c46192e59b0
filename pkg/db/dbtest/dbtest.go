// Package dbtest opens throwaway sqlite databases with the storefront schema
// for repository and service tests.
package dbtest

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/angelmondragon/shophub-backend/pkg/db/models"
	"github.com/angelmondragon/shophub-backend/pkg/types"
)

// Open returns an isolated in-memory database with every storefront table migrated.
// The pool is pinned to one connection so concurrent transactions queue the
// same way they would behind a single writer.
func Open(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:shophub_%s?mode=memory&cache=shared&_foreign_keys=1", uuid.NewString())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := conn.DB()
	if err != nil {
		t.Fatalf("sql handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := conn.AutoMigrate(models.All()...); err != nil {
		t.Fatalf("migrate sqlite: %v", err)
	}
	return conn
}

// MustCreateUser inserts a user with a placeholder password hash.
func MustCreateUser(t testing.TB, conn *gorm.DB, username string) *models.User {
	t.Helper()
	user := &models.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "unused",
		FirstName:    "Test",
		LastName:     "User",
	}
	if err := conn.Create(user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user
}

// MustCreateCategory inserts a category keyed by slug.
func MustCreateCategory(t testing.TB, conn *gorm.DB, name, slug string) *models.Category {
	t.Helper()
	category := &models.Category{Name: name, Slug: slug, Icon: "box", Color: "#333333"}
	if err := conn.Create(category).Error; err != nil {
		t.Fatalf("create category: %v", err)
	}
	return category
}

// ProductSeed describes a product fixture; zero values are filled with defaults.
type ProductSeed struct {
	Name        string
	Description string
	Brand       string
	Price       string
	Rating      string
	Stock       int
	CategoryID  *uint
	Features    []string
}

// MustCreateProduct inserts a product fixture.
func MustCreateProduct(t testing.TB, conn *gorm.DB, seed ProductSeed) *models.Product {
	t.Helper()
	if seed.Price == "" {
		seed.Price = "10.00"
	}
	if seed.Rating == "" {
		seed.Rating = "4.00"
	}
	product := &models.Product{
		Name:        seed.Name,
		Description: seed.Description,
		Brand:       seed.Brand,
		Price:       decimal.RequireFromString(seed.Price),
		Rating:      decimal.RequireFromString(seed.Rating),
		Stock:       seed.Stock,
		CategoryID:  seed.CategoryID,
		ImageURL:    "https://img.example.com/" + uuid.NewString() + ".jpg",
		Features:    types.StringList(seed.Features),
	}
	if err := conn.Create(product).Error; err != nil {
		t.Fatalf("create product: %v", err)
	}
	return product
}

// MustAddCartLine inserts a cart line directly, bypassing stock validation.
func MustAddCartLine(t testing.TB, conn *gorm.DB, userID, productID uint, qty int) *models.CartLine {
	t.Helper()
	line := &models.CartLine{UserID: userID, ProductID: productID, Quantity: qty}
	if err := conn.Create(line).Error; err != nil {
		t.Fatalf("create cart line: %v", err)
	}
	return line
}

// StockOf reads the current stock of a product.
func StockOf(t testing.TB, conn *gorm.DB, productID uint) int {
	t.Helper()
	var product models.Product
	if err := conn.Select("stock").First(&product, productID).Error; err != nil {
		t.Fatalf("load stock: %v", err)
	}
	return product.Stock
}

// Count returns the number of rows of model matching the optional condition.
func Count(t testing.TB, conn *gorm.DB, model any, query string, args ...any) int64 {
	t.Helper()
	var n int64
	q := conn.Model(model)
	if query != "" {
		q = q.Where(query, args...)
	}
	if err := q.Count(&n).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	return n
}
