package catalog

import (
	"fmt"
	"strings"

	"github.com/angelmondragon/shophub-backend/pkg/enums"
	"github.com/angelmondragon/shophub-backend/pkg/pagination"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ProductFilter is the typed query for the product browse endpoint.
type ProductFilter struct {
	CategorySlug string
	CategoryID   *uint
	MinPrice     *decimal.Decimal
	MaxPrice     *decimal.Decimal
	Search       string
	SortBy       enums.ProductSortField
	SortOrder    enums.SortDirection
	Page         pagination.Params
}

// Normalize fills defaults and validates the enum and price inputs.
func (f ProductFilter) Normalize() (ProductFilter, error) {
	if f.SortBy == "" {
		f.SortBy = enums.ProductSortName
	}
	if !f.SortBy.IsValid() {
		return f, fmt.Errorf("invalid sort field %q", f.SortBy)
	}
	if f.SortOrder == "" {
		f.SortOrder = enums.SortAsc
	}
	if !f.SortOrder.IsValid() {
		return f, fmt.Errorf("invalid sort order %q", f.SortOrder)
	}
	if f.MinPrice != nil && f.MinPrice.IsNegative() {
		return f, fmt.Errorf("min_price must not be negative")
	}
	if f.MaxPrice != nil && f.MaxPrice.IsNegative() {
		return f, fmt.Errorf("max_price must not be negative")
	}
	if f.MinPrice != nil && f.MaxPrice != nil && f.MinPrice.GreaterThan(*f.MaxPrice) {
		return f, fmt.Errorf("min_price must not exceed max_price")
	}
	f.CategorySlug = strings.TrimSpace(f.CategorySlug)
	f.Search = strings.TrimSpace(f.Search)
	f.Page = f.Page.Normalize(pagination.DefaultLimit)
	return f, nil
}

func (f ProductFilter) applied() AppliedFilters {
	out := AppliedFilters{
		Category:  f.CategorySlug,
		SortBy:    f.SortBy.String(),
		SortOrder: f.SortOrder.String(),
		Search:    f.Search,
	}
	if f.MinPrice != nil {
		v := f.MinPrice.StringFixed(2)
		out.MinPrice = &v
	}
	if f.MaxPrice != nil {
		v := f.MaxPrice.StringFixed(2)
		out.MaxPrice = &v
	}
	return out
}

// where adds the filter predicates to a query over "products p LEFT JOIN categories c".
func (f ProductFilter) where(qb *gorm.DB) *gorm.DB {
	if f.CategoryID != nil {
		qb = qb.Where("p.category_id = ?", *f.CategoryID)
	}
	if f.CategorySlug != "" {
		qb = qb.Where("c.slug = ?", f.CategorySlug)
	}
	if f.MinPrice != nil {
		qb = qb.Where("p.price >= ?", *f.MinPrice)
	}
	if f.MaxPrice != nil {
		qb = qb.Where("p.price <= ?", *f.MaxPrice)
	}
	if f.Search != "" {
		pattern := likePattern(f.Search)
		qb = qb.Where("(LOWER(p.name) LIKE ? OR LOWER(p.description) LIKE ? OR LOWER(p.brand) LIKE ?)", pattern, pattern, pattern)
	}
	return qb
}

// orderBy only ever interpolates whitelisted enum values.
func (f ProductFilter) orderBy() string {
	column := "p.name"
	switch f.SortBy {
	case enums.ProductSortPrice:
		column = "p.price"
	case enums.ProductSortRating:
		column = "p.rating"
	}
	dir := "ASC"
	if f.SortOrder == enums.SortDesc {
		dir = "DESC"
	}
	return fmt.Sprintf("%s %s, p.id ASC", column, dir)
}

func likePattern(term string) string {
	return "%" + strings.ToLower(strings.TrimSpace(term)) + "%"
}
