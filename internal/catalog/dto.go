package catalog

import (
	"database/sql"
	"time"

	"github.com/angelmondragon/shophub-backend/pkg/db/models"
	"github.com/angelmondragon/shophub-backend/pkg/pagination"
	"github.com/angelmondragon/shophub-backend/pkg/types"
	"github.com/shopspring/decimal"
)

// CategoryRef is the category block embedded in product payloads.
type CategoryRef struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Slug  string `json:"slug"`
	Icon  string `json:"icon,omitempty"`
	Color string `json:"color,omitempty"`
}

// ProductDTO is the catalog transport shape for a product.
type ProductDTO struct {
	ID              uint             `json:"id"`
	Name            string           `json:"name"`
	Description     string           `json:"description"`
	LongDescription string           `json:"long_description,omitempty"`
	Price           types.Money      `json:"price"`
	ImageURL        string           `json:"image_url"`
	Rating          float64          `json:"rating"`
	Stock           int              `json:"stock"`
	Brand           string           `json:"brand"`
	Features        types.StringList `json:"features"`
	Category        *CategoryRef     `json:"category,omitempty"`
	CreatedAt       time.Time        `json:"created_at"`
}

// CategoryDTO is a category with the number of products filed under it.
type CategoryDTO struct {
	ID           uint   `json:"id"`
	Name         string `json:"name"`
	Slug         string `json:"slug"`
	Description  string `json:"description"`
	Icon         string `json:"icon"`
	Color        string `json:"color"`
	ProductCount int64  `json:"product_count"`
}

// AppliedFilters echoes the normalised filter back to the caller.
type AppliedFilters struct {
	Category  string  `json:"category,omitempty"`
	MinPrice  *string `json:"min_price,omitempty"`
	MaxPrice  *string `json:"max_price,omitempty"`
	SortBy    string  `json:"sort_by"`
	SortOrder string  `json:"sort_order"`
	Search    string  `json:"search,omitempty"`
}

// ProductListResult is one page of the product browse endpoint.
type ProductListResult struct {
	Products   []ProductDTO    `json:"products"`
	Pagination pagination.Page `json:"pagination"`
	Filters    AppliedFilters  `json:"filters"`
}

// ProductDetail is a product plus up to four in-stock siblings from its category.
type ProductDetail struct {
	Product         ProductDTO   `json:"product"`
	RelatedProducts []ProductDTO `json:"related_products"`
}

// CategoryProducts is one page of a single category.
type CategoryProducts struct {
	Category   CategoryDTO     `json:"category"`
	Products   []ProductDTO    `json:"products"`
	Pagination pagination.Page `json:"pagination"`
}

// SearchResult is one page of free-text search results.
type SearchResult struct {
	Query      string          `json:"query"`
	Products   []ProductDTO    `json:"products"`
	Pagination pagination.Page `json:"pagination"`
}

// StoreStats are the headline counters on the home page.
type StoreStats struct {
	TotalProducts   int64 `json:"total_products"`
	TotalCategories int64 `json:"total_categories"`
	TotalUsers      int64 `json:"total_users"`
}

// Suggestion is a type-ahead hit, either a product or a category.
type Suggestion struct {
	Type     string       `json:"type"`
	ID       uint         `json:"id"`
	Name     string       `json:"name"`
	Price    *types.Money `json:"price,omitempty"`
	ImageURL string       `json:"image_url,omitempty"`
	Slug     string       `json:"slug,omitempty"`
	Icon     string       `json:"icon,omitempty"`
}

// HomeMeta summarises the sizes of the home page blocks.
type HomeMeta struct {
	TotalProducts   int `json:"total_products"`
	TotalCategories int `json:"total_categories"`
	TotalPromotions int `json:"total_promotions"`
}

// HomeData is the aggregate payload for the first home page render.
type HomeData struct {
	FeaturedProducts []ProductDTO  `json:"featured_products"`
	Categories       []CategoryDTO `json:"categories"`
	Promotions       []Promotion   `json:"promotions"`
	Stats            StoreStats    `json:"stats"`
	Meta             HomeMeta      `json:"meta"`
}

type productRecord struct {
	ID              uint
	Name            string
	Description     sql.NullString
	LongDescription sql.NullString
	Price           decimal.Decimal
	ImageURL        sql.NullString
	Rating          decimal.Decimal
	Stock           int
	Brand           sql.NullString
	Features        types.StringList
	CreatedAt       time.Time
	CategoryID      sql.NullInt64
	CategoryName    sql.NullString
	CategorySlug    sql.NullString
	CategoryIcon    sql.NullString
	CategoryColor   sql.NullString
}

func (r productRecord) toDTO() ProductDTO {
	dto := ProductDTO{
		ID:              r.ID,
		Name:            r.Name,
		Description:     r.Description.String,
		LongDescription: r.LongDescription.String,
		Price:           types.NewMoney(r.Price),
		ImageURL:        r.ImageURL.String,
		Rating:          r.Rating.Round(2).InexactFloat64(),
		Stock:           r.Stock,
		Brand:           r.Brand.String,
		Features:        r.Features,
		CreatedAt:       r.CreatedAt,
	}
	if dto.Features == nil {
		dto.Features = types.StringList{}
	}
	if r.CategoryID.Valid {
		dto.Category = &CategoryRef{
			ID:    uint(r.CategoryID.Int64),
			Name:  r.CategoryName.String,
			Slug:  r.CategorySlug.String,
			Icon:  r.CategoryIcon.String,
			Color: r.CategoryColor.String,
		}
	}
	return dto
}

type categoryRecord struct {
	ID           uint
	Name         string
	Slug         string
	Description  sql.NullString
	Icon         sql.NullString
	Color        sql.NullString
	ProductCount int64
}

func (r categoryRecord) toDTO() CategoryDTO {
	return CategoryDTO{
		ID:           r.ID,
		Name:         r.Name,
		Slug:         r.Slug,
		Description:  r.Description.String,
		Icon:         r.Icon.String,
		Color:        r.Color.String,
		ProductCount: r.ProductCount,
	}
}

func categoryFromModel(c *models.Category, productCount int64) CategoryDTO {
	return CategoryDTO{
		ID:           c.ID,
		Name:         c.Name,
		Slug:         c.Slug,
		Description:  c.Description,
		Icon:         c.Icon,
		Color:        c.Color,
		ProductCount: productCount,
	}
}

func recordsToDTOs(records []productRecord) []ProductDTO {
	out := make([]ProductDTO, 0, len(records))
	for _, r := range records {
		out = append(out, r.toDTO())
	}
	return out
}
