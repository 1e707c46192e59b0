package catalog

import (
	"context"
	"strings"

	"github.com/angelmondragon/shophub-backend/pkg/db/models"
	"github.com/angelmondragon/shophub-backend/pkg/pagination"
	"github.com/angelmondragon/shophub-backend/pkg/types"
	"gorm.io/gorm"
)

const (
	relatedProductsLimit     = 4
	featuredProductsLimit    = 8
	productSuggestionsLimit  = 5
	categorySuggestionsLimit = 3
)

var productColumns = strings.Join([]string{
	"p.id",
	"p.name",
	"p.description",
	"p.long_description",
	"p.price",
	"p.image_url",
	"p.rating",
	"p.stock",
	"p.brand",
	"p.features",
	"p.created_at",
	"c.id AS category_id",
	"c.name AS category_name",
	"c.slug AS category_slug",
	"c.icon AS category_icon",
	"c.color AS category_color",
}, ", ")

// Repository runs the catalog read queries.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a catalog repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) products(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("products p").
		Joins("LEFT JOIN categories c ON c.id = p.category_id")
}

// ListProducts returns one page of products matching filter plus the total match count.
func (r *Repository) ListProducts(ctx context.Context, filter ProductFilter) ([]productRecord, int64, error) {
	var total int64
	if err := filter.where(r.products(ctx)).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var records []productRecord
	err := filter.where(r.products(ctx)).
		Select(productColumns).
		Order(filter.orderBy()).
		Limit(filter.Page.Limit).
		Offset(filter.Page.Offset()).
		Scan(&records).Error
	if err != nil {
		return nil, 0, err
	}
	return records, total, nil
}

// FindProductRecord loads one product with its category block.
func (r *Repository) FindProductRecord(ctx context.Context, id uint) (*productRecord, error) {
	var records []productRecord
	err := r.products(ctx).
		Select(productColumns).
		Where("p.id = ?", id).
		Limit(1).
		Scan(&records).Error
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &records[0], nil
}

// FindProduct loads the bare product row.
func (r *Repository) FindProduct(ctx context.Context, id uint) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// RelatedProducts returns in-stock products sharing categoryID, best rated first.
func (r *Repository) RelatedProducts(ctx context.Context, categoryID, excludeID uint) ([]productRecord, error) {
	var records []productRecord
	err := r.products(ctx).
		Select(productColumns).
		Where("p.category_id = ? AND p.id <> ? AND p.stock > 0", categoryID, excludeID).
		Order("p.rating DESC, p.id ASC").
		Limit(relatedProductsLimit).
		Scan(&records).Error
	return records, err
}

// FindCategoryBySlug loads a category.
func (r *Repository) FindCategoryBySlug(ctx context.Context, slug string) (*models.Category, error) {
	var category models.Category
	if err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&category).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

// Search matches name, description, brand and category name.
func (r *Repository) Search(ctx context.Context, term string, page pagination.Params) ([]productRecord, int64, error) {
	pattern := likePattern(term)
	match := func(qb *gorm.DB) *gorm.DB {
		return qb.Where(
			"(LOWER(p.name) LIKE ? OR LOWER(p.description) LIKE ? OR LOWER(p.brand) LIKE ? OR LOWER(c.name) LIKE ?)",
			pattern, pattern, pattern, pattern,
		)
	}

	var total int64
	if err := match(r.products(ctx)).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var records []productRecord
	err := match(r.products(ctx)).
		Select(productColumns).
		Order("p.rating DESC, p.name ASC, p.id ASC").
		Limit(page.Limit).
		Offset(page.Offset()).
		Scan(&records).Error
	if err != nil {
		return nil, 0, err
	}
	return records, total, nil
}

// CategoriesWithCounts lists every category alphabetically with its product count.
func (r *Repository) CategoriesWithCounts(ctx context.Context) ([]categoryRecord, error) {
	var records []categoryRecord
	err := r.db.WithContext(ctx).
		Table("categories c").
		Select("c.id, c.name, c.slug, c.description, c.icon, c.color, COUNT(p.id) AS product_count").
		Joins("LEFT JOIN products p ON p.category_id = c.id").
		Group("c.id, c.name, c.slug, c.description, c.icon, c.color").
		Order("c.name ASC").
		Scan(&records).Error
	return records, err
}

// Featured returns the best rated in-stock products.
func (r *Repository) Featured(ctx context.Context) ([]productRecord, error) {
	var records []productRecord
	err := r.products(ctx).
		Select(productColumns).
		Where("p.stock > 0").
		Order("p.rating DESC, p.stock DESC, p.id ASC").
		Limit(featuredProductsLimit).
		Scan(&records).Error
	return records, err
}

// Stats counts products, categories and users.
func (r *Repository) Stats(ctx context.Context) (StoreStats, error) {
	var stats StoreStats
	db := r.db.WithContext(ctx)
	if err := db.Model(&models.Product{}).Count(&stats.TotalProducts).Error; err != nil {
		return StoreStats{}, err
	}
	if err := db.Model(&models.Category{}).Count(&stats.TotalCategories).Error; err != nil {
		return StoreStats{}, err
	}
	if err := db.Model(&models.User{}).Count(&stats.TotalUsers).Error; err != nil {
		return StoreStats{}, err
	}
	return stats, nil
}

// Suggestions returns type-ahead hits for products then categories.
func (r *Repository) Suggestions(ctx context.Context, term string) ([]Suggestion, error) {
	pattern := likePattern(term)

	var products []models.Product
	if err := r.db.WithContext(ctx).
		Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", pattern, pattern).
		Order("rating DESC, name ASC").
		Limit(productSuggestionsLimit).
		Find(&products).Error; err != nil {
		return nil, err
	}

	var categories []models.Category
	if err := r.db.WithContext(ctx).
		Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", pattern, pattern).
		Order("name ASC").
		Limit(categorySuggestionsLimit).
		Find(&categories).Error; err != nil {
		return nil, err
	}

	out := make([]Suggestion, 0, len(products)+len(categories))
	for _, p := range products {
		price := types.NewMoney(p.Price)
		out = append(out, Suggestion{Type: "product", ID: p.ID, Name: p.Name, Price: &price, ImageURL: p.ImageURL})
	}
	for _, c := range categories {
		out = append(out, Suggestion{Type: "category", ID: c.ID, Name: c.Name, Slug: c.Slug, Icon: c.Icon})
	}
	return out, nil
}
