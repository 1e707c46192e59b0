package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/angelmondragon/shophub-backend/pkg/db/dbtest"
	"github.com/angelmondragon/shophub-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/shophub-backend/pkg/errors"
	"github.com/angelmondragon/shophub-backend/pkg/pagination"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fixture struct {
	conn *gorm.DB
	svc  Service
	ids  map[string]uint
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	conn := dbtest.Open(t)
	svc, err := NewService(NewRepository(conn))
	require.NoError(t, err)

	electronics := dbtest.MustCreateCategory(t, conn, "Electronics", "electronics")
	books := dbtest.MustCreateCategory(t, conn, "Books", "books")
	dbtest.MustCreateCategory(t, conn, "Garden", "garden")

	ids := map[string]uint{}
	seed := func(name, brand, price, rating string, stock int, category *uint) {
		p := dbtest.MustCreateProduct(t, conn, dbtest.ProductSeed{
			Name:        name,
			Description: name + " description",
			Brand:       brand,
			Price:       price,
			Rating:      rating,
			Stock:       stock,
			CategoryID:  category,
			Features:    []string{"feature"},
		})
		ids[name] = p.ID
	}
	seed("Headphones", "Acme", "99.99", "4.80", 10, &electronics.ID)
	seed("Keyboard", "Keyco", "49.50", "4.20", 5, &electronics.ID)
	seed("Mouse", "Acme", "19.99", "4.90", 0, &electronics.ID)
	seed("Monitor", "Viewer", "199.00", "4.50", 3, &electronics.ID)
	seed("Cable", "Acme", "5.00", "3.10", 50, &electronics.ID)
	seed("Novel", "Press", "12.00", "4.70", 7, &books.ID)
	seed("Orphan Gadget", "NoName", "8.00", "2.00", 1, nil)

	return &fixture{conn: conn, svc: svc, ids: ids}
}

func names(products []ProductDTO) []string {
	out := make([]string, 0, len(products))
	for _, p := range products {
		out = append(out, p.Name)
	}
	return out
}

func price(v string) *decimal.Decimal {
	d := decimal.RequireFromString(v)
	return &d
}

func TestListProductsDefaultsToNameAscending(t *testing.T) {
	f := newFixture(t)

	res, err := f.svc.ListProducts(context.Background(), ProductFilter{})
	require.NoError(t, err)
	require.Equal(t, []string{"Cable", "Headphones", "Keyboard", "Monitor", "Mouse", "Novel", "Orphan Gadget"}, names(res.Products))
	require.Equal(t, pagination.Page{CurrentPage: 1, TotalPages: 1, Total: 7, PerPage: 12}, res.Pagination)
	require.Equal(t, "name", res.Filters.SortBy)
	require.Equal(t, "asc", res.Filters.SortOrder)
}

func TestListProductsAppliesFilters(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res, err := f.svc.ListProducts(ctx, ProductFilter{
		CategorySlug: "electronics",
		MinPrice:     price("10"),
		MaxPrice:     price("100"),
		SortBy:       enums.ProductSortPrice,
		SortOrder:    enums.SortDesc,
	})
	require.NoError(t, err)
	require.Equal(t, []string{"Headphones", "Keyboard", "Mouse"}, names(res.Products))
	require.Equal(t, "10.00", *res.Filters.MinPrice)

	res, err = f.svc.ListProducts(ctx, ProductFilter{Search: "ACME", SortBy: enums.ProductSortRating, SortOrder: enums.SortDesc})
	require.NoError(t, err)
	require.Equal(t, []string{"Mouse", "Headphones", "Cable"}, names(res.Products))

	headphones := res.Products[1]
	require.Equal(t, "99.99", headphones.Price.StringFixed(2))
	require.Equal(t, 4.8, headphones.Rating)
	require.NotNil(t, headphones.Category)
	require.Equal(t, "electronics", headphones.Category.Slug)
	require.Equal(t, []string{"feature"}, []string(headphones.Features))
}

func TestListProductsPaginates(t *testing.T) {
	f := newFixture(t)

	res, err := f.svc.ListProducts(context.Background(), ProductFilter{Page: pagination.Params{Page: 2, Limit: 3}})
	require.NoError(t, err)
	require.Equal(t, []string{"Monitor", "Mouse", "Novel"}, names(res.Products))
	require.Equal(t, 3, res.Pagination.TotalPages)
	require.True(t, res.Pagination.HasNext)
	require.True(t, res.Pagination.HasPrev)
}

func TestListProductsRejectsInvertedPriceRange(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.ListProducts(context.Background(), ProductFilter{MinPrice: price("50"), MaxPrice: price("10")})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation), "got %v", err)
}

func TestGetProductIncludesRelated(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	detail, err := f.svc.GetProduct(ctx, f.ids["Keyboard"])
	require.NoError(t, err)
	require.Equal(t, "Keyboard", detail.Product.Name)
	// Mouse is out of stock and Keyboard itself is excluded.
	require.Equal(t, []string{"Headphones", "Monitor", "Cable"}, names(detail.RelatedProducts))

	orphan, err := f.svc.GetProduct(ctx, f.ids["Orphan Gadget"])
	require.NoError(t, err)
	require.Nil(t, orphan.Product.Category)
	require.Empty(t, orphan.RelatedProducts)

	_, err = f.svc.GetProduct(ctx, 9999)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound), "got %v", err)
}

func TestProductsByCategory(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res, err := f.svc.ProductsByCategory(ctx, "books", ProductFilter{})
	require.NoError(t, err)
	require.Equal(t, "Books", res.Category.Name)
	require.Equal(t, int64(1), res.Category.ProductCount)
	require.Equal(t, []string{"Novel"}, names(res.Products))

	_, err = f.svc.ProductsByCategory(ctx, "unknown", ProductFilter{})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound), "got %v", err)
}

func TestFindProduct(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	product, err := f.svc.FindProduct(ctx, f.ids["Novel"])
	require.NoError(t, err)
	require.Equal(t, 7, product.Stock)

	_, err = f.svc.FindProduct(ctx, 9999)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound), "got %v", err)
}

func TestSearchMatchesCategoryNameAndOrdersByRating(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res, err := f.svc.Search(ctx, "electro", pagination.Params{})
	require.NoError(t, err)
	require.Equal(t, []string{"Mouse", "Headphones", "Monitor", "Keyboard", "Cable"}, names(res.Products))
	require.Equal(t, int64(5), res.Pagination.Total)

	_, err = f.svc.Search(ctx, "a", pagination.Params{})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation), "got %v", err)
}

func TestCategoriesCountProducts(t *testing.T) {
	f := newFixture(t)

	cats, err := f.svc.Categories(context.Background())
	require.NoError(t, err)
	require.Len(t, cats, 3)
	require.Equal(t, "Books", cats[0].Name)
	require.Equal(t, int64(1), cats[0].ProductCount)
	require.Equal(t, "Electronics", cats[1].Name)
	require.Equal(t, int64(5), cats[1].ProductCount)
	require.Equal(t, int64(0), cats[2].ProductCount)
}

func TestFeaturedSkipsOutOfStock(t *testing.T) {
	f := newFixture(t)

	featured, err := f.svc.Featured(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{"Headphones", "Novel", "Monitor", "Keyboard", "Cable", "Orphan Gadget"}, names(featured))
}

func TestStatsAndSuggestions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	dbtest.MustCreateUser(t, f.conn, "shopper")

	stats, err := f.svc.Stats(ctx)
	require.NoError(t, err)
	require.Equal(t, StoreStats{TotalProducts: 7, TotalCategories: 3, TotalUsers: 1}, stats)

	hits, err := f.svc.Suggestions(ctx, "bo")
	require.NoError(t, err)
	require.Len(t, hits, 2)
	require.Equal(t, "product", hits[0].Type)
	require.Equal(t, "Keyboard", hits[0].Name)
	require.Equal(t, "category", hits[1].Type)
	require.Equal(t, "books", hits[1].Slug)

	short, err := f.svc.Suggestions(ctx, "b")
	require.NoError(t, err)
	require.Empty(t, short)
}

func TestHomeDataAggregates(t *testing.T) {
	f := newFixture(t)

	home, err := f.svc.HomeData(context.Background())
	require.NoError(t, err)
	require.Len(t, home.FeaturedProducts, 6)
	require.Len(t, home.Categories, 3)
	require.Len(t, home.Promotions, 2)
	require.Equal(t, int64(7), home.Stats.TotalProducts)
	require.Equal(t, HomeMeta{TotalProducts: 6, TotalCategories: 3, TotalPromotions: 2}, home.Meta)
}

type failingRepo struct {
	repository
}

func (failingRepo) Featured(ctx context.Context) ([]productRecord, error) {
	return nil, errors.New("db down")
}

func (failingRepo) CategoriesWithCounts(ctx context.Context) ([]categoryRecord, error) {
	return nil, nil
}

func (failingRepo) Stats(ctx context.Context) (StoreStats, error) {
	return StoreStats{}, nil
}

func TestHomeDataPropagatesFailure(t *testing.T) {
	svc, err := NewService(failingRepo{})
	require.NoError(t, err)

	_, err = svc.HomeData(context.Background())
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeInternal), "got %v", err)
}
