package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/angelmondragon/shophub-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/shophub-backend/pkg/errors"
	"github.com/angelmondragon/shophub-backend/pkg/pagination"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

// MinSearchLength is the shortest accepted search or suggestion term.
const MinSearchLength = 2

// Service exposes the storefront catalog read paths.
type Service interface {
	ListProducts(ctx context.Context, filter ProductFilter) (*ProductListResult, error)
	GetProduct(ctx context.Context, id uint) (*ProductDetail, error)
	ProductsByCategory(ctx context.Context, slug string, filter ProductFilter) (*CategoryProducts, error)
	FindProduct(ctx context.Context, id uint) (*models.Product, error)
	Search(ctx context.Context, query string, page pagination.Params) (*SearchResult, error)
	Categories(ctx context.Context) ([]CategoryDTO, error)
	Featured(ctx context.Context) ([]ProductDTO, error)
	Stats(ctx context.Context) (StoreStats, error)
	Suggestions(ctx context.Context, query string) ([]Suggestion, error)
	Promotions() []Promotion
	HomeData(ctx context.Context) (*HomeData, error)
}

type repository interface {
	ListProducts(ctx context.Context, filter ProductFilter) ([]productRecord, int64, error)
	FindProductRecord(ctx context.Context, id uint) (*productRecord, error)
	FindProduct(ctx context.Context, id uint) (*models.Product, error)
	RelatedProducts(ctx context.Context, categoryID, excludeID uint) ([]productRecord, error)
	FindCategoryBySlug(ctx context.Context, slug string) (*models.Category, error)
	Search(ctx context.Context, term string, page pagination.Params) ([]productRecord, int64, error)
	CategoriesWithCounts(ctx context.Context) ([]categoryRecord, error)
	Featured(ctx context.Context) ([]productRecord, error)
	Stats(ctx context.Context) (StoreStats, error)
	Suggestions(ctx context.Context, term string) ([]Suggestion, error)
}

type service struct {
	repo repository
}

// NewService builds the catalog service.
func NewService(repo repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) ListProducts(ctx context.Context, filter ProductFilter) (*ProductListResult, error) {
	normalized, err := filter.Normalize()
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, err.Error())
	}
	records, total, err := s.repo.ListProducts(ctx, normalized)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list products")
	}
	return &ProductListResult{
		Products:   recordsToDTOs(records),
		Pagination: pagination.NewPage(normalized.Page, total),
		Filters:    normalized.applied(),
	}, nil
}

func (s *service) GetProduct(ctx context.Context, id uint) (*ProductDetail, error) {
	record, err := s.repo.FindProductRecord(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "product not found", "load product")
	}

	related := []ProductDTO{}
	if record.CategoryID.Valid {
		rows, err := s.repo.RelatedProducts(ctx, uint(record.CategoryID.Int64), record.ID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load related products")
		}
		related = recordsToDTOs(rows)
	}

	return &ProductDetail{
		Product:         record.toDTO(),
		RelatedProducts: related,
	}, nil
}

func (s *service) ProductsByCategory(ctx context.Context, slug string, filter ProductFilter) (*CategoryProducts, error) {
	slug = strings.TrimSpace(slug)
	category, err := s.repo.FindCategoryBySlug(ctx, slug)
	if err != nil {
		return nil, notFoundOr(err, "category not found", "load category")
	}

	filter.CategorySlug = ""
	filter.Search = ""
	filter.MinPrice, filter.MaxPrice = nil, nil
	filter.CategoryID = &category.ID
	normalized, err := filter.Normalize()
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, err.Error())
	}

	records, total, err := s.repo.ListProducts(ctx, normalized)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list category products")
	}
	return &CategoryProducts{
		Category:   categoryFromModel(category, total),
		Products:   recordsToDTOs(records),
		Pagination: pagination.NewPage(normalized.Page, total),
	}, nil
}

func (s *service) FindProduct(ctx context.Context, id uint) (*models.Product, error) {
	product, err := s.repo.FindProduct(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "product not found", "load product")
	}
	return product, nil
}

func (s *service) Search(ctx context.Context, query string, page pagination.Params) (*SearchResult, error) {
	query = strings.TrimSpace(query)
	if utf8.RuneCountInString(query) < MinSearchLength {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("search query must be at least %d characters long", MinSearchLength))
	}
	page = page.Normalize(pagination.DefaultLimit)

	records, total, err := s.repo.Search(ctx, query, page)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "search products")
	}
	return &SearchResult{
		Query:      query,
		Products:   recordsToDTOs(records),
		Pagination: pagination.NewPage(page, total),
	}, nil
}

func (s *service) Categories(ctx context.Context) ([]CategoryDTO, error) {
	records, err := s.repo.CategoriesWithCounts(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list categories")
	}
	out := make([]CategoryDTO, 0, len(records))
	for _, r := range records {
		out = append(out, r.toDTO())
	}
	return out, nil
}

func (s *service) Featured(ctx context.Context) ([]ProductDTO, error) {
	records, err := s.repo.Featured(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list featured products")
	}
	return recordsToDTOs(records), nil
}

func (s *service) Stats(ctx context.Context) (StoreStats, error) {
	stats, err := s.repo.Stats(ctx)
	if err != nil {
		return StoreStats{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load stats")
	}
	return stats, nil
}

// Suggestions returns no hits, not an error, for terms shorter than MinSearchLength.
func (s *service) Suggestions(ctx context.Context, query string) ([]Suggestion, error) {
	query = strings.TrimSpace(query)
	if utf8.RuneCountInString(query) < MinSearchLength {
		return []Suggestion{}, nil
	}
	out, err := s.repo.Suggestions(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load suggestions")
	}
	return out, nil
}

func (s *service) Promotions() []Promotion {
	return Promotions()
}

func (s *service) HomeData(ctx context.Context) (*HomeData, error) {
	var (
		featured   []ProductDTO
		categories []CategoryDTO
		stats      StoreStats
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		featured, err = s.Featured(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		categories, err = s.Categories(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		stats, err = s.Stats(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	promos := Promotions()
	return &HomeData{
		FeaturedProducts: featured,
		Categories:       categories,
		Promotions:       promos,
		Stats:            stats,
		Meta: HomeMeta{
			TotalProducts:   len(featured),
			TotalCategories: len(categories),
			TotalPromotions: len(promos),
		},
	}, nil
}

func notFoundOr(err error, notFoundMsg, internalMsg string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, notFoundMsg)
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, internalMsg)
}
