package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/angelmondragon/shophub-backend/pkg/auth"
	"github.com/angelmondragon/shophub-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/shophub-backend/pkg/errors"
	"gorm.io/gorm"
)

// DefaultQuantity is used when an add request omits the quantity.
const DefaultQuantity = 1

// Service aggregates a user's cart lines and prices them.
type Service interface {
	GetCart(ctx context.Context, identity auth.Identity) (*CartDTO, error)
	Summary(ctx context.Context, identity auth.Identity) (SummaryDTO, error)
	AddLine(ctx context.Context, identity auth.Identity, productID uint, qty int) (*LineDTO, bool, error)
	UpdateLine(ctx context.Context, identity auth.Identity, lineID uint, qty int) (*LineDTO, error)
	RemoveLine(ctx context.Context, identity auth.Identity, lineID uint) error
	Clear(ctx context.Context, identity auth.Identity) error
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type productFinder interface {
	FindProduct(ctx context.Context, id uint) (*models.Product, error)
}

type service struct {
	tx       txRunner
	repo     Repository
	products productFinder
	pricing  Pricing
}

// NewService builds the cart service.
func NewService(tx txRunner, repo Repository, products productFinder, pricing Pricing) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if products == nil {
		return nil, fmt.Errorf("product finder required")
	}
	return &service{tx: tx, repo: repo, products: products, pricing: pricing}, nil
}

func (s *service) GetCart(ctx context.Context, identity auth.Identity) (*CartDTO, error) {
	if identity.IsGuest() {
		return &CartDTO{Items: []LineDTO{}, Summary: Summarize(nil, s.pricing).DTO()}, nil
	}
	lines, err := s.repo.ListLines(ctx, identity.UserID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load cart")
	}
	return &CartDTO{
		Items:   linesToDTOs(lines),
		Summary: Summarize(PricedLines(lines), s.pricing).DTO(),
	}, nil
}

func (s *service) Summary(ctx context.Context, identity auth.Identity) (SummaryDTO, error) {
	if identity.IsGuest() {
		return Summarize(nil, s.pricing).DTO(), nil
	}
	lines, err := s.repo.ListLines(ctx, identity.UserID)
	if err != nil {
		return SummaryDTO{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load cart")
	}
	return Summarize(PricedLines(lines), s.pricing).DTO(), nil
}

// AddLine reports created=true when a new line was inserted rather than incremented.
func (s *service) AddLine(ctx context.Context, identity auth.Identity, productID uint, qty int) (*LineDTO, bool, error) {
	if identity.IsGuest() {
		return nil, false, unauthorized()
	}
	if productID == 0 {
		return nil, false, pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}
	if qty == 0 {
		qty = DefaultQuantity
	}
	if qty < 1 {
		return nil, false, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}

	product, err := s.products.FindProduct(ctx, productID)
	if err != nil {
		return nil, false, notFoundOr(err, "product not found", "load product")
	}

	var (
		result  *Line
		created bool
	)
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		existing, err := repo.FindLineByProduct(ctx, identity.UserID, productID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load cart line")
		}
		requested := qty
		if existing != nil {
			requested += existing.Quantity
		}
		if requested > product.Stock {
			return pkgerrors.InsufficientStock(product.ID, product.Name, product.Stock, requested)
		}

		if err := repo.AddQuantity(ctx, identity.UserID, productID, qty); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "save cart line")
		}
		line, err := repo.FindLineByProduct(ctx, identity.UserID, productID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reload cart line")
		}
		result = line
		created = existing == nil
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	dto := result.DTO()
	return &dto, created, nil
}

func (s *service) UpdateLine(ctx context.Context, identity auth.Identity, lineID uint, qty int) (*LineDTO, error) {
	if identity.IsGuest() {
		return nil, unauthorized()
	}
	if qty < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}

	var result *Line
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		line, err := repo.FindLine(ctx, identity.UserID, lineID)
		if err != nil {
			return notFoundOr(err, "cart item not found", "load cart line")
		}
		if qty > line.Stock {
			return pkgerrors.InsufficientStock(line.ProductID, line.ProductName, line.Stock, qty)
		}
		if _, err := repo.UpdateQuantity(ctx, identity.UserID, lineID, qty); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update cart line")
		}
		line.Quantity = qty
		result = line
		return nil
	})
	if err != nil {
		return nil, err
	}
	dto := result.DTO()
	return &dto, nil
}

func (s *service) RemoveLine(ctx context.Context, identity auth.Identity, lineID uint) error {
	if identity.IsGuest() {
		return unauthorized()
	}
	removed, err := s.repo.DeleteLine(ctx, identity.UserID, lineID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "remove cart line")
	}
	if removed == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")
	}
	return nil
}

func (s *service) Clear(ctx context.Context, identity auth.Identity) error {
	if identity.IsGuest() {
		return unauthorized()
	}
	if _, err := s.repo.Clear(ctx, identity.UserID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "clear cart")
	}
	return nil
}

func unauthorized() error {
	return pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
}

func notFoundOr(err error, notFoundMsg, internalMsg string) error {
	if typed := pkgerrors.As(err); typed != nil {
		return typed
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, notFoundMsg)
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, internalMsg)
}
