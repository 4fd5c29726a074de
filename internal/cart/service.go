package cart

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/angelmondragon/storefront-backend/internal/catalog"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/types"
)

type productResolver interface {
	Resolve(ctx context.Context, ids []uuid.UUID) ([]catalog.ProductView, error)
}

// Service reads and writes the persisted cart of authenticated users and
// prices arbitrary quantity maps.
type Service interface {
	Get(ctx context.Context, userID string) (Cart, error)
	Replace(ctx context.Context, userID string, items types.QuantityMap) (Cart, error)
	Clear(ctx context.Context, userID string) error
	Price(ctx context.Context, items types.QuantityMap) (Cart, error)
}

type service struct {
	repo    CartRepository
	catalog productResolver
}

func NewService(repo CartRepository, resolver productResolver) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if resolver == nil {
		return nil, fmt.Errorf("product resolver required")
	}
	return &service{repo: repo, catalog: resolver}, nil
}

func (s *service) Get(ctx context.Context, userID string) (Cart, error) {
	if err := requireUser(userID); err != nil {
		return Cart{}, err
	}
	items, err := s.repo.Find(ctx, userID)
	if err != nil {
		return Cart{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load cart")
	}
	return s.Price(ctx, items)
}

// Replace stores items as the user's cart. Stale ids are kept in storage so
// a product coming back in stock reappears; they are simply not priced.
// Product keys are stored in canonical form.
func (s *service) Replace(ctx context.Context, userID string, items types.QuantityMap) (Cart, error) {
	if err := requireUser(userID); err != nil {
		return Cart{}, err
	}
	if err := items.Validate(); err != nil {
		return Cart{}, pkgerrors.New(pkgerrors.CodeValidation, err.Error())
	}
	items = items.Canonical()
	if err := s.repo.Save(ctx, userID, items); err != nil {
		return Cart{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "save cart")
	}
	return s.Price(ctx, items)
}

func (s *service) Clear(ctx context.Context, userID string) error {
	if err := requireUser(userID); err != nil {
		return err
	}
	if err := s.repo.Clear(ctx, userID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "clear cart")
	}
	return nil
}

// Price resolves items against the current catalog.
func (s *service) Price(ctx context.Context, items types.QuantityMap) (Cart, error) {
	if err := items.Validate(); err != nil {
		return Cart{}, pkgerrors.New(pkgerrors.CodeValidation, err.Error())
	}
	products, err := s.catalog.Resolve(ctx, items.ProductIDs())
	if err != nil {
		return Cart{}, err
	}
	return Aggregate(items, products), nil
}

func requireUser(userID string) error {
	if strings.TrimSpace(userID) == "" {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "user id required")
	}
	return nil
}
