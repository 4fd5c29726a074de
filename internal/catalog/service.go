package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
)

const listCacheTTL = 30 * time.Second

type productLister interface {
	ListInStock(ctx context.Context, ids []uuid.UUID) ([]models.Product, error)
}

type listCache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	CatalogKey(sort string) string
}

// Service serves catalog projections.
type Service interface {
	List(ctx context.Context, sortKey enums.ProductSort) ([]ProductView, error)
	Resolve(ctx context.Context, ids []uuid.UUID) ([]ProductView, error)
}

type service struct {
	repo  productLister
	cache listCache
	logg  *logger.Logger
}

// NewService builds the catalog service. cache may be nil.
func NewService(repo productLister, cache listCache, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	return &service{repo: repo, cache: cache, logg: logg}, nil
}

func (s *service) List(ctx context.Context, sortKey enums.ProductSort) ([]ProductView, error) {
	if !sortKey.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "sortBy must be one of newest, orders, rating")
	}

	if cached, ok := s.fromCache(ctx, sortKey); ok {
		return cached, nil
	}

	products, err := s.repo.ListInStock(ctx, nil)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list products")
	}
	views := Project(products, sortKey)
	s.toCache(ctx, sortKey, views)
	return views, nil
}

// Resolve projects only the given products. Ids that are unknown, out of
// stock or owned by an inactive store are absent from the result.
func (s *service) Resolve(ctx context.Context, ids []uuid.UUID) ([]ProductView, error) {
	if len(ids) == 0 {
		return []ProductView{}, nil
	}
	products, err := s.repo.ListInStock(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load cart products")
	}
	return Project(products, enums.ProductSortNewest), nil
}

func (s *service) fromCache(ctx context.Context, sortKey enums.ProductSort) ([]ProductView, bool) {
	if s.cache == nil {
		return nil, false
	}
	raw, err := s.cache.Get(ctx, s.cache.CatalogKey(sortKey.String()))
	if err != nil {
		if !errors.Is(err, redis.Nil) && s.logg != nil {
			s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "catalog cache read failed")
		}
		return nil, false
	}
	var views []ProductView
	if err := json.Unmarshal([]byte(raw), &views); err != nil {
		return nil, false
	}
	return views, true
}

func (s *service) toCache(ctx context.Context, sortKey enums.ProductSort, views []ProductView) {
	if s.cache == nil {
		return
	}
	payload, err := json.Marshal(views)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, s.cache.CatalogKey(sortKey.String()), string(payload), listCacheTTL); err != nil && s.logg != nil {
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "catalog cache write failed")
	}
}
