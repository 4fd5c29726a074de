package shipping

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/storefront-backend/internal/pricing"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
)

type settingFinder interface {
	Find(ctx context.Context) (*models.ShippingSetting, error)
}

// Settings is the effective shipping configuration as shown to shoppers.
type Settings struct {
	Enabled             bool                   `json:"enabled"`
	ShippingType        enums.ShippingStrategy `json:"shippingType"`
	FlatRate            *decimal.Decimal       `json:"flatRate,omitempty"`
	PerItemFee          *decimal.Decimal       `json:"perItemFee,omitempty"`
	MaxItemFee          *decimal.Decimal       `json:"maxItemFee"`
	FreeShippingMin     decimal.Decimal        `json:"freeShippingMin"`
	WeightUnit          string                 `json:"weightUnit,omitempty"`
	BaseWeight          *decimal.Decimal       `json:"baseWeight,omitempty"`
	BaseWeightFee       *decimal.Decimal       `json:"baseWeightFee,omitempty"`
	AdditionalWeightFee *decimal.Decimal       `json:"additionalWeightFee,omitempty"`
}

type Service interface {
	Config(ctx context.Context) (pricing.ShippingConfig, error)
	Settings(ctx context.Context) (Settings, error)
}

type service struct {
	repo settingFinder
}

func NewService(repo settingFinder) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("shipping settings repository required")
	}
	return &service{repo: repo}, nil
}

// Config loads and validates the settings row for the pricing engine.
func (s *service) Config(ctx context.Context) (pricing.ShippingConfig, error) {
	row, err := s.repo.Find(ctx)
	if err != nil {
		return pricing.ShippingConfig{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load shipping settings")
	}
	return pricing.ParseShippingSetting(row), nil
}

func (s *service) Settings(ctx context.Context) (Settings, error) {
	cfg, err := s.Config(ctx)
	if err != nil {
		return Settings{}, err
	}
	return Describe(cfg), nil
}

// Describe flattens a validated config for display.
func Describe(cfg pricing.ShippingConfig) Settings {
	out := Settings{Enabled: cfg.Enabled, FreeShippingMin: cfg.FreeShippingMin}
	if cfg.Strategy == nil {
		return out
	}
	out.ShippingType = cfg.Strategy.Name()

	switch strategy := cfg.Strategy.(type) {
	case pricing.FlatRate:
		out.FlatRate = &strategy.Rate
	case pricing.PerItem:
		out.PerItemFee = &strategy.Fee
		out.MaxItemFee = strategy.MaxFee
	case pricing.WeightBased:
		out.WeightUnit = strategy.Unit
		out.BaseWeight = &strategy.BaseWeight
		out.BaseWeightFee = &strategy.BaseFee
		out.AdditionalWeightFee = &strategy.AdditionalFee
	}
	return out
}
