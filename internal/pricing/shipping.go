package pricing

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
)

var (
	// UnitWeight is the weight assumed for every item unit; products carry no
	// weight data of their own.
	UnitWeight = decimal.RequireFromString("0.5")

	unknownStrategyFee = decimal.NewFromInt(5)
)

// ShippingStrategy is a closed set of fee computations. Each arm carries only
// the fields it reads.
type ShippingStrategy interface {
	Name() enums.ShippingStrategy
	fee(units int) decimal.Decimal
}

type FlatRate struct {
	Rate decimal.Decimal
}

// PerItem charges Fee per unit, capped at MaxFee when set.
type PerItem struct {
	Fee    decimal.Decimal
	MaxFee *decimal.Decimal
}

// WeightBased charges BaseFee up to BaseWeight and AdditionalFee for every
// started weight unit above it.
type WeightBased struct {
	Unit          string
	BaseWeight    decimal.Decimal
	BaseFee       decimal.Decimal
	AdditionalFee decimal.Decimal
}

type FreeShipping struct{}

// unknownStrategy keeps the raw name of a strategy this build does not know.
// It charges a conservative flat fee instead of nothing.
type unknownStrategy struct {
	raw enums.ShippingStrategy
}

func (FlatRate) Name() enums.ShippingStrategy { return enums.ShippingFlatRate }
func (PerItem) Name() enums.ShippingStrategy { return enums.ShippingPerItem }
func (WeightBased) Name() enums.ShippingStrategy { return enums.ShippingWeightBased }
func (FreeShipping) Name() enums.ShippingStrategy { return enums.ShippingFree }
func (u unknownStrategy) Name() enums.ShippingStrategy { return u.raw }

func (s FlatRate) fee(int) decimal.Decimal { return s.Rate }

func (s PerItem) fee(units int) decimal.Decimal {
	total := s.Fee.Mul(decimal.NewFromInt(int64(units)))
	if s.MaxFee != nil && total.GreaterThan(*s.MaxFee) {
		return *s.MaxFee
	}
	return total
}

func (s WeightBased) fee(units int) decimal.Decimal {
	weight := UnitWeight.Mul(decimal.NewFromInt(int64(units)))
	if weight.LessThanOrEqual(s.BaseWeight) {
		return s.BaseFee
	}
	extra := weight.Sub(s.BaseWeight).Ceil()
	return s.BaseFee.Add(extra.Mul(s.AdditionalFee))
}

func (FreeShipping) fee(int) decimal.Decimal { return decimal.Zero }

func (unknownStrategy) fee(int) decimal.Decimal { return unknownStrategyFee }

// ShippingConfig is the validated form of the shipping settings row.
type ShippingConfig struct {
	Enabled         bool
	FreeShippingMin decimal.Decimal
	Strategy        ShippingStrategy
}

// ShippingDefaults mirrors what the storefront charges when no settings row
// exists.
type ShippingDefaults struct {
	FlatRate            decimal.Decimal
	PerItemFee          decimal.Decimal
	FreeShippingMin     decimal.Decimal
	WeightUnit          string
	BaseWeight          decimal.Decimal
	BaseWeightFee       decimal.Decimal
	AdditionalWeightFee decimal.Decimal
}

var defaults = ShippingDefaults{
	FlatRate:            decimal.NewFromInt(5),
	PerItemFee:          decimal.NewFromInt(2),
	FreeShippingMin:     decimal.NewFromInt(499),
	WeightUnit:          "kg",
	BaseWeight:          decimal.NewFromInt(1),
	BaseWeightFee:       decimal.NewFromInt(5),
	AdditionalWeightFee: decimal.NewFromInt(2),
}

// DefaultShippingConfig is used when the settings row has never been saved.
func DefaultShippingConfig() ShippingConfig {
	return ShippingConfig{
		Enabled:         true,
		FreeShippingMin: defaults.FreeShippingMin,
		Strategy:        FlatRate{Rate: defaults.FlatRate},
	}
}

// ParseShippingSetting turns the loosely typed settings row into a
// ShippingConfig. A nil row yields the defaults. Inside a saved row, a nil
// enabled flag reads as disabled, an empty strategy as FLAT_RATE, and a zero
// max item fee as "no cap".
func ParseShippingSetting(row *models.ShippingSetting) ShippingConfig {
	if row == nil {
		return DefaultShippingConfig()
	}

	cfg := ShippingConfig{
		Enabled:         row.Enabled != nil && *row.Enabled,
		FreeShippingMin: valueOr(row.FreeShippingMin, defaults.FreeShippingMin),
	}

	strategy := enums.ShippingFlatRate
	if row.ShippingType != nil && strings.TrimSpace(*row.ShippingType) != "" {
		strategy = enums.NormalizeShippingStrategy(*row.ShippingType)
	}

	switch strategy {
	case enums.ShippingFlatRate:
		cfg.Strategy = FlatRate{Rate: valueOr(row.FlatRate, defaults.FlatRate)}
	case enums.ShippingPerItem:
		perItem := PerItem{Fee: valueOr(row.PerItemFee, defaults.PerItemFee)}
		if row.MaxItemFee != nil && row.MaxItemFee.IsPositive() {
			capped := *row.MaxItemFee
			perItem.MaxFee = &capped
		}
		cfg.Strategy = perItem
	case enums.ShippingWeightBased:
		unit := defaults.WeightUnit
		if row.WeightUnit != nil && strings.TrimSpace(*row.WeightUnit) != "" {
			unit = strings.TrimSpace(*row.WeightUnit)
		}
		cfg.Strategy = WeightBased{
			Unit:          unit,
			BaseWeight:    valueOr(row.BaseWeight, defaults.BaseWeight),
			BaseFee:       valueOr(row.BaseWeightFee, defaults.BaseWeightFee),
			AdditionalFee: valueOr(row.AdditionalWeightFee, defaults.AdditionalWeightFee),
		}
	case enums.ShippingFree:
		cfg.Strategy = FreeShipping{}
	default:
		cfg.Strategy = unknownStrategy{raw: strategy}
	}
	return cfg
}

// ShippingFee computes the fee for a cart with the given subtotal and number
// of item units.
func ShippingFee(cfg ShippingConfig, subtotal decimal.Decimal, units int) decimal.Decimal {
	if !cfg.Enabled {
		return decimal.Zero
	}
	if subtotal.GreaterThanOrEqual(cfg.FreeShippingMin) {
		return decimal.Zero
	}
	if cfg.Strategy == nil {
		return unknownStrategyFee
	}
	return cfg.Strategy.fee(units)
}

func valueOr(v *decimal.Decimal, fallback decimal.Decimal) decimal.Decimal {
	if v == nil {
		return fallback
	}
	return *v
}
