package shipping

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/storefront-backend/internal/pricing"
	"github.com/angelmondragon/storefront-backend/pkg/db/dbtest"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
)

type failingFinder struct{}

func (failingFinder) Find(context.Context) (*models.ShippingSetting, error) {
	return nil, errors.New("boom")
}

func TestServiceConfigDefaultsWithoutRow(t *testing.T) {
	db := dbtest.Open(t)
	svc, err := NewService(NewRepository(db))
	require.NoError(t, err)

	settings, err := svc.Settings(context.Background())
	require.NoError(t, err)
	require.True(t, settings.Enabled)
	require.Equal(t, enums.ShippingFlatRate, settings.ShippingType)
	require.True(t, settings.FlatRate.Equal(decimal.NewFromInt(5)))
	require.True(t, settings.FreeShippingMin.Equal(decimal.NewFromInt(499)))
}

func TestServiceConfigReadsSavedRow(t *testing.T) {
	db := dbtest.Open(t)
	enabled := true
	kind := "PER_ITEM"
	fee := decimal.NewFromInt(3)
	max := decimal.NewFromInt(10)
	min := decimal.NewFromInt(200)
	require.NoError(t, db.Create(&models.ShippingSetting{
		ID:              models.ShippingSettingID,
		Enabled:         &enabled,
		ShippingType:    &kind,
		PerItemFee:      &fee,
		MaxItemFee:      &max,
		FreeShippingMin: &min,
	}).Error)

	svc, err := NewService(NewRepository(db))
	require.NoError(t, err)

	cfg, err := svc.Config(context.Background())
	require.NoError(t, err)
	require.True(t, pricing.ShippingFee(cfg, decimal.NewFromInt(50), 5).Equal(decimal.NewFromInt(10)))
	require.True(t, pricing.ShippingFee(cfg, decimal.NewFromInt(200), 5).IsZero())

	settings := Describe(cfg)
	require.Equal(t, enums.ShippingPerItem, settings.ShippingType)
	require.True(t, settings.MaxItemFee.Equal(max))
}

func TestServiceConfigWrapsErrors(t *testing.T) {
	svc, err := NewService(failingFinder{})
	require.NoError(t, err)

	_, err = svc.Config(context.Background())
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeInternal))
}
