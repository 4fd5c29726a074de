package cart

import (
	"context"

	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-backend/pkg/types"
)

// CartRepository defines the persistence surface required by the cart service.
type CartRepository interface {
	WithTx(tx *gorm.DB) CartRepository
	Find(ctx context.Context, userID string) (types.QuantityMap, error)
	Save(ctx context.Context, userID string, items types.QuantityMap) error
	Clear(ctx context.Context, userID string) error
}
