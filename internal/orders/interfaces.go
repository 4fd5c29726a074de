package orders

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/pagination"
)

// Repository defines persistence operations for the orders tables.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, order *models.Order) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	ListByUser(ctx context.Context, userID string, params pagination.Params) (*OrderList, error)
	FindGuestOrderIDs(ctx context.Context, contact GuestContact) ([]uuid.UUID, error)
	ReassignGuestOrders(ctx context.Context, ids []uuid.UUID, userID string) (int64, error)
}

// GuestContact selects guest orders by email OR phone. Empty fields never match.
type GuestContact struct {
	Email string
	Phone string
}

func (c GuestContact) Empty() bool {
	return c.Email == "" && c.Phone == ""
}
