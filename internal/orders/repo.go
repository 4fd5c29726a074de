package orders

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/pagination"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds an orders repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

// Create writes the order row and then its items. Callers run it inside a
// transaction so an order never exists without its lines.
func (r *repository) Create(ctx context.Context, order *models.Order) error {
	if order == nil {
		return errors.New("order required")
	}
	items := order.OrderItems
	if err := r.db.WithContext(ctx).Omit("OrderItems").Create(order).Error; err != nil {
		return err
	}
	if len(items) == 0 {
		return nil
	}
	for i := range items {
		items[i].OrderID = order.ID
	}
	if err := r.db.WithContext(ctx).Create(&items).Error; err != nil {
		return err
	}
	order.OrderItems = items
	return nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("OrderItems").
		Where("id = ?", id).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) ListByUser(ctx context.Context, userID string, params pagination.Params) (*OrderList, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, err
	}

	query := r.db.WithContext(ctx).
		Preload("OrderItems").
		Where("user_id = ?", userID)
	if cursor != nil {
		query = query.Where("(created_at < ?) OR (created_at = ? AND id < ?)", cursor.CreatedAt, cursor.CreatedAt, cursor.ID)
	}

	var rows []models.Order
	err = query.
		Order("created_at DESC").
		Order("id DESC").
		Limit(pagination.LimitWithBuffer(params.Limit)).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	rows, next := pagination.Trim(rows, params.Limit, func(o models.Order) pagination.Cursor {
		return pagination.Cursor{CreatedAt: o.CreatedAt, ID: o.ID}
	})
	list := &OrderList{Orders: make([]OrderView, 0, len(rows)), NextCursor: next}
	for _, row := range rows {
		list.Orders = append(list.Orders, NewOrderView(row))
	}
	return list, nil
}

func (r *repository) FindGuestOrderIDs(ctx context.Context, contact GuestContact) ([]uuid.UUID, error) {
	if contact.Empty() {
		return nil, nil
	}
	var ids []uuid.UUID
	err := r.guestScope(r.db.WithContext(ctx).Model(&models.Order{}), contact).
		Order("created_at ASC").
		Pluck("id", &ids).Error
	return ids, err
}

// ReassignGuestOrders moves the listed orders to userID. Rows already claimed
// by an account are skipped by the is_guest predicate.
func (r *repository) ReassignGuestOrders(ctx context.Context, ids []uuid.UUID, userID string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id IN ? AND is_guest = ?", ids, true).
		Updates(map[string]any{
			"user_id":  userID,
			"is_guest": false,
		})
	return res.RowsAffected, res.Error
}

func (r *repository) guestScope(query *gorm.DB, contact GuestContact) *gorm.DB {
	query = query.Where("is_guest = ?", true)
	switch {
	case contact.Email != "" && contact.Phone != "":
		return query.Where("guest_email = ? OR guest_phone = ?", contact.Email, contact.Phone)
	case contact.Email != "":
		return query.Where("guest_email = ?", contact.Email)
	default:
		return query.Where("guest_phone = ?", contact.Phone)
	}
}
