package guests

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-backend/pkg/db"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
)

// Contact identifies a guest by email OR phone. Empty fields never match.
type Contact struct {
	Email string
	Phone string
}

func (c Contact) Empty() bool {
	return c.Email == "" && c.Phone == ""
}

// Store persists guest identities.
type Store interface {
	WithTx(tx *gorm.DB) Store
	FindUnconverted(ctx context.Context, contact Contact) (*models.GuestUser, error)
	Ensure(ctx context.Context, guest models.GuestUser) (*models.GuestUser, error)
	MarkConverted(ctx context.Context, id uuid.UUID) (bool, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(conn *gorm.DB) Store {
	return &repository{db: conn}
}

func (r *repository) WithTx(tx *gorm.DB) Store {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

// FindUnconverted returns the oldest guest matching contact whose orders were
// never linked, or nil.
func (r *repository) FindUnconverted(ctx context.Context, contact Contact) (*models.GuestUser, error) {
	if contact.Empty() {
		return nil, nil
	}
	query := r.db.WithContext(ctx).Where("account_created = ?", false)
	switch {
	case contact.Email != "" && contact.Phone != "":
		query = query.Where("email = ? OR phone = ?", contact.Email, contact.Phone)
	case contact.Email != "":
		query = query.Where("email = ?", contact.Email)
	default:
		query = query.Where("phone = ?", contact.Phone)
	}

	var guest models.GuestUser
	err := query.Order("created_at ASC").First(&guest).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &guest, nil
}

// Ensure returns the open guest record for the email/phone pair, creating it
// when none exists. A concurrent checkout that inserts the same pair first
// makes the insert fail on uq_guest_users_open_pair; the savepoint keeps the
// outer transaction usable and the winner's row is returned.
func (r *repository) Ensure(ctx context.Context, guest models.GuestUser) (*models.GuestUser, error) {
	match := map[string]any{"email": guest.Email, "phone": guest.Phone, "account_created": false}

	var row models.GuestUser
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Where(match).Attrs(models.GuestUser{Name: guest.Name}).FirstOrCreate(&row).Error
	})
	if db.IsUniqueViolation(err, "") {
		row = models.GuestUser{}
		err = r.db.WithContext(ctx).Where(match).First(&row).Error
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// MarkConverted flips account_created only if it is still false. The boolean
// reports whether this call performed the transition.
func (r *repository) MarkConverted(ctx context.Context, id uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.GuestUser{}).
		Where("id = ? AND account_created = ?", id, false).
		Update("account_created", true)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
