package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Product is the canonical listing row. Ratings and OrderedUnits are only
// filled for catalog projection.
type Product struct {
	ID          uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	StoreID     uuid.UUID        `gorm:"column:store_id;type:uuid;not null"`
	Name        string           `gorm:"column:name;not null"`
	Description string           `gorm:"column:description;not null;default:''"`
	Category    string           `gorm:"column:category;not null"`
	Price       decimal.Decimal  `gorm:"column:price;type:numeric(12,2);not null"`
	MRP         *decimal.Decimal `gorm:"column:mrp;type:numeric(12,2)"`
	Images      pq.StringArray   `gorm:"column:images;type:text[]"`
	InStock     bool             `gorm:"column:in_stock;not null;default:true"`
	Store       *Store           `gorm:"foreignKey:StoreID"`
	Ratings     []Rating         `gorm:"foreignKey:ProductID"`
	CreatedAt   time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time        `gorm:"column:updated_at;autoUpdateTime"`

	// OrderedUnits is SUM(order_items.quantity), filled by the catalog query.
	OrderedUnits int `gorm:"-"`
}

func (p *Product) BeforeCreate(*gorm.DB) error {
	ensureID(&p.ID)
	return nil
}

// Rating is a single customer review score (1..5) for a product.
type Rating struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ProductID uuid.UUID `gorm:"column:product_id;type:uuid;not null"`
	UserID    string    `gorm:"column:user_id;not null"`
	OrderID   uuid.UUID `gorm:"column:order_id;type:uuid;not null"`
	Rating    int       `gorm:"column:rating;not null"`
	Review    string    `gorm:"column:review;not null;default:''"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (r *Rating) BeforeCreate(*gorm.DB) error {
	ensureID(&r.ID)
	return nil
}
