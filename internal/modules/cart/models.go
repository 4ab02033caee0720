package cart

import (
	"time"

	"github.com/myriadhero/tea-shop/internal/modules/products"
)

// Cart belongs to a browser session; its id lives in a signed cookie.
type Cart struct {
	ID        string     `gorm:"type:char(36);primaryKey"`
	Items     []CartItem `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time  `gorm:"precision:3;not null"`
	UpdatedAt time.Time  `gorm:"precision:3;not null;index:ix_carts_updated_at"`
}

func (Cart) TableName() string { return "carts" }

// CartItem holds one product per cart; quantity is always > 0 (delete instead).
type CartItem struct {
	ID        string           `gorm:"type:char(36);primaryKey"`
	CartID    string           `gorm:"type:char(36);not null;uniqueIndex:ux_cart_items_cart_product,priority:1"`
	ProductID string           `gorm:"type:char(36);not null;uniqueIndex:ux_cart_items_cart_product,priority:2"`
	Product   products.Product `gorm:"foreignKey:ProductID"`
	Quantity  int              `gorm:"not null;check:chk_cart_items_quantity,quantity > 0"`
	CreatedAt time.Time        `gorm:"precision:3;not null"`
	UpdatedAt time.Time        `gorm:"precision:3;not null"`
}

func (CartItem) TableName() string { return "cart_items" }
