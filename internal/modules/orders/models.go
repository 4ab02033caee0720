package orders

import "time"

const (
	StatusPending  = "pending"
	StatusPaid     = "paid"
	StatusCanceled = "canceled"
)

type Order struct {
	ID               string  `gorm:"type:char(36);primaryKey"`
	PaymentIntent    string  `gorm:"type:varchar(128);not null;uniqueIndex:ux_orders_payment_intent"`
	ClientSecret     string  `gorm:"type:varchar(255);not null"`
	Status           string  `gorm:"type:varchar(32);not null;index:ix_orders_status"`
	CartID           string  `gorm:"type:char(36);not null;index:ix_orders_cart_id"`
	Email            string  `gorm:"type:varchar(254);not null;default:''"`
	AmountCents      int     `gorm:"not null"`
	Currency         string  `gorm:"type:char(3);not null"`
	LastPaymentError *string `gorm:"type:varchar(255)"`

	Address *Address    `gorm:"foreignKey:OrderID"`
	Items   []OrderItem `gorm:"foreignKey:OrderID"`

	PaidAt    *time.Time `gorm:"precision:3"`
	CreatedAt time.Time  `gorm:"precision:3;not null"`
	UpdatedAt time.Time  `gorm:"precision:3;not null"`
}

func (Order) TableName() string { return "orders" }

// Address is the shipping address collected on the checkout page.
type Address struct {
	ID         string `gorm:"type:char(36);primaryKey"`
	OrderID    string `gorm:"type:char(36);not null;uniqueIndex:ux_order_addresses_order_id"`
	Name       string `gorm:"type:varchar(100);not null"`
	Line1      string `gorm:"type:varchar(100);not null"`
	Line2      string `gorm:"type:varchar(100);not null;default:''"`
	City       string `gorm:"type:varchar(100);not null"`
	State      string `gorm:"type:varchar(100);not null"`
	PostalCode string `gorm:"type:varchar(10);not null"`
	Country    string `gorm:"type:varchar(10);not null"`

	CreatedAt time.Time `gorm:"precision:3;not null"`
	UpdatedAt time.Time `gorm:"precision:3;not null"`
}

func (Address) TableName() string { return "order_addresses" }

// OrderItem freezes a cart line at the time the customer submitted details.
type OrderItem struct {
	ID                 string `gorm:"type:char(36);primaryKey"`
	OrderID            string `gorm:"type:char(36);not null;index:ix_order_items_order_id"`
	ProductID          string `gorm:"type:char(36);not null"`
	ProductName        string `gorm:"type:varchar(150);not null"`
	ProductDescription string `gorm:"type:text"`
	Quantity           int    `gorm:"not null"`
	UnitPriceCents     int    `gorm:"not null"`
	LineTotalCents     int    `gorm:"not null"`

	CreatedAt time.Time `gorm:"precision:3;not null"`
}

func (OrderItem) TableName() string { return "order_items" }
