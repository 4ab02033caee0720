package products

import "time"

type Category struct {
	ID          string `gorm:"type:char(36);primaryKey"`
	Name        string `gorm:"type:varchar(150);not null"`
	Description string `gorm:"type:text"`
	Slug        string `gorm:"type:varchar(150);not null;uniqueIndex:ux_categories_slug"`
}

func (Category) TableName() string { return "categories" }

// ProductType is the general kind of product: tea, teaware, ...
type ProductType struct {
	ID          string `gorm:"type:char(36);primaryKey"`
	Name        string `gorm:"type:varchar(150);not null"`
	Description string `gorm:"type:text"`
	Slug        string `gorm:"type:varchar(150);not null;uniqueIndex:ux_product_types_slug"`
}

func (ProductType) TableName() string { return "product_types" }

type Product struct {
	ID            string `gorm:"type:char(36);primaryKey"`
	ProductTypeID string `gorm:"type:char(36);not null;index:ix_products_type"`
	Name          string `gorm:"type:varchar(150);not null"`
	Description   string `gorm:"type:text"`
	Slug          string `gorm:"type:varchar(150);not null;uniqueIndex:ux_products_slug"`
	IsPublished   bool   `gorm:"not null;default:false"`
	Quantity      int    `gorm:"not null;default:0"` // units in stock
	PriceCents    int    `gorm:"not null"`
	Currency      string `gorm:"type:char(3);not null"`

	ProductType ProductType `gorm:"foreignKey:ProductTypeID"`
	Categories  []Category  `gorm:"many2many:product_categories"`

	CreatedAt time.Time `gorm:"precision:3;not null"`
	UpdatedAt time.Time `gorm:"precision:3;not null"`
}

func (Product) TableName() string { return "products" }
