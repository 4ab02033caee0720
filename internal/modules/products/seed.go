package products

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/myriadhero/tea-shop/internal/shared/slug"
)

// SeedDemo inserts a small published catalogue when the products table is empty.
func SeedDemo(ctx context.Context, db *gorm.DB, currency string) (int, error) {
	var n int64
	if err := db.WithContext(ctx).Model(&Product{}).Count(&n).Error; err != nil {
		return 0, err
	}
	if n > 0 {
		return 0, nil
	}

	teas := ProductType{ID: uuid.NewString(), Name: "Teas", Description: "All the teas", Slug: "teas"}
	wares := ProductType{ID: uuid.NewString(), Name: "Teawares", Description: "Things to brew tea with", Slug: "teawares"}
	oolongs := Category{ID: uuid.NewString(), Name: "Oolongs", Description: "Oolong teas", Slug: "oolongs"}

	items := []Product{
		{Name: "Tieguanyin", Description: "Roasted Anxi oolong", Slug: slug.FromName("Tieguanyin"), Quantity: 40, PriceCents: 2450, ProductTypeID: teas.ID, Categories: []Category{oolongs}},
		{Name: "Dong Ding", Description: "Taiwanese ball-rolled oolong", Slug: slug.FromName("Dong Ding"), Quantity: 25, PriceCents: 2899, ProductTypeID: teas.ID, Categories: []Category{oolongs}},
		{Name: "Yixing Teapot", Description: "150ml zisha clay pot", Slug: slug.FromName("Yixing Teapot"), Quantity: 5, PriceCents: 12900, ProductTypeID: wares.ID},
	}

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&[]ProductType{teas, wares}).Error; err != nil {
			return err
		}
		if err := tx.Create(&oolongs).Error; err != nil {
			return err
		}
		for i := range items {
			items[i].ID = uuid.NewString()
			items[i].IsPublished = true
			items[i].Currency = currency
			if err := tx.Create(&items[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("seed demo catalogue: %w", err)
	}
	return len(items), nil
}
