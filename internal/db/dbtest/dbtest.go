// Package dbtest opens throwaway in-memory SQLite databases for tests.
package dbtest

import (
	"fmt"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/myriadhero/tea-shop/internal/db"
	"github.com/myriadhero/tea-shop/internal/modules/products"
)

// Open returns a migrated database private to t.
func Open(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=1", name)

	gdb, err := db.Open("sqlite", dsn)
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gdb))

	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return gdb
}

// SeedProduct inserts a published product (and its type) and returns it.
func SeedProduct(t *testing.T, gdb *gorm.DB, slug string, priceCents, stock int) products.Product {
	t.Helper()

	pt := products.ProductType{ID: uuid.NewString(), Name: "Teas", Slug: "teas-" + slug}
	require.NoError(t, gdb.Create(&pt).Error)

	p := products.Product{
		ID:            uuid.NewString(),
		ProductTypeID: pt.ID,
		Name:          "Tea " + slug,
		Description:   "A fragrant " + slug,
		Slug:          slug,
		IsPublished:   true,
		Quantity:      stock,
		PriceCents:    priceCents,
		Currency:      "AUD",
	}
	require.NoError(t, gdb.Create(&p).Error)
	return p
}
