package db

import (
	"fmt"

	gormmysql "gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/myriadhero/tea-shop/internal/modules/cart"
	"github.com/myriadhero/tea-shop/internal/modules/orders"
	"github.com/myriadhero/tea-shop/internal/modules/payments"
	"github.com/myriadhero/tea-shop/internal/modules/products"
)

// Open connects with the named driver. TranslateError maps unique-key
// violations to gorm.ErrDuplicatedKey for both drivers.
func Open(driver, dsn string) (*gorm.DB, error) {
	cfg := &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Warn),
	}
	switch driver {
	case "mysql":
		return gorm.Open(gormmysql.Open(dsn), cfg)
	case "sqlite":
		return gorm.Open(sqlite.Open(dsn), cfg)
	default:
		return nil, fmt.Errorf("unsupported db driver %q", driver)
	}
}

// Models lists every table the shop owns, in dependency order.
func Models() []any {
	return []any{
		&products.Category{},
		&products.ProductType{},
		&products.Product{},
		&cart.Cart{},
		&cart.CartItem{},
		&orders.Order{},
		&orders.Address{},
		&orders.OrderItem{},
		&payments.ProviderEvent{},
	}
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(Models()...)
}
