// Command migrate creates or updates the schema and can seed demo teas.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"github.com/myriadhero/tea-shop/internal/config"
	"github.com/myriadhero/tea-shop/internal/db"
	"github.com/myriadhero/tea-shop/internal/modules/products"
)

func main() {
	seed := flag.Bool("seed", false, "Insert demo products")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("config", "err", err)
		os.Exit(1)
	}
	gdb, err := db.Open(cfg.DB.Driver, cfg.DB.DSN)
	if err != nil {
		logger.Error("db open", "err", err)
		os.Exit(1)
	}

	if err := db.Migrate(gdb); err != nil {
		logger.Error("migrate failed", "err", err)
		os.Exit(1)
	}
	logger.Info("schema migrated", "driver", cfg.DB.Driver)

	if !*seed {
		return
	}
	n, err := products.SeedDemo(context.Background(), gdb, cfg.Payments.Currency)
	if err != nil {
		logger.Error("seed failed", "err", err)
		os.Exit(1)
	}
	logger.Info("demo products seeded", "created", n)
}
