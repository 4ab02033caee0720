// Command cartgc deletes carts whose cookie has expired or that hold no items.
// Run it from cron.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/myriadhero/tea-shop/internal/config"
	"github.com/myriadhero/tea-shop/internal/db"
	"github.com/myriadhero/tea-shop/internal/modules/cart"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("config", "err", err)
		os.Exit(1)
	}
	ttl := flag.Duration("ttl", cfg.CartTTL, "Carts idle longer than this are removed")
	flag.Parse()

	gdb, err := db.Open(cfg.DB.Driver, cfg.DB.DSN)
	if err != nil {
		logger.Error("db open", "err", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	res, err := cart.RemoveOrphaned(ctx, gdb, time.Now().Add(-*ttl))
	if err != nil {
		logger.Error("cart gc failed", "err", err)
		os.Exit(1)
	}
	logger.Info("cart gc done", "expired", res.Expired, "empty", res.Empty)
}
