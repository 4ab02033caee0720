package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/myriadhero/tea-shop/internal/config"
	"github.com/myriadhero/tea-shop/internal/db"
	apphttp "github.com/myriadhero/tea-shop/internal/http"
	"github.com/myriadhero/tea-shop/internal/mailer"
	"github.com/myriadhero/tea-shop/internal/modules/cart"
	"github.com/myriadhero/tea-shop/internal/modules/email"
	"github.com/myriadhero/tea-shop/internal/modules/orders"
	"github.com/myriadhero/tea-shop/internal/modules/payments"
	"github.com/myriadhero/tea-shop/internal/modules/products"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("web exited", "err", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	gdb, err := db.Open(cfg.DB.Driver, cfg.DB.DSN)
	if err != nil {
		return err
	}
	if cfg.DB.AutoMigrate {
		if err := db.Migrate(gdb); err != nil {
			return err
		}
		logger.Info("schema migrated")
	}

	provider := newProvider(cfg)

	carts := cart.NewService(cart.NewRepo(gdb), cfg.Payments.Currency)
	orderSvc := orders.NewService(gdb, carts, provider)
	orderSvc.SetLogger(logger)

	receipts := email.NewReceipts(mailer.New(cfg.SMTP, logger), orderSvc.Repo(), cfg.Email.From, cfg.Email.FromName)
	receipts.SetLogger(logger)

	webhooks := payments.NewWebhookService(gdb, orderSvc)
	webhooks.SetLogger(logger)
	webhooks.OnPaid(receipts.SendOrderPaid)

	r := apphttp.NewRouter(apphttp.Deps{
		Logger:           logger,
		Carts:            carts,
		Products:         products.NewRepo(gdb),
		Orders:           orderSvc,
		Provider:         provider,
		Webhooks:         webhooks,
		CookieSecret:     []byte(cfg.CookieSecret),
		CookieSecure:     cfg.CookieSecure,
		CartTTL:          cfg.CartTTL,
		BaseURL:          cfg.BaseURL,
		AllowedCountries: cfg.Payments.AllowedCountries,
	})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errc := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", cfg.Addr, "provider", provider.Name())
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func newProvider(cfg config.Config) payments.Provider {
	if cfg.Payments.Provider == "mock" {
		return payments.NewMockProvider(cfg.MockWebhookSecret)
	}
	return payments.NewStripeProvider(payments.StripeConfig{
		SecretKey:     cfg.Stripe.SecretKey,
		PublicKey:     cfg.Stripe.PublicKey,
		WebhookSecret: cfg.Stripe.WebhookSecret,
	})
}
