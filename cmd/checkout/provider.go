package main

import (
	"errors"

	"github.com/myriadhero/tea-shop/internal/config"
	"github.com/myriadhero/tea-shop/internal/modules/payments"
)

// loadProvider builds the provider from the same environment the web
// process reads. Mock intents live inside the web process, so only Stripe
// can be driven from here.
func loadProvider() (payments.Provider, config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, config.Config{}, err
	}
	if cfg.Payments.Provider != "stripe" {
		return nil, cfg, errors.New("checkout needs PAYMENTS_PROVIDER=stripe")
	}
	if cfg.Stripe.SecretKey == "" {
		return nil, cfg, errors.New("STRIPE_SECRET_KEY is required")
	}
	return payments.NewStripeProvider(payments.StripeConfig{
		SecretKey:     cfg.Stripe.SecretKey,
		PublicKey:     cfg.Stripe.PublicKey,
		WebhookSecret: cfg.Stripe.WebhookSecret,
	}), cfg, nil
}
