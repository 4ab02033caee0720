// Package config loads process configuration from the environment (and an
// optional .env file) into a typed Config.
package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Env     string `mapstructure:"app_env"`
	Addr    string `mapstructure:"app_addr"`
	BaseURL string `mapstructure:"app_base_url"`

	CookieSecret string        `mapstructure:"cookie_secret"`
	CookieSecure bool          `mapstructure:"cookie_secure"`
	CartTTL      time.Duration `mapstructure:"cart_ttl"`

	DB       DBConfig       `mapstructure:"db"`
	Payments PaymentsConfig `mapstructure:"payments"`
	Stripe   StripeConfig   `mapstructure:"stripe"`
	SMTP     SMTPConfig     `mapstructure:"smtp"`
	Email    EmailConfig    `mapstructure:"email"`

	MockWebhookSecret string `mapstructure:"mock_webhook_secret"`
}

type DBConfig struct {
	Driver      string `mapstructure:"driver"` // mysql|sqlite
	DSN         string `mapstructure:"dsn"`
	AutoMigrate bool   `mapstructure:"auto_migrate"`
}

type PaymentsConfig struct {
	Provider         string   `mapstructure:"provider"` // stripe|mock
	Currency         string   `mapstructure:"currency"`
	AllowedCountries []string `mapstructure:"allowed_countries"`
}

type StripeConfig struct {
	SecretKey     string `mapstructure:"secret_key"`
	PublicKey     string `mapstructure:"public_key"`
	WebhookSecret string `mapstructure:"webhook_secret"`
}

type SMTPConfig struct {
	Host          string `mapstructure:"host"`
	Port          string `mapstructure:"port"`
	User          string `mapstructure:"user"`
	Pass          string `mapstructure:"pass"`
	TLSMode       string `mapstructure:"tls_mode"` // none|tls|starttls
	SkipVerifyTLS bool   `mapstructure:"skip_verify_tls"`
}

type EmailConfig struct {
	From     string `mapstructure:"from"`
	FromName string `mapstructure:"from_name"`
}

var defaults = map[string]any{
	"app_env":                    "development",
	"app_addr":                   ":8080",
	"app_base_url":               "http://localhost:8080",
	"cookie_secret":              "",
	"cookie_secure":              false,
	"cart_ttl":                   30 * 24 * time.Hour,
	"db.driver":                  "mysql",
	"db.dsn":                     "",
	"db.auto_migrate":            false,
	"payments.provider":          "stripe",
	"payments.currency":          "AUD",
	"payments.allowed_countries": "AU",
	"stripe.secret_key":          "",
	"stripe.public_key":          "",
	"stripe.webhook_secret":      "",
	"smtp.host":                  "",
	"smtp.port":                  "1025",
	"smtp.user":                  "",
	"smtp.pass":                  "",
	"smtp.tls_mode":              "none",
	"smtp.skip_verify_tls":       false,
	"email.from":                 "no-reply@tea-shop.local",
	"email.from_name":            "Tea Shop",
	"mock_webhook_secret":        "",
}

// Load reads .env (if present) and the environment. Keys map to upper-case
// env vars with dots replaced by underscores: db.dsn -> DB_DSN.
func Load() (Config, error) {
	// prod uses real env vars; a missing .env is fine
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	cfg.Payments.Currency = strings.ToUpper(strings.TrimSpace(cfg.Payments.Currency))
	cfg.Payments.AllowedCountries = normalizeCountries(cfg.Payments.AllowedCountries)
	return cfg, nil
}

func (c Config) Validate() error {
	var errs []error
	if c.DB.DSN == "" {
		errs = append(errs, errors.New("DB_DSN is required"))
	}
	if c.DB.Driver != "mysql" && c.DB.Driver != "sqlite" {
		errs = append(errs, errors.New("DB_DRIVER must be mysql or sqlite"))
	}
	if len(c.CookieSecret) < 16 {
		errs = append(errs, errors.New("COOKIE_SECRET must be at least 16 characters"))
	}
	switch c.Payments.Provider {
	case "stripe":
		if c.Stripe.SecretKey == "" || c.Stripe.PublicKey == "" {
			errs = append(errs, errors.New("STRIPE_SECRET_KEY and STRIPE_PUBLIC_KEY are required"))
		}
		if c.Stripe.WebhookSecret == "" {
			errs = append(errs, errors.New("STRIPE_WEBHOOK_SECRET is required"))
		}
	case "mock":
		if c.MockWebhookSecret == "" {
			errs = append(errs, errors.New("MOCK_WEBHOOK_SECRET is required"))
		}
	default:
		errs = append(errs, errors.New("PAYMENTS_PROVIDER must be stripe or mock"))
	}
	if len(c.Payments.AllowedCountries) == 0 {
		errs = append(errs, errors.New("PAYMENTS_ALLOWED_COUNTRIES must not be empty"))
	}
	return errors.Join(errs...)
}

func (c Config) IsProduction() bool { return c.Env == "production" }

func normalizeCountries(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		for _, part := range strings.Split(s, ",") {
			if p := strings.ToUpper(strings.TrimSpace(part)); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}
