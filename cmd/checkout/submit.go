package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/spf13/cobra"

	"github.com/myriadhero/tea-shop/internal/modules/checkout"
	"github.com/myriadhero/tea-shop/internal/modules/payments"
	"github.com/myriadhero/tea-shop/internal/ui/message"
)

func submitCmd() *cobra.Command {
	var (
		addr          checkout.Address
		email         string
		clientSecret  string
		paymentMethod string
		baseURL       string
		saveAddress   bool
		linger        bool
		timeout       time.Duration
	)

	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Post order details and confirm the payment",
		Long: `Runs one checkout submission the way the payment page does:
the address is checked, the details are posted to the shop, and the
payment intent is confirmed with the chosen test payment method.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			provider, cfg, err := loadProvider()
			if err != nil {
				return err
			}
			if baseURL == "" {
				baseURL = cfg.BaseURL
			}
			baseURL = strings.TrimRight(baseURL, "/")

			intentID, err := payments.IntentIDFromSecret(clientSecret)
			if err != nil {
				return err
			}

			logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
			out := cmd.OutOrStdout()
			region := message.New(clockwork.NewRealClock(), &message.WriterSurface{W: out})
			defer region.Close()

			form := url.Values{
				"email":          {email},
				"payment_intent": {intentID},
			}
			if saveAddress {
				form.Set("save_address", "true")
			}

			flow := checkout.NewFlow(checkout.Deps{
				Address: checkout.StaticAddress(addr),
				Details: &checkout.HTTPDetails{
					URL:    baseURL + "/shop/checkout/details/",
					Client: &http.Client{Timeout: timeout},
				},
				Confirmer: checkout.ProviderConfirmer{
					Provider:      provider,
					ClientSecret:  clientSecret,
					PaymentMethod: paymentMethod,
				},
				Intents: provider,
				Loading: checkout.LoadingFunc(func(loading bool) {
					if loading {
						fmt.Fprintln(out, "[submit] disabled, spinner on")
						return
					}
					fmt.Fprintln(out, "[submit] enabled")
				}),
				Display: region,
			}, checkout.Config{
				Form:      form,
				ReturnURL: baseURL + "/shop/checkout/success/",
			})
			flow.SetLogger(logger)

			res := flow.HandleSubmit(cmd.Context())
			fmt.Fprintf(out, "outcome: %s\n", res.Outcome)
			if res.Outcome == checkout.OutcomeRedirect {
				fmt.Fprintf(out, "redirect: %s\n", res.RedirectURL)
				return nil
			}
			if linger && res.Message != "" {
				// let the region hide itself
				time.Sleep(message.HideAfter + 100*time.Millisecond)
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&clientSecret, "client-secret", "", "Payment intent client secret from the checkout page")
	f.StringVar(&email, "email", "", "Receipt email")
	f.StringVar(&paymentMethod, "payment-method", "pm_card_visa", "Payment method to confirm with")
	f.StringVar(&baseURL, "base-url", "", "Shop base URL (default APP_BASE_URL)")
	f.StringVar(&addr.Name, "name", "", "Recipient name")
	f.StringVar(&addr.Line1, "line1", "", "Address line 1")
	f.StringVar(&addr.Line2, "line2", "", "Address line 2")
	f.StringVar(&addr.City, "city", "", "City")
	f.StringVar(&addr.State, "state", "", "State")
	f.StringVar(&addr.PostalCode, "postal-code", "", "Postal code")
	f.StringVar(&addr.Country, "country", "AU", "Country code")
	f.BoolVar(&saveAddress, "save-address", false, "Ask the shop to remember the address")
	f.BoolVar(&linger, "linger", true, "Wait for the message to hide before exiting")
	f.DurationVar(&timeout, "timeout", 15*time.Second, "HTTP timeout for the details request")
	_ = cmd.MarkFlagRequired("client-secret")

	return cmd
}
