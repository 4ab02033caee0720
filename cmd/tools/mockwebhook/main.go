// Command mockwebhook sends a signed mock payment event to a running shop.
package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/myriadhero/tea-shop/internal/modules/payments"
)

func main() {
	var (
		target   string
		secret   string
		eventID  string
		kind     string
		intentID string
		amount   int
		currency string
		failMsg  string
		dryRun   bool
	)

	cmd := &cobra.Command{
		Use:   "mockwebhook",
		Short: "Send a signed mock payment event",
		RunE: func(cmd *cobra.Command, args []string) error {
			if secret == "" {
				return errors.New("secret not provided and MOCK_WEBHOOK_SECRET not set")
			}
			if eventID == "" {
				eventID = "evt_" + uuid.NewString()
			}

			ev := payments.MockEvent{ID: eventID, Type: kind}
			ev.Data.IntentID = intentID
			ev.Data.AmountCents = amount
			ev.Data.Currency = currency
			ev.Data.ErrorMessage = failMsg

			body, err := json.Marshal(ev)
			if err != nil {
				return err
			}
			sig := payments.SignMockPayload(secret, time.Now(), body)

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s: %s\n", payments.MockSignatureHeader, sig)
			fmt.Fprintf(out, "Body: %s\n", body)
			if dryRun {
				fmt.Fprintln(out, "\n[DRY RUN] Not sending request")
				return nil
			}

			fmt.Fprintf(out, "\nSending to %s...\n", target)
			req, err := http.NewRequestWithContext(cmd.Context(), http.MethodPost, target, bytes.NewReader(body))
			if err != nil {
				return err
			}
			req.Header.Set("Content-Type", "application/json")
			req.Header.Set(payments.MockSignatureHeader, sig)

			resp, err := http.DefaultClient.Do(req)
			if err != nil {
				return err
			}
			defer resp.Body.Close()

			respBody, _ := io.ReadAll(resp.Body)
			fmt.Fprintf(out, "Status: %d\n", resp.StatusCode)
			fmt.Fprintf(out, "Response: %s\n", respBody)
			if resp.StatusCode != http.StatusOK {
				return fmt.Errorf("webhook answered %d", resp.StatusCode)
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&target, "url", "http://localhost:8080/webhooks/mock", "Webhook URL")
	f.StringVar(&secret, "secret", os.Getenv("MOCK_WEBHOOK_SECRET"), "Webhook secret")
	f.StringVar(&eventID, "event-id", "", "Event ID (random when empty)")
	f.StringVar(&kind, "type", payments.EventPaymentSucceeded, "Event type (payment.succeeded, payment.failed, payment.canceled)")
	f.StringVar(&intentID, "intent", "", "Payment intent ID")
	f.IntVar(&amount, "amount", 0, "Amount in cents")
	f.StringVar(&currency, "currency", "AUD", "Currency")
	f.StringVar(&failMsg, "error-message", "", "Failure reason for payment.failed")
	f.BoolVar(&dryRun, "dry-run", false, "Only print the signature header, don't send")
	_ = cmd.MarkFlagRequired("intent")

	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
