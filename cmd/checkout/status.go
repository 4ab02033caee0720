package main

import (
	"errors"
	"fmt"
	"net/url"

	"github.com/spf13/cobra"

	"github.com/myriadhero/tea-shop/internal/modules/checkout"
)

type printDisplay struct{ cmd *cobra.Command }

func (p printDisplay) ShowMessage(text string) { fmt.Fprintln(p.cmd.OutOrStdout(), text) }

func statusCmd() *cobra.Command {
	var returnURL string

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the payment status for a return URL",
		Long:  `Reads payment_intent_client_secret from the URL the provider redirected to and prints the status message.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			u, err := url.Parse(returnURL)
			if err != nil {
				return fmt.Errorf("parse return url: %w", err)
			}
			q := u.Query()
			if q.Get("payment_intent_client_secret") == "" {
				return errors.New("return url has no payment_intent_client_secret")
			}

			provider, _, err := loadProvider()
			if err != nil {
				return err
			}
			flow := checkout.NewFlow(checkout.Deps{Intents: provider, Display: printDisplay{cmd: cmd}}, checkout.Config{})
			flow.InitializeStatus(cmd.Context(), q)
			return nil
		},
	}

	cmd.Flags().StringVar(&returnURL, "return-url", "", "URL the payment page redirected to")
	_ = cmd.MarkFlagRequired("return-url")

	return cmd
}
