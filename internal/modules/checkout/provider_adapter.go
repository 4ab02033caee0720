package checkout

import (
	"context"

	"github.com/myriadhero/tea-shop/internal/modules/payments"
)

// ProviderConfirmer confirms an intent server-side with a chosen payment
// method. It stands in for the browser's payment element.
type ProviderConfirmer struct {
	Provider      payments.Provider
	ClientSecret  string
	PaymentMethod string
}

func (c ProviderConfirmer) ConfirmPayment(ctx context.Context, returnURL string) (string, error) {
	in, err := c.Provider.ConfirmIntent(ctx, payments.ConfirmIntentRequest{
		ClientSecret:  c.ClientSecret,
		PaymentMethod: c.PaymentMethod,
		ReturnURL:     returnURL,
	})
	if err != nil {
		return "", err
	}
	return payments.ReturnRedirect(returnURL, in)
}

// StaticAddress is an AddressSource with fixed input. Completeness follows
// the address element's rules: everything but line2 and state is required.
type StaticAddress Address

func (s StaticAddress) GetValue(context.Context) AddressValue {
	a := Address(s)
	complete := a.Name != "" && a.Line1 != "" && a.City != "" && a.PostalCode != "" && a.Country != ""
	return AddressValue{Complete: complete, Address: a}
}
