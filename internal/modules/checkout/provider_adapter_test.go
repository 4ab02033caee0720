package checkout

import (
	"context"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/myriadhero/tea-shop/internal/modules/payments"
)

func TestFlowAgainstMockProvider(t *testing.T) {
	ctx := context.Background()
	p := payments.NewMockProvider("whsec_test")
	in, err := p.CreateIntent(ctx, payments.CreateIntentRequest{AmountCents: 2500, Currency: "AUD"})
	require.NoError(t, err)

	cases := []struct {
		method  string
		outcome Outcome
		message string
		status  string
	}{
		{payments.MockMethodDeclined, OutcomeConfirmFailed, "Your card was declined.", ""},
		{"", OutcomeConfirmFailed, "Your card number is incomplete.", ""},
		{"pm_unknown", OutcomeConfirmFailed, MsgConfirmGeneric, ""},
		{payments.MockMethodVisa, OutcomeRedirect, "", "Payment succeeded!"},
	}
	for _, tc := range cases {
		disp := &shown{}
		flow := NewFlow(Deps{
			Address:   StaticAddress(fullAddress),
			Details:   &fakeDetails{resp: ServerResponse{StatusCode: 200}},
			Confirmer: ProviderConfirmer{Provider: p, ClientSecret: in.ClientSecret, PaymentMethod: tc.method},
			Intents:   p,
			Display:   disp,
		}, Config{ReturnURL: "https://shop.test/shop/checkout/success/"})

		res := flow.HandleSubmit(ctx)
		assert.Equal(t, tc.outcome, res.Outcome, tc.method)
		assert.Equal(t, tc.message, res.Message, tc.method)
		if tc.outcome != OutcomeRedirect {
			continue
		}

		u, err := url.Parse(res.RedirectURL)
		require.NoError(t, err)
		assert.Equal(t, "/shop/checkout/success/", u.Path)
		assert.Equal(t, in.ID, u.Query().Get("payment_intent"))
		assert.Equal(t, "succeeded", u.Query().Get("redirect_status"))

		flow.InitializeStatus(ctx, u.Query())
		assert.Equal(t, []string{tc.status}, disp.get())
	}
}

func TestStaticAddressCompleteness(t *testing.T) {
	assert.True(t, StaticAddress(fullAddress).GetValue(context.Background()).Complete)

	noCity := fullAddress
	noCity.City = ""
	assert.False(t, StaticAddress(noCity).GetValue(context.Background()).Complete)

	noLine2 := fullAddress
	noLine2.Line2 = ""
	assert.True(t, StaticAddress(noLine2).GetValue(context.Background()).Complete)
}
