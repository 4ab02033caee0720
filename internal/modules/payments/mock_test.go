package payments

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockIntentLifecycle(t *testing.T) {
	ctx := context.Background()
	m := NewMockProvider("secret")

	in, err := m.CreateIntent(ctx, CreateIntentRequest{AmountCents: 1500, Currency: "aud", IdempotencyKey: "k1"})
	require.NoError(t, err)
	assert.Equal(t, StatusRequiresPaymentMethod, in.Status)
	assert.Equal(t, "AUD", in.Currency)
	assert.True(t, strings.HasPrefix(in.ClientSecret, in.ID+"_secret_"))

	again, err := m.CreateIntent(ctx, CreateIntentRequest{AmountCents: 1500, Currency: "aud", IdempotencyKey: "k1"})
	require.NoError(t, err)
	assert.Equal(t, in.ID, again.ID, "idempotency key reuses the intent")

	_, err = m.UpdateIntent(ctx, UpdateIntentRequest{IntentID: in.ID, AmountCents: 2000, ReceiptEmail: "a@example.com", Shipping: &Shipping{Name: "Ada"}})
	require.NoError(t, err)
	sh, email, ok := m.Shipping(in.ID)
	require.True(t, ok)
	assert.Equal(t, "Ada", sh.Name)
	assert.Equal(t, "a@example.com", email)

	got, err := m.RetrieveIntent(ctx, in.ClientSecret)
	require.NoError(t, err)
	assert.Equal(t, 2000, got.AmountCents)

	_, err = m.RetrieveIntent(ctx, in.ID+"_secret_wrong")
	assert.ErrorIs(t, err, ErrIntentNotFound)
	_, err = m.RetrieveIntent(ctx, "garbage")
	assert.ErrorIs(t, err, ErrBadClientSecret)
}

func TestMockConfirm(t *testing.T) {
	ctx := context.Background()
	m := NewMockProvider("secret")

	confirm := func(method string) (Intent, error) {
		in, err := m.CreateIntent(ctx, CreateIntentRequest{AmountCents: 100, Currency: "AUD"})
		require.NoError(t, err)
		return m.ConfirmIntent(ctx, ConfirmIntentRequest{ClientSecret: in.ClientSecret, PaymentMethod: method, ReturnURL: "https://shop.test/done"})
	}

	in, err := confirm(MockMethodVisa)
	require.NoError(t, err)
	assert.Equal(t, StatusSucceeded, in.Status)

	in, err = confirm(MockMethodProcessing)
	require.NoError(t, err)
	assert.Equal(t, StatusProcessing, in.Status)

	in, err = confirm(MockMethodAuthentication)
	require.NoError(t, err)
	assert.Equal(t, StatusRequiresAction, in.Status)
	assert.Contains(t, in.NextActionURL, "return_url=https%3A%2F%2Fshop.test%2Fdone")

	_, err = confirm(MockMethodDeclined)
	var ce *ConfirmError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, ErrorTypeCard, ce.Type)
	assert.True(t, ce.CustomerFacing())

	_, err = confirm("")
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, ErrorTypeValidation, ce.Type)

	_, err = confirm("pm_nope")
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, ErrorTypeInvalidRequest, ce.Type)
	assert.False(t, ce.CustomerFacing())
}

func TestMockConfirmTwiceIsRejected(t *testing.T) {
	ctx := context.Background()
	m := NewMockProvider("secret")
	in, err := m.CreateIntent(ctx, CreateIntentRequest{AmountCents: 100, Currency: "AUD"})
	require.NoError(t, err)

	req := ConfirmIntentRequest{ClientSecret: in.ClientSecret, PaymentMethod: MockMethodVisa}
	_, err = m.ConfirmIntent(ctx, req)
	require.NoError(t, err)
	_, err = m.ConfirmIntent(ctx, req)
	var ce *ConfirmError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, ErrorTypeInvalidRequest, ce.Type)
	assert.Equal(t, "payment_intent_unexpected_state", ce.Code)
}

func TestMockWebhookSignature(t *testing.T) {
	m := NewMockProvider("whsec")
	now := time.Unix(1_700_000_000, 0)
	m.now = func() time.Time { return now }

	var ev MockEvent
	ev.ID = "evt_1"
	ev.Type = EventPaymentSucceeded
	ev.Data.IntentID = "pi_1"
	ev.Data.AmountCents = 1500
	body, err := json.Marshal(ev)
	require.NoError(t, err)

	h := http.Header{}
	h.Set(MockSignatureHeader, SignMockPayload("whsec", now, body))
	got, err := m.VerifyAndParseWebhook(h, body)
	require.NoError(t, err)
	assert.Equal(t, WebhookEvent{EventID: "evt_1", Type: EventPaymentSucceeded, IntentID: "pi_1", AmountCents: 1500}, got)

	h.Set(MockSignatureHeader, SignMockPayload("other", now, body))
	_, err = m.VerifyAndParseWebhook(h, body)
	assert.ErrorIs(t, err, ErrBadSignature)

	h.Set(MockSignatureHeader, SignMockPayload("whsec", now.Add(-10*time.Minute), body))
	_, err = m.VerifyAndParseWebhook(h, body)
	assert.ErrorIs(t, err, ErrBadSignature, "stale timestamp")

	h.Del(MockSignatureHeader)
	_, err = m.VerifyAndParseWebhook(h, body)
	assert.ErrorIs(t, err, ErrBadSignature)
}

func TestReturnRedirect(t *testing.T) {
	u, err := ReturnRedirect("https://shop.test/shop/checkout/success/", Intent{ID: "pi_1", ClientSecret: "pi_1_secret_x", Status: StatusSucceeded})
	require.NoError(t, err)
	assert.Equal(t, "https://shop.test/shop/checkout/success/?payment_intent=pi_1&payment_intent_client_secret=pi_1_secret_x&redirect_status=succeeded", u)

	u, err = ReturnRedirect("https://shop.test/x", Intent{NextActionURL: "https://bank.test/3ds"})
	require.NoError(t, err)
	assert.Equal(t, "https://bank.test/3ds", u)
}

func TestIntentIDFromSecret(t *testing.T) {
	id, err := IntentIDFromSecret("pi_123_secret_abc")
	require.NoError(t, err)
	assert.Equal(t, "pi_123", id)

	id, err = IntentIDFromSecret("pi_123_secret")
	require.NoError(t, err)
	assert.Equal(t, "pi_123", id)

	_, err = IntentIDFromSecret("_secret_abc")
	assert.ErrorIs(t, err, ErrBadClientSecret)
}
