package payments

import (
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/webhook"
)

func signedStripeEvent(t *testing.T, secret, payload string) http.Header {
	t.Helper()
	sp := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload:   []byte(payload),
		Secret:    secret,
		Timestamp: time.Now(),
	})
	h := http.Header{}
	h.Set("Stripe-Signature", sp.Header)
	return h
}

func TestStripeWebhookSucceeded(t *testing.T) {
	p := NewStripeProvider(StripeConfig{SecretKey: "sk_test_x", WebhookSecret: "whsec_test"})
	body := `{"id":"evt_1","object":"event","type":"payment_intent.succeeded","api_version":"2023-10-16",
		"data":{"object":{"id":"pi_1","object":"payment_intent","amount":2500,"currency":"aud","status":"succeeded"}}}`

	ev, err := p.VerifyAndParseWebhook(signedStripeEvent(t, "whsec_test", body), []byte(body))
	require.NoError(t, err)
	assert.Equal(t, "evt_1", ev.EventID)
	assert.Equal(t, EventPaymentSucceeded, ev.Type)
	assert.Equal(t, "pi_1", ev.IntentID)
	assert.Equal(t, 2500, ev.AmountCents)
	assert.Equal(t, "AUD", ev.Currency)
}

func TestStripeWebhookFailedCarriesMessage(t *testing.T) {
	p := NewStripeProvider(StripeConfig{WebhookSecret: "whsec_test"})
	body := `{"id":"evt_2","object":"event","type":"payment_intent.payment_failed","api_version":"2023-10-16",
		"data":{"object":{"id":"pi_2","object":"payment_intent","amount":100,"currency":"aud",
		"last_payment_error":{"type":"card_error","message":"Your card was declined."}}}}`

	ev, err := p.VerifyAndParseWebhook(signedStripeEvent(t, "whsec_test", body), []byte(body))
	require.NoError(t, err)
	assert.Equal(t, EventPaymentFailed, ev.Type)
	assert.Equal(t, "Your card was declined.", ev.ErrorMessage)
}

func TestStripeWebhookRejects(t *testing.T) {
	p := NewStripeProvider(StripeConfig{WebhookSecret: "whsec_test"})
	body := `{"id":"evt_3","object":"event","type":"charge.refunded","api_version":"2023-10-16","data":{"object":{}}}`

	_, err := p.VerifyAndParseWebhook(signedStripeEvent(t, "whsec_other", body), []byte(body))
	assert.ErrorIs(t, err, ErrBadSignature)

	_, err = p.VerifyAndParseWebhook(signedStripeEvent(t, "whsec_test", body), []byte(body))
	assert.ErrorIs(t, err, ErrUnknownEventType)
}

func TestMapStripeError(t *testing.T) {
	err := mapStripeError(&stripe.Error{Type: stripe.ErrorTypeCard, Code: stripe.ErrorCodeCardDeclined, Msg: "Your card was declined."})
	var ce *ConfirmError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, "card_error", ce.Type)
	assert.Equal(t, "card_declined", ce.Code)
	assert.Equal(t, "Your card was declined.", ce.Message)

	err = mapStripeError(&stripe.Error{HTTPStatusCode: http.StatusNotFound, Msg: "No such payment_intent"})
	assert.ErrorIs(t, err, ErrIntentNotFound)

	plain := errors.New("dial tcp: timeout")
	assert.Equal(t, plain, mapStripeError(plain))
}
