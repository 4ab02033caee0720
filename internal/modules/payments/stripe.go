package payments

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"github.com/stripe/stripe-go/v76/webhook"
)

type StripeConfig struct {
	SecretKey     string
	PublicKey     string
	WebhookSecret string
}

type StripeProvider struct {
	sc            *client.API
	publicKey     string
	webhookSecret string
}

func NewStripeProvider(cfg StripeConfig) *StripeProvider {
	sc := &client.API{}
	sc.Init(cfg.SecretKey, nil)
	return &StripeProvider{sc: sc, publicKey: cfg.PublicKey, webhookSecret: cfg.WebhookSecret}
}

func (p *StripeProvider) Name() string           { return "stripe" }
func (p *StripeProvider) PublishableKey() string { return p.publicKey }

func (p *StripeProvider) CreateIntent(ctx context.Context, req CreateIntentRequest) (Intent, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(int64(req.AmountCents)),
		Currency: stripe.String(strings.ToLower(req.Currency)),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.Context = ctx
	if req.IdempotencyKey != "" {
		params.SetIdempotencyKey(req.IdempotencyKey)
	}
	for k, v := range req.Metadata {
		params.AddMetadata(k, v)
	}
	pi, err := p.sc.PaymentIntents.New(params)
	if err != nil {
		return Intent{}, mapStripeError(err)
	}
	return intentFromStripe(pi), nil
}

func (p *StripeProvider) UpdateIntent(ctx context.Context, req UpdateIntentRequest) (Intent, error) {
	params := &stripe.PaymentIntentParams{}
	params.Context = ctx
	if req.AmountCents > 0 {
		params.Amount = stripe.Int64(int64(req.AmountCents))
	}
	if req.ReceiptEmail != "" {
		params.ReceiptEmail = stripe.String(req.ReceiptEmail)
	}
	if sh := req.Shipping; sh != nil {
		params.Shipping = &stripe.ShippingDetailsParams{
			Name: stripe.String(sh.Name),
			Address: &stripe.AddressParams{
				Line1:      stripe.String(sh.Line1),
				Line2:      stripe.String(sh.Line2),
				City:       stripe.String(sh.City),
				State:      stripe.String(sh.State),
				PostalCode: stripe.String(sh.PostalCode),
				Country:    stripe.String(sh.Country),
			},
		}
	}
	pi, err := p.sc.PaymentIntents.Update(req.IntentID, params)
	if err != nil {
		return Intent{}, mapStripeError(err)
	}
	return intentFromStripe(pi), nil
}

func (p *StripeProvider) RetrieveIntent(ctx context.Context, clientSecret string) (Intent, error) {
	id, err := IntentIDFromSecret(clientSecret)
	if err != nil {
		return Intent{}, err
	}
	params := &stripe.PaymentIntentParams{}
	params.Context = ctx
	pi, err := p.sc.PaymentIntents.Get(id, params)
	if err != nil {
		return Intent{}, mapStripeError(err)
	}
	if pi.ClientSecret != clientSecret {
		return Intent{}, ErrIntentNotFound
	}
	return intentFromStripe(pi), nil
}

func (p *StripeProvider) ConfirmIntent(ctx context.Context, req ConfirmIntentRequest) (Intent, error) {
	id, err := IntentIDFromSecret(req.ClientSecret)
	if err != nil {
		return Intent{}, err
	}
	params := &stripe.PaymentIntentConfirmParams{
		ReturnURL: stripe.String(req.ReturnURL),
	}
	params.Context = ctx
	if req.PaymentMethod != "" {
		params.PaymentMethod = stripe.String(req.PaymentMethod)
	}
	pi, err := p.sc.PaymentIntents.Confirm(id, params)
	if err != nil {
		return Intent{}, mapStripeError(err)
	}
	return intentFromStripe(pi), nil
}

func (p *StripeProvider) VerifyAndParseWebhook(headers http.Header, body []byte) (WebhookEvent, error) {
	event, err := webhook.ConstructEventWithOptions(body, headers.Get("Stripe-Signature"), p.webhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		return WebhookEvent{}, fmt.Errorf("%w: %v", ErrBadSignature, err)
	}

	var typ string
	switch event.Type {
	case "payment_intent.succeeded":
		typ = EventPaymentSucceeded
	case "payment_intent.payment_failed":
		typ = EventPaymentFailed
	case "payment_intent.canceled":
		typ = EventPaymentCanceled
	default:
		return WebhookEvent{}, ErrUnknownEventType
	}

	var pi stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
		return WebhookEvent{}, fmt.Errorf("decode payment intent: %w", err)
	}
	ev := WebhookEvent{
		EventID:     event.ID,
		Type:        typ,
		IntentID:    pi.ID,
		AmountCents: int(pi.Amount),
		Currency:    strings.ToUpper(string(pi.Currency)),
	}
	if pi.LastPaymentError != nil {
		ev.ErrorMessage = pi.LastPaymentError.Msg
	}
	return ev, nil
}

func intentFromStripe(pi *stripe.PaymentIntent) Intent {
	in := Intent{
		ID:           pi.ID,
		ClientSecret: pi.ClientSecret,
		Status:       string(pi.Status),
		AmountCents:  int(pi.Amount),
		Currency:     strings.ToUpper(string(pi.Currency)),
	}
	if na := pi.NextAction; na != nil && na.RedirectToURL != nil {
		in.NextActionURL = na.RedirectToURL.URL
	}
	return in
}

// mapStripeError turns API errors into *ConfirmError so callers can decide
// what is safe to show.
func mapStripeError(err error) error {
	var se *stripe.Error
	if !errors.As(err, &se) {
		return err
	}
	if se.HTTPStatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: %s", ErrIntentNotFound, se.Msg)
	}
	return &ConfirmError{Type: string(se.Type), Code: string(se.Code), Message: se.Msg}
}
