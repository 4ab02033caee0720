package payments

import (
	"context"
	"net/http"
)

// Intent statuses, as reported by the hosted payments API.
const (
	StatusRequiresPaymentMethod = "requires_payment_method"
	StatusRequiresConfirmation  = "requires_confirmation"
	StatusRequiresAction        = "requires_action"
	StatusProcessing            = "processing"
	StatusSucceeded             = "succeeded"
	StatusCanceled              = "canceled"
)

// Webhook event types understood by WebhookService.
const (
	EventPaymentSucceeded = "payment.succeeded"
	EventPaymentFailed    = "payment.failed"
	EventPaymentCanceled  = "payment.canceled"
)

// Intent is a provider-side payment intent.
type Intent struct {
	ID           string
	ClientSecret string
	Status       string
	AmountCents  int
	Currency     string
	// NextActionURL is set when the customer must be redirected (3DS and similar).
	NextActionURL string
}

type CreateIntentRequest struct {
	AmountCents    int
	Currency       string
	IdempotencyKey string
	Metadata       map[string]string
}

type Shipping struct {
	Name       string
	Line1      string
	Line2      string
	City       string
	State      string
	PostalCode string
	Country    string
}

type UpdateIntentRequest struct {
	IntentID     string
	AmountCents  int // 0 leaves the amount alone
	ReceiptEmail string
	Shipping     *Shipping
}

type ConfirmIntentRequest struct {
	ClientSecret  string
	PaymentMethod string
	ReturnURL     string
}

type WebhookEvent struct {
	EventID  string
	Type     string // payment.succeeded|payment.failed|payment.canceled
	IntentID string

	AmountCents  int
	Currency     string
	ErrorMessage string
}

type Provider interface {
	Name() string
	// PublishableKey is handed to the browser through the page config.
	PublishableKey() string

	CreateIntent(ctx context.Context, req CreateIntentRequest) (Intent, error)
	UpdateIntent(ctx context.Context, req UpdateIntentRequest) (Intent, error)
	RetrieveIntent(ctx context.Context, clientSecret string) (Intent, error)
	ConfirmIntent(ctx context.Context, req ConfirmIntentRequest) (Intent, error)

	// Webhook: verify signature + parse event
	VerifyAndParseWebhook(headers http.Header, body []byte) (WebhookEvent, error)
}
