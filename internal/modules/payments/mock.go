package payments

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Test payment methods accepted by MockProvider.
const (
	MockMethodVisa           = "pm_card_visa"
	MockMethodDeclined       = "pm_card_chargeDeclined"
	MockMethodProcessing     = "pm_card_processing"
	MockMethodAuthentication = "pm_card_authenticationRequired"
)

const (
	MockSignatureHeader = "X-Mock-Signature"
	mockTolerance       = 5 * time.Minute
)

type mockIntent struct {
	Intent
	ReceiptEmail string
	Shipping     *Shipping
}

// MockProvider keeps intents in memory. It is used in development and tests.
type MockProvider struct {
	mu        sync.Mutex
	intents   map[string]*mockIntent
	idem      map[string]string
	secret    string
	publicKey string
	now       func() time.Time
}

func NewMockProvider(webhookSecret string) *MockProvider {
	return &MockProvider{
		intents:   make(map[string]*mockIntent),
		idem:      make(map[string]string),
		secret:    webhookSecret,
		publicKey: "pk_mock",
		now:       time.Now,
	}
}

func (m *MockProvider) Name() string           { return "mock" }
func (m *MockProvider) PublishableKey() string { return m.publicKey }

func (m *MockProvider) CreateIntent(_ context.Context, req CreateIntentRequest) (Intent, error) {
	if req.AmountCents <= 0 {
		return Intent{}, &ConfirmError{Type: ErrorTypeInvalidRequest, Code: "amount_too_small", Message: "Amount must be positive."}
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if id, ok := m.idem[req.IdempotencyKey]; ok && req.IdempotencyKey != "" {
		return m.intents[id].Intent, nil
	}
	id := "pi_mock_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:20]
	in := &mockIntent{Intent: Intent{
		ID:           id,
		ClientSecret: id + "_secret_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:16],
		Status:       StatusRequiresPaymentMethod,
		AmountCents:  req.AmountCents,
		Currency:     strings.ToUpper(req.Currency),
	}}
	m.intents[id] = in
	if req.IdempotencyKey != "" {
		m.idem[req.IdempotencyKey] = id
	}
	return in.Intent, nil
}

func (m *MockProvider) UpdateIntent(_ context.Context, req UpdateIntentRequest) (Intent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	in, ok := m.intents[req.IntentID]
	if !ok {
		return Intent{}, ErrIntentNotFound
	}
	if req.AmountCents > 0 {
		in.AmountCents = req.AmountCents
	}
	if req.ReceiptEmail != "" {
		in.ReceiptEmail = req.ReceiptEmail
	}
	if req.Shipping != nil {
		sh := *req.Shipping
		in.Shipping = &sh
	}
	return in.Intent, nil
}

func (m *MockProvider) RetrieveIntent(_ context.Context, clientSecret string) (Intent, error) {
	in, err := m.bySecret(clientSecret)
	if err != nil {
		return Intent{}, err
	}
	return in.Intent, nil
}

func (m *MockProvider) ConfirmIntent(_ context.Context, req ConfirmIntentRequest) (Intent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	in, err := m.bySecretLocked(req.ClientSecret)
	if err != nil {
		return Intent{}, err
	}
	if in.Status == StatusSucceeded || in.Status == StatusCanceled {
		return Intent{}, &ConfirmError{
			Type:    ErrorTypeInvalidRequest,
			Code:    "payment_intent_unexpected_state",
			Message: "This PaymentIntent's status is " + in.Status + ".",
		}
	}

	switch req.PaymentMethod {
	case "":
		return Intent{}, &ConfirmError{Type: ErrorTypeValidation, Code: "incomplete_number", Message: "Your card number is incomplete."}
	case MockMethodVisa:
		in.Status = StatusSucceeded
	case MockMethodProcessing:
		in.Status = StatusProcessing
	case MockMethodDeclined:
		in.Status = StatusRequiresPaymentMethod
		return Intent{}, &ConfirmError{Type: ErrorTypeCard, Code: "card_declined", Message: "Your card was declined."}
	case MockMethodAuthentication:
		in.Status = StatusRequiresAction
		in.NextActionURL = "https://mock.payments.invalid/authenticate/" + in.ID + "?return_url=" + url.QueryEscape(req.ReturnURL)
	default:
		return Intent{}, &ConfirmError{Type: ErrorTypeInvalidRequest, Code: "resource_missing", Message: "No such PaymentMethod: '" + req.PaymentMethod + "'"}
	}
	return in.Intent, nil
}

// Shipping returns what UpdateIntent stored for an intent.
func (m *MockProvider) Shipping(intentID string) (*Shipping, string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	in, ok := m.intents[intentID]
	if !ok {
		return nil, "", false
	}
	return in.Shipping, in.ReceiptEmail, true
}

// SetStatus forces an intent into a status, as an out-of-band provider
// change would (a payment settling after the customer left).
func (m *MockProvider) SetStatus(intentID, status string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	in, ok := m.intents[intentID]
	if !ok {
		return ErrIntentNotFound
	}
	in.Status = status
	return nil
}

func (m *MockProvider) bySecret(clientSecret string) (*mockIntent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	in, err := m.bySecretLocked(clientSecret)
	if err != nil {
		return nil, err
	}
	cp := *in
	return &cp, nil
}

func (m *MockProvider) bySecretLocked(clientSecret string) (*mockIntent, error) {
	id, err := IntentIDFromSecret(clientSecret)
	if err != nil {
		return nil, err
	}
	in, ok := m.intents[id]
	if !ok || !hmac.Equal([]byte(in.ClientSecret), []byte(clientSecret)) {
		return nil, ErrIntentNotFound
	}
	return in, nil
}

// MockEvent is the wire format of mock webhook bodies.
type MockEvent struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		IntentID     string `json:"intent_id"`
		AmountCents  int    `json:"amount_cents"`
		Currency     string `json:"currency"`
		ErrorMessage string `json:"error_message,omitempty"`
	} `json:"data"`
}

func (m *MockProvider) VerifyAndParseWebhook(headers http.Header, body []byte) (WebhookEvent, error) {
	if err := VerifyMockSignature(m.secret, headers.Get(MockSignatureHeader), body, m.now()); err != nil {
		return WebhookEvent{}, err
	}

	var ev MockEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return WebhookEvent{}, fmt.Errorf("decode mock event: %w", err)
	}
	if ev.ID == "" || ev.Data.IntentID == "" {
		return WebhookEvent{}, errors.New("mock event missing id or intent_id")
	}
	switch ev.Type {
	case EventPaymentSucceeded, EventPaymentFailed, EventPaymentCanceled:
	default:
		return WebhookEvent{}, ErrUnknownEventType
	}
	return WebhookEvent{
		EventID:      ev.ID,
		Type:         ev.Type,
		IntentID:     ev.Data.IntentID,
		AmountCents:  ev.Data.AmountCents,
		Currency:     ev.Data.Currency,
		ErrorMessage: ev.Data.ErrorMessage,
	}, nil
}

// SignMockPayload returns the X-Mock-Signature header value for body.
func SignMockPayload(secret string, ts time.Time, body []byte) string {
	t := strconv.FormatInt(ts.Unix(), 10)
	return "t=" + t + ",v1=" + mockMAC(secret, t, body)
}

// VerifyMockSignature checks a "t=<unix>,v1=<hex>" header against body.
func VerifyMockSignature(secret, header string, body []byte, now time.Time) error {
	if secret == "" || header == "" {
		return ErrBadSignature
	}
	var t, sig string
	for _, part := range strings.Split(header, ",") {
		k, v, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok {
			continue
		}
		switch k {
		case "t":
			t = v
		case "v1":
			sig = v
		}
	}
	ts, err := strconv.ParseInt(t, 10, 64)
	if err != nil || sig == "" {
		return ErrBadSignature
	}
	if d := now.Sub(time.Unix(ts, 0)); d > mockTolerance || d < -mockTolerance {
		return ErrBadSignature
	}
	if !hmac.Equal([]byte(mockMAC(secret, t, body)), []byte(sig)) {
		return ErrBadSignature
	}
	return nil
}

func mockMAC(secret, t string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(t))
	mac.Write([]byte("."))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}
