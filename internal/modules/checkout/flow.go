// Package checkout drives one payment submission: address check, details
// update on the merchant backend, payment confirmation, status message.
package checkout

import (
	"context"
	"log/slog"
	"net/url"
	"sync/atomic"

	"github.com/myriadhero/tea-shop/internal/modules/payments"
)

// Address is what the address element collects.
type Address struct {
	Name       string
	Line1      string
	Line2      string
	City       string
	State      string
	PostalCode string
	Country    string
}

// Values returns the fields posted to the details endpoint.
func (a Address) Values() url.Values {
	v := url.Values{}
	v.Set("name", a.Name)
	v.Set("city", a.City)
	v.Set("country", a.Country)
	v.Set("postal_code", a.PostalCode)
	v.Set("state", a.State)
	v.Set("line1", a.Line1)
	v.Set("line2", a.Line2)
	return v
}

// AddressValue mirrors the address element's getValue() result.
type AddressValue struct {
	Complete bool
	Address  Address
}

type AddressSource interface {
	GetValue(ctx context.Context) AddressValue
}

// ServerResponse is the part of the details-update reply the flow looks at.
type ServerResponse struct {
	StatusCode int
	Body       []byte
}

func (r ServerResponse) OK() bool { return r.StatusCode >= 200 && r.StatusCode <= 299 }

type DetailsUpdater interface {
	UpdateDetails(ctx context.Context, form url.Values) (ServerResponse, error)
}

// Confirmer confirms the payment. A nil error means the customer is being
// sent to redirectURL.
type Confirmer interface {
	ConfirmPayment(ctx context.Context, returnURL string) (redirectURL string, err error)
}

type IntentRetriever interface {
	RetrieveIntent(ctx context.Context, clientSecret string) (payments.Intent, error)
}

type LoadingState interface {
	SetLoading(loading bool)
}

// LoadingFunc adapts a plain function to LoadingState.
type LoadingFunc func(loading bool)

func (f LoadingFunc) SetLoading(loading bool) { f(loading) }

type Display interface {
	ShowMessage(text string)
}

type Outcome int

const (
	OutcomeBusy Outcome = iota
	OutcomeAddressIncomplete
	OutcomeServerRejected
	OutcomeConfirmFailed
	OutcomeRedirect
)

func (o Outcome) String() string {
	switch o {
	case OutcomeBusy:
		return "busy"
	case OutcomeAddressIncomplete:
		return "address_incomplete"
	case OutcomeServerRejected:
		return "server_rejected"
	case OutcomeConfirmFailed:
		return "confirm_failed"
	case OutcomeRedirect:
		return "redirect"
	default:
		return "unknown"
	}
}

// Result describes how one submission ended. Message is what was shown, if
// anything.
type Result struct {
	Outcome     Outcome
	Message     string
	RedirectURL string
}

type Config struct {
	// Form holds the page form's own fields (email, payment_intent, ...).
	Form url.Values
	// ReturnURL is the redirect-success URL handed to confirmation.
	ReturnURL string
}

type Flow struct {
	address   AddressSource
	details   DetailsUpdater
	confirmer Confirmer
	intents   IntentRetriever
	loading   LoadingState
	display   Display
	cfg       Config
	logger    *slog.Logger

	inFlight atomic.Bool
}

type Deps struct {
	Address   AddressSource
	Details   DetailsUpdater
	Confirmer Confirmer
	Intents   IntentRetriever
	Loading   LoadingState
	Display   Display
}

func NewFlow(d Deps, cfg Config) *Flow {
	loading := d.Loading
	if loading == nil {
		loading = LoadingFunc(func(bool) {})
	}
	return &Flow{
		address:   d.Address,
		details:   d.Details,
		confirmer: d.Confirmer,
		intents:   d.Intents,
		loading:   loading,
		display:   d.Display,
		cfg:       cfg,
		logger:    slog.Default(),
	}
}

func (f *Flow) SetLogger(logger *slog.Logger) {
	f.logger = logger
}

// InitializeStatus shows the payment status for the client secret carried in
// the query after the redirect back. Without one it does nothing.
func (f *Flow) InitializeStatus(ctx context.Context, query url.Values) {
	secret := query.Get("payment_intent_client_secret")
	if secret == "" {
		return
	}
	in, err := f.intents.RetrieveIntent(ctx, secret)
	if err != nil {
		f.logger.WarnContext(ctx, "payment intent lookup failed", "err", err)
		f.display.ShowMessage(MsgSomethingWent)
		return
	}
	f.display.ShowMessage(StatusMessage(in.Status))
}

// HandleSubmit runs one submission. Only one may be in flight; a concurrent
// call returns OutcomeBusy without touching anything.
func (f *Flow) HandleSubmit(ctx context.Context) Result {
	if !f.inFlight.CompareAndSwap(false, true) {
		return Result{Outcome: OutcomeBusy}
	}
	f.loading.SetLoading(true)

	res := f.submit(ctx)
	if res.Outcome == OutcomeRedirect {
		// the page is leaving; the control stays disabled
		return res
	}

	f.loading.SetLoading(false)
	f.inFlight.Store(false)
	if res.Message != "" {
		f.display.ShowMessage(res.Message)
	}
	return res
}

func (f *Flow) submit(ctx context.Context) Result {
	av := f.address.GetValue(ctx)
	if !av.Complete {
		return Result{Outcome: OutcomeAddressIncomplete, Message: MsgAddressIncomplete}
	}

	form := url.Values{}
	for k, vs := range f.cfg.Form {
		form[k] = append([]string(nil), vs...)
	}
	for k, vs := range av.Address.Values() {
		form[k] = append(form[k], vs...)
	}

	resp, err := f.details.UpdateDetails(ctx, form)
	if err != nil {
		f.logger.WarnContext(ctx, "order details update failed", "err", err)
		return Result{Outcome: OutcomeServerRejected, Message: MsgServerGeneric}
	}
	if !resp.OK() {
		f.logger.InfoContext(ctx, "order details rejected", "status", resp.StatusCode)
		return Result{Outcome: OutcomeServerRejected, Message: ServerErrorMessage(resp.Body)}
	}

	redirect, err := f.confirmer.ConfirmPayment(ctx, f.cfg.ReturnURL)
	if err != nil {
		f.logger.InfoContext(ctx, "payment confirmation failed", "err", err)
		return Result{Outcome: OutcomeConfirmFailed, Message: ConfirmationMessage(err)}
	}
	return Result{Outcome: OutcomeRedirect, RedirectURL: redirect}
}
