package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/myriadhero/tea-shop/internal/http/cartcookie"
	"github.com/myriadhero/tea-shop/internal/http/flash"
	"github.com/myriadhero/tea-shop/internal/http/middleware"
	"github.com/myriadhero/tea-shop/internal/http/render"
	"github.com/myriadhero/tea-shop/internal/http/validation"
	"github.com/myriadhero/tea-shop/internal/modules/checkout"
	"github.com/myriadhero/tea-shop/internal/modules/orders"
	"github.com/myriadhero/tea-shop/internal/modules/payments"
	"github.com/myriadhero/tea-shop/internal/shared/apperr"
	"github.com/myriadhero/tea-shop/pkg/view"
)

type CheckoutHandler struct {
	Orders           *orders.Service
	Provider         payments.Provider
	Flash            *flash.Codec
	CK               *cartcookie.Codec
	BaseURL          string
	AllowedCountries []string
	Logger           *slog.Logger
}

func NewCheckoutHandler(svc *orders.Service, p payments.Provider, fl *flash.Codec, ck *cartcookie.Codec, baseURL string, countries []string, logger *slog.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		Orders:           svc,
		Provider:         p,
		Flash:            fl,
		CK:               ck,
		BaseURL:          strings.TrimRight(baseURL, "/"),
		AllowedCountries: countries,
		Logger:           logger,
	}
}

// GET /shop/checkout/
func (h *CheckoutHandler) Get(c *gin.Context) {
	ctx := c.Request.Context()

	cartID, ok := h.CK.GetCartID(c)
	if !ok {
		render.RedirectWithFlash(c, h.Flash, cartPath, view.FlashInfo, "Your cart is empty.")
		return
	}

	sess, err := h.Orders.StartCheckout(ctx, cartID)
	if errors.Is(err, orders.ErrCartEmpty) {
		render.RedirectWithFlash(c, h.Flash, cartPath, view.FlashInfo, "Your cart is empty.")
		return
	}
	if err != nil {
		h.Logger.ErrorContext(ctx, "checkout start failed", "cart_id", cartID, "err", err)
		middleware.Fail(c, apperr.UnavailableErr("Payments are unavailable right now. Please try again.", err))
		return
	}

	cfg := view.CheckoutConfig{
		PublishableKey:   h.Provider.PublishableKey(),
		ClientSecret:     sess.Order.ClientSecret,
		UpdateDetailsURL: h.BaseURL + "/shop/checkout/details/",
		RedirectURL:      h.BaseURL + "/shop/checkout/success/",
		AllowedCountries: h.AllowedCountries,
	}
	if saved, ok := h.CK.GetAddress(c); ok {
		cfg.DefaultValues = saved
	}
	js, err := cfg.JSON()
	if err != nil {
		middleware.Fail(c, apperr.Wrap(err))
		return
	}

	render.Page(c, http.StatusOK, "checkout.html", "Checkout", view.CheckoutPage{
		Config:        cfg,
		ConfigJSON:    js,
		PaymentIntent: sess.Order.PaymentIntent,
		Email:         sess.Order.Email,
		Lines:         cartLines(sess.Summary),
		Count:         sess.Summary.Count,
		Total:         view.FormatMoney(sess.Summary.SubtotalCents, sess.Summary.Currency),
	})
}

type orderDetailsForm struct {
	Email         string `form:"email" binding:"required,email,max=254"`
	Name          string `form:"name" binding:"required,max=100"`
	Country       string `form:"country" binding:"required,max=10"`
	PostalCode    string `form:"postal_code" binding:"required,max=10"`
	State         string `form:"state" binding:"max=100"`
	City          string `form:"city" binding:"required,max=100"`
	Line1         string `form:"line1" binding:"required,max=100"`
	Line2         string `form:"line2" binding:"max=100"`
	PaymentIntent string `form:"payment_intent" binding:"required,max=100"`
	SaveAddress   bool   `form:"save_address"`
}

// POST /shop/checkout/details/
// Answers JSON; a non-2xx body carries {"errors": {field: [messages]}}.
func (h *CheckoutHandler) Details(c *gin.Context) {
	ctx := c.Request.Context()

	var in orderDetailsForm
	if err := c.ShouldBind(&in); err != nil {
		formErrors(c, http.StatusBadRequest, validation.FromBindError(err, &in))
		return
	}
	country := strings.ToUpper(strings.TrimSpace(in.Country))
	if len(h.AllowedCountries) > 0 && !slices.Contains(h.AllowedCountries, country) {
		formErrors(c, http.StatusBadRequest, validation.FieldErrors{"country": "We do not ship to this country."})
		return
	}

	o, err := h.Orders.UpdateDetails(ctx, orders.DetailsInput{
		PaymentIntent: in.PaymentIntent,
		Email:         in.Email,
		Address: orders.AddressInput{
			Name:       in.Name,
			Line1:      in.Line1,
			Line2:      in.Line2,
			City:       in.City,
			State:      in.State,
			PostalCode: in.PostalCode,
			Country:    country,
		},
	})
	switch {
	case err == nil:
	case errors.Is(err, orders.ErrUnknownIntent):
		formError(c, http.StatusNotFound, "This checkout session has expired. Please reload the page.")
		return
	case errors.Is(err, orders.ErrOrderNotPending):
		formError(c, http.StatusConflict, "This order has already been completed.")
		return
	case errors.Is(err, orders.ErrCartEmpty):
		formError(c, http.StatusConflict, "Your cart is empty.")
		return
	default:
		h.Logger.ErrorContext(ctx, "order details update failed", "intent", in.PaymentIntent, "err", err)
		formError(c, http.StatusBadGateway, "We could not save your details. Please try again.")
		return
	}

	if in.SaveAddress {
		if err := h.CK.SetAddress(c, view.AddressDefaults{
			Name:       in.Name,
			Line1:      in.Line1,
			Line2:      in.Line2,
			City:       in.City,
			State:      in.State,
			PostalCode: in.PostalCode,
			Country:    country,
		}); err != nil {
			h.Logger.WarnContext(ctx, "saving address cookie failed", "err", err)
		}
	}

	h.Logger.InfoContext(ctx, "order details saved", "order_id", o.ID, "amount_cents", o.AmountCents)
	c.JSON(http.StatusOK, gin.H{"ok": true, "order_id": o.ID})
}

// shownMessage keeps the last message the status flow displayed.
type shownMessage struct{ text string }

func (m *shownMessage) ShowMessage(text string) { m.text = text }

// GET /shop/checkout/success/
// The payment page redirects here with payment_intent_client_secret in the query.
func (h *CheckoutHandler) Success(c *gin.Context) {
	msg := &shownMessage{}
	flow := checkout.NewFlow(checkout.Deps{Intents: h.Provider, Display: msg}, checkout.Config{})
	flow.SetLogger(h.Logger)
	flow.InitializeStatus(c.Request.Context(), c.Request.URL.Query())

	succeeded := msg.text == checkout.MsgSucceeded
	if succeeded {
		// the webhook deletes the cart; the cookie goes with it
		h.CK.Clear(c)
	}
	render.Page(c, http.StatusOK, "status.html", "Payment status", view.StatusPage{
		Message:   msg.text,
		Succeeded: succeeded,
	})
}
