package orders_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/myriadhero/tea-shop/internal/db/dbtest"
	"github.com/myriadhero/tea-shop/internal/modules/cart"
	"github.com/myriadhero/tea-shop/internal/modules/orders"
	"github.com/myriadhero/tea-shop/internal/modules/payments"
	"github.com/myriadhero/tea-shop/internal/modules/products"
)

type fixture struct {
	db       *gorm.DB
	carts    *cart.Service
	provider *payments.MockProvider
	svc      *orders.Service
	cartID   string
	product  products.Product
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	gdb := dbtest.Open(t)
	p := dbtest.SeedProduct(t, gdb, "oolong", 1250, 5)

	carts := cart.NewService(cart.NewRepo(gdb), "AUD")
	c, err := carts.Repo().Create(ctx)
	require.NoError(t, err)
	require.NoError(t, carts.Repo().AddProduct(ctx, c.ID, p.ID, 2, false))

	mp := payments.NewMockProvider("whsec")
	return &fixture{
		db:       gdb,
		carts:    carts,
		provider: mp,
		svc:      orders.NewService(gdb, carts, mp),
		cartID:   c.ID,
		product:  p,
	}
}

var address = orders.AddressInput{
	Name:       "Ada Lovelace",
	Line1:      "1 George St",
	City:       "Sydney",
	State:      "NSW",
	PostalCode: "2000",
	Country:    "au",
}

func TestStartCheckoutCreatesAndReusesOrder(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	first, err := f.svc.StartCheckout(ctx, f.cartID)
	require.NoError(t, err)
	assert.Equal(t, orders.StatusPending, first.Order.Status)
	assert.Equal(t, 2500, first.Order.AmountCents)
	assert.NotEmpty(t, first.Order.ClientSecret)

	second, err := f.svc.StartCheckout(ctx, f.cartID)
	require.NoError(t, err)
	assert.Equal(t, first.Order.ID, second.Order.ID)
	assert.Equal(t, first.Order.PaymentIntent, second.Order.PaymentIntent)

	require.NoError(t, f.carts.Repo().AddProduct(ctx, f.cartID, f.product.ID, 3, true))
	third, err := f.svc.StartCheckout(ctx, f.cartID)
	require.NoError(t, err)
	assert.Equal(t, first.Order.ID, third.Order.ID)
	assert.Equal(t, 3750, third.Order.AmountCents)

	in, err := f.provider.RetrieveIntent(ctx, third.Order.ClientSecret)
	require.NoError(t, err)
	assert.Equal(t, 3750, in.AmountCents, "intent follows the cart total")
}

// flakyProvider fails the next failUpdates UpdateIntent calls.
type flakyProvider struct {
	*payments.MockProvider
	failUpdates int
}

func (p *flakyProvider) UpdateIntent(ctx context.Context, req payments.UpdateIntentRequest) (payments.Intent, error) {
	if p.failUpdates > 0 {
		p.failUpdates--
		return payments.Intent{}, errors.New("provider unavailable")
	}
	return p.MockProvider.UpdateIntent(ctx, req)
}

func TestStartCheckoutResyncsAfterFailedDetailsPush(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	fp := &flakyProvider{MockProvider: f.provider}
	svc := orders.NewService(f.db, f.carts, fp)

	sess, err := svc.StartCheckout(ctx, f.cartID)
	require.NoError(t, err)
	require.Equal(t, 2500, sess.Order.AmountCents)

	require.NoError(t, f.carts.Repo().AddProduct(ctx, f.cartID, f.product.ID, 1, false))
	fp.failUpdates = 1
	_, err = svc.UpdateDetails(ctx, orders.DetailsInput{PaymentIntent: sess.Order.PaymentIntent, Email: "ada@example.com", Address: address})
	require.Error(t, err)

	in, err := f.provider.RetrieveIntent(ctx, sess.Order.ClientSecret)
	require.NoError(t, err)
	require.Equal(t, 2500, in.AmountCents, "the failed push left the intent behind")

	again, err := svc.StartCheckout(ctx, f.cartID)
	require.NoError(t, err)
	assert.Equal(t, sess.Order.ID, again.Order.ID)
	assert.Equal(t, 3750, again.Order.AmountCents)

	in, err = f.provider.RetrieveIntent(ctx, sess.Order.ClientSecret)
	require.NoError(t, err)
	assert.Equal(t, 3750, in.AmountCents)
}

func TestStartCheckoutEmptyCart(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.StartCheckout(context.Background(), "missing-cart")
	assert.ErrorIs(t, err, orders.ErrCartEmpty)
}

func TestUpdateDetails(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	sess, err := f.svc.StartCheckout(ctx, f.cartID)
	require.NoError(t, err)

	o, err := f.svc.UpdateDetails(ctx, orders.DetailsInput{
		PaymentIntent: sess.Order.PaymentIntent,
		Email:         " ada@example.com ",
		Address:       address,
	})
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", o.Email)
	assert.Equal(t, "AU", o.Address.Country)

	// a second submission replaces rather than duplicates
	moved := address
	moved.City = "Newcastle"
	again, err := f.svc.UpdateDetails(ctx, orders.DetailsInput{PaymentIntent: sess.Order.PaymentIntent, Email: "ada@example.com", Address: moved})
	require.NoError(t, err)

	got, items, err := f.svc.Repo().GetWithItems(ctx, o.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Address)
	assert.Equal(t, "Newcastle", got.Address.City)
	assert.Equal(t, o.Address.ID, got.Address.ID)
	assert.Equal(t, got.Address.ID, again.Address.ID, "returned address is the stored row")
	assert.Equal(t, "Newcastle", again.Address.City)
	require.Len(t, items, 1)
	assert.Equal(t, 2, items[0].Quantity)
	assert.Equal(t, 2500, items[0].LineTotalCents)

	var addrCount int64
	require.NoError(t, f.db.Model(&orders.Address{}).Where("order_id = ?", o.ID).Count(&addrCount).Error)
	assert.Equal(t, int64(1), addrCount)

	sh, email, ok := f.provider.Shipping(o.PaymentIntent)
	require.True(t, ok)
	assert.Equal(t, "ada@example.com", email)
	assert.Equal(t, "2000", sh.PostalCode)
}

func TestUpdateDetailsUnknownIntent(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.UpdateDetails(context.Background(), orders.DetailsInput{PaymentIntent: "pi_nope", Email: "a@example.com", Address: address})
	assert.ErrorIs(t, err, orders.ErrUnknownIntent)
}

func TestMarkPaidDeductsStockOnce(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	sess, err := f.svc.StartCheckout(ctx, f.cartID)
	require.NoError(t, err)
	_, err = f.svc.UpdateDetails(ctx, orders.DetailsInput{PaymentIntent: sess.Order.PaymentIntent, Email: "a@example.com", Address: address})
	require.NoError(t, err)

	var newly bool
	require.NoError(t, f.db.Transaction(func(tx *gorm.DB) error {
		_, newly, err = f.svc.MarkPaid(ctx, tx, sess.Order.PaymentIntent)
		return err
	}))
	assert.True(t, newly)

	require.NoError(t, f.db.Transaction(func(tx *gorm.DB) error {
		_, newly, err = f.svc.MarkPaid(ctx, tx, sess.Order.PaymentIntent)
		return err
	}))
	assert.False(t, newly, "second delivery is a no-op")

	var p products.Product
	require.NoError(t, f.db.First(&p, "id = ?", f.product.ID).Error)
	assert.Equal(t, 3, p.Quantity)

	o, err := f.svc.Repo().ByIntent(ctx, sess.Order.PaymentIntent)
	require.NoError(t, err)
	assert.Equal(t, orders.StatusPaid, o.Status)
	assert.NotNil(t, o.PaidAt)

	_, err = f.carts.Repo().Get(ctx, f.cartID)
	assert.ErrorIs(t, err, cart.ErrNotFound, "paid cart is consumed")

	_, err = f.svc.UpdateDetails(ctx, orders.DetailsInput{PaymentIntent: sess.Order.PaymentIntent, Email: "a@example.com", Address: address})
	assert.ErrorIs(t, err, orders.ErrOrderNotPending)
}

func TestMarkFailedAndCanceled(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	sess, err := f.svc.StartCheckout(ctx, f.cartID)
	require.NoError(t, err)
	intent := sess.Order.PaymentIntent

	require.NoError(t, f.db.Transaction(func(tx *gorm.DB) error {
		return f.svc.MarkFailed(ctx, tx, intent, "Your card was declined.")
	}))
	o, err := f.svc.Repo().ByIntent(ctx, intent)
	require.NoError(t, err)
	assert.Equal(t, orders.StatusPending, o.Status)
	require.NotNil(t, o.LastPaymentError)
	assert.Equal(t, "Your card was declined.", *o.LastPaymentError)

	long := strings.Repeat("Zahlung für Tee abgelehnt. ", 20)
	require.NoError(t, f.db.Transaction(func(tx *gorm.DB) error {
		return f.svc.MarkFailed(ctx, tx, intent, long)
	}))
	o, err = f.svc.Repo().ByIntent(ctx, intent)
	require.NoError(t, err)
	require.NotNil(t, o.LastPaymentError)
	assert.True(t, utf8.ValidString(*o.LastPaymentError))
	assert.Equal(t, 255, utf8.RuneCountInString(*o.LastPaymentError))

	require.NoError(t, f.db.Transaction(func(tx *gorm.DB) error {
		return f.svc.MarkCanceled(ctx, tx, intent)
	}))
	o, err = f.svc.Repo().ByIntent(ctx, intent)
	require.NoError(t, err)
	assert.Equal(t, orders.StatusCanceled, o.Status)

	err = f.db.Transaction(func(tx *gorm.DB) error {
		_, _, err := f.svc.MarkPaid(ctx, tx, intent)
		return err
	})
	assert.ErrorIs(t, err, orders.ErrOrderNotPending)
}
